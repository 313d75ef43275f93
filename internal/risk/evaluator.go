package risk

import (
	"context"
	"time"

	"PortfolioGuard/internal/model"
	"PortfolioGuard/internal/quote"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Evaluator fetches quotes for evaluable positions and assesses them.
type Evaluator struct {
	provider    quote.Provider
	limits      Limits
	timeout     time.Duration
	concurrency int
	log         *zap.Logger
}

// Config tunes how quotes are fetched.
type Config struct {
	Limits       Limits
	FetchTimeout time.Duration
	Concurrency  int
}

// NewEvaluator creates an Evaluator over provider.
func NewEvaluator(provider quote.Provider, cfg Config, log *zap.Logger) *Evaluator {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{
		provider:    provider,
		limits:      cfg.Limits,
		timeout:     cfg.FetchTimeout,
		concurrency: cfg.Concurrency,
		log:         log,
	}
}

// Limits returns the thresholds this evaluator applies.
func (e *Evaluator) Limits() Limits {
	return e.limits
}

// Evaluate fetches one quote per evaluable position and runs Assess. Fetch
// failures only affect their own position.
func (e *Evaluator) Evaluate(ctx context.Context, positions []model.Position, credential string) Result {
	quotes := e.fetch(ctx, positions, credential)
	return Assess(positions, quotes, e.limits)
}

func (e *Evaluator) fetch(ctx context.Context, positions []model.Position, credential string) map[string]model.Quote {
	// Indexed slots keep results in store order regardless of completion order.
	slots := make([]*model.Quote, len(positions))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, p := range positions {
		if !p.Evaluable() {
			continue
		}
		g.Go(func() error {
			if pacer, ok := e.provider.(quote.Pacer); ok {
				if err := pacer.Wait(ctx, p.Symbol, credential); err != nil {
					e.log.Warn("quote fetch not started", zap.String("symbol", p.Symbol), zap.Error(err))
					return nil
				}
			}
			fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()

			q, err := e.provider.Quote(fetchCtx, p.Symbol, credential)
			if err != nil {
				e.log.Warn("quote fetch failed",
					zap.String("symbol", p.Symbol),
					zap.String("provider", e.provider.Name()),
					zap.Error(err))
				return nil
			}
			if err := q.Validate(); err != nil {
				e.log.Warn("quote rejected", zap.String("symbol", p.Symbol), zap.Error(err))
				return nil
			}
			slots[i] = &q
			return nil
		})
	}
	_ = g.Wait()

	quotes := make(map[string]model.Quote, len(positions))
	for i, q := range slots {
		if q != nil {
			quotes[positions[i].Symbol] = *q
		}
	}
	return quotes
}

package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"PortfolioGuard/internal/model"
	"PortfolioGuard/internal/risk"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrMissingCredential is returned when a check is requested without a
// quote provider credential. No pass is started.
var ErrMissingCredential = errors.New("missing API key")

// PositionStore is the subset of store.Store a Checker needs.
type PositionStore interface {
	Load(ctx context.Context) ([]model.Position, error)
	Update(ctx context.Context, fn func([]model.Position) ([]model.Position, error)) (bool, error)
}

// Evaluator runs the stop-loss rules for a set of positions.
type Evaluator interface {
	Evaluate(ctx context.Context, positions []model.Position, credential string) risk.Result
}

// Checker runs "check portfolio" passes: load, evaluate, save rebased.
type Checker struct {
	store     PositionStore
	evaluator Evaluator
	log       *zap.Logger
}

// NewChecker creates a Checker.
func NewChecker(store PositionStore, evaluator Evaluator, log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{store: store, evaluator: evaluator, log: log}
}

// Check runs one pass. It fails only for a missing credential or a store
// error; quote failures are reported in the result.
func (c *Checker) Check(ctx context.Context, credential string) (*model.CheckResult, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, ErrMissingCredential
	}

	runID := uuid.NewString()
	log := c.log.With(zap.String("run_id", runID))
	start := time.Now()

	var res risk.Result
	saved, err := c.store.Update(ctx, func(positions []model.Position) ([]model.Position, error) {
		res = c.evaluator.Evaluate(ctx, positions, credential)
		return res.Rebased, nil
	})
	if err != nil {
		log.Error("check pass failed", zap.Error(err))
		return nil, fmt.Errorf("check portfolio: %w", err)
	}

	log.Info("check pass complete",
		zap.Int("alerts", len(res.Alerts)),
		zap.Float64("total_loss", res.TotalLoss),
		zap.Strings("failed", res.Failed),
		zap.Bool("saved", saved),
		zap.Duration("took", time.Since(start)))

	return &model.CheckResult{
		RunID:     runID,
		Alerts:    res.Alerts,
		TotalLoss: res.TotalLoss,
		Breaches:  res.Breaches,
		Failed:    res.Failed,
		Saved:     saved,
	}, nil
}

// Positions returns the stored positions without evaluating them.
func (c *Checker) Positions(ctx context.Context) ([]model.Position, error) {
	positions, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	return positions, nil
}

package quote

import (
	"context"
	"fmt"
	"sync"

	"PortfolioGuard/internal/model"
)

// StaticProvider returns fixed quotes for development and testing.
type StaticProvider struct {
	mu     sync.Mutex
	Quotes map[string]model.Quote
	Errors map[string]error
	calls  map[string]int
}

// NewStaticProvider creates a provider serving quotes.
func NewStaticProvider(quotes map[string]model.Quote) *StaticProvider {
	return &StaticProvider{
		Quotes: quotes,
		Errors: map[string]error{},
		calls:  map[string]int{},
	}
}

func (s *StaticProvider) Name() string { return "static" }

func (s *StaticProvider) Quote(ctx context.Context, symbol, _ string) (model.Quote, error) {
	s.mu.Lock()
	s.calls[symbol]++
	err, failing := s.Errors[symbol]
	q, ok := s.Quotes[symbol]
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return model.Quote{}, err
	}
	if failing {
		return model.Quote{}, err
	}
	if !ok {
		return model.Quote{}, fmt.Errorf("static: no quote for %s", symbol)
	}
	q.Symbol = symbol
	return q, nil
}

// Calls returns how many times symbol was requested.
func (s *StaticProvider) Calls(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[symbol]
}

package risk

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"PortfolioGuard/internal/model"
	"PortfolioGuard/internal/quote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator_FailureIsolated(t *testing.T) {
	provider := quote.NewStaticProvider(map[string]model.Quote{
		"YYY": {CurrentPrice: 90, OpenPrice: 100},
	})
	provider.Errors["XXX"] = errors.New("connection reset")

	ev := NewEvaluator(provider, Config{Limits: testLimits}, nil)
	positions := []model.Position{active("XXX", 100, 1000), active("YYY", 100, 1000)}

	res := ev.Evaluate(context.Background(), positions, "key")
	assert.Equal(t, []string{"XXX"}, res.Failed)
	require.Len(t, res.Alerts, 2)
	assert.Equal(t, "STOP LOSS for YYY: Current 90.0000 < Limit 96.5000", res.Alerts[0])
	assert.Equal(t, "⚠️ Total portfolio loss approx €100.00", res.Alerts[1])
	assert.Equal(t, 100.0, res.Rebased[0].BaselinePrice, "failed symbol keeps its baseline")
}

func TestEvaluator_OnlyFetchesEvaluablePositions(t *testing.T) {
	provider := quote.NewStaticProvider(map[string]model.Quote{
		"AAA": {CurrentPrice: 100, OpenPrice: 100},
		"BBB": {CurrentPrice: 100, OpenPrice: 100},
		"CCC": {CurrentPrice: 100, OpenPrice: 100},
	})
	inactive := active("BBB", 100, 1000)
	inactive.Status = model.StatusInactive
	positions := []model.Position{active("AAA", 100, 1000), inactive, active("CCC", 100, 0)}

	NewEvaluator(provider, Config{Limits: testLimits}, nil).Evaluate(context.Background(), positions, "key")
	assert.Equal(t, 1, provider.Calls("AAA"))
	assert.Zero(t, provider.Calls("BBB"))
	assert.Zero(t, provider.Calls("CCC"))
}

// slowProvider blocks on one symbol until the context expires.
type slowProvider struct {
	slow     string
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *slowProvider) Name() string { return "slow" }

func (s *slowProvider) Quote(ctx context.Context, symbol, _ string) (model.Quote, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if symbol == s.slow {
		<-ctx.Done()
		return model.Quote{}, ctx.Err()
	}
	time.Sleep(10 * time.Millisecond)
	return model.Quote{Symbol: symbol, CurrentPrice: 90, OpenPrice: 100}, nil
}

func TestEvaluator_TimeoutIsPerPositionFailure(t *testing.T) {
	p := &slowProvider{slow: "SLOW"}
	ev := NewEvaluator(p, Config{Limits: testLimits, FetchTimeout: 50 * time.Millisecond, Concurrency: 2}, nil)
	positions := []model.Position{active("SLOW", 100, 1000), active("FAST", 100, 1000)}

	res := ev.Evaluate(context.Background(), positions, "key")
	assert.Equal(t, []string{"SLOW"}, res.Failed)
	require.Len(t, res.Alerts, 2)
	assert.Contains(t, res.Alerts[0], "FAST")
	assert.Equal(t, "⚠️ Total portfolio loss approx €100.00", res.Alerts[1])
}

func TestEvaluator_ConcurrencyLimitAndOrder(t *testing.T) {
	p := &slowProvider{}
	ev := NewEvaluator(p, Config{Limits: Limits{PerPosition: 35, Hard: 1000, Currency: "€"}, Concurrency: 3}, nil)

	symbols := []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8"}
	positions := make([]model.Position, 0, len(symbols))
	for _, s := range symbols {
		positions = append(positions, active(s, 100, 1000))
	}

	res := ev.Evaluate(context.Background(), positions, "key")
	require.Len(t, res.Alerts, len(symbols))
	for i, s := range symbols {
		assert.Contains(t, res.Alerts[i], "for "+s+":")
	}
	assert.LessOrEqual(t, p.peak.Load(), int32(3))
}

// pacedProvider admits one request per interval, like a rate-limited upstream.
type pacedProvider struct {
	interval time.Duration
	mu       sync.Mutex
	next     time.Time
}

func (p *pacedProvider) Name() string { return "paced" }

func (p *pacedProvider) Wait(ctx context.Context, _, _ string) error {
	p.mu.Lock()
	now := time.Now()
	if p.next.Before(now) {
		p.next = now
	}
	at := p.next
	p.next = p.next.Add(p.interval)
	p.mu.Unlock()

	select {
	case <-time.After(time.Until(at)):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pacedProvider) Quote(ctx context.Context, symbol, _ string) (model.Quote, error) {
	return model.Quote{Symbol: symbol, CurrentPrice: 101, OpenPrice: 101}, nil
}

func TestEvaluator_PacingDoesNotCountAgainstTimeout(t *testing.T) {
	p := &pacedProvider{interval: 40 * time.Millisecond}
	ev := NewEvaluator(p, Config{Limits: testLimits, FetchTimeout: 30 * time.Millisecond, Concurrency: 4}, nil)
	positions := []model.Position{
		active("A1", 100, 1000), active("A2", 100, 1000),
		active("A3", 100, 1000), active("A4", 100, 1000),
	}

	res := ev.Evaluate(context.Background(), positions, "key")
	assert.Empty(t, res.Failed)
	for _, r := range res.Rebased {
		assert.Equal(t, 101.0, r.BaselinePrice)
	}
}

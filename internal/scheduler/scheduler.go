package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PortfolioGuard/internal/model"
	"PortfolioGuard/internal/notifier"
	"PortfolioGuard/internal/portfolio"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Checker is the portfolio operation the scheduler drives.
type Checker interface {
	Check(ctx context.Context, credential string) (*model.CheckResult, error)
	Positions(ctx context.Context) ([]model.Position, error)
}

type retrySender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs periodic check passes and answers chat commands.
type Scheduler struct {
	Cron       *cron.Cron
	Checker    Checker
	Notifier   notifier.Notifier
	Credential string
	Ctx        context.Context
	Now        func() time.Time
	log        *zap.Logger
}

// NewScheduler creates a new Scheduler. credential is the quote provider
// key used for scheduled passes.
func NewScheduler(ctx context.Context, checker Checker, n notifier.Notifier, credential string, log *zap.Logger) *Scheduler {
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Checker:    checker,
		Notifier:   n,
		Credential: credential,
		Ctx:        ctx,
		Now:        time.Now,
		log:        log,
	}
}

// Register adds the periodic check task.
func (s *Scheduler) Register(checkCron string) error {
	if _, err := s.Cron.AddFunc(checkCron, s.checkTask); err != nil {
		return fmt.Errorf("register check task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunCheckNow executes the check task immediately.
func (s *Scheduler) RunCheckNow() {
	s.checkTask()
}

// checkTask only notifies when there is something to act on.
func (s *Scheduler) checkTask() {
	s.log.Info("running scheduled check")
	res, err := s.Checker.Check(s.Ctx, s.Credential)
	if err != nil {
		s.log.Error("scheduled check failed", zap.Error(err))
		s.trySend(fmt.Sprintf("❌ Portfolio check failed: %v", err))
		return
	}
	if len(res.Alerts) == 0 && len(res.Failed) == 0 {
		return
	}
	s.trySend(notifier.FormatCheckResult(res, s.Now()))
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch command {
	case "/check":
		res, err := s.Checker.Check(ctx, s.Credential)
		if errors.Is(err, portfolio.ErrMissingCredential) {
			return "❌ No quote API key configured"
		}
		if err != nil {
			return fmt.Sprintf("❌ Portfolio check failed: %v", err)
		}
		return notifier.FormatCheckResult(res, s.Now())
	case "/positions":
		positions, err := s.Checker.Positions(ctx)
		if err != nil {
			return fmt.Sprintf("❌ Could not load positions: %v", err)
		}
		return notifier.FormatPositions(positions)
	default:
		return "Commands:\n• /check - run a stop-loss check now\n• /positions - list tracked positions"
	}
}

func (s *Scheduler) trySend(text string) {
	var err error
	if rs, ok := s.Notifier.(retrySender); ok {
		err = rs.SendWithRetry(s.Ctx, text, 3)
	} else {
		err = s.Notifier.Send(s.Ctx, text)
	}
	if err != nil {
		s.log.Error("send notification", zap.Error(err))
	}
}

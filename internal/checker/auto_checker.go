package checker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// AutoChecker periodically checks every service whose interval has elapsed.
type AutoChecker struct {
	db       *gorm.DB
	checker  *Checker
	schedule string
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool

	tickMu   sync.Mutex
	inflight sync.WaitGroup
}

func NewAutoChecker(db *gorm.DB, checker *Checker, schedule string) *AutoChecker {
	if schedule == "" {
		schedule = "@every 1m"
	}
	return &AutoChecker{db: db, checker: checker, schedule: schedule, now: time.Now}
}

// Start schedules the tick and runs one immediately in the background.
// Calling Start on a running checker is a no-op.
func (a *AutoChecker) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return nil
	}

	logger := cronLogger{}
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(a.schedule, a.scheduledTick); err != nil {
		return fmt.Errorf("invalid auto-check schedule %q: %w", a.schedule, err)
	}
	c.Start()
	a.cron = c
	a.running = true

	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()
		a.RunOnce(context.Background())
	}()

	slog.Info("auto checker started", "component", "checker", "schedule", a.schedule)
	return nil
}

// Stop halts scheduling. Checks already in flight run to completion; the
// returned context is done once they have.
func (a *AutoChecker) Stop() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	if !a.running {
		cancel()
		return ctx
	}
	cronDone := a.cron.Stop()
	a.running = false

	go func() {
		<-cronDone.Done()
		a.inflight.Wait()
		cancel()
	}()
	slog.Info("auto checker stopped", "component", "checker")
	return ctx
}

func (a *AutoChecker) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

func (a *AutoChecker) scheduledTick() {
	a.inflight.Add(1)
	defer a.inflight.Done()
	a.RunOnce(context.Background())
}

// RunOnce checks every auto-check service that is due, one at a time, and
// returns how many were checked. A tick that starts while another is still
// running is skipped.
func (a *AutoChecker) RunOnce(ctx context.Context) int {
	if !a.tickMu.TryLock() {
		slog.Debug("auto check tick skipped, previous tick still running", "component", "checker")
		return 0
	}
	defer a.tickMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			slog.Error("auto check tick panicked", "component", "checker", "panic", fmt.Sprint(r))
		}
	}()

	var candidates []models.Service
	if err := a.db.Where("auto_check = ?", true).Find(&candidates).Error; err != nil {
		slog.Error("failed to load auto-check services", "component", "checker", "error", err)
		return 0
	}

	now := a.now()
	checked := 0
	for i := range candidates {
		svc := &candidates[i]
		if !svc.DueForAutoCheck(now) {
			continue
		}
		if a.checkOne(ctx, svc) {
			checked++
		}
	}
	if checked > 0 {
		slog.Info("auto check tick complete", "component", "checker", "checked", checked)
	}
	return checked
}

func (a *AutoChecker) checkOne(ctx context.Context, svc *models.Service) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			slog.Error("auto check panicked", "component", "checker", "service_id", svc.ID.String(), "panic", fmt.Sprint(r))
			ok = false
		}
	}()

	result, err := a.checker.Check(ctx, svc, Auto)
	if err != nil {
		slog.Error("auto check failed", "component", "checker", "service_id", svc.ID.String(), "error", err)
		return false
	}
	slog.Debug("service checked", "component", "checker", "service_id", svc.ID.String(), "status", result.Status)
	return true
}

// cronLogger routes cron's internal messages to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug(msg, append([]interface{}{"component", "cron"}, keysAndValues...)...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error(msg, append([]interface{}{"component", "cron", "error", err}, keysAndValues...)...)
}

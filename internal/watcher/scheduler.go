package watcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs watcher cycles on a cron schedule instead of the fixed
// sleep loop. A tick that fires while a cycle is still running is skipped.
type Scheduler struct {
	cron    *cron.Cron
	entryID cron.EntryID
	watcher *Watcher
	log     *slog.Logger
	ctx     context.Context
}

// NewScheduler creates a Scheduler for spec, which accepts the standard
// five-field syntax and descriptors such as "@every 5m".
func NewScheduler(w *Watcher, spec string, log *slog.Logger) (*Scheduler, error) {
	cl := cronLogger{log: log}
	c := cron.New(cron.WithChain(
		cron.Recover(cl),
		cron.SkipIfStillRunning(cl),
	))

	s := &Scheduler{
		cron:    c,
		watcher: w,
		log:     log,
		ctx:     context.Background(),
	}

	id, err := c.AddFunc(spec, s.runCycle)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", spec, err)
	}
	s.entryID = id

	return s, nil
}

// Run performs one cycle immediately, then follows the schedule until ctx
// is done. It returns after any running cycle finishes.
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx

	s.runCycle()

	s.cron.Start()
	s.log.Info("scheduler started", "next_run", s.cron.Entry(s.entryID).Next)

	<-ctx.Done()

	s.log.Info("scheduler stopping")
	<-s.cron.Stop().Done()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runCycle() {
	if s.ctx.Err() != nil {
		return
	}
	report := s.watcher.RunCycle(s.ctx)
	s.log.Info("scheduled cycle finished",
		"cycle_id", report.CycleID,
		"notified", report.Notified,
		"failures", report.Failures,
	)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

// Package scheduler triggers pipeline runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TrendScope/internal/model"
	"TrendScope/internal/notifier"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// RunFunc performs one complete pipeline run.
type RunFunc func(ctx context.Context) (*model.AnalysisResult, error)

// parser accepts standard five-field specs, an optional leading seconds
// field, and descriptors such as @daily.
var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Scheduler runs the pipeline on a cron schedule. Runs never overlap: a
// trigger that fires while a run is in progress is skipped.
type Scheduler struct {
	cron     *cron.Cron
	run      RunFunc
	notifier notifier.Notifier
	ticker   string
	log      zerolog.Logger
	ctx      context.Context

	running sync.Mutex
	async   sync.WaitGroup

	mu      sync.Mutex
	last    *model.AnalysisResult
	lastErr error
	lastAt  time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithNotifier sends a summary after every run. ticker labels failures.
func WithNotifier(n notifier.Notifier, ticker string) Option {
	return func(s *Scheduler) {
		s.notifier = n
		s.ticker = ticker
	}
}

// New creates a scheduler. Runs receive ctx.
func New(ctx context.Context, run RunFunc, log zerolog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{run: run, log: log, ctx: ctx}
	cl := cronLogger{log: log}
	s.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate reports whether spec is a valid cron expression.
func Validate(spec string) error {
	if spec == "" {
		return fmt.Errorf("cron expression is empty")
	}
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return nil
}

// Register schedules a run at every time spec matches.
func (s *Scheduler) Register(spec string) error {
	if err := Validate(spec); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register run: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("entries", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop stops the scheduler and waits for scheduled and RunAsync runs in
// progress to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.async.Wait()
	s.log.Info().Msg("scheduler stopped")
}

// Next returns the next scheduled trigger time, or zero when idle.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	var next time.Time
	for _, e := range entries {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

// RunNow executes a run immediately unless one is already in progress.
func (s *Scheduler) RunNow() {
	if !s.running.TryLock() {
		s.log.Warn().Msg("run already in progress, skipping")
		return
	}
	defer s.running.Unlock()

	s.log.Info().Msg("running scheduled analysis")
	res, err := s.run(s.ctx)

	s.mu.Lock()
	s.lastAt = time.Now()
	s.lastErr = err
	if err == nil {
		s.last = res
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Msg("scheduled run failed")
		s.trySend(notifier.FormatFailure(s.ticker, err))
		return
	}
	s.trySend(notifier.FormatRunSummary(res))
}

// RunAsync starts RunNow in the background. Stop waits for it.
func (s *Scheduler) RunAsync() {
	s.async.Add(1)
	go func() {
		defer s.async.Done()
		s.RunNow()
	}()
}

// Last returns the most recent successful result and the most recent error.
func (s *Scheduler) Last() (*model.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastErr
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	switch command {
	case "/run":
		s.RunAsync()
		return "Run started."
	case "/status":
		s.mu.Lock()
		last, lastErr, at := s.last, s.lastErr, s.lastAt
		s.mu.Unlock()
		switch {
		case at.IsZero():
			return fmt.Sprintf("No run yet. Next run: %s", s.Next().Format("2006-01-02 15:04"))
		case lastErr != nil:
			return notifier.FormatFailure(s.ticker, lastErr)
		default:
			return notifier.FormatRunSummary(last)
		}
	default:
		return "Available commands:\n• /run\n• /status"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.notifier == nil {
		return
	}
	if r, ok := s.notifier.(retrier); ok {
		if err := r.SendWithRetry(s.ctx, text, 3); err != nil {
			s.log.Error().Err(err).Msg("send notification")
		}
		return
	}
	if err := s.notifier.Send(s.ctx, text); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}

type retrier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

// Package scheduler runs the nightly sweeps in-process for deployments without an external cron.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/ticketing/internal/api/dto"
	"github.com/flexprice/ticketing/internal/config"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/metrics"
	"github.com/flexprice/ticketing/internal/service"
	"github.com/robfig/cron/v3"
)

// Sweep is one periodic run over every active subscription
type Sweep func(ctx context.Context) (*dto.SweepResponse, error)

type job struct {
	name  string
	spec  string
	sweep Sweep
}

type Scheduler struct {
	cron   *cron.Cron
	logger *logger.Logger
	jobs   []job

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	entries map[string]cron.EntryID
}

func NewScheduler(
	cfg *config.Configuration,
	logger *logger.Logger,
	paymentDates service.PaymentDateService,
	tickets service.TicketService,
) *Scheduler {
	cronLog := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		// a sweep still running when its next tick fires is skipped, never stacked
		cron: cron.New(
			cron.WithLocation(cfg.Billing.Location()),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		logger: logger,
		jobs: []job{
			{name: metrics.SweepPaymentDateRefresh, spec: cfg.Scheduler.PaymentDateRefresh, sweep: paymentDates.RefreshStale},
			{name: metrics.SweepProportionalBackfill, spec: cfg.Scheduler.ProportionalBackfill, sweep: tickets.BackfillProportionalTickets},
		},
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]cron.EntryID),
	}
}

// Start registers every sweep with a schedule and starts the cron loop.
// A sweep with an empty schedule is left out.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		if j.spec == "" {
			s.logger.Infow("sweep has no schedule, not registering it", "sweep", j.name)
			continue
		}

		id, err := s.cron.AddFunc(j.spec, s.runner(j))
		if err != nil {
			return ierr.WithError(err).
				WithHintf("Invalid schedule %q for sweep %s", j.spec, j.name).
				WithReportableDetails(map[string]any{
					"sweep": j.name,
					"spec":  j.spec,
				}).
				Mark(ierr.ErrValidation)
		}
		s.entries[j.name] = id
		s.logger.Infow("registered sweep",
			"sweep", j.name,
			"spec", j.spec,
			"next_run", s.cron.Entry(id).Next)
	}

	s.cron.Start()
	return nil
}

// Stop cancels running sweeps and waits for them until ctx expires
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger runs a registered sweep right away through the same wrappers as a scheduled tick
func (s *Scheduler) Trigger(name string) bool {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return false
	}

	s.cron.Entry(id).WrappedJob.Run()
	return true
}

func (s *Scheduler) runner(j job) func() {
	return func() {
		start := time.Now()
		resp, err := j.sweep(s.ctx)
		if err != nil {
			s.logger.Errorw("scheduled sweep failed",
				"sweep", j.name,
				"duration", time.Since(start),
				"error", err)
			return
		}

		s.logger.Infow("scheduled sweep finished",
			"sweep", j.name,
			"total_candidates", resp.TotalCandidates,
			"updated", resp.Updated,
			"skipped", resp.Skipped,
			"failed", resp.Failed,
			"duration", time.Since(start))
	}
}

// cronLogger adapts the zap logger to cron.Logger
type cronLogger struct {
	logger *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}

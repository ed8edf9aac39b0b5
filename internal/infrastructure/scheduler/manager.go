// Package scheduler runs the portal's periodic maintenance jobs on gocron v2.
package scheduler

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

// SessionSweeper evicts idle per-browser sessions and reports how many went.
type SessionSweeper interface {
	Sweep() int
}

// SchedulerManager owns the single gocron scheduler of the process.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.Mutex
}

// NewSchedulerManager creates a scheduler in the business timezone.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterSessionSweep evicts idle sessions every interval. A sweep that
// overruns the interval delays the next one instead of overlapping it.
func (m *SchedulerManager) RegisterSessionSweep(sweeper SessionSweeper, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if n := sweeper.Sweep(); n > 0 {
				m.logger.Debugw("session sweep finished", "evicted", n)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("identity", "sessions"),
		gocron.WithName("session-sweeper"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered session sweep job", "interval", interval)
	return nil
}

// Start begins running registered jobs. Calling it twice is a no-op.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()
	if m.started {
		return
	}
	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler started", "jobs", len(m.scheduler.Jobs()))
}

// Shutdown stops the scheduler and waits for running jobs.
func (m *SchedulerManager) Shutdown() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()
	m.started = false
	return m.scheduler.Shutdown()
}

package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// runTimeout bounds a single job execution.
const runTimeout = 5 * time.Minute

type entry struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// Scheduler drives the periodic background jobs: the balance alert sweep,
// the lead expiry sweep, the daily report and notification cleanup. Each
// job runs on its own ticker, once immediately on startup.
type Scheduler struct {
	entries  []entry
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	started  bool
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{stopCh: make(chan struct{})}
}

// Register adds a named job with its run interval. Must be called before Start.
func (s *Scheduler) Register(name string, interval time.Duration, run func(ctx context.Context) error) {
	if interval <= 0 {
		interval = time.Hour
	}
	s.entries = append(s.entries, entry{name: name, interval: interval, run: run})
}

// Start launches one goroutine per registered job.
func (s *Scheduler) Start() {
	if s.started {
		return
	}
	s.started = true

	log.Info().Int("jobs", len(s.entries)).Msg("Starting scheduler...")
	for _, e := range s.entries {
		s.wg.Add(1)
		go s.loop(e)
	}
}

// Stop signals all job loops and waits for in-flight runs to finish.
// Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		log.Info().Msg("Stopping scheduler...")
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Scheduler) loop(e entry) {
	defer s.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	// Run once immediately on startup
	s.runOne(e)

	for {
		select {
		case <-ticker.C:
			s.runOne(e)
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) runOne(e entry) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	start := time.Now()
	if err := e.run(ctx); err != nil {
		log.Error().Err(err).Str("job", e.name).Msg("Scheduled job failed")
		return
	}
	log.Debug().Str("job", e.name).Dur("took", time.Since(start)).Msg("Scheduled job finished")
}

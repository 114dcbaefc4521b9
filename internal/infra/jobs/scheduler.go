// internal/infra/jobs/scheduler.go
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is a unit of background work. The context is cancelled when the
// scheduler stops or the per-run timeout elapses.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron schedules ("@hourly", "0 */6 * * *", ...).
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	jobsMux sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		// 前回の実行が終わっていなければスキップする
		cron:   cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		jobs:   make(map[string]cron.EntryID),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers (or replaces) job under name.
func (s *Scheduler) Add(name, schedule string, timeout time.Duration, job Job) error {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if id, ok := s.jobs[name]; ok {
		s.cron.Remove(id)
		delete(s.jobs, name)
	}

	id, err := s.cron.AddFunc(schedule, func() { s.run(name, timeout, job) })
	if err != nil {
		return fmt.Errorf("failed to add cron job %s: %w", name, err)
	}
	s.jobs[name] = id
	log.Info().Str("job", name).Str("schedule", schedule).Msg("[jobs] scheduled")
	return nil
}

func (s *Scheduler) run(name string, timeout time.Duration, job Job) {
	ctx := s.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("job", name).Interface("panic", rec).Msg("[jobs] job panicked")
		}
	}()

	if err := job(ctx); err != nil {
		log.Error().Err(err).Str("job", name).Dur("took", time.Since(start)).Msg("[jobs] job failed")
		return
	}
	log.Info().Str("job", name).Dur("took", time.Since(start)).Msg("[jobs] job finished")
}

// Names returns the registered job names.
func (s *Scheduler) Names() []string {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()
	out := make([]string, 0, len(s.jobs))
	for n := range s.jobs {
		out = append(out, n)
	}
	return out
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Msg("[jobs] scheduler started")
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	log.Info().Msg("[jobs] scheduler stopped")
}

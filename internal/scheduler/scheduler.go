// Package scheduler runs periodic jobs on cron schedules.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is a unit of periodic work. An empty Schedule registers the job for
// on-demand runs only.
type Job interface {
	Name() string
	Schedule() string
	Run(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	timeout time.Duration
}

// New returns a scheduler whose runs are each bounded by timeout.
func New(timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		timeout: timeout,
	}
}

// Register adds job and schedules it when it has a schedule. Invalid
// schedules are returned so startup can fail loudly.
func (s *Scheduler) Register(job Job) error {
	s.jobs = append(s.jobs, job)

	schedule := job.Schedule()
	if schedule == "" {
		log.Info().Str("job", job.Name()).Msg("registered on-demand job")
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.run(job) }); err != nil {
		return err
	}
	log.Info().Str("job", job.Name()).Str("schedule", schedule).Msg("scheduled job")
	return nil
}

func (s *Scheduler) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.Error().Err(err).Str("job", job.Name()).Msg("job failed")
		return
	}
	log.Debug().Str("job", job.Name()).Dur("took", time.Since(start)).Msg("job completed")
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")
}

// Stop prevents new runs and waits for running ones to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Warn().Msg("scheduler stop timed out")
	}
}

// RunByName runs a registered job immediately.
func (s *Scheduler) RunByName(ctx context.Context, name string) (bool, error) {
	for _, job := range s.jobs {
		if job.Name() == name {
			return true, job.Run(ctx)
		}
	}
	return false, nil
}

func (s *Scheduler) Jobs() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}

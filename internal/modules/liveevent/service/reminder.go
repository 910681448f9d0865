package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// ReminderJob adapts SendReminders to the scheduler.
type ReminderJob struct {
	service  LiveEventService
	schedule string
	window   time.Duration
}

func NewReminderJob(service LiveEventService, schedule string, window time.Duration) *ReminderJob {
	return &ReminderJob{service: service, schedule: schedule, window: window}
}

func (j *ReminderJob) Name() string     { return "live-event-reminders" }
func (j *ReminderJob) Schedule() string { return j.schedule }

func (j *ReminderJob) Run(ctx context.Context) error {
	sent, err := j.service.SendReminders(ctx, j.window)
	if err != nil {
		return err
	}
	if sent > 0 {
		log.Info().Int("events", sent).Msg("live event reminders sent")
	}
	return nil
}

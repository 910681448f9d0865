package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/liveevent/dto"
	eventRepo "viralacademy.com/academy/internal/modules/liveevent/repository"
	notification "viralacademy.com/academy/internal/modules/notification/service"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
	commonDto "viralacademy.com/academy/pkg/dto"
)

const (
	defaultDuration = 60
	upcomingLimit   = 50
)

type LiveEventService interface {
	ListUpcoming(ctx context.Context, identity *authz.Identity) ([]dto.LiveEventResponse, error)
	GetEvent(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.LiveEventResponse, error)
	CreateEvent(ctx context.Context, identity *authz.Identity, req dto.LiveEventRequest) (*dto.LiveEventResponse, error)
	UpdateEvent(ctx context.Context, identity *authz.Identity, id uuid.UUID, req dto.LiveEventRequest) (*dto.LiveEventResponse, error)
	DeleteEvent(ctx context.Context, identity *authz.Identity, id uuid.UUID) error
	// SendReminders broadcasts a reminder for every event starting within
	// window and returns how many events were reminded.
	SendReminders(ctx context.Context, window time.Duration) (int, error)
}

type Config struct {
	// Now defaults to time.Now.
	Now func() time.Time
}

type liveEventService struct {
	repo     eventRepo.LiveEventRepository
	notifier notification.Notifier
	now      func() time.Time
}

func NewLiveEventService(repo eventRepo.LiveEventRepository, notifier notification.Notifier, cfg Config) LiveEventService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &liveEventService{repo: repo, notifier: notifier, now: now}
}

func (s *liveEventService) ListUpcoming(ctx context.Context, identity *authz.Identity) ([]dto.LiveEventResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	events, err := s.repo.ListUpcoming(ctx, s.now(), upcomingLimit)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	resp := make([]dto.LiveEventResponse, 0, len(events))
	for i := range events {
		resp = append(resp, dto.ToLiveEventResponse(&events[i]))
	}
	return resp, nil
}

func (s *liveEventService) GetEvent(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.LiveEventResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	event, err := s.findEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToLiveEventResponse(event)
	return &resp, nil
}

func (s *liveEventService) CreateEvent(ctx context.Context, identity *authz.Identity, req dto.LiveEventRequest) (*dto.LiveEventResponse, error) {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return nil, err
	}
	if !req.StartsAt.After(s.now()) {
		return nil, apperror.Validation("starts_at must be in the future")
	}

	event := &entity.LiveEvent{HostID: identity.ID}
	if err := apply(event, req); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, apperror.Internal(err)
	}

	saved, err := s.repo.FindByID(ctx, event.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.announce(ctx, saved)

	resp := dto.ToLiveEventResponse(saved)
	return &resp, nil
}

func (s *liveEventService) UpdateEvent(ctx context.Context, identity *authz.Identity, id uuid.UUID, req dto.LiveEventRequest) (*dto.LiveEventResponse, error) {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return nil, err
	}

	event, err := s.findEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if !req.StartsAt.Equal(event.StartsAt) {
		event.ReminderSentAt = nil
	}
	if err := apply(event, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, apperror.Internal(err)
	}

	resp := dto.ToLiveEventResponse(event)
	return &resp, nil
}

func (s *liveEventService) DeleteEvent(ctx context.Context, identity *authz.Identity, id uuid.UUID) error {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperror.Internal(err)
	}
	if !deleted {
		return apperror.NotFound("live event not found")
	}
	return nil
}

func (s *liveEventService) SendReminders(ctx context.Context, window time.Duration) (int, error) {
	now := s.now()
	events, err := s.repo.DueForReminder(ctx, now, now.Add(window))
	if err != nil {
		return 0, err
	}

	reminded := 0
	for i := range events {
		event := &events[i]
		claimed, err := s.repo.ClaimReminder(ctx, event.ID, now)
		if err != nil {
			log.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to claim live event reminder")
			continue
		}
		if !claimed {
			continue
		}

		minutes := int(event.StartsAt.Sub(now).Round(time.Minute).Minutes())
		s.broadcast(ctx, event, notification.Notice{
			Type:     entity.NotificationReminder,
			Title:    fmt.Sprintf("Starting soon: %s", event.Title),
			Message:  fmt.Sprintf("%s starts in %d minutes.", event.Title, minutes),
			Link:     fmt.Sprintf("/live/%s", event.ID),
			EntityID: &event.ID,
		})
		reminded++
	}
	return reminded, nil
}

func (s *liveEventService) announce(ctx context.Context, event *entity.LiveEvent) {
	s.broadcast(ctx, event, notification.Notice{
		Type:     entity.NotificationLiveEvent,
		Title:    fmt.Sprintf("New live session: %s", event.Title),
		Message:  fmt.Sprintf("%s hosts a live session on %s.", event.Host.Name, event.StartsAt.UTC().Format("Jan 2, 15:04 MST")),
		Link:     fmt.Sprintf("/live/%s", event.ID),
		ActorID:  &event.HostID,
		EntityID: &event.ID,
	})
}

func (s *liveEventService) broadcast(ctx context.Context, event *entity.LiveEvent, notice notification.Notice) {
	if s.notifier == nil {
		return
	}
	sent := s.notifier.Broadcast(ctx, notification.Broadcast{
		Notice:    notice,
		AllActive: true,
		ExcludeID: &event.HostID,
	})
	log.Info().
		Str("event_id", event.ID.String()).
		Str("type", notice.Type).
		Int("recipients", sent).
		Msg("live event broadcast")
}

func (s *liveEventService) findEvent(ctx context.Context, id uuid.UUID) (*entity.LiveEvent, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("live event not found")
		}
		return nil, apperror.Internal(err)
	}
	return event, nil
}

func apply(event *entity.LiveEvent, req dto.LiveEventRequest) error {
	event.Title = strings.TrimSpace(req.Title)
	event.Description = strings.TrimSpace(req.Description)
	event.StartsAt = req.StartsAt.UTC()
	event.DurationMinutes = req.DurationMinutes
	if event.DurationMinutes == 0 {
		event.DurationMinutes = defaultDuration
	}
	event.JoinURL = strings.TrimSpace(req.JoinURL)
	event.CourseID = nil
	if req.CourseID != "" {
		courseID, err := commonDto.ParseID("course_id", req.CourseID)
		if err != nil {
			return err
		}
		event.CourseID = &courseID
	}
	return nil
}

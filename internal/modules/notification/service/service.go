package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/notification/dto"
	notifRepo "viralacademy.com/academy/internal/modules/notification/repository"
	"viralacademy.com/academy/pkg/apperror"
	commonDto "viralacademy.com/academy/pkg/dto"
)

// Notice is the content of a notification, independent of its recipients.
type Notice struct {
	Type     string
	Title    string
	Message  string
	Link     string
	ActorID  *uuid.UUID
	EntityID *uuid.UUID
}

// Broadcast describes a fan-out. AllActive adds every active user to
// Recipients; ExcludeID is removed after de-duplication.
type Broadcast struct {
	Notice
	Recipients []uuid.UUID
	AllActive  bool
	ExcludeID  *uuid.UUID
}

// RecipientSource lists users eligible for broadcasts.
type RecipientSource interface {
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Notifier is the write side used by other modules. Both methods are best
// effort: failures are logged and never returned.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notice Notice)
	Broadcast(ctx context.Context, b Broadcast) int
}

type NotificationService interface {
	Notifier
	GetNotifications(ctx context.Context, identity *authz.Identity, page commonDto.PageQuery) (*dto.NotificationListResponse, error)
	MarkAsRead(ctx context.Context, identity *authz.Identity, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, identity *authz.Identity) error
	UnreadCount(ctx context.Context, identity *authz.Identity) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	recipients  RecipientSource
	redisClient *redis.Client
}

func NewNotificationService(repo notifRepo.NotificationRepository, recipients RecipientSource, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		recipients:  recipients,
		redisClient: redisClient,
	}
}

func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:%s", userID.String())
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, notice Notice) {
	if userID == uuid.Nil {
		return
	}
	if notice.ActorID != nil && *notice.ActorID == userID {
		return
	}

	n := notice.build(userID)
	if err := s.repo.Create(ctx, &n); err != nil {
		log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("type", notice.Type).
			Msg("failed to create notification")
		return
	}
	s.publish(ctx, &n)
}

func (s *notificationService) Broadcast(ctx context.Context, b Broadcast) int {
	candidates := b.Recipients
	if b.AllActive {
		ids, err := s.recipients.ListActiveIDs(ctx)
		if err != nil {
			log.Error().Err(err).Str("type", b.Type).Msg("failed to list broadcast recipients")
			return 0
		}
		candidates = append(append([]uuid.UUID{}, candidates...), ids...)
	}

	recipients := dedupe(candidates, b.ExcludeID)
	if len(recipients) == 0 {
		return 0
	}

	rows := make([]entity.Notification, 0, len(recipients))
	for _, id := range recipients {
		rows = append(rows, b.Notice.build(id))
	}

	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		log.Error().Err(err).
			Str("type", b.Type).
			Int("recipients", len(rows)).
			Msg("failed to create broadcast notifications")
		return 0
	}

	for i := range rows {
		s.publish(ctx, &rows[i])
	}
	return len(rows)
}

// dedupe keeps the first occurrence of every id and drops exclude and nil ids.
func dedupe(ids []uuid.UUID, exclude *uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if exclude != nil && id == *exclude {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (n Notice) build(userID uuid.UUID) entity.Notification {
	return entity.Notification{
		UserID:   userID,
		ActorID:  n.ActorID,
		Type:     n.Type,
		Title:    n.Title,
		Message:  n.Message,
		Link:     n.Link,
		EntityID: n.EntityID,
	}
}

func (s *notificationService) publish(ctx context.Context, n *entity.Notification) {
	if s.redisClient == nil {
		return
	}
	payload, err := json.Marshal(dto.ToNotificationResponse(n))
	if err != nil {
		return
	}
	if err := s.redisClient.Publish(ctx, Channel(n.UserID), payload).Err(); err != nil {
		log.Warn().Err(err).Str("user_id", n.UserID.String()).Msg("failed to publish notification")
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, identity *authz.Identity, page commonDto.PageQuery) (*dto.NotificationListResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	limit, offset := page.Normalize(20)
	notifications, total, err := s.repo.ListByUser(ctx, identity.ID, limit, offset)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	data := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		data = append(data, dto.ToNotificationResponse(&notifications[i]))
	}

	return &dto.NotificationListResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(page.Page, limit, total),
	}, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, identity *authz.Identity, id uuid.UUID) error {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return err
	}

	updated, err := s.repo.MarkAsRead(ctx, identity.ID, id)
	if err != nil {
		return apperror.Internal(err)
	}
	if !updated {
		return apperror.NotFound("notification not found")
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, identity *authz.Identity) error {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return err
	}
	if err := s.repo.MarkAllAsRead(ctx, identity.ID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context, identity *authz.Identity) (int64, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return 0, err
	}
	count, err := s.repo.CountUnread(ctx, identity.ID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

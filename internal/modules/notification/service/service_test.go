package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/pkg/apperror"
	commonDto "viralacademy.com/academy/pkg/dto"
)

type fakeNotificationRepo struct {
	rows      []entity.Notification
	failWrite bool
	readOK    bool
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	if f.failWrite {
		return errors.New("insert failed")
	}
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotificationRepo) CreateBatch(_ context.Context, ns []entity.Notification) error {
	if f.failWrite {
		return errors.New("insert failed")
	}
	f.rows = append(f.rows, ns...)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, int64, error) {
	var out []entity.Notification
	for _, n := range f.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotificationRepo) MarkAsRead(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return f.readOK, nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(context.Context, uuid.UUID) error { return nil }

func (f *fakeNotificationRepo) CountUnread(context.Context, uuid.UUID) (int64, error) {
	return int64(len(f.rows)), nil
}

type staticRecipients struct {
	ids []uuid.UUID
	err error
}

func (s staticRecipients) ListActiveIDs(context.Context) ([]uuid.UUID, error) {
	return s.ids, s.err
}

func makeIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestBroadcastExcludesAuthor(t *testing.T) {
	users := makeIDs(100)
	author := users[42]
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, staticRecipients{ids: users}, nil)

	created := svc.Broadcast(context.Background(), Broadcast{
		Notice:    Notice{Type: entity.NotificationAnnouncement, Title: "New course", ActorID: &author},
		AllActive: true,
		ExcludeID: &author,
	})

	assert.Equal(t, 99, created)
	require.Len(t, repo.rows, 99)

	seen := map[uuid.UUID]bool{}
	for _, n := range repo.rows {
		assert.NotEqual(t, author, n.UserID)
		assert.False(t, seen[n.UserID], "duplicate recipient %s", n.UserID)
		seen[n.UserID] = true
		assert.Equal(t, entity.NotificationAnnouncement, n.Type)
	}
}

func TestBroadcastDeduplicatesRecipients(t *testing.T) {
	users := makeIDs(3)
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, staticRecipients{ids: users}, nil)

	created := svc.Broadcast(context.Background(), Broadcast{
		Notice:     Notice{Type: entity.NotificationLiveEvent, Title: "Live Q&A"},
		Recipients: []uuid.UUID{users[0], users[0], uuid.Nil, users[1]},
		AllActive:  true,
	})

	assert.Equal(t, 3, created)
	assert.Len(t, repo.rows, 3)
}

func TestBroadcastIsBestEffort(t *testing.T) {
	t.Run("recipient lookup fails", func(t *testing.T) {
		repo := &fakeNotificationRepo{}
		svc := NewNotificationService(repo, staticRecipients{err: errors.New("db down")}, nil)

		assert.Equal(t, 0, svc.Broadcast(context.Background(), Broadcast{AllActive: true}))
		assert.Empty(t, repo.rows)
	})

	t.Run("insert fails", func(t *testing.T) {
		repo := &fakeNotificationRepo{failWrite: true}
		svc := NewNotificationService(repo, staticRecipients{ids: makeIDs(5)}, nil)

		assert.Equal(t, 0, svc.Broadcast(context.Background(), Broadcast{AllActive: true}))
	})
}

func TestNotify(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, staticRecipients{}, nil)
	actor := uuid.New()
	recipient := uuid.New()

	svc.Notify(context.Background(), recipient, Notice{Type: entity.NotificationLike, Title: "liked", ActorID: &actor})
	svc.Notify(context.Background(), actor, Notice{Type: entity.NotificationLike, Title: "self", ActorID: &actor})

	require.Len(t, repo.rows, 1)
	assert.Equal(t, recipient, repo.rows[0].UserID)
	assert.Equal(t, &actor, repo.rows[0].ActorID)

	failing := NewNotificationService(&fakeNotificationRepo{failWrite: true}, staticRecipients{}, nil)
	assert.NotPanics(t, func() {
		failing.Notify(context.Background(), recipient, Notice{Type: entity.NotificationLike})
	})
}

func TestReadSide(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, staticRecipients{}, nil)
	me := &authz.Identity{ID: uuid.New(), Role: entity.RoleStudent}

	_, err := svc.GetNotifications(context.Background(), nil, commonDto.PageQuery{})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	svc.Notify(context.Background(), me.ID, Notice{Type: entity.NotificationComment, Title: "reply"})
	list, err := svc.GetNotifications(context.Background(), me, commonDto.PageQuery{})
	require.NoError(t, err)
	assert.Len(t, list.Data, 1)
	assert.Equal(t, 1, list.Meta.CurrentPage)

	assert.ErrorIs(t, svc.MarkAsRead(context.Background(), me, uuid.New()), apperror.ErrNotFound)
	repo.readOK = true
	assert.NoError(t, svc.MarkAsRead(context.Background(), me, uuid.New()))
}

package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	views map[uuid.UUID]int64
}

func (s *countingStore) AddViews(_ context.Context, postID uuid.UUID, n int64) error {
	s.views[postID] += n
	return nil
}

func TestDisabledWithoutRedis(t *testing.T) {
	store := &countingStore{views: map[uuid.UUID]int64{}}
	svc := NewViewService(nil, store)

	assert.NotPanics(t, func() {
		svc.RecordView(context.Background(), uuid.New(), uuid.New())
	})

	synced, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, synced)
	assert.Empty(t, store.views)
}

func TestSyncJob(t *testing.T) {
	job := NewSyncJob(NewViewService(nil, &countingStore{}), "")
	assert.Equal(t, "post-view-sync", job.Name())
	assert.Equal(t, "@every 1m", job.Schedule())
	assert.NoError(t, job.Run(context.Background()))

	assert.Equal(t, "@every 5m", NewSyncJob(nil, "@every 5m").Schedule())
}

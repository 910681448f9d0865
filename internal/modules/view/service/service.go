package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	pendingKey    = "pending:post_views"
	viewerTTL     = time.Hour
	syncJobName   = "post-view-sync"
	defaultPeriod = "@every 1m"
)

// ViewStore persists flushed counters.
type ViewStore interface {
	AddViews(ctx context.Context, postID uuid.UUID, n int64) error
}

// ViewService counts post views in redis, once per viewer per hour, and
// periodically moves the counters into the database.
type ViewService interface {
	RecordView(ctx context.Context, postID, userID uuid.UUID)
	Sync(ctx context.Context) (int, error)
}

type viewService struct {
	redisClient *redis.Client
	store       ViewStore
}

// NewViewService returns a service that does nothing when redisClient is nil.
func NewViewService(redisClient *redis.Client, store ViewStore) ViewService {
	return &viewService{
		redisClient: redisClient,
		store:       store,
	}
}

func viewsKey(postID uuid.UUID) string {
	return fmt.Sprintf("post:views:%s", postID)
}

func viewerKey(postID, userID uuid.UUID) string {
	return fmt.Sprintf("post:viewer:%s:%s", postID, userID)
}

func (s *viewService) RecordView(ctx context.Context, postID, userID uuid.UUID) {
	if s.redisClient == nil {
		return
	}

	first, err := s.redisClient.SetNX(ctx, viewerKey(postID, userID), 1, viewerTTL).Result()
	if err != nil {
		log.Warn().Err(err).Str("post_id", postID.String()).Msg("failed to record view")
		return
	}
	if !first {
		return
	}

	pipe := s.redisClient.TxPipeline()
	pipe.Incr(ctx, viewsKey(postID))
	pipe.SAdd(ctx, pendingKey, postID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Str("post_id", postID.String()).Msg("failed to increment view counter")
	}
}

// Sync flushes pending counters and returns how many posts were updated.
// Counters are read with GETDEL so views recorded during a sync land in the
// next one.
func (s *viewService) Sync(ctx context.Context) (int, error) {
	if s.redisClient == nil {
		return 0, nil
	}

	ids, err := s.redisClient.SMembers(ctx, pendingKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list pending views: %w", err)
	}

	synced := 0
	for _, raw := range ids {
		if err := s.redisClient.SRem(ctx, pendingKey, raw).Err(); err != nil {
			return synced, fmt.Errorf("clear pending view: %w", err)
		}

		postID, err := uuid.Parse(raw)
		if err != nil {
			log.Warn().Str("value", raw).Msg("dropping malformed pending view")
			continue
		}

		value, err := s.redisClient.GetDel(ctx, viewsKey(postID)).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return synced, fmt.Errorf("read view counter: %w", err)
		}

		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			continue
		}

		if err := s.store.AddViews(ctx, postID, n); err != nil {
			log.Error().Err(err).Str("post_id", raw).Msg("failed to store post views")
			s.restore(ctx, postID, n)
			continue
		}
		synced++
	}
	return synced, nil
}

// restore puts n views back so the next sync retries them.
func (s *viewService) restore(ctx context.Context, postID uuid.UUID, n int64) {
	pipe := s.redisClient.TxPipeline()
	pipe.IncrBy(ctx, viewsKey(postID), n)
	pipe.SAdd(ctx, pendingKey, postID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().
			Err(err).
			Str("post_id", postID.String()).
			Int64("lost_views", n).
			Msg("failed to restore post views")
	}
}

// SyncJob runs Sync on the scheduler.
type SyncJob struct {
	service  ViewService
	schedule string
}

func NewSyncJob(service ViewService, schedule string) *SyncJob {
	if schedule == "" {
		schedule = defaultPeriod
	}
	return &SyncJob{service: service, schedule: schedule}
}

func (j *SyncJob) Name() string     { return syncJobName }
func (j *SyncJob) Schedule() string { return j.schedule }

func (j *SyncJob) Run(ctx context.Context) error {
	synced, err := j.service.Sync(ctx)
	if err != nil {
		return err
	}
	if synced > 0 {
		log.Debug().Int("posts", synced).Msg("synced post views")
	}
	return nil
}

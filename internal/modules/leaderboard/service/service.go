package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/modules/leaderboard/dto"
	leaderboardRepo "viralacademy.com/academy/internal/modules/leaderboard/repository"
	"viralacademy.com/academy/pkg/apperror"
	commonDto "viralacademy.com/academy/pkg/dto"
)

const (
	defaultLimit = 10
	week         = 7 * 24 * time.Hour
	month        = 30 * 24 * time.Hour
)

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, identity *authz.Identity, query dto.LeaderboardQuery) (*dto.LeaderboardResponse, error)
	GetMyStanding(ctx context.Context, identity *authz.Identity) (*dto.Standing, error)
}

type Config struct {
	Now func() time.Time
}

type leaderboardService struct {
	repo leaderboardRepo.LeaderboardRepository
	now  func() time.Time
}

func NewLeaderboardService(repo leaderboardRepo.LeaderboardRepository, cfg Config) LeaderboardService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &leaderboardService{repo: repo, now: cfg.Now}
}

func (s *leaderboardService) since(timeframe string) time.Time {
	switch timeframe {
	case dto.TimeframeWeekly:
		return s.now().Add(-week)
	case dto.TimeframeMonthly:
		return s.now().Add(-month)
	default:
		return time.Time{}
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, identity *authz.Identity, query dto.LeaderboardQuery) (*dto.LeaderboardResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	if query.Timeframe == "" {
		query.Timeframe = dto.TimeframeAllTime
	}
	if query.Limit <= 0 {
		query.Limit = defaultLimit
	}

	scores, err := s.repo.Top(ctx, s.since(query.Timeframe), query.Limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	ids := make([]uuid.UUID, 0, len(scores))
	for _, score := range scores {
		ids = append(ids, score.UserID)
	}

	allTime, weekly, err := s.totals(ctx, query.Timeframe, ids, scores)
	if err != nil {
		return nil, err
	}

	data := make([]dto.LeaderboardEntry, 0, len(scores))
	for i, score := range scores {
		data = append(data, dto.LeaderboardEntry{
			Position: i + 1,
			User: commonDto.AuthorResponse{
				ID:        score.UserID,
				Name:      score.Name,
				AvatarURL: score.AvatarURL,
				Role:      score.Role,
			},
			Points:   score.Points,
			Standing: Standing(allTime[score.UserID], weekly[score.UserID]),
		})
	}

	return &dto.LeaderboardResponse{
		Timeframe: query.Timeframe,
		Data:      data,
	}, nil
}

// totals returns all-time and weekly points for ids, reusing the ranked
// scores when the timeframe already is one of them.
func (s *leaderboardService) totals(ctx context.Context, timeframe string, ids []uuid.UUID, scores []leaderboardRepo.Score) (map[uuid.UUID]int64, map[uuid.UUID]int64, error) {
	ranked := make(map[uuid.UUID]int64, len(scores))
	for _, score := range scores {
		ranked[score.UserID] = score.Points
	}

	allTime := ranked
	if timeframe != dto.TimeframeAllTime {
		var err error
		if allTime, err = s.repo.Totals(ctx, ids, time.Time{}); err != nil {
			return nil, nil, apperror.Internal(err)
		}
	}

	weekly := ranked
	if timeframe != dto.TimeframeWeekly {
		var err error
		if weekly, err = s.repo.Totals(ctx, ids, s.now().Add(-week)); err != nil {
			return nil, nil, apperror.Internal(err)
		}
	}

	return allTime, weekly, nil
}

func (s *leaderboardService) GetMyStanding(ctx context.Context, identity *authz.Identity) (*dto.Standing, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	ids := []uuid.UUID{identity.ID}
	allTime, err := s.repo.Totals(ctx, ids, time.Time{})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	weekly, err := s.repo.Totals(ctx, ids, s.now().Add(-week))
	if err != nil {
		return nil, apperror.Internal(err)
	}

	standing := Standing(allTime[identity.ID], weekly[identity.ID])
	return &standing, nil
}

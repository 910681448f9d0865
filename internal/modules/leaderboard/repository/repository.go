package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Points per activity.
const (
	PointsLessonCompleted = 10
	PointsCertificate     = 50
	PointsPost            = 2
	PointsLikeReceived    = 5
)

// activitySQL yields one row per scoring event. Likes on your own post do
// not score.
const activitySQL = `
SELECT user_id, CAST(? AS integer) AS points, completed_at AS at FROM lesson_progress
UNION ALL
SELECT user_id, CAST(? AS integer), issued_at FROM certificates
UNION ALL
SELECT author_id, CAST(? AS integer), created_at FROM posts
UNION ALL
SELECT p.author_id, CAST(? AS integer), l.created_at
FROM likes l JOIN posts p ON p.id = l.post_id
WHERE l.user_id <> p.author_id`

type Score struct {
	UserID    uuid.UUID
	Name      string
	AvatarURL *string
	Role      string
	Points    int64
}

type LeaderboardRepository interface {
	// Top ranks active users by points earned since the given time.
	Top(ctx context.Context, since time.Time, limit int) ([]Score, error)
	// Totals returns points earned since the given time for each user.
	// Users without activity are absent from the map.
	Totals(ctx context.Context, userIDs []uuid.UUID, since time.Time) (map[uuid.UUID]int64, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func weights() []any {
	return []any{PointsLessonCompleted, PointsCertificate, PointsPost, PointsLikeReceived}
}

func (r *leaderboardRepository) Top(ctx context.Context, since time.Time, limit int) ([]Score, error) {
	query := `
SELECT u.id AS user_id, u.name, u.avatar_url, u.role, SUM(a.points) AS points
FROM (` + activitySQL + `) a
JOIN users u ON u.id = a.user_id
WHERE u.active AND a.at >= ?
GROUP BY u.id, u.name, u.avatar_url, u.role
ORDER BY points DESC, u.name ASC
LIMIT ?`

	var scores []Score
	args := append(weights(), since, limit)
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *leaderboardRepository) Totals(ctx context.Context, userIDs []uuid.UUID, since time.Time) (map[uuid.UUID]int64, error) {
	totals := make(map[uuid.UUID]int64, len(userIDs))
	if len(userIDs) == 0 {
		return totals, nil
	}

	query := `
SELECT a.user_id, SUM(a.points) AS points
FROM (` + activitySQL + `) a
WHERE a.user_id IN ? AND a.at >= ?
GROUP BY a.user_id`

	type row struct {
		UserID uuid.UUID
		Points int64
	}
	var rows []row
	args := append(weights(), userIDs, since)
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, item := range rows {
		totals[item.UserID] = item.Points
	}
	return totals, nil
}

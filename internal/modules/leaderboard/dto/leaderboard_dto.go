package dto

import commonDto "viralacademy.com/academy/pkg/dto"

const (
	TimeframeWeekly  = "weekly"
	TimeframeMonthly = "monthly"
	TimeframeAllTime = "all_time"
)

type LeaderboardQuery struct {
	Timeframe string `form:"timeframe" binding:"omitempty,oneof=weekly monthly all_time"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

// Standing is a learner's tier. Tier always follows all-time points;
// WeeklyLabel reflects the last seven days only.
type Standing struct {
	Tier         string  `json:"tier"`
	NextTier     string  `json:"next_tier,omitempty"`
	Points       int64   `json:"points"`
	TargetPoints int64   `json:"target_points"`
	Progress     float64 `json:"progress"`
	WeeklyPoints int64   `json:"weekly_points"`
	WeeklyLabel  string  `json:"weekly_label,omitempty"`
}

type LeaderboardEntry struct {
	Position int                      `json:"position"`
	User     commonDto.AuthorResponse `json:"user"`
	Points   int64                    `json:"points"`
	Standing Standing                 `json:"standing"`
}

type LeaderboardResponse struct {
	Timeframe string             `json:"timeframe"`
	Data      []LeaderboardEntry `json:"data"`
}

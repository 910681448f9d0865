package service

import (
	"math"

	"viralacademy.com/academy/internal/modules/leaderboard/dto"
)

type tier struct {
	name string
	min  int64
}

// Tiers are permanent: they follow all-time points and never demote.
var tiers = []tier{
	{"Newcomer", 0},
	{"Learner", 100},
	{"Achiever", 600},
	{"Expert", 3000},
	{"Master", 8000},
	{"Legend", 20000},
}

const (
	weeklyOnFire   = 100
	weeklyTrending = 50
	weeklyActive   = 20
)

// Standing places allTime on the tier ladder and labels recent activity.
// Progress is the share of the current band already covered, 0 to 100.
func Standing(allTime, weekly int64) dto.Standing {
	idx := 0
	for i, t := range tiers {
		if allTime >= t.min {
			idx = i
		}
	}

	s := dto.Standing{
		Tier:         tiers[idx].name,
		Points:       allTime,
		WeeklyPoints: weekly,
		WeeklyLabel:  weeklyLabel(weekly),
	}

	if idx == len(tiers)-1 {
		s.TargetPoints = tiers[idx].min
		s.Progress = 100
		return s
	}

	next := tiers[idx+1]
	s.NextTier = next.name
	s.TargetPoints = next.min

	band := float64(next.min - tiers[idx].min)
	done := float64(allTime - tiers[idx].min)
	s.Progress = math.Round(done/band*10000) / 100
	return s
}

func weeklyLabel(points int64) string {
	switch {
	case points >= weeklyOnFire:
		return "On Fire"
	case points >= weeklyTrending:
		return "Trending"
	case points >= weeklyActive:
		return "Active"
	default:
		return ""
	}
}

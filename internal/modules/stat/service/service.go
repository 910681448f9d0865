package service

import (
	"context"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/stat/dto"
	"viralacademy.com/academy/pkg/apperror"
)

type UserCounter interface {
	CountByRole(ctx context.Context) (map[string]int64, error)
}

type SubscriptionCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

// Counter is satisfied by both the course and the enrollment repositories.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type StatService interface {
	GetStats(ctx context.Context, identity *authz.Identity) (*dto.StatsResponse, error)
}

type statService struct {
	users         UserCounter
	subscriptions SubscriptionCounter
	courses       Counter
	enrollments   Counter
}

func NewStatService(users UserCounter, subscriptions SubscriptionCounter, courses, enrollments Counter) StatService {
	return &statService{
		users:         users,
		subscriptions: subscriptions,
		courses:       courses,
		enrollments:   enrollments,
	}
}

func (s *statService) GetStats(ctx context.Context, identity *authz.Identity) (*dto.StatsResponse, error) {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return nil, err
	}

	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	activeSubs, err := s.subscriptions.CountActive(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	courses, err := s.courses.Count(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	enrollments, err := s.enrollments.Count(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	users := dto.UserCounts{
		Students: byRole[entity.RoleStudent],
		Mentors:  byRole[entity.RoleMentor],
		Admins:   byRole[entity.RoleAdmin],
	}
	for _, n := range byRole {
		users.Total += n
	}

	return &dto.StatsResponse{
		Users:               users,
		ActiveSubscriptions: activeSubs,
		Courses:             courses,
		Enrollments:         enrollments,
	}, nil
}

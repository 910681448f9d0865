package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/admin/dto"
	notification "viralacademy.com/academy/internal/modules/notification/service"
	userDto "viralacademy.com/academy/internal/modules/user/dto"
	userRepo "viralacademy.com/academy/internal/modules/user/repository"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
	commonDto "viralacademy.com/academy/pkg/dto"
)

type AdminService interface {
	ListUsers(ctx context.Context, identity *authz.Identity, query dto.UserListQuery) (*dto.UserListResponse, error)
	CreateUser(ctx context.Context, identity *authz.Identity, input dto.CreateUserRequest) (*userDto.UserResponse, error)
	UpdateUser(ctx context.Context, identity *authz.Identity, id uuid.UUID, input dto.UpdateUserRequest) (*userDto.UserResponse, error)
	Announce(ctx context.Context, identity *authz.Identity, input dto.AnnouncementRequest) (*dto.AnnouncementResponse, error)
}

type adminService struct {
	repo     userRepo.UserRepository
	notifier notification.Notifier
}

func NewAdminService(repo userRepo.UserRepository, notifier notification.Notifier) AdminService {
	return &adminService{
		repo:     repo,
		notifier: notifier,
	}
}

func (s *adminService) ListUsers(ctx context.Context, identity *authz.Identity, query dto.UserListQuery) (*dto.UserListResponse, error) {
	if err := authz.Authorize(identity, authz.AdminOnly, nil); err != nil {
		return nil, err
	}

	limit, offset := query.Normalize(20)
	users, total, err := s.repo.List(ctx, userRepo.UserFilter{
		Search: strings.TrimSpace(query.Search),
		Role:   query.Role,
	}, limit, offset)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	data := make([]userDto.UserResponse, 0, len(users))
	for i := range users {
		data = append(data, userDto.ToUserResponse(&users[i]))
	}

	return &dto.UserListResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(query.Page, limit, total),
	}, nil
}

func (s *adminService) CreateUser(ctx context.Context, identity *authz.Identity, input dto.CreateUserRequest) (*userDto.UserResponse, error) {
	if err := authz.Authorize(identity, authz.AdminOnly, nil); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &entity.User{
		Email:        input.Email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("email already registered")
		}
		return nil, apperror.Internal(err)
	}

	log.Info().
		Str("admin_id", identity.ID.String()).
		Str("user_id", user.ID.String()).
		Str("role", user.Role).
		Msg("user created by admin")

	resp := userDto.ToUserResponse(user)
	return &resp, nil
}

func (s *adminService) UpdateUser(ctx context.Context, identity *authz.Identity, id uuid.UUID, input dto.UpdateUserRequest) (*userDto.UserResponse, error) {
	if err := authz.Authorize(identity, authz.AdminOnly, nil); err != nil {
		return nil, err
	}

	if id == identity.ID {
		if input.Role != nil && *input.Role != entity.RoleAdmin {
			return nil, apperror.Validation("you cannot change your own role")
		}
		if input.Active != nil && !*input.Active {
			return nil, apperror.Validation("you cannot deactivate your own account")
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Internal(err)
	}

	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Active != nil {
		user.Active = *input.Active
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}

	resp := userDto.ToUserResponse(user)
	return &resp, nil
}

func (s *adminService) Announce(ctx context.Context, identity *authz.Identity, input dto.AnnouncementRequest) (*dto.AnnouncementResponse, error) {
	if err := authz.Authorize(identity, authz.AdminOnly, nil); err != nil {
		return nil, err
	}

	sent := s.notifier.Broadcast(ctx, notification.Broadcast{
		Notice: notification.Notice{
			Type:    entity.NotificationAnnouncement,
			Title:   strings.TrimSpace(input.Title),
			Message: strings.TrimSpace(input.Message),
			Link:    input.Link,
			ActorID: &identity.ID,
		},
		AllActive: true,
		ExcludeID: &identity.ID,
	})

	return &dto.AnnouncementResponse{Recipients: sent}, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/user/dto"
	"viralacademy.com/academy/internal/modules/user/repository"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
	"viralacademy.com/academy/pkg/mailer"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error)
	GoogleLoginURL(state string) string
	GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
	Me(ctx context.Context, identity *authz.Identity) (*dto.UserResponse, error)
}

type Config struct {
	Secret             string
	TokenTTL           time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type authService struct {
	repo         repository.UserRepository
	mailer       mailer.Mailer
	secret       string
	tokenTTL     time.Duration
	googleConfig *oauth2.Config
}

func NewAuthService(repo repository.UserRepository, m mailer.Mailer, cfg Config) AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &authService{
		repo:     repo,
		mailer:   m,
		secret:   cfg.Secret,
		tokenTTL: ttl,
		googleConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterRequest) (*dto.AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &entity.User{
		Email:        input.Email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: string(hashed),
		Role:         entity.RoleStudent,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("an account with this email already exists")
		}
		return nil, apperror.Internal(err)
	}

	s.sendWelcome(ctx, user)

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.Unauthenticated("invalid credentials")
		}
		return nil, apperror.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.Unauthenticated("invalid credentials")
	}
	if !user.Active {
		return nil, apperror.Forbidden("this account has been deactivated")
	}

	return s.buildAuthResponse(user)
}

func (s *authService) GoogleLoginURL(state string) string {
	return s.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.Unauthenticated("google sign-in failed")
	}

	client := s.googleConfig.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("fetch google user info: %w", err))
	}
	defer resp.Body.Close()

	var gu googleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, apperror.Internal(fmt.Errorf("decode google user info: %w", err))
	}
	if gu.Email == "" || !gu.VerifiedEmail {
		return nil, apperror.Forbidden("google account email is not verified")
	}

	user, err := s.repo.FindByEmail(ctx, gu.Email)
	switch {
	case err == nil:
		if !user.Active {
			return nil, apperror.Forbidden("this account has been deactivated")
		}
		if user.GoogleID == nil || *user.GoogleID != gu.ID {
			user.GoogleID = &gu.ID
			if err := s.repo.Update(ctx, user); err != nil {
				log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to link google account")
			}
		}
	case database.IsNotFound(err):
		user, err = s.createGoogleUser(ctx, gu)
		if err != nil {
			return nil, err
		}
	default:
		return nil, apperror.Internal(err)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) createGoogleUser(ctx context.Context, gu googleUser) (*entity.User, error) {
	// Password login stays unusable until the user sets one.
	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	name := gu.Name
	if name == "" {
		name = strings.Split(gu.Email, "@")[0]
	}

	user := &entity.User{
		Email:        gu.Email,
		Name:         name,
		PasswordHash: string(hashed),
		Role:         entity.RoleStudent,
		Active:       true,
		GoogleID:     &gu.ID,
	}
	if gu.Picture != "" {
		user.AvatarURL = &gu.Picture
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("an account with this email already exists")
		}
		return nil, apperror.Internal(err)
	}

	s.sendWelcome(ctx, user)
	return user, nil
}

func (s *authService) Me(ctx context.Context, identity *authz.Identity) (*dto.UserResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, identity.ID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Internal(err)
	}

	resp := dto.ToUserResponse(user)
	return &resp, nil
}

func (s *authService) sendWelcome(ctx context.Context, user *entity.User) {
	if s.mailer == nil {
		return
	}
	msg, err := mailer.Welcome(mailer.WelcomeData{Name: user.Name})
	if err == nil {
		err = s.mailer.SendEmail(ctx, user.Email, msg.Subject, msg.HTML, msg.Text)
	}
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to send welcome email")
	}
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        dto.ToUserResponse(user),
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	if s.secret == "" {
		return "", 0, errors.New("jwt secret is not configured")
	}
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}
	return signed, expiresAt.Unix(), nil
}

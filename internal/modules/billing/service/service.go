package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/billing/dto"
	"viralacademy.com/academy/internal/modules/billing/provider"
	billingRepo "viralacademy.com/academy/internal/modules/billing/repository"
	notification "viralacademy.com/academy/internal/modules/notification/service"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
)

type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type BillingService interface {
	Checkout(ctx context.Context, identity *authz.Identity) (*dto.URLResponse, error)
	Portal(ctx context.Context, identity *authz.Identity) (*dto.URLResponse, error)
	GetSubscription(ctx context.Context, identity *authz.Identity) (*dto.SubscriptionResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	// IsActive is the enrollment gate.
	IsActive(ctx context.Context, userID uuid.UUID) (bool, error)
}

type Config struct {
	PriceID         string
	SuccessURL      string
	CancelURL       string
	PortalReturnURL string
}

type billingService struct {
	repo     billingRepo.SubscriptionRepository
	provider provider.Provider
	users    UserLookup
	notifier notification.Notifier
	cfg      Config
}

func NewBillingService(repo billingRepo.SubscriptionRepository, p provider.Provider, users UserLookup, notifier notification.Notifier, cfg Config) BillingService {
	return &billingService{
		repo:     repo,
		provider: p,
		users:    users,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *billingService) Checkout(ctx context.Context, identity *authz.Identity) (*dto.URLResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	sub, err := s.findByUser(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if sub.IsActive() {
		return nil, apperror.Conflict("your subscription is already active")
	}

	customerID, err := s.ensureCustomer(ctx, identity.ID, sub)
	if err != nil {
		return nil, err
	}

	url, err := s.provider.CreateCheckoutSession(ctx, provider.CheckoutInput{
		UserID:     identity.ID,
		CustomerID: customerID,
		PriceID:    s.cfg.PriceID,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &dto.URLResponse{URL: url}, nil
}

// ensureCustomer creates the processor customer once and records it on the
// local subscription, creating that row as INCOMPLETE when needed.
func (s *billingService) ensureCustomer(ctx context.Context, userID uuid.UUID, sub *entity.Subscription) (string, error) {
	if sub != nil && sub.StripeCustomerID != nil && *sub.StripeCustomerID != "" {
		return *sub.StripeCustomerID, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if database.IsNotFound(err) {
			return "", apperror.NotFound("user not found")
		}
		return "", apperror.Internal(err)
	}

	customerID, err := s.provider.CreateCustomer(ctx, provider.CustomerInput{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if err != nil {
		return "", apperror.Internal(err)
	}

	if sub == nil {
		sub = &entity.Subscription{
			UserID:           userID,
			Status:           entity.SubscriptionIncomplete,
			StripeCustomerID: &customerID,
		}
		if err := s.repo.Create(ctx, sub); err != nil {
			if database.IsUniqueViolation(err) {
				return "", apperror.Conflict("a checkout is already in progress")
			}
			return "", apperror.Internal(err)
		}
		return customerID, nil
	}

	sub.StripeCustomerID = &customerID
	if err := s.repo.Update(ctx, sub); err != nil {
		return "", apperror.Internal(err)
	}
	return customerID, nil
}

func (s *billingService) Portal(ctx context.Context, identity *authz.Identity) (*dto.URLResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	sub, err := s.findByUser(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.StripeCustomerID == nil || *sub.StripeCustomerID == "" {
		return nil, apperror.NotFound("no billing account found")
	}

	url, err := s.provider.CreatePortalSession(ctx, *sub.StripeCustomerID, s.cfg.PortalReturnURL)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &dto.URLResponse{URL: url}, nil
}

func (s *billingService) GetSubscription(ctx context.Context, identity *authz.Identity) (*dto.SubscriptionResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	sub, err := s.findByUser(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToSubscriptionResponse(sub)
	return &resp, nil
}

// HandleWebhook applies a subscription lifecycle event. Events for customers
// we do not know are logged and acknowledged so the processor stops retrying.
func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, provider.ErrInvalidSignature) {
			return apperror.Validation("invalid webhook signature")
		}
		return apperror.Internal(err)
	}
	if event.Ignored {
		log.Debug().Str("type", event.Type).Msg("ignoring billing event")
		return nil
	}

	sub, err := s.repo.FindByCustomerID(ctx, event.CustomerID)
	if err != nil {
		if database.IsNotFound(err) {
			log.Warn().
				Str("customer_id", event.CustomerID).
				Str("type", event.Type).
				Msg("billing event for unknown customer")
			return nil
		}
		return apperror.Internal(err)
	}

	wasActive := sub.IsActive()

	sub.Status = event.Status
	if event.SubscriptionID != "" {
		sub.StripeSubscriptionID = &event.SubscriptionID
	}
	if event.PriceID != "" {
		sub.PriceID = event.PriceID
	}
	sub.CurrentPeriodEnd = event.CurrentPeriodEnd
	sub.CancelAtPeriodEnd = event.CancelAtPeriodEnd

	if err := s.repo.Update(ctx, sub); err != nil {
		return apperror.Internal(err)
	}

	log.Info().
		Str("user_id", sub.UserID.String()).
		Str("status", sub.Status).
		Str("type", event.Type).
		Msg("subscription updated")

	if !wasActive && sub.IsActive() && s.notifier != nil {
		s.notifier.Notify(ctx, sub.UserID, notification.Notice{
			Type:    entity.NotificationSubscription,
			Title:   "Subscription active",
			Message: "Your subscription is active. Every course is now unlocked.",
			Link:    "/courses",
		})
	}
	return nil
}

func (s *billingService) IsActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	sub, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if database.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return sub.IsActive(), nil
}

// findByUser returns nil without error when the user has no subscription row.
func (s *billingService) findByUser(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error) {
	sub, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, apperror.Internal(err)
	}
	return sub, nil
}

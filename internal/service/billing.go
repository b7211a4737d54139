package service

import (
	"context"

	"github.com/rentstack/rentstack/internal/api/dto"
	"github.com/rentstack/rentstack/internal/domain/business"
	"github.com/rentstack/rentstack/internal/gateway"
	"github.com/rentstack/rentstack/internal/types"
)

// BillingService drives subscription and payment method transitions end to
// end: load the business, run the transition, persist the patch, then fire
// the notifications the transition produced. Notifications fire only after
// the write succeeds.
type BillingService interface {
	PreviewUserCountChange(ctx context.Context, businessID string, targetUserCount int) (*gateway.ProrationQuote, error)
	ChangeTier(ctx context.Context, businessID string, target types.SubscriptionTier, actor types.Actor) (*dto.BusinessResponse, error)
	ChangeBillingInterval(ctx context.Context, businessID string, target types.BillingInterval, actor types.Actor) (*dto.BusinessResponse, error)
	ChangeUserCount(ctx context.Context, businessID string, target int) (*dto.BusinessResponse, error)
	SetStorefrontIncluded(ctx context.Context, businessID string, included bool, actor types.Actor) (*dto.BusinessResponse, error)
	RequestDowngrade(ctx context.Context, businessID string, target types.SubscriptionTier, actor types.Actor) (*dto.BusinessResponse, error)
	RequestCancellation(ctx context.Context, businessID string, actor types.Actor) (*dto.BusinessResponse, error)
	SaveCreditCard(ctx context.Context, businessID string, req dto.SaveCreditCardRequest, actor types.Actor) (*dto.BusinessResponse, error)
	SaveBankAccount(ctx context.Context, businessID string, req dto.SaveBankAccountRequest, actor types.Actor) (*dto.BusinessResponse, error)
	Reactivate(ctx context.Context, businessID string, req dto.SaveCreditCardRequest, actor types.Actor) (*dto.BusinessResponse, error)
}

type billingService struct {
	ServiceParams
	subscriptions  SubscriptionService
	paymentMethods PaymentMethodService
}

// NewBillingService creates the billing orchestration service
func NewBillingService(params ServiceParams, subscriptions SubscriptionService, paymentMethods PaymentMethodService) BillingService {
	return &billingService{
		ServiceParams:  params,
		subscriptions:  subscriptions,
		paymentMethods: paymentMethods,
	}
}

// commit applies the transition to the snapshot, persists it and fires the
// transition's notifications. A zero patch short circuits: nothing is
// written and nothing fires.
func (s *billingService) commit(ctx context.Context, biz *business.Business, result *TransitionResult) (*dto.BusinessResponse, error) {
	if result.Patch.IsZero() {
		return dto.NewBusinessResponse(biz), nil
	}

	next := result.Patch.Apply(biz)
	if err := s.BusinessRepo.Update(ctx, next); err != nil {
		return nil, err
	}

	if result.BillingNote != "" {
		s.Logger.Infow("billing transition applied",
			"business_id", next.ID,
			"note", result.BillingNote,
		)
	}

	for _, n := range result.Notifications {
		s.EventPublisher.Publish(ctx, n.Name, next.ID, n.Payload)
	}

	return dto.NewBusinessResponse(next), nil
}

func (s *billingService) PreviewUserCountChange(ctx context.Context, businessID string, targetUserCount int) (*gateway.ProrationQuote, error) {
	biz, err := s.BusinessRepo.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return s.subscriptions.PreviewUserCountChange(ctx, biz, targetUserCount)
}

func (s *billingService) ChangeTier(ctx context.Context, businessID string, target types.SubscriptionTier, actor types.Actor) (*dto.BusinessResponse, error) {
	biz, err := s.BusinessRepo.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	result, err := s.subscriptions.ChangeTier(ctx, biz, target, actor)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, biz, result)
}

func (s *billingService) ChangeBillingInterval(ctx context.Context, businessID string, target types.BillingInterval, actor types.Actor) (*dto.BusinessResponse, error) {
	biz, err := s.BusinessRepo.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	result, err := s.subscriptions.ChangeBillingInterval(ctx, biz, target, actor)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, biz, result)
}

func (s *billingService) ChangeUserCount(ctx context.Context, businessID string, target int) (*dto.BusinessResponse, error) {
	biz, err := s.BusinessRepo.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	result, err := s.subscriptions.ChangeUserCount(ctx, biz, target)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, biz, result)
}

func (s *billingService) SetStorefrontIncluded(ctx context.Context, businessID string, included bool, actor types.Actor) (*dto.BusinessResponse, error) {
	biz, err := s.BusinessRepo.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	result, err := s.subscriptions.SetStorefrontIncluded(ctx, biz, included, actor)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, biz, result)
}

func (s *billingService) RequestDowngrade(ctx context.Context, businessID string, target types.SubscriptionTier, actor types.Actor) (*dto.BusinessResponse, error) {
	biz, err := s.BusinessRepo.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	result, err := s.subscriptions.RequestDowngrade(ctx, biz, target, actor)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, biz, result)
}

func (s *billingService) RequestCancellation(ctx context.Context, businessID string, actor types.Actor) (*dto.BusinessResponse, error) {
	biz, err := s.BusinessRepo.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	result, err := s.subscriptions.RequestCancellation(ctx, biz, actor)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, biz, result)
}

func (s *billingService) SaveCreditCard(ctx context.Context, businessID string, req dto.SaveCreditCardRequest, actor types.Actor) (*dto.BusinessResponse, error) {
	biz, err := s.BusinessRepo.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	result, err := s.paymentMethods.SaveCreditCard(ctx, biz, req.ToCardInput(), actor)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, biz, result)
}

func (s *billingService) SaveBankAccount(ctx context.Context, businessID string, req dto.SaveBankAccountRequest, actor types.Actor) (*dto.BusinessResponse, error) {
	biz, err := s.BusinessRepo.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	result, err := s.paymentMethods.SaveBankAccount(ctx, biz, req.Token, req.AccountID, actor)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, biz, result)
}

// Reactivate brings a deactivated business back: a fresh card is stored,
// pending cancellation intent is cleared and the business goes active again.
func (s *billingService) Reactivate(ctx context.Context, businessID string, req dto.SaveCreditCardRequest, actor types.Actor) (*dto.BusinessResponse, error) {
	biz, err := s.BusinessRepo.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}

	result, err := s.paymentMethods.SaveCreditCard(ctx, biz, req.ToCardInput(), actor)
	if err != nil {
		return nil, err
	}

	active := types.BusinessStatusActive
	result.Patch.Status = &active
	result.Patch.ClearCancellation = true
	result.BillingNote = "Reactivated Account."
	result.Notifications = append(result.Notifications, changeHistory("Reactivated Account.", actor))

	return s.commit(ctx, biz, result)
}

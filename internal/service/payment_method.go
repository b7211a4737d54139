package service

import (
	"context"
	"fmt"

	"github.com/rentstack/rentstack/internal/domain/business"
	"github.com/rentstack/rentstack/internal/domain/payment"
	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/rentstack/rentstack/internal/gateway"
	"github.com/rentstack/rentstack/internal/types"
)

// PaymentMethodService manages the stored funding sources for a business.
// Like the subscription service it returns patches instead of writing: the
// caller persists the business and fires the notifications.
type PaymentMethodService interface {
	SaveCreditCard(ctx context.Context, biz *business.Business, card payment.CardInput, actor types.Actor) (*TransitionResult, error)
	SaveBankAccount(ctx context.Context, biz *business.Business, linkToken, accountID string, actor types.Actor) (*TransitionResult, error)
}

type paymentMethodService struct {
	ServiceParams
}

// NewPaymentMethodService creates the payment method service
func NewPaymentMethodService(params ServiceParams) PaymentMethodService {
	return &paymentMethodService{ServiceParams: params}
}

func (s *paymentMethodService) requireCustomer(biz *business.Business) error {
	if biz.HasGatewayCustomer() {
		return nil
	}
	return ierr.NewError("business has no payment gateway customer").
		WithHint("The business is not registered with the payment gateway yet.").
		WithReportableDetails(map[string]any{
			"business_id": biz.ID,
		}).
		Mark(ierr.ErrGatewayNotConfigured)
}

// SaveCreditCard tokenizes and stores a card as the default funding source.
// When the business already holds a card the stored one is replaced in place.
// The first funding source a business ever gains also starts its recurring
// subscription.
func (s *paymentMethodService) SaveCreditCard(ctx context.Context, biz *business.Business, card payment.CardInput, actor types.Actor) (*TransitionResult, error) {
	if err := card.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireCustomer(biz); err != nil {
		return nil, err
	}

	customer, err := s.Gateway.RetrieveCustomer(ctx, biz.GatewayCustomerToken)
	if err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "save_credit_card", err)
		return nil, err
	}

	cardToken, err := s.Gateway.CreateCardToken(ctx, card)
	if err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "save_credit_card", err)
		return nil, err
	}

	var source *gateway.Source
	if biz.HasCreditCard() {
		source, err = s.Gateway.ReplaceCardSource(ctx, customer, cardToken)
	} else {
		source, err = s.Gateway.AttachCardSource(ctx, customer, cardToken)
	}
	if err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "save_credit_card", err)
		return nil, err
	}

	note := fmt.Sprintf("Added credit card ending in %s", source.Last4)
	if biz.HasCreditCard() {
		note = fmt.Sprintf("Updated credit card ending in %s", source.Last4)
	}

	patch := business.Patch{
		CreditCard: &payment.CreditCard{
			Token:    source.ID,
			Last4:    source.Last4,
			CardType: source.Brand,
			ExpMonth: source.ExpMonth,
			ExpYear:  source.ExpYear,
		},
	}

	if !biz.HasPaymentSource() {
		sub, err := s.startSubscription(ctx, biz, customer)
		if err != nil {
			return nil, err
		}
		patch.GatewaySubscriptionToken = &sub.ID
	}

	return &TransitionResult{
		Patch:       patch,
		BillingNote: note,
		Notifications: []Notification{
			changeHistory(note, actor),
		},
	}, nil
}

// SaveBankAccount resolves a bank link token into account details and stores
// the bank account as a funding source. An account the gateway has already
// seen, identified by fingerprint, is reused rather than attached twice.
func (s *paymentMethodService) SaveBankAccount(ctx context.Context, biz *business.Business, linkToken, accountID string, actor types.Actor) (*TransitionResult, error) {
	if linkToken == "" || accountID == "" {
		return nil, ierr.NewError("bank link token and account id are required").
			WithHint("Complete the bank linking flow before saving the account.").
			Mark(ierr.ErrValidation)
	}
	if err := s.requireCustomer(biz); err != nil {
		return nil, err
	}

	details, err := s.BankLinks.ResolveBankAccount(ctx, linkToken, accountID)
	if err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "save_bank_account", err)
		return nil, err
	}

	customer, err := s.Gateway.RetrieveCustomer(ctx, biz.GatewayCustomerToken)
	if err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "save_bank_account", err)
		return nil, err
	}

	created, err := s.Gateway.CreateBankSource(ctx, *details)
	if err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "save_bank_account", err)
		return nil, err
	}

	source, err := s.Gateway.FindBankSource(ctx, customer, created.Fingerprint)
	if ierr.IsNotFound(err) {
		source, err = s.Gateway.AttachBankSource(ctx, customer, created.ID)
	}
	if err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "save_bank_account", err)
		return nil, err
	}

	note := fmt.Sprintf("Added bank account %s %s", source.BankName, source.Last4)

	patch := business.Patch{
		BankAccount: &payment.BankAccount{
			Token:       source.ID,
			Fingerprint: source.Fingerprint,
			Name:        fmt.Sprintf("%s %s", source.BankName, source.Last4),
		},
	}

	if !biz.HasPaymentSource() {
		sub, err := s.startSubscription(ctx, biz, customer)
		if err != nil {
			return nil, err
		}
		patch.GatewaySubscriptionToken = &sub.ID
	}

	return &TransitionResult{
		Patch:       patch,
		BillingNote: note,
		Notifications: []Notification{
			changeHistory(note, actor),
		},
	}, nil
}

func (s *paymentMethodService) startSubscription(ctx context.Context, biz *business.Business, customer *gateway.Customer) (*gateway.Subscription, error) {
	def, err := s.TierCatalog.Lookup(biz.SubscriptionTier)
	if err != nil {
		return nil, err
	}

	plan := gateway.PlanContext{
		BusinessID:         biz.ID,
		Tier:               biz.SubscriptionTier,
		Interval:           biz.BillingInterval,
		UserCount:          biz.AvailableUserCount,
		Amount:             def.Amount(biz.BillingInterval, biz.AvailableUserCount),
		StorefrontIncluded: biz.StorefrontIncluded,
	}

	sub, err := s.Gateway.CreateSubscription(ctx, customer, plan)
	if err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "create_subscription", err)
		return nil, err
	}
	return sub, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rentstack/rentstack/internal/domain/business"
	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/rentstack/rentstack/internal/gateway"
	"github.com/rentstack/rentstack/internal/types"
)

// SubscriptionService computes subscription transitions. Methods never write
// to the store: they validate, call the payment gateway where the transition
// requires it and return a patch the caller persists.
type SubscriptionService interface {
	PreviewUserCountChange(ctx context.Context, biz *business.Business, targetUserCount int) (*gateway.ProrationQuote, error)
	ChangeTier(ctx context.Context, biz *business.Business, target types.SubscriptionTier, actor types.Actor) (*TransitionResult, error)
	ChangeBillingInterval(ctx context.Context, biz *business.Business, target types.BillingInterval, actor types.Actor) (*TransitionResult, error)
	ChangeUserCount(ctx context.Context, biz *business.Business, target int) (*TransitionResult, error)
	SetStorefrontIncluded(ctx context.Context, biz *business.Business, included bool, actor types.Actor) (*TransitionResult, error)
	RequestDowngrade(ctx context.Context, biz *business.Business, target types.SubscriptionTier, actor types.Actor) (*TransitionResult, error)
	RequestCancellation(ctx context.Context, biz *business.Business, actor types.Actor) (*TransitionResult, error)
}

type subscriptionService struct {
	ServiceParams
}

// NewSubscriptionService creates the subscription transition service
func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

// planFor builds the gateway plan context for the business at the given tier,
// interval and seat count.
func (s *subscriptionService) planFor(biz *business.Business, tierID types.SubscriptionTier, interval types.BillingInterval, userCount int) (gateway.PlanContext, error) {
	def, err := s.TierCatalog.Lookup(tierID)
	if err != nil {
		return gateway.PlanContext{}, err
	}

	return gateway.PlanContext{
		BusinessID:         biz.ID,
		Tier:               tierID,
		Interval:           interval,
		UserCount:          userCount,
		Amount:             def.Amount(interval, userCount),
		StorefrontIncluded: biz.StorefrontIncluded,
	}, nil
}

func (s *subscriptionService) requireGateway(biz *business.Business) error {
	if biz.HasGatewayCustomer() && biz.GatewaySubscriptionToken != "" {
		return nil
	}
	return ierr.NewError("business has no active payment gateway subscription").
		WithHint("Add a payment method before changing the subscription.").
		WithReportableDetails(map[string]any{
			"business_id": biz.ID,
		}).
		Mark(ierr.ErrGatewayNotConfigured)
}

func (s *subscriptionService) PreviewUserCountChange(ctx context.Context, biz *business.Business, targetUserCount int) (*gateway.ProrationQuote, error) {
	if targetUserCount < 0 {
		return nil, ierr.NewError("user count must not be negative").
			WithHint("Provide a seat count of zero or more.").
			Mark(ierr.ErrValidation)
	}
	if err := s.requireGateway(biz); err != nil {
		return nil, err
	}

	plan, err := s.planFor(biz, biz.SubscriptionTier, biz.BillingInterval, targetUserCount)
	if err != nil {
		return nil, err
	}

	customer, err := s.Gateway.RetrieveCustomer(ctx, biz.GatewayCustomerToken)
	if err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "preview_user_count_change", err)
		return nil, err
	}

	quote, err := s.Gateway.PreviewProration(ctx, customer, biz.GatewaySubscriptionToken, plan)
	if err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "preview_user_count_change", err)
		return nil, err
	}
	return quote, nil
}

func (s *subscriptionService) ChangeTier(ctx context.Context, biz *business.Business, target types.SubscriptionTier, actor types.Actor) (*TransitionResult, error) {
	targetDef, err := s.TierCatalog.Lookup(target)
	if err != nil {
		return nil, err
	}

	// The eligibility gate runs before any gateway traffic so an ineligible
	// request costs nothing and changes nothing.
	if target != biz.SubscriptionTier && biz.MultiLocation() && !targetDef.MultilocationEligible {
		return nil, ierr.NewError("subscription tier does not support multiple locations").
			WithHint(fmt.Sprintf("The %s plan is limited to a single location. Choose a plan that supports multiple locations.", target.Display())).
			WithReportableDetails(map[string]any{
				"business_id":    biz.ID,
				"location_count": biz.LocationCount,
				"target_tier":    target,
			}).
			Mark(ierr.ErrMultilocationIneligible)
	}

	if err := s.requireGateway(biz); err != nil {
		return nil, err
	}

	// Leaving the custom tier collapses the negotiated seat allowance down
	// to the seats actually in use, so the business is not billed for seats
	// it only held under the custom contract.
	userCount := biz.AvailableUserCount
	carrySeats := false
	if biz.SubscriptionTier == types.TierCustom && target != types.TierCustom {
		userCount = biz.PaidEmployeesCount
		carrySeats = true
	}

	plan, err := s.planFor(biz, target, biz.BillingInterval, userCount)
	if err != nil {
		return nil, err
	}

	note := fmt.Sprintf("Upgraded from %s to %s", biz.SubscriptionTier.Display(), target.Display())

	customer, err := s.Gateway.RetrieveCustomer(ctx, biz.GatewayCustomerToken)
	if err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "change_tier", err)
		return nil, err
	}
	if _, err := s.Gateway.UpdateSubscription(ctx, customer, biz.GatewaySubscriptionToken, plan, note, true); err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "change_tier", err)
		return nil, err
	}

	patch := business.Patch{
		SubscriptionTier:      &target,
		ClearDowngradeRequest: true,
	}
	if carrySeats {
		patch.AvailableUserCount = &userCount
	}

	return &TransitionResult{
		Patch:       patch,
		BillingNote: note,
		Notifications: []Notification{
			{
				Name: types.EventSubscriptionUpgraded,
				Payload: map[string]any{
					"previous_tier": biz.SubscriptionTier,
					"new_tier":      target,
					"employee_id":   actor.EmployeeID,
					"employee_name": actor.Name,
				},
			},
			changeHistory(note, actor),
		},
	}, nil
}

func (s *subscriptionService) ChangeBillingInterval(ctx context.Context, biz *business.Business, target types.BillingInterval, actor types.Actor) (*TransitionResult, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireGateway(biz); err != nil {
		return nil, err
	}

	plan, err := s.planFor(biz, biz.SubscriptionTier, target, biz.AvailableUserCount)
	if err != nil {
		return nil, err
	}

	note := fmt.Sprintf("Changed billing cycle from %s to %s", biz.BillingInterval, target)

	customer, err := s.Gateway.RetrieveCustomer(ctx, biz.GatewayCustomerToken)
	if err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "change_billing_interval", err)
		return nil, err
	}
	if _, err := s.Gateway.UpdateSubscription(ctx, customer, biz.GatewaySubscriptionToken, plan, note, true); err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "change_billing_interval", err)
		return nil, err
	}

	return &TransitionResult{
		Patch: business.Patch{
			BillingInterval:       &target,
			ClearDowngradeRequest: true,
		},
		BillingNote: note,
		Notifications: []Notification{
			changeHistory(note, actor),
		},
	}, nil
}

func (s *subscriptionService) ChangeUserCount(ctx context.Context, biz *business.Business, target int) (*TransitionResult, error) {
	if target < 0 {
		return nil, ierr.NewError("user count must not be negative").
			WithHint("Provide a seat count of zero or more.").
			Mark(ierr.ErrValidation)
	}
	if err := s.requireGateway(biz); err != nil {
		return nil, err
	}

	plan, err := s.planFor(biz, biz.SubscriptionTier, biz.BillingInterval, target)
	if err != nil {
		return nil, err
	}

	customer, err := s.Gateway.RetrieveCustomer(ctx, biz.GatewayCustomerToken)
	if err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "change_user_count", err)
		return nil, err
	}
	// Seat count changes carry no billing note.
	if _, err := s.Gateway.UpdateSubscription(ctx, customer, biz.GatewaySubscriptionToken, plan, "", true); err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "change_user_count", err)
		return nil, err
	}

	return &TransitionResult{
		Patch: business.Patch{
			AvailableUserCount:    &target,
			ClearDowngradeRequest: true,
		},
	}, nil
}

func (s *subscriptionService) SetStorefrontIncluded(ctx context.Context, biz *business.Business, included bool, actor types.Actor) (*TransitionResult, error) {
	if err := s.requireGateway(biz); err != nil {
		return nil, err
	}

	note := "Enabled Storefront+"
	if !included {
		note = "Disabled Storefront+"
	}

	// The add-on is priced into the gateway plan metadata rather than the
	// amount, so the subscription update carries the flag without proration.
	withFlag := *biz
	withFlag.StorefrontIncluded = included

	plan, err := s.planFor(&withFlag, biz.SubscriptionTier, biz.BillingInterval, biz.AvailableUserCount)
	if err != nil {
		return nil, err
	}

	customer, err := s.Gateway.RetrieveCustomer(ctx, biz.GatewayCustomerToken)
	if err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "set_storefront", err)
		return nil, err
	}
	if _, err := s.Gateway.UpdateSubscription(ctx, customer, biz.GatewaySubscriptionToken, plan, note, false); err != nil {
		s.reportGatewayIncident(ctx, biz.ID, "set_storefront", err)
		return nil, err
	}

	return &TransitionResult{
		Patch: business.Patch{
			StorefrontIncluded: &included,
		},
		BillingNote: note,
		Notifications: []Notification{
			changeHistory(note, actor),
		},
	}, nil
}

// RequestDowngrade records downgrade intent. No gateway call is made and the
// current tier keeps billing until the downgrade is applied out of band.
func (s *subscriptionService) RequestDowngrade(ctx context.Context, biz *business.Business, target types.SubscriptionTier, actor types.Actor) (*TransitionResult, error) {
	if _, err := s.TierCatalog.Lookup(target); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := fmt.Sprintf("Requested downgrade from %s to %s.", biz.SubscriptionTier.Display(), target.Display())

	return &TransitionResult{
		Patch: business.Patch{
			DowngradeRequestedAt: &now,
		},
		BillingNote: note,
		Notifications: []Notification{
			{
				Name: types.EventDowngradeRequested,
				Payload: map[string]any{
					"current_tier":  biz.SubscriptionTier,
					"target_tier":   target,
					"employee_id":   actor.EmployeeID,
					"employee_name": actor.Name,
				},
			},
			changeHistory(note, actor),
		},
	}, nil
}

// RequestCancellation records cancellation intent. Repeat requests return the
// business unchanged and fire no notifications, so the two cancellation
// emails go out exactly once no matter how often the endpoint is hit.
func (s *subscriptionService) RequestCancellation(ctx context.Context, biz *business.Business, actor types.Actor) (*TransitionResult, error) {
	if biz.CancellationRequestedAt != nil {
		return &TransitionResult{}, nil
	}

	now := time.Now().UTC()
	note := "Customer requested cancellation"

	return &TransitionResult{
		Patch: business.Patch{
			CancellationRequestedAt: &now,
		},
		BillingNote: note,
		Notifications: []Notification{
			{
				Name: types.EventCancellationRequested,
				Payload: map[string]any{
					"business_name": biz.Name,
					"email":         biz.Email,
				},
			},
			{
				Name: types.EventCancellationReceived,
				Payload: map[string]any{
					"business_id":   biz.ID,
					"business_name": biz.Name,
					"employee_id":   actor.EmployeeID,
					"employee_name": actor.Name,
				},
			},
			changeHistory(note, actor),
		},
	}, nil
}

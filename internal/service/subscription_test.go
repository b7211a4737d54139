package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rentstack/rentstack/internal/domain/business"
	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/rentstack/rentstack/internal/testutil"
	"github.com/rentstack/rentstack/internal/types"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriptionService
	billing BillingService
	actor   types.Actor
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		TierCatalog:    s.GetCatalog(),
		BusinessRepo:   s.GetStores().BusinessRepo,
		Gateway:        s.GetGateway(),
		BankLinks:      s.GetBankLinks(),
		EventPublisher: s.GetPublisher(),
	}
	s.service = NewSubscriptionService(params)
	s.billing = NewBillingService(params, s.service, NewPaymentMethodService(params))
	s.actor = types.Actor{EmployeeID: "emp_test", Name: "Pat Tester"}
}

func (s *SubscriptionServiceSuite) seedBusiness(mutate func(*business.Business)) *business.Business {
	biz := &business.Business{
		ID:                       "bus_01",
		Name:                     "Hilltop Rentals",
		Email:                    "owner@hilltop.test",
		Status:                   types.BusinessStatusActive,
		SubscriptionTier:         types.TierLite,
		BillingInterval:          types.BillingIntervalMonthly,
		AvailableUserCount:       5,
		PaidEmployeesCount:       3,
		LocationCount:            1,
		GatewayCustomerToken:     "cus_01",
		GatewaySubscriptionToken: "sub_01",
		Version:                  1,
		CreatedAt:                s.GetNow(),
		UpdatedAt:                s.GetNow(),
	}
	if mutate != nil {
		mutate(biz)
	}
	s.GetStores().BusinessRepo.(*testutil.InMemoryBusinessStore).Seed(biz)
	return biz
}

func (s *SubscriptionServiceSuite) TestChangeTierUpgradesThroughGateway() {
	s.seedBusiness(nil)

	resp, err := s.billing.ChangeTier(s.GetContext(), "bus_01", types.TierStandard, s.actor)
	s.NoError(err)
	s.Equal(types.TierStandard, resp.SubscriptionTier)

	s.Equal(1, s.GetGateway().Calls("update_subscription"))
	s.Equal("Upgraded from Lite to Standard", s.GetGateway().LastNote)
	s.True(s.GetGateway().LastProrate)

	stored, err := s.GetStores().BusinessRepo.Get(s.GetContext(), "bus_01")
	s.NoError(err)
	s.Equal(types.TierStandard, stored.SubscriptionTier)

	upgrades := s.GetPublisher().EventsNamed(types.EventSubscriptionUpgraded)
	s.Len(upgrades, 1)
	s.Equal("Pat Tester", upgrades[0].Payload["employee_name"])

	history := s.GetPublisher().EventsNamed(types.EventChangeHistory)
	s.Len(history, 1)
	s.Equal("Upgraded from Lite to Standard", history[0].Payload["message"])
}

func (s *SubscriptionServiceSuite) TestChangeTierRejectsMultilocationWithoutGatewayTraffic() {
	s.seedBusiness(func(b *business.Business) {
		b.SubscriptionTier = types.TierStandard
		b.LocationCount = 3
	})

	_, err := s.billing.ChangeTier(s.GetContext(), "bus_01", types.TierLite, s.actor)
	s.Error(err)
	s.True(ierr.IsMultilocationIneligible(err))

	s.Equal(0, s.GetGateway().TotalCalls())

	stored, err := s.GetStores().BusinessRepo.Get(s.GetContext(), "bus_01")
	s.NoError(err)
	s.Equal(types.TierStandard, stored.SubscriptionTier)
	s.Empty(s.GetPublisher().Events())
}

func (s *SubscriptionServiceSuite) TestChangeTierAllowsMultilocationEligibleTarget() {
	s.seedBusiness(func(b *business.Business) {
		b.SubscriptionTier = types.TierStandard
		b.LocationCount = 3
	})

	resp, err := s.billing.ChangeTier(s.GetContext(), "bus_01", types.TierPremium, s.actor)
	s.NoError(err)
	s.Equal(types.TierPremium, resp.SubscriptionTier)
}

func (s *SubscriptionServiceSuite) TestChangeTierClearsPendingDowngrade() {
	s.seedBusiness(func(b *business.Business) {
		requested := s.GetNow().Add(-24 * time.Hour)
		b.DowngradeRequestedAt = &requested
	})

	resp, err := s.billing.ChangeTier(s.GetContext(), "bus_01", types.TierStandard, s.actor)
	s.NoError(err)
	s.Nil(resp.DowngradeRequestedAt)

	stored, err := s.GetStores().BusinessRepo.Get(s.GetContext(), "bus_01")
	s.NoError(err)
	s.Nil(stored.DowngradeRequestedAt)
}

func (s *SubscriptionServiceSuite) TestLeavingCustomTierCarriesPaidSeats() {
	s.seedBusiness(func(b *business.Business) {
		b.SubscriptionTier = types.TierCustom
		b.AvailableUserCount = 50
		b.PaidEmployeesCount = 12
	})

	resp, err := s.billing.ChangeTier(s.GetContext(), "bus_01", types.TierStandard, s.actor)
	s.NoError(err)
	s.Equal(12, resp.AvailableUserCount)
	s.Equal(12, s.GetGateway().LastPlan.UserCount)
}

func (s *SubscriptionServiceSuite) TestUpgradeToCustomTierKeepsSeatAllowance() {
	s.seedBusiness(func(b *business.Business) {
		b.SubscriptionTier = types.TierPremium
		b.AvailableUserCount = 40
	})

	resp, err := s.billing.ChangeTier(s.GetContext(), "bus_01", types.TierCustom, s.actor)
	s.NoError(err)
	s.Equal(40, resp.AvailableUserCount)
	s.Equal(40, s.GetGateway().LastPlan.UserCount)
}

func (s *SubscriptionServiceSuite) TestChangeTierDeclinedLeavesBusinessUnchanged() {
	s.seedBusiness(nil)
	s.GetGateway().FailWith("update_subscription", ierr.NewError("card was declined").
		WithHint("Your card was declined.").
		Mark(ierr.ErrGatewayDeclined))

	_, err := s.billing.ChangeTier(s.GetContext(), "bus_01", types.TierStandard, s.actor)
	s.Error(err)
	s.True(ierr.IsGatewayDeclined(err))
	s.Contains(err.Error(), "declined")

	stored, err := s.GetStores().BusinessRepo.Get(s.GetContext(), "bus_01")
	s.NoError(err)
	s.Equal(types.TierLite, stored.SubscriptionTier)
	s.Empty(s.GetPublisher().EventsNamed(types.EventSubscriptionUpgraded))
}

func (s *SubscriptionServiceSuite) TestChangeTierTransientFailureReportsIncident() {
	s.seedBusiness(nil)
	s.GetGateway().FailWith("update_subscription", ierr.NewError("gateway timeout").
		Mark(ierr.ErrGatewayTransient))

	_, err := s.billing.ChangeTier(s.GetContext(), "bus_01", types.TierStandard, s.actor)
	s.Error(err)
	s.True(ierr.IsGatewayTransient(err))
	s.Len(s.GetPublisher().EventsNamed(types.EventGatewayIncident), 1)
}

func (s *SubscriptionServiceSuite) TestChangeTierUnknownTier() {
	s.seedBusiness(nil)

	_, err := s.billing.ChangeTier(s.GetContext(), "bus_01", types.SubscriptionTier("platinum"), s.actor)
	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Equal(0, s.GetGateway().TotalCalls())
}

func (s *SubscriptionServiceSuite) TestChangeTierWithoutSubscriptionToken() {
	s.seedBusiness(func(b *business.Business) {
		b.GatewaySubscriptionToken = ""
	})

	_, err := s.billing.ChangeTier(s.GetContext(), "bus_01", types.TierStandard, s.actor)
	s.Error(err)
	s.True(ierr.IsGatewayNotConfigured(err))
}

func (s *SubscriptionServiceSuite) TestChangeBillingInterval() {
	s.seedBusiness(nil)

	resp, err := s.billing.ChangeBillingInterval(s.GetContext(), "bus_01", types.BillingIntervalYearly, s.actor)
	s.NoError(err)
	s.Equal(types.BillingIntervalYearly, resp.BillingInterval)
	s.Equal("Changed billing cycle from monthly to yearly", s.GetGateway().LastNote)

	history := s.GetPublisher().EventsNamed(types.EventChangeHistory)
	s.Len(history, 1)
	s.Equal("Changed billing cycle from monthly to yearly", history[0].Payload["message"])
}

func (s *SubscriptionServiceSuite) TestChangeUserCountCarriesNoNote() {
	s.seedBusiness(nil)

	resp, err := s.billing.ChangeUserCount(s.GetContext(), "bus_01", 9)
	s.NoError(err)
	s.Equal(9, resp.AvailableUserCount)
	s.Empty(s.GetGateway().LastNote)
	s.Empty(s.GetPublisher().EventsNamed(types.EventChangeHistory))
}

func (s *SubscriptionServiceSuite) TestChangeUserCountRejectsNegative() {
	s.seedBusiness(nil)

	_, err := s.billing.ChangeUserCount(s.GetContext(), "bus_01", -1)
	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Equal(0, s.GetGateway().TotalCalls())
}

func (s *SubscriptionServiceSuite) TestSetStorefrontIncluded() {
	s.seedBusiness(nil)

	resp, err := s.billing.SetStorefrontIncluded(s.GetContext(), "bus_01", true, s.actor)
	s.NoError(err)
	s.True(resp.StorefrontIncluded)
	s.Equal("Enabled Storefront+", s.GetGateway().LastNote)
	s.False(s.GetGateway().LastProrate)

	resp, err = s.billing.SetStorefrontIncluded(s.GetContext(), "bus_01", false, s.actor)
	s.NoError(err)
	s.False(resp.StorefrontIncluded)
	s.Equal("Disabled Storefront+", s.GetGateway().LastNote)
}

func (s *SubscriptionServiceSuite) TestRequestDowngradeIsLocalOnly() {
	s.seedBusiness(func(b *business.Business) {
		b.SubscriptionTier = types.TierStandard
	})

	resp, err := s.billing.RequestDowngrade(s.GetContext(), "bus_01", types.TierLite, s.actor)
	s.NoError(err)
	s.NotNil(resp.DowngradeRequestedAt)
	s.Equal(types.TierStandard, resp.SubscriptionTier)

	s.Equal(0, s.GetGateway().TotalCalls())
	s.Len(s.GetPublisher().EventsNamed(types.EventDowngradeRequested), 1)

	history := s.GetPublisher().EventsNamed(types.EventChangeHistory)
	s.Len(history, 1)
	s.Equal("Requested downgrade from Standard to Lite.", history[0].Payload["message"])
}

func (s *SubscriptionServiceSuite) TestRequestCancellationFiresNotificationsOnce() {
	s.seedBusiness(nil)

	resp, err := s.billing.RequestCancellation(s.GetContext(), "bus_01", s.actor)
	s.NoError(err)
	s.NotNil(resp.CancellationRequestedAt)
	firstRequestedAt := *resp.CancellationRequestedAt

	s.Len(s.GetPublisher().EventsNamed(types.EventCancellationRequested), 1)
	s.Len(s.GetPublisher().EventsNamed(types.EventCancellationReceived), 1)

	// A repeat request succeeds, keeps the original timestamp and fires
	// nothing further.
	resp, err = s.billing.RequestCancellation(s.GetContext(), "bus_01", s.actor)
	s.NoError(err)
	s.NotNil(resp.CancellationRequestedAt)
	s.Equal(firstRequestedAt, *resp.CancellationRequestedAt)

	s.Len(s.GetPublisher().EventsNamed(types.EventCancellationRequested), 1)
	s.Len(s.GetPublisher().EventsNamed(types.EventCancellationReceived), 1)
	s.Equal(0, s.GetGateway().TotalCalls())
}

func (s *SubscriptionServiceSuite) TestPreviewUserCountChange() {
	s.seedBusiness(nil)

	quote, err := s.billing.PreviewUserCountChange(s.GetContext(), "bus_01", 10)
	s.NoError(err)
	s.NotNil(quote)
	s.Equal(1, s.GetGateway().Calls("preview_proration"))

	// Previews never persist anything.
	stored, err := s.GetStores().BusinessRepo.Get(s.GetContext(), "bus_01")
	s.NoError(err)
	s.Equal(5, stored.AvailableUserCount)
	s.Equal(int64(1), stored.Version)
}

func (s *SubscriptionServiceSuite) TestPreviewWithoutGatewaySubscription() {
	s.seedBusiness(func(b *business.Business) {
		b.GatewaySubscriptionToken = ""
	})

	_, err := s.billing.PreviewUserCountChange(s.GetContext(), "bus_01", 10)
	s.Error(err)
	s.True(ierr.IsGatewayNotConfigured(err))
	s.Equal(0, s.GetGateway().TotalCalls())
}

func (s *SubscriptionServiceSuite) TestBusinessNotFound() {
	_, err := s.billing.ChangeTier(s.GetContext(), "bus_missing", types.TierStandard, s.actor)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rentstack/rentstack/internal/api/dto"
	"github.com/rentstack/rentstack/internal/domain/business"
	"github.com/rentstack/rentstack/internal/domain/payment"
	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/rentstack/rentstack/internal/gateway"
	"github.com/rentstack/rentstack/internal/testutil"
	"github.com/rentstack/rentstack/internal/types"
)

type PaymentMethodServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PaymentMethodService
	billing BillingService
	actor   types.Actor
}

func TestPaymentMethodService(t *testing.T) {
	suite.Run(t, new(PaymentMethodServiceSuite))
}

func (s *PaymentMethodServiceSuite) SetupTest() {
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
	s.service = NewPaymentMethodService(params)
	s.billing = NewBillingService(params, NewSubscriptionService(params), s.service)
	s.actor = types.Actor{EmployeeID: "emp_test", Name: "Pat Tester"}
}

func (s *PaymentMethodServiceSuite) seedBusiness(mutate func(*business.Business)) *business.Business {
	biz := &business.Business{
		ID:                   "bus_01",
		Name:                 "Hilltop Rentals",
		Email:                "owner@hilltop.test",
		Status:               types.BusinessStatusActive,
		SubscriptionTier:     types.TierStandard,
		BillingInterval:      types.BillingIntervalMonthly,
		AvailableUserCount:   5,
		PaidEmployeesCount:   3,
		LocationCount:        1,
		GatewayCustomerToken: "cus_01",
		Version:              1,
		CreatedAt:            s.GetNow(),
		UpdatedAt:            s.GetNow(),
	}
	if mutate != nil {
		mutate(biz)
	}
	s.GetStores().BusinessRepo.(*testutil.InMemoryBusinessStore).Seed(biz)
	return biz
}

func cardRequest() dto.SaveCreditCardRequest {
	return dto.SaveCreditCardRequest{
		Token: "tok_visa_4242",
		Name:  "Pat Tester",
	}
}

func (s *PaymentMethodServiceSuite) TestFirstCardStartsSubscription() {
	s.seedBusiness(nil)

	resp, err := s.billing.SaveCreditCard(s.GetContext(), "bus_01", cardRequest(), s.actor)
	s.NoError(err)
	s.NotNil(resp.CreditCard)
	s.Equal("4242", resp.CreditCard.Last4)

	s.Equal(1, s.GetGateway().Calls("attach_card_source"))
	s.Equal(0, s.GetGateway().Calls("replace_card_source"))
	s.Equal(1, s.GetGateway().Calls("create_subscription"))

	stored, err := s.GetStores().BusinessRepo.Get(s.GetContext(), "bus_01")
	s.NoError(err)
	s.NotEmpty(stored.GatewaySubscriptionToken)
}

func (s *PaymentMethodServiceSuite) TestReplacingCardStartsNoSubscription() {
	s.seedBusiness(func(b *business.Business) {
		b.GatewaySubscriptionToken = "sub_01"
		b.CreditCard = &payment.CreditCard{
			Token: "pm_old", Last4: "1111", CardType: "Visa", ExpMonth: 1, ExpYear: 2027,
		}
	})

	resp, err := s.billing.SaveCreditCard(s.GetContext(), "bus_01", cardRequest(), s.actor)
	s.NoError(err)
	s.Equal("4242", resp.CreditCard.Last4)

	s.Equal(1, s.GetGateway().Calls("replace_card_source"))
	s.Equal(0, s.GetGateway().Calls("attach_card_source"))
	s.Equal(0, s.GetGateway().Calls("create_subscription"))
}

func (s *PaymentMethodServiceSuite) TestCardWithBankOnFileStartsNoSubscription() {
	s.seedBusiness(func(b *business.Business) {
		b.GatewaySubscriptionToken = "sub_01"
		b.BankAccount = &payment.BankAccount{
			Token: "pm_bank", Fingerprint: "fp_1", Name: "Test Federal 6789",
		}
	})

	_, err := s.billing.SaveCreditCard(s.GetContext(), "bus_01", cardRequest(), s.actor)
	s.NoError(err)
	s.Equal(1, s.GetGateway().Calls("attach_card_source"))
	s.Equal(0, s.GetGateway().Calls("create_subscription"))
}

func (s *PaymentMethodServiceSuite) TestInvalidCardMakesNoGatewayCalls() {
	s.seedBusiness(nil)

	req := dto.SaveCreditCardRequest{Name: "Pat Tester"}
	_, err := s.billing.SaveCreditCard(s.GetContext(), "bus_01", req, s.actor)
	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Equal(0, s.GetGateway().TotalCalls())
}

func (s *PaymentMethodServiceSuite) TestExpiredCardRejected() {
	s.seedBusiness(nil)

	req := dto.SaveCreditCardRequest{
		Name:     "Pat Tester",
		Number:   "4242424242424242",
		ExpMonth: 1,
		ExpYear:  2020,
	}
	_, err := s.billing.SaveCreditCard(s.GetContext(), "bus_01", req, s.actor)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PaymentMethodServiceSuite) TestDeclinedCardLeavesBusinessUnchanged() {
	s.seedBusiness(nil)
	s.GetGateway().FailWith("attach_card_source", ierr.NewError("card was declined").
		WithHint("Your card was declined.").
		Mark(ierr.ErrGatewayDeclined))

	_, err := s.billing.SaveCreditCard(s.GetContext(), "bus_01", cardRequest(), s.actor)
	s.Error(err)
	s.True(ierr.IsGatewayDeclined(err))

	stored, err := s.GetStores().BusinessRepo.Get(s.GetContext(), "bus_01")
	s.NoError(err)
	s.Nil(stored.CreditCard)
	s.Empty(stored.GatewaySubscriptionToken)
}

func (s *PaymentMethodServiceSuite) TestBankAccountAttachedWithFingerprint() {
	s.seedBusiness(func(b *business.Business) {
		b.GatewaySubscriptionToken = "sub_01"
		b.CreditCard = &payment.CreditCard{Token: "pm_card", Last4: "4242"}
	})

	resp, err := s.billing.SaveBankAccount(s.GetContext(), "bus_01", dto.SaveBankAccountRequest{
		Token:     "link_tok",
		AccountID: "acct_1",
	}, s.actor)
	s.NoError(err)
	s.NotNil(resp.BankAccount)

	s.Equal(1, s.GetGateway().Calls("create_bank_source"))
	s.Equal(1, s.GetGateway().Calls("find_bank_source"))
	s.Equal(1, s.GetGateway().Calls("attach_bank_source"))

	stored, err := s.GetStores().BusinessRepo.Get(s.GetContext(), "bus_01")
	s.NoError(err)
	s.NotNil(stored.BankAccount)
	s.NotEmpty(stored.BankAccount.Fingerprint)
}

func (s *PaymentMethodServiceSuite) TestDuplicateBankAccountReused() {
	s.seedBusiness(func(b *business.Business) {
		b.GatewaySubscriptionToken = "sub_01"
		b.CreditCard = &payment.CreditCard{Token: "pm_card", Last4: "4242"}
	})

	// The gateway already holds an attached source with the fingerprint the
	// new account resolves to.
	existing := &gateway.Source{
		ID:          "pm_existing",
		Kind:        gateway.SourceKindBank,
		Last4:       "6789",
		Fingerprint: "fp_000123456789",
		BankName:    "Test Federal",
	}
	s.GetGateway().BankSources["cus_01"] = []*gateway.Source{existing}

	resp, err := s.billing.SaveBankAccount(s.GetContext(), "bus_01", dto.SaveBankAccountRequest{
		Token:     "link_tok",
		AccountID: "acct_1",
	}, s.actor)
	s.NoError(err)

	s.Equal(0, s.GetGateway().Calls("attach_bank_source"))
	s.Equal("Test Federal 6789", resp.BankAccount.Name)

	stored, err := s.GetStores().BusinessRepo.Get(s.GetContext(), "bus_01")
	s.NoError(err)
	s.Equal("pm_existing", stored.BankAccount.Token)
}

func (s *PaymentMethodServiceSuite) TestFirstBankAccountStartsSubscription() {
	s.seedBusiness(nil)

	_, err := s.billing.SaveBankAccount(s.GetContext(), "bus_01", dto.SaveBankAccountRequest{
		Token:     "link_tok",
		AccountID: "acct_1",
	}, s.actor)
	s.NoError(err)
	s.Equal(1, s.GetGateway().Calls("create_subscription"))
}

func (s *PaymentMethodServiceSuite) TestBankAccountMissingLinkToken() {
	s.seedBusiness(nil)

	_, err := s.billing.SaveBankAccount(s.GetContext(), "bus_01", dto.SaveBankAccountRequest{}, s.actor)
	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Equal(0, s.GetGateway().TotalCalls())
}

func (s *PaymentMethodServiceSuite) TestReactivateRestoresActiveStatus() {
	cancelled := s.GetNow()
	s.seedBusiness(func(b *business.Business) {
		b.Status = types.BusinessStatusDeactivated
		b.CancellationRequestedAt = &cancelled
	})

	resp, err := s.billing.Reactivate(s.GetContext(), "bus_01", cardRequest(), s.actor)
	s.NoError(err)
	s.Equal(types.BusinessStatusActive, resp.Status)
	s.Nil(resp.CancellationRequestedAt)
	s.Equal(1, s.GetGateway().Calls("create_subscription"))

	history := s.GetPublisher().EventsNamed(types.EventChangeHistory)
	s.NotEmpty(history)
	s.Equal("Reactivated Account.", history[len(history)-1].Payload["message"])
}

func (s *PaymentMethodServiceSuite) TestSaveCardWithoutGatewayCustomer() {
	s.seedBusiness(func(b *business.Business) {
		b.GatewayCustomerToken = ""
	})

	_, err := s.billing.SaveCreditCard(s.GetContext(), "bus_01", cardRequest(), s.actor)
	s.Error(err)
	s.True(ierr.IsGatewayNotConfigured(err))
	s.Equal(0, s.GetGateway().TotalCalls())
}

package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rentstack/rentstack/internal/domain/business"
	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/rentstack/rentstack/internal/testutil"
	"github.com/rentstack/rentstack/internal/types"
)

type BusinessServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BusinessService
}

func TestBusinessService(t *testing.T) {
	suite.Run(t, new(BusinessServiceSuite))
}

func (s *BusinessServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.service = NewBusinessService(ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		TierCatalog:    s.GetCatalog(),
		BusinessRepo:   s.GetStores().BusinessRepo,
		Gateway:        s.GetGateway(),
		BankLinks:      s.GetBankLinks(),
		EventPublisher: s.GetPublisher(),
	})
}

func (s *BusinessServiceSuite) seed(id, name string, paid int) {
	s.GetStores().BusinessRepo.(*testutil.InMemoryBusinessStore).Seed(&business.Business{
		ID:                 id,
		Name:               name,
		Status:             types.BusinessStatusActive,
		SubscriptionTier:   types.TierLite,
		BillingInterval:    types.BillingIntervalMonthly,
		PaidEmployeesCount: paid,
		Version:            1,
	})
}

func (s *BusinessServiceSuite) TestGetBusiness() {
	s.seed("bus_01", "Hilltop Rentals", 3)

	resp, err := s.service.GetBusiness(s.GetContext(), "bus_01")
	s.NoError(err)
	s.Equal("Hilltop Rentals", resp.Name)
	s.Equal(types.TierLite, resp.SubscriptionTier)
}

func (s *BusinessServiceSuite) TestGetBusinessNotFound() {
	_, err := s.service.GetBusiness(s.GetContext(), "bus_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BusinessServiceSuite) TestListBusinesses() {
	s.seed("bus_01", "Hilltop Rentals", 3)
	s.seed("bus_02", "Valley Tools", 2)

	resp, err := s.service.ListBusinesses(s.GetContext())
	s.NoError(err)
	s.Equal(2, resp.Total)
	s.Len(resp.Items, 2)
}

func (s *BusinessServiceSuite) TestSearchNames() {
	s.seed("bus_01", "Hilltop Rentals", 3)
	s.seed("bus_02", "Valley Tools", 2)
	s.seed("bus_03", "Hillside Events", 1)

	resp, err := s.service.SearchNames(s.GetContext(), "hill")
	s.NoError(err)
	s.Len(resp.Names, 2)
}

func (s *BusinessServiceSuite) TestPaidEmployeesCount() {
	s.seed("bus_01", "Hilltop Rentals", 12)

	resp, err := s.service.PaidEmployeesCount(s.GetContext(), "bus_01")
	s.NoError(err)
	s.Equal(12, resp.Count)
}

package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rentstack/rentstack/internal/config"
	"github.com/rentstack/rentstack/internal/domain/business"
	"github.com/rentstack/rentstack/internal/domain/tier"
	"github.com/rentstack/rentstack/internal/logger"
	"github.com/rentstack/rentstack/internal/types"
	"github.com/rentstack/rentstack/internal/validator"
)

// Stores holds the repository interfaces for testing
type Stores struct {
	BusinessRepo business.Repository
}

// BaseServiceTestSuite provides common functionality for service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	gateway   *FakeGateway
	bankLinks *FakeBankLinkConverter
	publisher *InMemoryEventPublisher
	catalog   *tier.Catalog
	logger    *logger.Logger
	config    *config.Configuration
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging = config.LoggingConfig{
		Level: types.LogLevelInfo,
	}

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	s.catalog, err = tier.NewCatalog(cfg)
	if err != nil {
		s.T().Fatalf("failed to create tier catalog: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		BusinessRepo: NewInMemoryBusinessStore(),
	}
	s.gateway = NewFakeGateway()
	s.bankLinks = NewFakeBankLinkConverter()
	s.publisher = NewInMemoryEventPublisher()
}

// ClearStores removes all data from the in-memory stores
func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.BusinessRepo.(*InMemoryBusinessStore).Clear()
	s.publisher.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the test stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetGateway returns the recording fake gateway
func (s *BaseServiceTestSuite) GetGateway() *FakeGateway {
	return s.gateway
}

// GetBankLinks returns the fake bank link converter
func (s *BaseServiceTestSuite) GetBankLinks() *FakeBankLinkConverter {
	return s.bankLinks
}

// GetPublisher returns the recording event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryEventPublisher {
	return s.publisher
}

// GetCatalog returns the tier catalog built from the default config
func (s *BaseServiceTestSuite) GetCatalog() *tier.Catalog {
	return s.catalog
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the start time of the current test
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

package testutil

import (
	"context"
	"time"

	"github.com/flexprice/ticketing/internal/cache"
	"github.com/flexprice/ticketing/internal/config"
	"github.com/flexprice/ticketing/internal/domain/catalog"
	"github.com/flexprice/ticketing/internal/domain/subscription"
	"github.com/flexprice/ticketing/internal/domain/ticket"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/metrics"
	"github.com/flexprice/ticketing/internal/postgres"
	"github.com/flexprice/ticketing/internal/sentry"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/flexprice/ticketing/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	SubscriptionRepo subscription.Repository
	ServiceRepo      catalog.Repository
	TicketRepo       ticket.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	publisher *InMemoryTicketPublisher
	db        postgres.IClient
	cache     cache.Cache
	metrics   *metrics.Metrics
	sentry    *sentry.Service
	logger    *logger.Logger
	config    *config.Configuration
	clock     types.FixedClock
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.config.Logging.Level = types.LogLevelInfo
	s.config.Cache.Enabled = true
	s.config.Billing.WriteRetryInterval = time.Millisecond

	var err error
	s.logger, err = logger.NewLogger(s.config)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	// sentry stays disabled, every capture is a no-op
	s.sentry = sentry.NewSentryService(s.config, s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.metrics = metrics.NewMetrics()
	s.cache = cache.NewInMemoryCache(s.config)
	// mid-month so both prorated and future branches are reachable
	s.clock = types.FixedClock{At: time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)}
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		ServiceRepo:      NewInMemoryServiceStore(),
		TicketRepo:       NewInMemoryTicketStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.publisher = NewInMemoryTicketPublisher()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.SubscriptionRepo.(*InMemorySubscriptionStore).Clear()
	s.stores.ServiceRepo.(*InMemoryServiceStore).Clear()
	s.stores.TicketRepo.(*InMemoryTicketStore).Clear()
	s.publisher.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPublisher returns the recording ticket publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryTicketPublisher {
	return s.publisher
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetMetrics() *metrics.Metrics {
	return s.metrics
}

func (s *BaseServiceTestSuite) GetSentry() *sentry.Service {
	return s.sentry
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetClock returns the fixed test clock
func (s *BaseServiceTestSuite) GetClock() types.FixedClock {
	return s.clock
}

// SetNow moves the fixed clock, services created afterwards see the new instant
func (s *BaseServiceTestSuite) SetNow(at time.Time) {
	s.clock = types.FixedClock{At: at}
}

// GetToday returns the calendar date of the test clock
func (s *BaseServiceTestSuite) GetToday() time.Time {
	return types.Today(s.clock, time.UTC)
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}

// Date builds a UTC calendar date
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreateService stores a catalog service priced at price
func (s *BaseServiceTestSuite) CreateService(name string, frequency types.Frequency, renovation types.RenewalDayPolicy, price string) *catalog.Service {
	svc := &catalog.Service{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SERVICE),
		Name:       name,
		Frequency:  frequency,
		Renovation: renovation,
		BasePrice:  decimal.RequireFromString(price),
		BaseModel:  types.NewBaseModel(s.ctx, s.clock.Now()),
	}
	s.Require().NoError(s.stores.ServiceRepo.(*InMemoryServiceStore).Create(s.ctx, svc))
	return svc
}

// CreateSubscription stores an active subscription of svc starting on start
func (s *BaseServiceTestSuite) CreateSubscription(svc *catalog.Service, start time.Time, paymentType types.PaymentType, paymentDate *time.Time) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		ClientID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CLIENT),
		ServiceID:          svc.ID,
		StartDate:          start,
		PaymentType:        paymentType,
		PaymentDate:        paymentDate,
		SubscriptionStatus: types.SubscriptionStatusActive,
		BaseModel:          types.NewBaseModel(s.ctx, s.clock.Now()),
	}
	s.Require().NoError(s.stores.SubscriptionRepo.Create(s.ctx, sub))
	return sub
}

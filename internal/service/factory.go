package service

import (
	"time"

	"github.com/flexprice/ticketing/internal/cache"
	"github.com/flexprice/ticketing/internal/config"
	"github.com/flexprice/ticketing/internal/domain/catalog"
	"github.com/flexprice/ticketing/internal/domain/subscription"
	"github.com/flexprice/ticketing/internal/domain/ticket"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/metrics"
	"github.com/flexprice/ticketing/internal/postgres"
	"github.com/flexprice/ticketing/internal/publisher"
	"github.com/flexprice/ticketing/internal/sentry"
	"github.com/flexprice/ticketing/internal/types"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache
	Clock  types.Clock

	// Repositories
	SubRepo     subscription.Repository
	ServiceRepo catalog.Repository
	TicketRepo  ticket.Repository

	// Publishers
	TicketPublisher publisher.TicketPublisher

	// Observability
	Metrics *metrics.Metrics
	Sentry  *sentry.Service
}

// NewServiceParams bundles the shared dependencies, fx fills it in
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	subRepo subscription.Repository,
	serviceRepo catalog.Repository,
	ticketRepo ticket.Repository,
	ticketPublisher publisher.TicketPublisher,
	metrics *metrics.Metrics,
	sentry *sentry.Service,
) ServiceParams {
	return ServiceParams{
		Logger:          logger,
		Config:          config,
		DB:              db,
		Cache:           cache,
		Clock:           types.SystemClock{},
		SubRepo:         subRepo,
		ServiceRepo:     serviceRepo,
		TicketRepo:      ticketRepo,
		TicketPublisher: ticketPublisher,
		Metrics:         metrics,
		Sentry:          sentry,
	}
}

// location is the billing timezone every "today" is evaluated in
func (p ServiceParams) location() *time.Location {
	return p.Config.Billing.Location()
}

// today reads the clock once, callers pass the result down instead of reading it again
func (p ServiceParams) today() time.Time {
	return types.Today(p.Clock, p.location())
}

func (p ServiceParams) now() time.Time {
	if p.Clock == nil {
		return time.Now().UTC()
	}
	return p.Clock.Now()
}

func (p ServiceParams) sweepConcurrency() int {
	if p.Config.Billing.SweepConcurrency < 1 {
		return 1
	}
	return p.Config.Billing.SweepConcurrency
}

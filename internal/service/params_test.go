package service

import (
	"github.com/flexprice/ticketing/internal/testutil"
)

// newTestParams wires a service against the in-memory stores of s
func newTestParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		DB:              s.GetDB(),
		Cache:           s.GetCache(),
		Clock:           s.GetClock(),
		SubRepo:         stores.SubscriptionRepo,
		ServiceRepo:     stores.ServiceRepo,
		TicketRepo:      stores.TicketRepo,
		TicketPublisher: s.GetPublisher(),
		Metrics:         s.GetMetrics(),
		Sentry:          s.GetSentry(),
	}
}

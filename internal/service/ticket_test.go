package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/flexprice/ticketing/internal/domain/billing"
	"github.com/flexprice/ticketing/internal/domain/catalog"
	"github.com/flexprice/ticketing/internal/domain/ticket"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/metrics"
	"github.com/flexprice/ticketing/internal/testutil"
	"github.com/flexprice/ticketing/internal/types"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TicketServiceSuite struct {
	testutil.BaseServiceTestSuite
	service TicketService
}

func TestTicketService(t *testing.T) {
	suite.Run(t, new(TicketServiceSuite))
}

func (s *TicketServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewTicketService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *TicketServiceSuite) storedTickets(subscriptionID string) []*ticket.Ticket {
	filter := types.NewTicketFilter()
	filter.QueryFilter = types.NewNoLimitQueryFilter()
	filter.SubscriptionID = subscriptionID
	tickets, err := s.GetStores().TicketRepo.List(s.GetContext(), filter)
	s.Require().NoError(err)
	return tickets
}

func (s *TicketServiceSuite) TestGenerateProportionalTicket_Prorated() {
	ctx := s.GetContext()
	svc := s.CreateService("Hosting", types.FrequencyMonthly, types.RenewalFirstDay, "100")
	sub := s.CreateSubscription(svc, testutil.Date(2025, time.March, 10), types.PaymentTypeAdvance, nil)

	resp, err := s.service.GenerateProportionalTicket(ctx, sub.ID)
	s.Require().NoError(err)

	s.Equal(billing.DecisionProrated, resp.Decision)
	s.Equal(52, resp.DaysUsed)
	s.Equal(31, resp.TotalDays)
	s.Require().NotNil(resp.PaymentDate)
	s.Equal("2025-05-01", *resp.PaymentDate)

	s.Require().NotNil(resp.Ticket)
	s.Equal("2025-03-10", resp.Ticket.ServiceStart)
	s.Equal("2025-04-30", resp.Ticket.ServiceEnd)
	s.Equal("2025-03-15", resp.Ticket.DueDate)
	s.Equal("2025-03-15", resp.Ticket.GeneratedDate)
	s.Equal(types.TicketStatusPending, resp.Ticket.TicketStatus)
	s.False(resp.Ticket.IsManual)
	// more days than the period holds, so the price is capped
	s.True(decimal.NewFromInt(100).Equal(resp.Ticket.Amount), resp.Ticket.Amount.String())
	s.Equal("Hosting - Período (10/03/2025 - 30/04/2025) - 52/31 días", resp.Ticket.Description)

	tickets := s.storedTickets(sub.ID)
	s.Require().Len(tickets, 1)
	s.Equal(resp.Ticket.ID, tickets[0].ID)
	s.Equal(sub.TenantID, tickets[0].TenantID)
	s.Equal(ticket.IdempotencyKey(sub.ID, testutil.Date(2025, time.March, 10), testutil.Date(2025, time.April, 30)), tickets[0].IdempotencyKey)

	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(testutil.Date(2025, time.May, 1), *stored.PaymentDate)

	published := s.GetPublisher().Published()
	s.Require().Len(published, 1)
	s.Equal(tickets[0].ID, published[0].ID)

	s.Equal(float64(1), promtestutil.ToFloat64(
		s.GetMetrics().TicketsGenerated.WithLabelValues(metrics.TicketKindProportional)))
	s.Equal(float64(1), promtestutil.ToFloat64(
		s.GetMetrics().TicketDecisions.WithLabelValues(billing.DecisionProrated.String())))
}

func (s *TicketServiceSuite) TestGenerateProportionalTicket_SecondCallIsIdempotent() {
	ctx := s.GetContext()
	svc := s.CreateService("Hosting", types.FrequencyMonthly, types.RenewalFirstDay, "100")
	sub := s.CreateSubscription(svc, testutil.Date(2025, time.March, 10), types.PaymentTypeAdvance, nil)

	_, err := s.service.GenerateProportionalTicket(ctx, sub.ID)
	s.Require().NoError(err)

	resp, err := s.service.GenerateProportionalTicket(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(billing.DecisionAlreadyExists, resp.Decision)
	s.Nil(resp.Ticket)
	s.Len(s.storedTickets(sub.ID), 1)
	s.Len(s.GetPublisher().Published(), 1)
}

func (s *TicketServiceSuite) TestGenerateProportionalTicket_InsertCollision() {
	ctx := s.GetContext()
	svc := s.CreateService("Hosting", types.FrequencyMonthly, types.RenewalFirstDay, "100")
	sub := s.CreateSubscription(svc, testutil.Date(2025, time.March, 10), types.PaymentTypeAdvance, nil)

	// an archived ticket is invisible to the lookup but still owns the idempotency key
	start, end := testutil.Date(2025, time.March, 10), testutil.Date(2025, time.April, 30)
	archived := &ticket.Ticket{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TICKET),
		SubscriptionID: sub.ID,
		ServiceStart:   start,
		ServiceEnd:     end,
		TicketStatus:   types.TicketStatusPending,
		IdempotencyKey: ticket.IdempotencyKey(sub.ID, start, end),
		BaseModel:      types.NewBaseModel(ctx, s.GetClock().Now()),
	}
	archived.Status = types.StatusArchived
	s.Require().NoError(s.GetStores().TicketRepo.Create(ctx, archived))

	resp, err := s.service.GenerateProportionalTicket(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(billing.DecisionAlreadyExists, resp.Decision)
	s.Empty(s.GetPublisher().Published())

	stored, err := s.GetStores().SubscriptionRepo.Get(ctx, sub.ID)
	s.Require().NoError(err)
	s.Nil(stored.PaymentDate)
}

func (s *TicketServiceSuite) TestGenerateProportionalTicket_FutureStart() {
	svc := s.CreateService("Hosting", types.FrequencyMonthly, types.RenewalFirstDay, "100")
	sub := s.CreateSubscription(svc, testutil.Date(2025, time.March, 20), types.PaymentTypeAdvance, nil)

	resp, err := s.service.GenerateProportionalTicket(s.GetContext(), sub.ID)
	s.Require().NoError(err)
	s.Equal(billing.DecisionFutureStart, resp.Decision)
	s.Nil(resp.Ticket)
	s.Nil(resp.PaymentDate)
	s.Empty(s.storedTickets(sub.ID))
}

func (s *TicketServiceSuite) TestGenerateProportionalTicket_Anniversary() {
	svc := s.CreateService("Support", types.FrequencyAnnual, types.RenewalFirstDay, "1200")
	sub := s.CreateSubscription(svc, testutil.Date(2025, time.January, 10), types.PaymentTypeAnniversary, nil)

	resp, err := s.service.GenerateProportionalTicket(s.GetContext(), sub.ID)
	s.Require().NoError(err)
	s.Equal(billing.DecisionAnniversary, resp.Decision)
	s.Require().NotNil(resp.Ticket)
	s.Equal("2025-01-10", resp.Ticket.ServiceStart)
	s.Equal("2026-01-09", resp.Ticket.ServiceEnd)
	s.Equal("2025-01-10", resp.Ticket.DueDate)
	s.Equal("2025-03-15", resp.Ticket.GeneratedDate)
	s.True(decimal.NewFromInt(1200).Equal(resp.Ticket.Amount))
	s.Equal("2026-01-10", *resp.PaymentDate)
	s.Equal(float64(1), promtestutil.ToFloat64(
		s.GetMetrics().TicketsGenerated.WithLabelValues(metrics.TicketKindAnniversary)))
}

func (s *TicketServiceSuite) TestGenerateProportionalTicket_FinalPriceWins() {
	ctx := s.GetContext()
	svc := &catalog.Service{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SERVICE),
		Name:       "Hosting",
		Frequency:  types.FrequencyMonthly,
		Renovation: types.RenewalFirstDay,
		BasePrice:  decimal.NewFromInt(100),
		FinalPrice: decimal.NewFromInt(121),
		BaseModel:  types.NewBaseModel(ctx, s.GetClock().Now()),
	}
	s.Require().NoError(s.GetStores().ServiceRepo.(*testutil.InMemoryServiceStore).Create(ctx, svc))
	sub := s.CreateSubscription(svc, testutil.Date(2025, time.March, 10), types.PaymentTypeAdvance, nil)

	resp, err := s.service.GenerateProportionalTicket(ctx, sub.ID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(121).Equal(resp.Ticket.Amount), resp.Ticket.Amount.String())
}

func (s *TicketServiceSuite) TestGenerateProportionalTicket_InactiveSubscription() {
	ctx := s.GetContext()
	svc := s.CreateService("Hosting", types.FrequencyMonthly, types.RenewalFirstDay, "100")
	sub := s.CreateSubscription(svc, testutil.Date(2025, time.March, 10), types.PaymentTypeAdvance, nil)
	sub.SubscriptionStatus = types.SubscriptionStatusCancelled
	s.Require().NoError(s.GetStores().SubscriptionRepo.Update(ctx, sub))

	_, err := s.service.GenerateProportionalTicket(ctx, sub.ID)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *TicketServiceSuite) TestGenerateProportionalTicket_MissingFrequency() {
	svc := s.CreateService("Hosting", "", types.RenewalFirstDay, "100")
	sub := s.CreateSubscription(svc, testutil.Date(2025, time.March, 10), types.PaymentTypeAdvance, nil)

	resp, err := s.service.GenerateProportionalTicket(s.GetContext(), sub.ID)
	s.Require().NoError(err)
	s.Equal(billing.DecisionMissingData, resp.Decision)
}

func (s *TicketServiceSuite) TestGenerateProportionalTicket_UnknownService() {
	sub := s.CreateSubscription(&catalog.Service{ID: "svc_missing"}, testutil.Date(2025, time.March, 10), types.PaymentTypeAdvance, nil)

	_, err := s.service.GenerateProportionalTicket(s.GetContext(), sub.ID)
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *TicketServiceSuite) TestBackfillProportionalTickets() {
	ctx := s.GetContext()
	monthly := s.CreateService("Hosting", types.FrequencyMonthly, types.RenewalFirstDay, "100")
	annual := s.CreateService("Support", types.FrequencyAnnual, types.RenewalFirstDay, "1200")
	april := lo.ToPtr(testutil.Date(2025, time.April, 1))

	owed := s.CreateSubscription(monthly, testutil.Date(2025, time.March, 10), types.PaymentTypeAdvance, april)
	s.CreateSubscription(monthly, testutil.Date(2025, time.March, 10), types.PaymentTypeAdvance, nil)
	s.CreateSubscription(annual, testutil.Date(2025, time.January, 10), types.PaymentTypeAnniversary,
		lo.ToPtr(testutil.Date(2026, time.January, 10)))
	future := s.CreateSubscription(monthly, testutil.Date(2025, time.March, 20), types.PaymentTypeAdvance, april)
	orphan := s.CreateSubscription(&catalog.Service{ID: "svc_missing"}, testutil.Date(2025, time.February, 1), types.PaymentTypeAdvance, april)

	resp, err := s.service.BackfillProportionalTickets(ctx)
	s.Require().NoError(err)

	s.Equal(metrics.SweepProportionalBackfill, resp.Sweep)
	s.Equal(3, resp.TotalCandidates)
	s.Equal(1, resp.Updated)
	s.Equal(1, resp.Skipped)
	s.Equal(1, resp.Failed)
	s.Equal(map[string]int{
		billing.DecisionProrated.String():    1,
		billing.DecisionFutureStart.String(): 1,
	}, resp.Decisions)
	s.Require().Len(resp.Errors, 1)
	s.Contains(resp.Errors[0], fmt.Sprintf("subscription %s:", orphan.ID))

	s.Len(s.storedTickets(owed.ID), 1)
	s.Empty(s.storedTickets(future.ID))

	// a second pass finds the ticket and writes nothing
	resp, err = s.service.BackfillProportionalTickets(ctx)
	s.Require().NoError(err)
	s.Equal(0, resp.Updated)
	s.Equal(1, resp.Decisions[billing.DecisionAlreadyExists.String()])
	s.Len(s.storedTickets(owed.ID), 1)
}

func (s *TicketServiceSuite) TestListTickets() {
	ctx := s.GetContext()
	svc := s.CreateService("Hosting", types.FrequencyMonthly, types.RenewalFirstDay, "100")
	sub := s.CreateSubscription(svc, testutil.Date(2025, time.March, 10), types.PaymentTypeAdvance, nil)
	other := s.CreateSubscription(svc, testutil.Date(2025, time.March, 1), types.PaymentTypeAdvance, nil)

	_, err := s.service.GenerateProportionalTicket(ctx, sub.ID)
	s.Require().NoError(err)
	_, err = s.service.GenerateProportionalTicket(ctx, other.ID)
	s.Require().NoError(err)

	resp, err := s.service.ListTickets(ctx, sub.ID, nil)
	s.Require().NoError(err)
	s.Require().Len(resp.Items, 1)
	s.Equal(sub.ID, resp.Items[0].SubscriptionID)
	s.Equal(1, resp.Pagination.Total)

	filter := types.NewTicketFilter()
	filter.TicketStatus = []types.TicketStatus{types.TicketStatusPaid}
	resp, err = s.service.ListTickets(ctx, sub.ID, filter)
	s.Require().NoError(err)
	s.Empty(resp.Items)

	_, err = s.service.ListTickets(ctx, "sub_missing", nil)
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

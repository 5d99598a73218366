package service

import (
	"context"
	"time"

	"github.com/flexprice/ticketing/internal/api/dto"
	"github.com/flexprice/ticketing/internal/domain/billing"
	"github.com/flexprice/ticketing/internal/domain/catalog"
	"github.com/flexprice/ticketing/internal/domain/subscription"
	"github.com/flexprice/ticketing/internal/domain/ticket"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/metrics"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/samber/lo"
)

// TicketService generates the proportional first ticket of subscriptions
type TicketService interface {
	// GenerateProportionalTicket evaluates one subscription and stores the ticket it owes, if any
	GenerateProportionalTicket(ctx context.Context, subscriptionID string) (*dto.ProportionalTicketResponse, error)
	// BackfillProportionalTickets re-evaluates every active subscription whose stored payment date is past its start
	BackfillProportionalTickets(ctx context.Context) (*dto.SweepResponse, error)
	ListTickets(ctx context.Context, subscriptionID string, filter *types.TicketFilter) (*dto.ListTicketsResponse, error)
}

type ticketService struct {
	ServiceParams
	services serviceLoader
}

func NewTicketService(params ServiceParams) TicketService {
	return &ticketService{
		ServiceParams: params,
		services:      serviceLoader{ServiceParams: params},
	}
}

func (s *ticketService) GenerateProportionalTicket(ctx context.Context, subscriptionID string) (*dto.ProportionalTicketResponse, error) {
	sub, err := s.SubRepo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	if sub.SubscriptionStatus != types.SubscriptionStatusActive {
		return nil, ierr.NewError("subscription is not active").
			WithHint("Tickets can only be generated for active subscriptions").
			WithReportableDetails(map[string]any{
				"subscription_id":     sub.ID,
				"subscription_status": sub.SubscriptionStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	svc, err := s.services.get(ctx, sub.ServiceID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.generate(ctx, sub, svc, s.today())
	if err != nil {
		return nil, err
	}
	return dto.NewProportionalTicketResponse(sub.ID, outcome), nil
}

// generate evaluates sub against the second future payment date and stores the outcome.
// The ticket and the advanced payment date are written in one transaction.
func (s *ticketService) generate(ctx context.Context, sub *subscription.Subscription, svc *catalog.Service, today time.Time) (billing.ProportionalOutcome, error) {
	boundary, ok, err := billing.SettlementBoundaryFor(sub, svc)
	if err != nil {
		return billing.ProportionalOutcome{}, err
	}
	if !ok {
		s.recordDecision(sub, billing.DecisionMissingData)
		return billing.ProportionalOutcome{Decision: billing.DecisionMissingData}, nil
	}

	cfg := billing.ProportionalTicketConfig{
		SubscriptionID: sub.ID,
		ClientID:       sub.ClientID,
		StartDate:      sub.StartDate,
		Boundary:       boundary,
		ServicePrice:   svc.InvoicePrice(),
		Frequency:      svc.Frequency,
		PaymentType:    sub.PaymentType,
		ServiceName:    svc.Name,
	}

	outcome, err := billing.EvaluateProportionalTicket(ctx, cfg, today, s.TicketRepo)
	if err != nil {
		return billing.ProportionalOutcome{}, err
	}
	if !outcome.Emits() {
		s.recordDecision(sub, outcome.Decision)
		return outcome, nil
	}

	t := outcome.Ticket
	t.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TICKET)
	t.BaseModel = types.NewBaseModel(ctx, s.now())
	t.TenantID = sub.TenantID

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.TicketRepo.Create(txCtx, t); err != nil {
			return err
		}
		return s.SubRepo.UpdatePaymentDate(txCtx, sub.ID, *outcome.PaymentDate)
	})
	if ierr.IsAlreadyExists(err) {
		// another run stored the same interval between the lookup and the insert
		s.recordDecision(sub, billing.DecisionAlreadyExists)
		return billing.ProportionalOutcome{Decision: billing.DecisionAlreadyExists}, nil
	}
	if err != nil {
		return billing.ProportionalOutcome{}, err
	}

	s.recordDecision(sub, outcome.Decision)
	s.Metrics.RecordTicketGenerated(ticketKind(outcome.Decision))
	s.Logger.Infow("generated proportional ticket",
		"subscription_id", sub.ID,
		"ticket_id", t.ID,
		"decision", outcome.Decision,
		"amount", t.Amount.String(),
		"service_start", types.FormatDate(t.ServiceStart),
		"service_end", types.FormatDate(t.ServiceEnd),
		"payment_date", types.FormatDate(*outcome.PaymentDate))

	s.TicketPublisher.PublishTicketCreated(ctx, t)
	return outcome, nil
}

func (s *ticketService) recordDecision(sub *subscription.Subscription, decision billing.Decision) {
	s.Metrics.RecordTicketDecision(decision.String())
	switch decision {
	case billing.DecisionProrated, billing.DecisionFullPeriod, billing.DecisionAnniversary:
	case billing.DecisionInconsistent:
		s.Logger.Warnw("skipping subscription starting after its settlement boundary",
			"subscription_id", sub.ID,
			"start_date", types.FormatDate(sub.StartDate),
			"reason", decision)
	default:
		s.Logger.Debugw("no proportional ticket",
			"subscription_id", sub.ID,
			"reason", decision)
	}
}

func ticketKind(decision billing.Decision) string {
	switch decision {
	case billing.DecisionFullPeriod:
		return metrics.TicketKindFullPeriod
	case billing.DecisionAnniversary:
		return metrics.TicketKindAnniversary
	default:
		return metrics.TicketKindProportional
	}
}

// needsBackfill keeps active subscriptions whose stored payment date lies after their start.
// Anniversary subscriptions are billed by their own path and never backfilled.
func needsBackfill(sub *subscription.Subscription) bool {
	if sub.PaymentType == types.PaymentTypeAnniversary || sub.PaymentDate == nil || !sub.HasStartDate() {
		return false
	}
	return types.DaysBetweenInclusive(sub.StartDate, *sub.PaymentDate) > 0
}

func (s *ticketService) BackfillProportionalTickets(ctx context.Context) (*dto.SweepResponse, error) {
	startedAt := time.Now()
	today := s.today()
	collector := newSweepCollector(metrics.SweepProportionalBackfill, s.now())

	s.Logger.Infow("starting proportional ticket backfill",
		"today", types.FormatDate(today))

	err := forEachActiveBatch(ctx, s.ServiceParams, func(ctx context.Context, batch []*subscription.Subscription) error {
		candidates := lo.Filter(batch, func(sub *subscription.Subscription, _ int) bool {
			return needsBackfill(sub)
		})
		collector.candidates(len(candidates))

		runConcurrently(ctx, s.ServiceParams, candidates, func(ctx context.Context, sub *subscription.Subscription) {
			svc, err := s.services.get(ctx, sub.ServiceID)
			if err != nil {
				s.backfillFailed(sub, err, collector)
				return
			}

			outcome, err := s.generate(ctx, sub, svc, today)
			if err != nil {
				s.backfillFailed(sub, err, collector)
				return
			}

			if outcome.Emits() {
				collector.updated(outcome.Decision)
				return
			}
			collector.skipped(outcome.Decision)
		})
		return nil
	})

	resp := collector.finish(s.now())
	s.Metrics.RecordSweep(metrics.SweepProportionalBackfill, startedAt, resp.TotalCandidates, resp.Failed)

	if err != nil {
		s.Logger.Errorw("proportional ticket backfill aborted", "error", err)
		s.Sentry.CaptureException(err)
		return resp, err
	}

	s.Logger.Infow("completed proportional ticket backfill",
		"total_candidates", resp.TotalCandidates,
		"generated", resp.Updated,
		"skipped", resp.Skipped,
		"failed", resp.Failed,
		"duration", time.Since(startedAt))
	return resp, nil
}

func (s *ticketService) backfillFailed(sub *subscription.Subscription, err error, collector *sweepCollector) {
	s.Logger.Errorw("failed to backfill proportional ticket",
		"subscription_id", sub.ID,
		"error", err)
	collector.failed(sub.ID, err)
	s.Sentry.CaptureSweepFailure(metrics.SweepProportionalBackfill, sub.ID, err)
}

func (s *ticketService) ListTickets(ctx context.Context, subscriptionID string, filter *types.TicketFilter) (*dto.ListTicketsResponse, error) {
	if _, err := s.SubRepo.Get(ctx, subscriptionID); err != nil {
		return nil, err
	}

	if filter == nil {
		filter = types.NewTicketFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	filter.SubscriptionID = subscriptionID

	tickets, err := s.TicketRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.TicketRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(tickets, func(t *ticket.Ticket, _ int) *dto.TicketResponse {
		return dto.NewTicketResponse(t)
	})
	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

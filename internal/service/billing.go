package service

import (
	"context"
	"time"

	"github.com/flexprice/ticketing/internal/api/dto"
	"github.com/flexprice/ticketing/internal/domain/billing"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/samber/lo"
)

// BillingService exposes the calendar calculators over plain inputs, nothing is read or stored
type BillingService interface {
	CalculatePaymentDate(ctx context.Context, req *dto.CalculatePaymentDateRequest) (*dto.PaymentDateResponse, error)
	CalculateServicePeriod(ctx context.Context, req *dto.ServicePeriodRequest) (*dto.ServicePeriodResponse, error)
	NextServicePeriod(ctx context.Context, req *dto.NextServicePeriodRequest) (*dto.ServicePeriodResponse, error)
	ServicePeriodContains(ctx context.Context, req *dto.ServicePeriodContainsRequest) (*dto.ServicePeriodContainsResponse, error)
	PreviewProportionalTicket(ctx context.Context, req *dto.ProportionalTicketPreviewRequest) (*dto.ProportionalTicketResponse, error)
}

type billingService struct {
	ServiceParams
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{ServiceParams: params}
}

func (s *billingService) CalculatePaymentDate(ctx context.Context, req *dto.CalculatePaymentDateRequest) (*dto.PaymentDateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, svc, err := req.ToDomain(s.location())
	if err != nil {
		return nil, err
	}

	date, ok, err := billing.CalculatePaymentDate(sub, svc)
	if err != nil {
		return nil, err
	}

	resp := &dto.PaymentDateResponse{}
	if ok {
		resp.PaymentDate = lo.ToPtr(types.FormatDate(date))
	}
	return resp, nil
}

func (s *billingService) CalculateServicePeriod(ctx context.Context, req *dto.ServicePeriodRequest) (*dto.ServicePeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	paymentDate, err := types.ParseDate(req.PaymentDate, s.location())
	if err != nil {
		return nil, err
	}

	period, err := billing.CalculateServicePeriod(paymentDate, req.PaymentType, req.Frequency, req.ServiceName)
	if err != nil {
		return nil, err
	}
	return dto.NewServicePeriodResponse(period), nil
}

func (s *billingService) NextServicePeriod(ctx context.Context, req *dto.NextServicePeriodRequest) (*dto.ServicePeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := req.ToServicePeriod(s.location())
	if err != nil {
		return nil, err
	}

	next, err := billing.NextServicePeriod(current, req.Frequency, req.PaymentType, req.ServiceName)
	if err != nil {
		return nil, err
	}
	return dto.NewServicePeriodResponse(next), nil
}

func (s *billingService) ServicePeriodContains(ctx context.Context, req *dto.ServicePeriodContainsRequest) (*dto.ServicePeriodContainsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	loc := s.location()
	dates := make([]time.Time, 0, 3)
	for _, value := range []string{req.Date, req.Start, req.End} {
		date, err := types.ParseDate(value, loc)
		if err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}

	period := billing.ServicePeriod{Start: dates[1], End: dates[2]}
	return &dto.ServicePeriodContainsResponse{
		Contains: billing.IsDateInServicePeriod(dates[0], period),
	}, nil
}

// noExistingTickets answers every lookup with a miss, previews have no history
type noExistingTickets struct{}

func (noExistingTickets) ExistsForPeriod(context.Context, string, time.Time, time.Time) (bool, error) {
	return false, nil
}

func (s *billingService) PreviewProportionalTicket(ctx context.Context, req *dto.ProportionalTicketPreviewRequest) (*dto.ProportionalTicketResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, svc, err := req.ToDomain(s.location())
	if err != nil {
		return nil, err
	}

	boundary, ok, err := billing.SettlementBoundaryFor(sub, svc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return dto.NewProportionalTicketResponse(sub.ID, billing.ProportionalOutcome{Decision: billing.DecisionMissingData}), nil
	}

	outcome, err := billing.EvaluateProportionalTicket(ctx, billing.ProportionalTicketConfig{
		SubscriptionID: sub.ID,
		StartDate:      sub.StartDate,
		Boundary:       boundary,
		ServicePrice:   svc.InvoicePrice(),
		Frequency:      svc.Frequency,
		PaymentType:    sub.PaymentType,
		ServiceName:    svc.Name,
	}, s.today(), noExistingTickets{})
	if err != nil {
		return nil, err
	}
	return dto.NewProportionalTicketResponse(sub.ID, outcome), nil
}

package dto

import (
	"time"

	"github.com/flexprice/ticketing/internal/domain/billing"
	"github.com/flexprice/ticketing/internal/domain/catalog"
	"github.com/flexprice/ticketing/internal/domain/subscription"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/flexprice/ticketing/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CalculatePaymentDateRequest computes a payment date without a stored subscription.
// A missing start date or frequency yields a null payment date, not an error.
type CalculatePaymentDateRequest struct {
	StartDate   string                 `json:"start_date" validate:"omitempty,date_only"`
	Frequency   types.Frequency        `json:"frequency" validate:"omitempty,frequency"`
	Renovation  types.RenewalDayPolicy `json:"renovation" validate:"omitempty,renovation"`
	PaymentType types.PaymentType      `json:"payment_type" validate:"omitempty,payment_type"`
}

func (r *CalculatePaymentDateRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToDomain builds the transient subscription and service the calculator reads
func (r *CalculatePaymentDateRequest) ToDomain(loc *time.Location) (*subscription.Subscription, *catalog.Service, error) {
	sub := &subscription.Subscription{PaymentType: r.PaymentType}
	if r.StartDate != "" {
		start, err := parseDate("start_date", r.StartDate, loc)
		if err != nil {
			return nil, nil, err
		}
		sub.StartDate = start
	}

	svc := &catalog.Service{
		Frequency:  r.Frequency,
		Renovation: r.Renovation,
	}
	return sub, svc, nil
}

type PaymentDateResponse struct {
	// PaymentDate is null when the inputs are incomplete
	PaymentDate *string `json:"payment_date"`
}

// ServicePeriodRequest asks which interval a ticket issued on payment_date pays for
type ServicePeriodRequest struct {
	PaymentDate string            `json:"payment_date" validate:"required,date_only"`
	PaymentType types.PaymentType `json:"payment_type" validate:"required,payment_type"`
	Frequency   types.Frequency   `json:"frequency" validate:"required,frequency"`
	ServiceName string            `json:"service_name" validate:"omitempty,max=255"`
}

func (r *ServicePeriodRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type ServicePeriodResponse struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	Days        int    `json:"days"`
	Description string `json:"description"`
}

func NewServicePeriodResponse(p billing.ServicePeriod) *ServicePeriodResponse {
	return &ServicePeriodResponse{
		Start:       types.FormatDate(p.Start),
		End:         types.FormatDate(p.End),
		Days:        p.Days(),
		Description: p.Description,
	}
}

// NextServicePeriodRequest asks for the interval right after [start, end]
type NextServicePeriodRequest struct {
	Start       string            `json:"start" validate:"required,date_only"`
	End         string            `json:"end" validate:"required,date_only"`
	PaymentType types.PaymentType `json:"payment_type" validate:"required,payment_type"`
	Frequency   types.Frequency   `json:"frequency" validate:"required,frequency"`
	ServiceName string            `json:"service_name" validate:"omitempty,max=255"`
}

func (r *NextServicePeriodRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return validateRange(r.Start, r.End)
}

// ToServicePeriod parses the current interval
func (r *NextServicePeriodRequest) ToServicePeriod(loc *time.Location) (billing.ServicePeriod, error) {
	start, err := parseDate("start", r.Start, loc)
	if err != nil {
		return billing.ServicePeriod{}, err
	}
	end, err := parseDate("end", r.End, loc)
	if err != nil {
		return billing.ServicePeriod{}, err
	}
	return billing.ServicePeriod{Start: start, End: end}, nil
}

// ServicePeriodContainsRequest checks date against the inclusive interval [start, end]
type ServicePeriodContainsRequest struct {
	Date  string `json:"date" validate:"required,date_only"`
	Start string `json:"start" validate:"required,date_only"`
	End   string `json:"end" validate:"required,date_only"`
}

func (r *ServicePeriodContainsRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return validateRange(r.Start, r.End)
}

type ServicePeriodContainsResponse struct {
	Contains bool `json:"contains"`
}

// ProportionalTicketPreviewRequest evaluates the first ticket of a would-be subscription.
// Nothing is persisted and no existing ticket is assumed.
type ProportionalTicketPreviewRequest struct {
	StartDate   string                 `json:"start_date" validate:"required,date_only"`
	Frequency   types.Frequency        `json:"frequency" validate:"required,frequency"`
	Renovation  types.RenewalDayPolicy `json:"renovation" validate:"omitempty,renovation"`
	PaymentType types.PaymentType      `json:"payment_type" validate:"required,payment_type"`
	Price       decimal.Decimal        `json:"price"`
	ServiceName string                 `json:"service_name" validate:"omitempty,max=255"`
}

func (r *ProportionalTicketPreviewRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Price.IsNegative() {
		return ierr.NewError("price cannot be negative").
			WithHint("Price cannot be negative").
			WithReportableDetails(map[string]any{"price": r.Price.String()}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToDomain builds the transient subscription and service of the preview
func (r *ProportionalTicketPreviewRequest) ToDomain(loc *time.Location) (*subscription.Subscription, *catalog.Service, error) {
	start, err := parseDate("start_date", r.StartDate, loc)
	if err != nil {
		return nil, nil, err
	}

	sub := &subscription.Subscription{
		ID:          "preview",
		StartDate:   start,
		PaymentType: r.PaymentType,
	}
	svc := &catalog.Service{
		Name:       r.ServiceName,
		Frequency:  r.Frequency,
		Renovation: r.Renovation,
		BasePrice:  r.Price,
	}
	return sub, svc, nil
}

func parseDate(field, value string, loc *time.Location) (time.Time, error) {
	date, err := types.ParseDate(value, loc)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHintf("%s must be a YYYY-MM-DD date", field).
			WithReportableDetails(map[string]any{field: value}).
			Mark(ierr.ErrValidation)
	}
	return date, nil
}

func validateRange(start, end string) error {
	// YYYY-MM-DD compares chronologically as plain text
	if end < start {
		return ierr.NewError("end before start").
			WithHint("End must be on or after start").
			WithReportableDetails(map[string]any{
				"start": start,
				"end":   end,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return lo.ToPtr(types.FormatDate(*t))
}

package dto

import (
	"time"

	"github.com/flexprice/ticketing/internal/domain/billing"
	"github.com/flexprice/ticketing/internal/domain/ticket"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/flexprice/ticketing/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type TicketResponse struct {
	ID             string             `json:"id,omitempty"`
	SubscriptionID string             `json:"subscription_id"`
	ClientID       string             `json:"client_id,omitempty"`
	DueDate        string             `json:"due_date"`
	Amount         decimal.Decimal    `json:"amount"`
	TicketStatus   types.TicketStatus `json:"ticket_status"`
	GeneratedDate  string             `json:"generated_date"`
	IsManual       bool               `json:"is_manual"`
	ServiceStart   string             `json:"service_start"`
	ServiceEnd     string             `json:"service_end"`
	Description    string             `json:"description"`
	CreatedAt      *time.Time         `json:"created_at,omitempty"`
}

func NewTicketResponse(t *ticket.Ticket) *TicketResponse {
	if t == nil {
		return nil
	}

	resp := &TicketResponse{
		ID:             t.ID,
		SubscriptionID: t.SubscriptionID,
		ClientID:       t.ClientID,
		DueDate:        types.FormatDate(t.DueDate),
		Amount:         t.Amount,
		TicketStatus:   t.TicketStatus,
		GeneratedDate:  types.FormatDate(t.GeneratedDate),
		IsManual:       t.IsManual,
		ServiceStart:   types.FormatDate(t.ServiceStart),
		ServiceEnd:     types.FormatDate(t.ServiceEnd),
		Description:    t.Description,
	}
	if !t.CreatedAt.IsZero() {
		resp.CreatedAt = lo.ToPtr(t.CreatedAt)
	}
	return resp
}

// ListTicketsResponse represents the response for listing tickets
type ListTicketsResponse = types.ListResponse[*TicketResponse]

// ProportionalTicketResponse reports the branch taken and the ticket it produced, if any
type ProportionalTicketResponse struct {
	SubscriptionID string           `json:"subscription_id"`
	Decision       billing.Decision `json:"decision"`
	Ticket         *TicketResponse  `json:"ticket,omitempty"`
	// PaymentDate is the payment date stored on the subscription after the ticket
	PaymentDate    *string          `json:"payment_date,omitempty"`
	DaysUsed       int              `json:"days_used,omitempty"`
	TotalDays      int              `json:"total_days,omitempty"`
}

func NewProportionalTicketResponse(subscriptionID string, outcome billing.ProportionalOutcome) *ProportionalTicketResponse {
	return &ProportionalTicketResponse{
		SubscriptionID: subscriptionID,
		Decision:       outcome.Decision,
		Ticket:         NewTicketResponse(outcome.Ticket),
		PaymentDate:    formatOptionalDate(outcome.PaymentDate),
		DaysUsed:       outcome.DaysUsed,
		TotalDays:      outcome.TotalDays,
	}
}

// ListTicketsRequest is bound from the query string
type ListTicketsRequest struct {
	Limit        *int                 `form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset       *int                 `form:"offset" validate:"omitempty,min=0"`
	TicketStatus []types.TicketStatus `form:"ticket_status" validate:"omitempty,dive,oneof=pending paid cancelled"`
}

func (r *ListTicketsRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToFilter converts the request into a ticket filter of subscriptionID
func (r *ListTicketsRequest) ToFilter(subscriptionID string) *types.TicketFilter {
	filter := types.NewTicketFilter()
	if r.Limit != nil {
		filter.Limit = r.Limit
	}
	if r.Offset != nil {
		filter.Offset = r.Offset
	}
	filter.SubscriptionID = subscriptionID
	filter.TicketStatus = r.TicketStatus
	return filter
}

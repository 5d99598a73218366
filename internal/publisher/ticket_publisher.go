package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/ticketing/internal/domain/ticket"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/pubsub"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/shopspring/decimal"
)

const TopicTicketCreated = "ticket.created"

// TicketCreatedEvent is the payload of TopicTicketCreated
type TicketCreatedEvent struct {
	TicketID       string          `json:"ticket_id"`
	SubscriptionID string          `json:"subscription_id"`
	TenantID       string          `json:"tenant_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	ServiceStart   string          `json:"service_start"`
	ServiceEnd     string          `json:"service_end"`
	DueDate        string          `json:"due_date"`
}

// NewTicketCreatedEvent renders t with wire formatted dates
func NewTicketCreatedEvent(t *ticket.Ticket) TicketCreatedEvent {
	return TicketCreatedEvent{
		TicketID:       t.ID,
		SubscriptionID: t.SubscriptionID,
		TenantID:       t.TenantID,
		Amount:         t.Amount,
		ServiceStart:   types.FormatDate(t.ServiceStart),
		ServiceEnd:     types.FormatDate(t.ServiceEnd),
		DueDate:        types.FormatDate(t.DueDate),
	}
}

// ParseTicketCreatedEvent decodes a TopicTicketCreated message
func ParseTicketCreatedEvent(msg *message.Message) (*TicketCreatedEvent, error) {
	var event TicketCreatedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Malformed ticket.created payload").
			WithReportableDetails(map[string]any{"message_uuid": msg.UUID}).
			Mark(ierr.ErrValidation)
	}
	if event.TicketID == "" {
		return nil, ierr.NewError("ticket_id is required").
			WithReportableDetails(map[string]any{"message_uuid": msg.UUID}).
			Mark(ierr.ErrValidation)
	}
	return &event, nil
}

// TicketPublisher announces persisted tickets
type TicketPublisher interface {
	// PublishTicketCreated never fails the caller, publish errors are only logged
	PublishTicketCreated(ctx context.Context, t *ticket.Ticket)
}

type ticketPublisher struct {
	pubsub pubsub.Publisher
	logger *logger.Logger
}

func NewTicketPublisher(pubsub pubsub.PubSub, logger *logger.Logger) TicketPublisher {
	return &ticketPublisher{
		pubsub: pubsub,
		logger: logger,
	}
}

func (p *ticketPublisher) PublishTicketCreated(ctx context.Context, t *ticket.Ticket) {
	if t == nil {
		return
	}

	payload, err := json.Marshal(NewTicketCreatedEvent(t))
	if err != nil {
		p.logger.Errorw("failed to marshal ticket event",
			"ticket_id", t.ID,
			"error", err,
		)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("tenant_id", t.TenantID)
	if requestID := types.GetRequestID(ctx); requestID != "" {
		msg.Metadata.Set("request_id", requestID)
	}

	p.logger.Debugw("publishing ticket event",
		"topic", TopicTicketCreated,
		"ticket_id", t.ID,
		"subscription_id", t.SubscriptionID,
		"message_uuid", msg.UUID,
	)

	if err := p.pubsub.Publish(ctx, TopicTicketCreated, msg); err != nil {
		p.logger.Errorw("failed to publish ticket event",
			"topic", TopicTicketCreated,
			"ticket_id", t.ID,
			"error", err,
		)
	}
}

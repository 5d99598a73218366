package service

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/ticketing/internal/publisher"
	"github.com/flexprice/ticketing/internal/pubsub"
	"github.com/flexprice/ticketing/internal/pubsub/router"
	"github.com/flexprice/ticketing/internal/types"
)

// TicketEventConsumer confirms every announced ticket against storage and logs it
type TicketEventConsumer struct {
	ServiceParams
	subscriber pubsub.Subscriber
}

func NewTicketEventConsumer(params ServiceParams, subscriber pubsub.PubSub) *TicketEventConsumer {
	return &TicketEventConsumer{
		ServiceParams: params,
		subscriber:    subscriber,
	}
}

// RegisterHandler subscribes the consumer to ticket.created on r
func (c *TicketEventConsumer) RegisterHandler(r *router.Router) {
	r.AddNoPublishHandler(
		"ticket_created_audit",
		publisher.TopicTicketCreated,
		c.subscriber,
		c.Handle,
	)
}

func (c *TicketEventConsumer) Handle(msg *message.Message) error {
	event, err := publisher.ParseTicketCreatedEvent(msg)
	if err != nil {
		return err
	}

	ctx := msg.Context()
	if event.TenantID != "" {
		ctx = types.SetTenantID(ctx, event.TenantID)
	}

	t, err := c.TicketRepo.Get(ctx, event.TicketID)
	if err != nil {
		return err
	}

	c.Logger.Infow("ticket issued",
		"ticket_id", t.ID,
		"subscription_id", t.SubscriptionID,
		"amount", t.Amount.String(),
		"due_date", types.FormatDate(t.DueDate),
		"description", t.Description,
		"message_uuid", msg.UUID)
	c.Metrics.RecordEventConsumed(publisher.TopicTicketCreated)
	return nil
}

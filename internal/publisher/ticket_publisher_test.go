package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/ticketing/internal/config"
	"github.com/flexprice/ticketing/internal/domain/ticket"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/pubsub/memory"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTicket() *ticket.Ticket {
	return &ticket.Ticket{
		ID:             "tkt_1",
		SubscriptionID: "subs_1",
		Amount:         decimal.RequireFromString("26.13"),
		ServiceStart:   time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
		ServiceEnd:     time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC),
		DueDate:        time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC),
		BaseModel:      types.BaseModel{TenantID: types.DefaultTenantID},
	}
}

func TestPublishTicketCreated(t *testing.T) {
	log := logger.NewNopLogger()
	ps := memory.NewPubSub(config.GetDefaultConfig(), log)
	defer ps.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := ps.Subscribe(ctx, TopicTicketCreated)
	require.NoError(t, err)

	NewTicketPublisher(ps, log).PublishTicketCreated(ctx, testTicket())

	select {
	case msg := <-messages:
		msg.Ack()
		assert.JSONEq(t, `{
			"ticket_id": "tkt_1",
			"subscription_id": "subs_1",
			"tenant_id": "00000000-0000-0000-0000-000000000000",
			"amount": "26.13",
			"service_start": "2025-01-05",
			"service_end": "2025-01-31",
			"due_date": "2025-01-31"
		}`, string(msg.Payload))
		assert.Equal(t, types.DefaultTenantID, msg.Metadata.Get("tenant_id"))

		event, err := ParseTicketCreatedEvent(msg)
		require.NoError(t, err)
		assert.Equal(t, "subs_1", event.SubscriptionID)
		assert.True(t, event.Amount.Equal(decimal.RequireFromString("26.13")))
	case <-ctx.Done():
		t.Fatal("ticket event was not published")
	}
}

type failingPubSub struct{}

func (failingPubSub) Publish(context.Context, string, *message.Message) error {
	return errors.New("broker unavailable")
}

func (failingPubSub) Subscribe(context.Context, string) (<-chan *message.Message, error) {
	return nil, nil
}

func (failingPubSub) Close() error { return nil }

func TestPublishTicketCreated_SwallowsErrors(t *testing.T) {
	p := NewTicketPublisher(failingPubSub{}, logger.NewNopLogger())
	assert.NotPanics(t, func() {
		p.PublishTicketCreated(context.Background(), testTicket())
		p.PublishTicketCreated(context.Background(), nil)
	})
}

func TestParseTicketCreatedEvent_RejectsGarbage(t *testing.T) {
	_, err := ParseTicketCreatedEvent(message.NewMessage(watermill.NewUUID(), []byte("not json")))
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	_, err = ParseTicketCreatedEvent(message.NewMessage(watermill.NewUUID(), []byte(`{}`)))
	assert.True(t, ierr.IsValidation(err))
}

package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/ticketing/internal/domain/billing"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/publisher"
	"github.com/flexprice/ticketing/internal/pubsub/memory"
	"github.com/flexprice/ticketing/internal/testutil"
	"github.com/flexprice/ticketing/internal/types"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type TicketEventConsumerSuite struct {
	testutil.BaseServiceTestSuite
	consumer *TicketEventConsumer
}

func TestTicketEventConsumer(t *testing.T) {
	suite.Run(t, new(TicketEventConsumerSuite))
}

func (s *TicketEventConsumerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestParams(&s.BaseServiceTestSuite)
	s.consumer = NewTicketEventConsumer(params, memory.NewPubSub(s.GetConfig(), s.GetLogger()))
}

func (s *TicketEventConsumerSuite) TestHandle() {
	svc := s.CreateService("Hosting", types.FrequencyMonthly, types.RenewalFirstDay, "100")
	sub := s.CreateSubscription(svc, testutil.Date(2025, time.March, 10), types.PaymentTypeAdvance, nil)

	resp, err := NewTicketService(newTestParams(&s.BaseServiceTestSuite)).GenerateProportionalTicket(s.GetContext(), sub.ID)
	s.Require().NoError(err)
	s.Require().Equal(billing.DecisionProrated, resp.Decision)

	tickets := s.GetPublisher().Published()
	s.Require().Len(tickets, 1)
	payload, err := json.Marshal(publisher.NewTicketCreatedEvent(tickets[0]))
	s.Require().NoError(err)

	msg := message.NewMessage(watermill.NewUUID(), payload)
	s.Require().NoError(s.consumer.Handle(msg))
	s.Equal(float64(1), promtestutil.ToFloat64(
		s.GetMetrics().EventsConsumed.WithLabelValues(publisher.TopicTicketCreated)))
}

func (s *TicketEventConsumerSuite) TestHandle_UnknownTicket() {
	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"ticket_id":"tkt_missing","subscription_id":"sub_1","tenant_id":"`+types.DefaultTenantID+`"}`))
	err := s.consumer.Handle(msg)
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *TicketEventConsumerSuite) TestHandle_MalformedPayload() {
	err := s.consumer.Handle(message.NewMessage(watermill.NewUUID(), []byte("not json")))
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

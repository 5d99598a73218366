package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/ticketing/internal/domain/ticket"
	"github.com/flexprice/ticketing/internal/publisher"
)

// InMemoryTicketPublisher records every announced ticket
type InMemoryTicketPublisher struct {
	mu      sync.Mutex
	tickets []*ticket.Ticket
}

var _ publisher.TicketPublisher = (*InMemoryTicketPublisher)(nil)

func NewInMemoryTicketPublisher() *InMemoryTicketPublisher {
	return &InMemoryTicketPublisher{}
}

func (p *InMemoryTicketPublisher) PublishTicketCreated(_ context.Context, t *ticket.Ticket) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickets = append(p.tickets, t)
}

// Published returns a snapshot of the announced tickets in publish order
func (p *InMemoryTicketPublisher) Published() []*ticket.Ticket {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*ticket.Ticket(nil), p.tickets...)
}

func (p *InMemoryTicketPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickets = nil
}

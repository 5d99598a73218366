package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/ticketing/internal/domain/ticket"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/samber/lo"
)

// InMemoryTicketStore implements ticket.Repository.
// Like the tickets table it refuses a second ticket with the same idempotency key.
type InMemoryTicketStore struct {
	*InMemoryStore[*ticket.Ticket]

	mu   sync.Mutex
	keys map[string]string
}

func NewInMemoryTicketStore() *InMemoryTicketStore {
	return &InMemoryTicketStore{
		InMemoryStore: NewInMemoryStore[*ticket.Ticket](),
		keys:          make(map[string]string),
	}
}

func ticketFilterFn(ctx context.Context, t *ticket.Ticket, filter interface{}) bool {
	if t == nil {
		return false
	}

	f, ok := filter.(*types.TicketFilter)
	if !ok {
		return true
	}

	if !CheckTenantFilter(ctx, t.TenantID) {
		return false
	}

	if t.Status != f.GetStatus() {
		return false
	}

	if f.SubscriptionID != "" && t.SubscriptionID != f.SubscriptionID {
		return false
	}

	if len(f.TicketStatus) > 0 && !lo.Contains(f.TicketStatus, t.TicketStatus) {
		return false
	}

	if f.ServiceStart != nil && !types.SameDay(*f.ServiceStart, t.ServiceStart) {
		return false
	}

	if f.ServiceEnd != nil && !types.SameDay(*f.ServiceEnd, t.ServiceEnd) {
		return false
	}

	return true
}

func ticketSortFn(i, j *ticket.Ticket) bool {
	if !i.ServiceStart.Equal(j.ServiceStart) {
		return i.ServiceStart.After(j.ServiceStart)
	}
	return i.ID > j.ID
}

func (s *InMemoryTicketStore) Create(ctx context.Context, t *ticket.Ticket) error {
	if t == nil {
		return ierr.NewError("ticket cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := t.TenantID + "|" + t.IdempotencyKey
	if existing, taken := s.keys[key]; taken {
		return ierr.NewError("ticket already exists").
			WithHint("A ticket already covers this service period").
			WithReportableDetails(map[string]any{
				"idempotency_key": t.IdempotencyKey,
				"ticket_id":       existing,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	if err := s.InMemoryStore.Create(ctx, t.ID, t); err != nil {
		return err
	}
	s.keys[key] = t.ID
	return nil
}

func (s *InMemoryTicketStore) Get(ctx context.Context, id string) (*ticket.Ticket, error) {
	t, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Ticket not found").
			Mark(ierr.ErrNotFound)
	}
	return t, nil
}

func (s *InMemoryTicketStore) List(ctx context.Context, filter *types.TicketFilter) ([]*ticket.Ticket, error) {
	return s.InMemoryStore.List(ctx, filter, ticketFilterFn, ticketSortFn)
}

func (s *InMemoryTicketStore) Count(ctx context.Context, filter *types.TicketFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, ticketFilterFn)
}

func (s *InMemoryTicketStore) ExistsForPeriod(ctx context.Context, subscriptionID string, start, end time.Time) (bool, error) {
	filter := &types.TicketFilter{
		QueryFilter:    types.NewNoLimitQueryFilter(),
		SubscriptionID: subscriptionID,
		ServiceStart:   &start,
		ServiceEnd:     &end,
	}
	count, err := s.InMemoryStore.Count(ctx, filter, ticketFilterFn)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *InMemoryTicketStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InMemoryStore.Clear()
	s.keys = make(map[string]string)
}

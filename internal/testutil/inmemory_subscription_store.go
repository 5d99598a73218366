package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/ticketing/internal/domain/subscription"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/samber/lo"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]

	mu           sync.Mutex
	updateErrors map[string]error
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
		updateErrors:  make(map[string]error),
	}
}

// FailUpdatesFor makes every payment date write of id fail with err
func (s *InMemorySubscriptionStore) FailUpdatesFor(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateErrors[id] = err
}

func subscriptionFilterFn(ctx context.Context, sub *subscription.Subscription, filter interface{}) bool {
	if sub == nil {
		return false
	}

	f, ok := filter.(*types.SubscriptionFilter)
	if !ok {
		return true
	}

	if !CheckTenantFilter(ctx, sub.TenantID) {
		return false
	}

	if sub.Status != f.GetStatus() {
		return false
	}

	if len(f.SubscriptionIDs) > 0 && !lo.Contains(f.SubscriptionIDs, sub.ID) {
		return false
	}

	if f.ClientID != "" && sub.ClientID != f.ClientID {
		return false
	}

	if len(f.ServiceIDs) > 0 && !lo.Contains(f.ServiceIDs, sub.ServiceID) {
		return false
	}

	if len(f.SubscriptionStatus) > 0 && !lo.Contains(f.SubscriptionStatus, sub.SubscriptionStatus) {
		return false
	}

	return true
}

func subscriptionSortFn(i, j *subscription.Subscription) bool {
	return i.ID < j.ID
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	c := *sub
	return &c
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Subscription not found").
			Mark(ierr.ErrNotFound)
	}
	if !CheckTenantFilter(ctx, sub.TenantID) {
		return nil, ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	subs, err := s.InMemoryStore.List(ctx, filter, subscriptionFilterFn, subscriptionSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(subs, func(sub *subscription.Subscription, _ int) *subscription.Subscription {
		return copySubscription(sub)
	}), nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	return s.InMemoryStore.Update(ctx, sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) UpdatePaymentDate(ctx context.Context, id string, paymentDate time.Time) error {
	s.mu.Lock()
	failure := s.updateErrors[id]
	s.mu.Unlock()
	if failure != nil {
		return failure
	}

	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}

	updated := copySubscription(sub)
	updated.PaymentDate = &paymentDate
	updated.UpdatedAt = time.Now().UTC()
	updated.UpdatedBy = types.GetUserID(ctx)
	return s.InMemoryStore.Update(ctx, id, updated)
}

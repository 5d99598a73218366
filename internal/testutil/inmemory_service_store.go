package testutil

import (
	"context"
	"sync/atomic"

	"github.com/flexprice/ticketing/internal/domain/catalog"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/samber/lo"
)

// InMemoryServiceStore implements catalog.Repository
type InMemoryServiceStore struct {
	*InMemoryStore[*catalog.Service]

	// lookups counts Get and List calls so tests can assert on caching
	lookups atomic.Int64
}

func NewInMemoryServiceStore() *InMemoryServiceStore {
	return &InMemoryServiceStore{
		InMemoryStore: NewInMemoryStore[*catalog.Service](),
	}
}

func serviceFilterFn(ctx context.Context, svc *catalog.Service, filter interface{}) bool {
	if svc == nil {
		return false
	}

	f, ok := filter.(*types.ServiceFilter)
	if !ok {
		return true
	}

	if !CheckTenantFilter(ctx, svc.TenantID) {
		return false
	}

	if svc.Status != f.GetStatus() {
		return false
	}

	return len(f.ServiceIDs) == 0 || lo.Contains(f.ServiceIDs, svc.ID)
}

func (s *InMemoryServiceStore) Lookups() int64 {
	return s.lookups.Load()
}

func (s *InMemoryServiceStore) Create(ctx context.Context, svc *catalog.Service) error {
	if svc == nil {
		return ierr.NewError("service cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, svc.ID, svc)
}

func (s *InMemoryServiceStore) Get(ctx context.Context, id string) (*catalog.Service, error) {
	s.lookups.Add(1)
	svc, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Service not found").
			Mark(ierr.ErrNotFound)
	}
	return svc, nil
}

func (s *InMemoryServiceStore) List(ctx context.Context, filter *types.ServiceFilter) ([]*catalog.Service, error) {
	s.lookups.Add(1)
	return s.InMemoryStore.List(ctx, filter, serviceFilterFn, func(i, j *catalog.Service) bool {
		return i.ID < j.ID
	})
}

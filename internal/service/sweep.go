package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/flexprice/ticketing/internal/api/dto"
	"github.com/flexprice/ticketing/internal/cache"
	"github.com/flexprice/ticketing/internal/domain/billing"
	"github.com/flexprice/ticketing/internal/domain/catalog"
	"github.com/flexprice/ticketing/internal/domain/subscription"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

const sweepBatchSize = 100

// sweepCollector gathers per-subscription results from concurrent workers
type sweepCollector struct {
	mu       sync.Mutex
	response *dto.SweepResponse
}

func newSweepCollector(sweep string, startedAt time.Time) *sweepCollector {
	return &sweepCollector{
		response: &dto.SweepResponse{
			Sweep:     sweep,
			Errors:    make([]string, 0),
			Decisions: make(map[string]int),
			StartedAt: startedAt,
		},
	}
}

func (c *sweepCollector) candidates(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.response.TotalCandidates += n
}

func (c *sweepCollector) updated(decision billing.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.response.Updated++
	if decision != "" {
		c.response.Decisions[decision.String()]++
	}
}

func (c *sweepCollector) skipped(decision billing.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.response.Skipped++
	if decision != "" {
		c.response.Decisions[decision.String()]++
	}
}

func (c *sweepCollector) failed(subscriptionID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.response.Failed++
	c.response.Errors = append(c.response.Errors, fmt.Sprintf("subscription %s: %v", subscriptionID, err))
}

// finish stamps the end time and sorts the errors so concurrent runs report stably
func (c *sweepCollector) finish(at time.Time) *dto.SweepResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	sort.Strings(c.response.Errors)
	c.response.FinishedAt = at
	if len(c.response.Decisions) == 0 {
		c.response.Decisions = nil
	}
	return c.response
}

// forEachActiveBatch pages through every active subscription visible to ctx.
// Paging is by status only, so writes made by fn never shift later pages.
func forEachActiveBatch(ctx context.Context, p ServiceParams, fn func(ctx context.Context, batch []*subscription.Subscription) error) error {
	offset := 0
	for {
		filter := &types.SubscriptionFilter{
			QueryFilter: &types.QueryFilter{
				Limit:  lo.ToPtr(sweepBatchSize),
				Offset: lo.ToPtr(offset),
				Status: lo.ToPtr(types.StatusPublished),
			},
			SubscriptionStatus: []types.SubscriptionStatus{types.SubscriptionStatusActive},
		}

		subs, err := p.SubRepo.List(ctx, filter)
		if err != nil {
			return err
		}

		p.Logger.Debugw("processing subscription batch",
			"batch_size", len(subs),
			"offset", offset)

		if len(subs) == 0 {
			return nil
		}

		if err := fn(ctx, subs); err != nil {
			return err
		}

		offset += len(subs)
		if len(subs) < sweepBatchSize {
			return nil
		}
	}
}

// runConcurrently calls fn for every subscription with at most billing.sweep_concurrency in flight.
// Each call gets a ctx scoped to the subscription's tenant and creator.
func runConcurrently(ctx context.Context, p ServiceParams, subs []*subscription.Subscription, fn func(ctx context.Context, sub *subscription.Subscription)) {
	workers := pool.New().WithMaxGoroutines(p.sweepConcurrency())
	for _, sub := range subs {
		workers.Go(func() {
			subCtx := types.SetTenantID(ctx, sub.TenantID)
			subCtx = types.SetUserID(subCtx, sub.CreatedBy)
			fn(subCtx, sub)
		})
	}
	workers.Wait()
}

// serviceLoader resolves catalog services through the shared cache
type serviceLoader struct {
	ServiceParams
}

func (l serviceLoader) get(ctx context.Context, id string) (*catalog.Service, error) {
	key := l.cacheKey(id)
	if cached, found := l.Cache.Get(ctx, key); found {
		if svc, ok := cached.(*catalog.Service); ok {
			return svc, nil
		}
	}

	svc, err := l.ServiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Cache.Set(ctx, key, svc, 0)
	return svc, nil
}

// list returns the known services among ids, unknown ids are simply absent
func (l serviceLoader) list(ctx context.Context, ids []string) ([]*catalog.Service, error) {
	ids = lo.Uniq(ids)
	services := make([]*catalog.Service, 0, len(ids))
	missing := make([]string, 0)
	for _, id := range ids {
		if cached, found := l.Cache.Get(ctx, l.cacheKey(id)); found {
			if svc, ok := cached.(*catalog.Service); ok {
				services = append(services, svc)
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return services, nil
	}

	filter := &types.ServiceFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		ServiceIDs:  missing,
	}
	loaded, err := l.ServiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, svc := range loaded {
		l.Cache.Set(ctx, l.cacheKey(svc.ID), svc, 0)
	}
	return append(services, loaded...), nil
}

func (l serviceLoader) cacheKey(id string) string {
	return cache.GenerateKey(cache.PrefixService, id)
}

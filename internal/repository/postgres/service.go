package postgres

import (
	"context"

	"github.com/flexprice/ticketing/internal/domain/catalog"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/postgres"
	"github.com/flexprice/ticketing/internal/types"
)

type serviceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewServiceRepository(db *postgres.DB, logger *logger.Logger) catalog.Repository {
	return &serviceRepository{db: db, logger: logger}
}

const serviceColumns = `id, name, frequency, renovation, base_price, final_price,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *serviceRepository) Create(ctx context.Context, svc *catalog.Service) error {
	query := `
		INSERT INTO services (` + serviceColumns + `)
		VALUES (
			:id,
			:name,
			:frequency,
			:renovation,
			:base_price,
			:final_price,
			:tenant_id,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, svc); err != nil {
		return postgres.WrapError(err, "service", map[string]any{"service_id": svc.ID})
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id string) (*catalog.Service, error) {
	q := r.db.GetQuerier(ctx)
	query, args, err := newSelect(`SELECT ` + serviceColumns + ` FROM services`).
		where("id = ?", id).
		scoped(ctx, types.NewDefaultQueryFilter()).
		build(q)
	if err != nil {
		return nil, postgres.WrapError(err, "service", nil)
	}

	var svc catalog.Service
	if err := q.GetContext(ctx, &svc, query, args...); err != nil {
		return nil, postgres.WrapError(err, "service", map[string]any{"service_id": id})
	}
	return &svc, nil
}

func (r *serviceRepository) List(ctx context.Context, filter *types.ServiceFilter) ([]*catalog.Service, error) {
	if filter == nil {
		filter = &types.ServiceFilter{QueryFilter: types.NewDefaultQueryFilter()}
	}

	q := r.db.GetQuerier(ctx)
	b := newSelect(`SELECT ` + serviceColumns + ` FROM services`).
		scoped(ctx, filter.QueryFilter)
	if len(filter.ServiceIDs) > 0 {
		b.where("id IN (?)", filter.ServiceIDs)
	}

	query, args, err := b.order("id ASC").page(filter.QueryFilter).build(q)
	if err != nil {
		return nil, postgres.WrapError(err, "service", nil)
	}

	services := make([]*catalog.Service, 0)
	if err := q.SelectContext(ctx, &services, query, args...); err != nil {
		return nil, postgres.WrapError(err, "service", nil)
	}
	return services, nil
}

package postgres

import (
	"context"
	"time"

	"github.com/flexprice/ticketing/internal/domain/ticket"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/postgres"
	"github.com/flexprice/ticketing/internal/types"
)

type ticketRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTicketRepository(db *postgres.DB, logger *logger.Logger) ticket.Repository {
	return &ticketRepository{db: db, logger: logger}
}

const ticketColumns = `id, subscription_id, client_id, due_date, amount, ticket_status, generated_date,
	is_manual, service_start, service_end, description, idempotency_key,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

// Create relies on the unique idempotency index, a duplicate comes back as ErrAlreadyExists
func (r *ticketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	query := `
		INSERT INTO tickets (` + ticketColumns + `)
		VALUES (
			:id,
			:subscription_id,
			:client_id,
			:due_date,
			:amount,
			:ticket_status,
			:generated_date,
			:is_manual,
			:service_start,
			:service_end,
			:description,
			:idempotency_key,
			:tenant_id,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, t); err != nil {
		return postgres.WrapError(err, "ticket", map[string]any{
			"subscription_id": t.SubscriptionID,
			"idempotency_key": t.IdempotencyKey,
		})
	}
	return nil
}

func (r *ticketRepository) Get(ctx context.Context, id string) (*ticket.Ticket, error) {
	q := r.db.GetQuerier(ctx)
	query, args, err := newSelect(`SELECT ` + ticketColumns + ` FROM tickets`).
		where("id = ?", id).
		scoped(ctx, types.NewDefaultQueryFilter()).
		build(q)
	if err != nil {
		return nil, postgres.WrapError(err, "ticket", nil)
	}

	var t ticket.Ticket
	if err := q.GetContext(ctx, &t, query, args...); err != nil {
		return nil, postgres.WrapError(err, "ticket", map[string]any{"ticket_id": id})
	}
	return &t, nil
}

func (r *ticketRepository) List(ctx context.Context, filter *types.TicketFilter) ([]*ticket.Ticket, error) {
	if filter == nil {
		filter = types.NewTicketFilter()
	}

	q := r.db.GetQuerier(ctx)
	b := applyTicketFilter(ctx, newSelect(`SELECT `+ticketColumns+` FROM tickets`), filter)
	query, args, err := b.order("service_start DESC, id DESC").page(filter.QueryFilter).build(q)
	if err != nil {
		return nil, postgres.WrapError(err, "ticket", nil)
	}

	tickets := make([]*ticket.Ticket, 0)
	if err := q.SelectContext(ctx, &tickets, query, args...); err != nil {
		return nil, postgres.WrapError(err, "ticket", nil)
	}
	return tickets, nil
}

func (r *ticketRepository) Count(ctx context.Context, filter *types.TicketFilter) (int, error) {
	if filter == nil {
		filter = types.NewTicketFilter()
	}

	q := r.db.GetQuerier(ctx)
	query, args, err := applyTicketFilter(ctx, newSelect(`SELECT COUNT(*) FROM tickets`), filter).build(q)
	if err != nil {
		return 0, postgres.WrapError(err, "ticket", nil)
	}

	var count int
	if err := q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, postgres.WrapError(err, "ticket", nil)
	}
	return count, nil
}

func applyTicketFilter(ctx context.Context, b *selectBuilder, filter *types.TicketFilter) *selectBuilder {
	b.scoped(ctx, filter.QueryFilter)
	if filter.SubscriptionID != "" {
		b.where("subscription_id = ?", filter.SubscriptionID)
	}
	if len(filter.TicketStatus) > 0 {
		b.where("ticket_status IN (?)", filter.TicketStatus)
	}
	if filter.ServiceStart != nil {
		b.where("service_start = ?", types.FormatDate(*filter.ServiceStart))
	}
	if filter.ServiceEnd != nil {
		b.where("service_end = ?", types.FormatDate(*filter.ServiceEnd))
	}
	return b
}

func (r *ticketRepository) ExistsForPeriod(ctx context.Context, subscriptionID string, start, end time.Time) (bool, error) {
	q := r.db.GetQuerier(ctx)
	query := q.Rebind(`
		SELECT EXISTS (
			SELECT 1 FROM tickets
			WHERE subscription_id = ? AND service_start = ? AND service_end = ? AND status = ?
		)
	`)

	var exists bool
	err := q.GetContext(ctx, &exists, query,
		subscriptionID,
		types.FormatDate(start),
		types.FormatDate(end),
		types.StatusPublished,
	)
	if err != nil {
		return false, postgres.WrapError(err, "ticket", map[string]any{"subscription_id": subscriptionID})
	}
	return exists, nil
}

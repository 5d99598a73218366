package postgres

import (
	"context"
	"time"

	"github.com/flexprice/ticketing/internal/domain/subscription"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/postgres"
	"github.com/flexprice/ticketing/internal/types"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

const subscriptionColumns = `id, client_id, service_id, start_date, end_date, payment_type, payment_date,
	subscription_status, tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES (
			:id,
			:client_id,
			:service_id,
			:start_date,
			:end_date,
			:payment_type,
			:payment_date,
			:subscription_status,
			:tenant_id,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, sub); err != nil {
		return postgres.WrapError(err, "subscription", map[string]any{"subscription_id": sub.ID})
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	q := r.db.GetQuerier(ctx)
	query, args, err := newSelect(`SELECT ` + subscriptionColumns + ` FROM subscriptions`).
		where("id = ?", id).
		scoped(ctx, types.NewDefaultQueryFilter()).
		build(q)
	if err != nil {
		return nil, postgres.WrapError(err, "subscription", nil)
	}

	var sub subscription.Subscription
	if err := q.GetContext(ctx, &sub, query, args...); err != nil {
		return nil, postgres.WrapError(err, "subscription", map[string]any{"subscription_id": id})
	}
	return &sub, nil
}

func (r *subscriptionRepository) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}

	q := r.db.GetQuerier(ctx)
	b := newSelect(`SELECT ` + subscriptionColumns + ` FROM subscriptions`).
		scoped(ctx, filter.QueryFilter)
	if len(filter.SubscriptionIDs) > 0 {
		b.where("id IN (?)", filter.SubscriptionIDs)
	}
	if filter.ClientID != "" {
		b.where("client_id = ?", filter.ClientID)
	}
	if len(filter.ServiceIDs) > 0 {
		b.where("service_id IN (?)", filter.ServiceIDs)
	}
	if len(filter.SubscriptionStatus) > 0 {
		b.where("subscription_status IN (?)", filter.SubscriptionStatus)
	}

	// id is a ulid so this is creation order and stable across pages
	query, args, err := b.order("id ASC").page(filter.QueryFilter).build(q)
	if err != nil {
		return nil, postgres.WrapError(err, "subscription", nil)
	}

	subs := make([]*subscription.Subscription, 0)
	if err := q.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, postgres.WrapError(err, "subscription", nil)
	}
	return subs, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions SET
			client_id = :client_id,
			service_id = :service_id,
			start_date = :start_date,
			end_date = :end_date,
			payment_type = :payment_type,
			payment_date = :payment_date,
			subscription_status = :subscription_status,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id
	`

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, sub)
	if err != nil {
		return postgres.WrapError(err, "subscription", map[string]any{"subscription_id": sub.ID})
	}
	return requireAffected(result, "subscription", sub.ID)
}

func (r *subscriptionRepository) UpdatePaymentDate(ctx context.Context, id string, paymentDate time.Time) error {
	q := r.db.GetQuerier(ctx)
	query := q.Rebind(`
		UPDATE subscriptions
		SET payment_date = ?, updated_at = ?, updated_by = ?
		WHERE id = ?
	`)

	result, err := q.ExecContext(ctx, query,
		types.FormatDate(paymentDate),
		time.Now().UTC(),
		types.GetUserID(ctx),
		id,
	)
	if err != nil {
		return postgres.WrapError(err, "subscription", map[string]any{"subscription_id": id})
	}
	return requireAffected(result, "subscription", id)
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func requireAffected(result rowsAffected, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return postgres.WrapError(err, entity, nil)
	}
	if n == 0 {
		return ierr.NewErrorf("%s %s not found", entity, id).
			WithHintf("%s not found", entity).
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

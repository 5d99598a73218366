package postgres

import (
	"context"
	"testing"

	"github.com/flexprice/ticketing/internal/types"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dollarBinder struct{}

func (dollarBinder) Rebind(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}

func TestSelectBuilder(t *testing.T) {
	ctx := types.SetTenantID(context.Background(), "tenant_1")
	filter := &types.QueryFilter{Limit: lo.ToPtr(10), Offset: lo.ToPtr(20)}

	query, args, err := newSelect("SELECT id FROM subscriptions").
		scoped(ctx, filter).
		where("service_id IN (?)", []string{"svc_1", "svc_2"}).
		order("id ASC").
		page(filter).
		build(dollarBinder{})
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM subscriptions WHERE tenant_id = $1 AND status = $2 AND service_id IN ($3, $4) ORDER BY id ASC LIMIT $5 OFFSET $6", query)
	assert.Equal(t, []interface{}{"tenant_1", types.StatusPublished, "svc_1", "svc_2", 10, 20}, args)
}

func TestSelectBuilder_SweepSeesEveryTenant(t *testing.T) {
	query, args, err := newSelect("SELECT id FROM tickets").
		scoped(context.Background(), types.NewNoLimitQueryFilter()).
		page(types.NewNoLimitQueryFilter()).
		build(dollarBinder{})
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM tickets WHERE status = $1", query)
	assert.Equal(t, []interface{}{types.StatusPublished}, args)
}

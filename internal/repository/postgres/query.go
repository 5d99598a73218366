package postgres

import (
	"context"
	"strings"

	"github.com/flexprice/ticketing/internal/types"
	"github.com/jmoiron/sqlx"
)

// selectBuilder assembles a filtered SELECT with ? placeholders.
// Slice arguments are expanded by sqlx.In before rebinding to $n.
type selectBuilder struct {
	base       string
	conditions []string
	args       []interface{}
	orderBy    string
	limit      int
	offset     int
}

func newSelect(base string) *selectBuilder {
	return &selectBuilder{base: base}
}

func (b *selectBuilder) where(condition string, args ...interface{}) *selectBuilder {
	b.conditions = append(b.conditions, condition)
	b.args = append(b.args, args...)
	return b
}

// scoped limits the query to the tenant in ctx, sweeps without one see every tenant
func (b *selectBuilder) scoped(ctx context.Context, filter *types.QueryFilter) *selectBuilder {
	if tenantID := types.GetTenantID(ctx); tenantID != "" {
		b.where("tenant_id = ?", tenantID)
	}
	return b.where("status = ?", filter.GetStatus())
}

func (b *selectBuilder) page(filter *types.QueryFilter) *selectBuilder {
	if !filter.IsUnlimited() {
		b.limit = filter.GetLimit()
	}
	b.offset = filter.GetOffset()
	return b
}

func (b *selectBuilder) order(orderBy string) *selectBuilder {
	b.orderBy = orderBy
	return b
}

func (b *selectBuilder) build(q interface{ Rebind(string) string }) (string, []interface{}, error) {
	var sb strings.Builder
	sb.WriteString(b.base)
	if len(b.conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.conditions, " AND "))
	}
	if b.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy)
	}

	args := b.args
	if b.limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, b.limit)
	}
	if b.offset > 0 {
		sb.WriteString(" OFFSET ?")
		args = append(args, b.offset)
	}

	query, args, err := sqlx.In(sb.String(), args...)
	if err != nil {
		return "", nil, err
	}
	return q.Rebind(query), args, nil
}

package types

import (
	"context"
	"time"
)

// BaseModel carries the audit columns shared by every persisted record.
// Any changes to this model should be reflected in the migrations.
type BaseModel struct {
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	UpdatedBy string    `db:"updated_by" json:"updated_by"`
}

// NewBaseModel stamps tenant, actor and timestamps from ctx at the given instant
func NewBaseModel(ctx context.Context, at time.Time) BaseModel {
	return BaseModel{
		TenantID:  GetTenantID(ctx),
		Status:    StatusPublished,
		CreatedAt: at.UTC(),
		UpdatedAt: at.UTC(),
		CreatedBy: GetUserID(ctx),
		UpdatedBy: GetUserID(ctx),
	}
}

// Touch records an update by the actor in ctx
func (b *BaseModel) Touch(ctx context.Context, at time.Time) {
	b.UpdatedAt = at.UTC()
	b.UpdatedBy = GetUserID(ctx)
}

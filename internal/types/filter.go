package types

import (
	"time"

	"github.com/samber/lo"
)

const (
	FILTER_DEFAULT_LIMIT = 50
	FILTER_MAX_LIMIT     = 1000
)

// BaseFilter is the paging surface shared by every listing filter
type BaseFilter interface {
	GetLimit() int
	GetOffset() int
	GetStatus() Status
	IsUnlimited() bool
}

// QueryFilter represents a generic query filter with optional fields
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset *int    `json:"offset,omitempty" form:"offset" validate:"omitempty,min=0"`
	Status *Status `json:"status,omitempty" form:"status"`
}

// NewDefaultQueryFilter defines default values for query filters
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(FILTER_DEFAULT_LIMIT),
		Offset: lo.ToPtr(0),
		Status: lo.ToPtr(StatusPublished),
	}
}

// NewNoLimitQueryFilter returns a filter that pages through everything
func NewNoLimitQueryFilter() *QueryFilter {
	return &QueryFilter{
		Offset: lo.ToPtr(0),
		Status: lo.ToPtr(StatusPublished),
	}
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return 0
	}
	return *f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

func (f *QueryFilter) GetStatus() Status {
	if f == nil || f.Status == nil {
		return StatusPublished
	}
	return *f.Status
}

func (f *QueryFilter) IsUnlimited() bool {
	return f == nil || f.Limit == nil
}

// SubscriptionFilter narrows subscription listings
type SubscriptionFilter struct {
	*QueryFilter
	SubscriptionIDs    []string             `json:"subscription_ids,omitempty" form:"subscription_ids"`
	ClientID           string               `json:"client_id,omitempty" form:"client_id"`
	ServiceIDs         []string             `json:"service_ids,omitempty" form:"service_ids"`
	SubscriptionStatus []SubscriptionStatus `json:"subscription_status,omitempty" form:"subscription_status"`
}

// NewSubscriptionFilter creates a filter with default paging
func NewSubscriptionFilter() *SubscriptionFilter {
	return &SubscriptionFilter{QueryFilter: NewDefaultQueryFilter()}
}

// ServiceFilter narrows catalog service listings
type ServiceFilter struct {
	*QueryFilter
	ServiceIDs []string `json:"service_ids,omitempty" form:"service_ids"`
}

// TicketFilter narrows ticket listings
type TicketFilter struct {
	*QueryFilter
	SubscriptionID string         `json:"subscription_id,omitempty" form:"subscription_id"`
	TicketStatus   []TicketStatus `json:"ticket_status,omitempty" form:"ticket_status"`
	// ServiceStart and ServiceEnd match the covered interval by calendar day
	ServiceStart *time.Time `json:"service_start,omitempty" form:"service_start"`
	ServiceEnd   *time.Time `json:"service_end,omitempty" form:"service_end"`
}

// NewTicketFilter creates a filter with default paging
func NewTicketFilter() *TicketFilter {
	return &TicketFilter{QueryFilter: NewDefaultQueryFilter()}
}

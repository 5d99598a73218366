package subscription

import (
	"context"
	"time"

	"github.com/flexprice/ticketing/internal/types"
)

type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	List(ctx context.Context, filter *types.SubscriptionFilter) ([]*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	// UpdatePaymentDate stores the next billing date without touching any other field
	UpdatePaymentDate(ctx context.Context, id string, paymentDate time.Time) error
}

package ticket

import (
	"context"
	"time"

	"github.com/flexprice/ticketing/internal/types"
)

type Repository interface {
	// Create fails with ErrAlreadyExists when the idempotency key is taken
	Create(ctx context.Context, t *Ticket) error
	Get(ctx context.Context, id string) (*Ticket, error)
	List(ctx context.Context, filter *types.TicketFilter) ([]*Ticket, error)
	Count(ctx context.Context, filter *types.TicketFilter) (int, error)
	ExistsForPeriod(ctx context.Context, subscriptionID string, start, end time.Time) (bool, error)
}

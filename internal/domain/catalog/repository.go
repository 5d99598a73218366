package catalog

import (
	"context"

	"github.com/flexprice/ticketing/internal/types"
)

type Repository interface {
	Create(ctx context.Context, svc *Service) error
	Get(ctx context.Context, id string) (*Service, error)
	List(ctx context.Context, filter *types.ServiceFilter) ([]*Service, error)
}

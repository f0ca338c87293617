package laboratory

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, l *Laboratory) error
	GetByID(ctx context.Context, id uuid.UUID) (*Laboratory, error)
	// GetProfile returns the tenant's own laboratory record.
	GetProfile(ctx context.Context) (*Laboratory, error)
	Update(ctx context.Context, l *Laboratory) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Laboratory, int, error)
}

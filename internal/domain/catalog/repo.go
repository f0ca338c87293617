package catalog

import (
	"context"

	"github.com/google/uuid"
)

type StudyRepository interface {
	Create(ctx context.Context, s *Study) error
	GetByID(ctx context.Context, id uuid.UUID) (*Study, error)
	GetByCodigo(ctx context.Context, codigo int) (*Study, error)
	Update(ctx context.Context, s *Study) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List filters by a case-insensitive substring over determinacion and
	// frecuencia, or a codigo prefix when q is numeric.
	List(ctx context.Context, q string, limit, offset int) ([]*Study, int, error)
}

type PlanRepository interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	GetByNombre(ctx context.Context, nombre string) (*Plan, error)
	Update(ctx context.Context, p *Plan) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Plan, int, error)
}

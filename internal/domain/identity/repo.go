package identity

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List filters by a case-insensitive substring over name and email and
	// optionally restricts to one laboratory.
	List(ctx context.Context, q string, laboratoryID *uuid.UUID, limit, offset int) ([]*User, int, error)
}

package budget

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateWithItems persists the header and all item rows atomically.
	CreateWithItems(ctx context.Context, b *Budget, items []*Item) error
	// GetWithItems returns the header plus its items, ErrNotFound if absent.
	GetWithItems(ctx context.Context, id uuid.UUID) (*WithItems, error)
	// List filters by case-insensitive substring on patient or plan name and
	// optionally a single calendar day, newest first.
	List(ctx context.Context, q string, day *time.Time, limit, offset int) ([]*Budget, int, error)
	// Delete removes the items then the header. Missing ids are not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	// MarkSent overwrites sent_at with the delivery time.
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

package watchlist

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is a symbol tracked for periodic background analysis
type Entry struct {
	ID        uuid.UUID `db:"id"`
	Symbol    string    `db:"symbol"`
	Label     string    `db:"label"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Repository defines the interface for watchlist persistence
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetBySymbol(ctx context.Context, symbol string) (*Entry, error)
	ListActive(ctx context.Context) ([]*Entry, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cassandra/internal/domain/watchlist"
	"cassandra/pkg/errors"
)

// Compile-time check
var _ watchlist.Repository = (*WatchlistRepository)(nil)

// WatchlistRepository implements watchlist.Repository using sqlx
type WatchlistRepository struct {
	db *sqlx.DB
}

// NewWatchlistRepository creates a new watchlist repository
func NewWatchlistRepository(db *sqlx.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Create inserts a new watchlist entry
func (r *WatchlistRepository) Create(ctx context.Context, entry *watchlist.Entry) error {
	query := `
		INSERT INTO watchlist (
			id, symbol, label, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Symbol, entry.Label, entry.IsActive,
		entry.CreatedAt, entry.UpdatedAt,
	)

	return err
}

// GetBySymbol retrieves a watchlist entry by symbol
func (r *WatchlistRepository) GetBySymbol(ctx context.Context, symbol string) (*watchlist.Entry, error) {
	var entry watchlist.Entry

	query := `SELECT * FROM watchlist WHERE symbol = $1`

	err := r.db.GetContext(ctx, &entry, query, symbol)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.Wrapf(errors.ErrNotFound, "watchlist entry for %s", symbol)
		}
		return nil, err
	}

	return &entry, nil
}

// ListActive retrieves all active watchlist entries
func (r *WatchlistRepository) ListActive(ctx context.Context) ([]*watchlist.Entry, error) {
	var entries []*watchlist.Entry

	query := `SELECT * FROM watchlist WHERE is_active = true ORDER BY symbol ASC`

	err := r.db.SelectContext(ctx, &entries, query)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// SetActive toggles an entry's active flag
func (r *WatchlistRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE watchlist SET is_active = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.Wrapf(errors.ErrNotFound, "watchlist entry %s", id)
	}

	return nil
}

// Delete removes a watchlist entry
func (r *WatchlistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM watchlist WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.Wrapf(errors.ErrNotFound, "watchlist entry %s", id)
	}

	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/estately/estately/internal/domain"
)

// PostgresFavoriteRepository implements domain.FavoriteRepository using
// PostgreSQL. Membership rows and the per-target counter move in one
// transaction so the counter never drifts under concurrent toggles.
type PostgresFavoriteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresFavoriteRepository creates a new favorite repository
func NewPostgresFavoriteRepository(db *sql.DB, logger *slog.Logger) *PostgresFavoriteRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFavoriteRepository{
		db:     db,
		logger: logger,
	}
}

// Toggle adds the favorite if absent and removes it if present
func (r *PostgresFavoriteRepository) Toggle(ctx context.Context, userID string, kind domain.FavoriteKind, targetID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND target_kind = $2 AND target_id = $3
	`, userID, kind, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	favored := removed == 0
	delta := int64(-1)
	if favored {
		delta = 1
		_, err = tx.ExecContext(ctx, `
			INSERT INTO favorites (user_id, target_kind, target_id) VALUES ($1, $2, $3)
		`, userID, kind, targetID)
		if err != nil {
			return false, fmt.Errorf("failed to add favorite: %w", err)
		}
	}

	if err := r.bumpCounter(ctx, tx, kind, targetID, delta); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit favorite toggle: %w", err)
	}

	return favored, nil
}

// Remove deletes the favorite if present. Removing an absent favorite is a
// no-op, not an error.
func (r *PostgresFavoriteRepository) Remove(ctx context.Context, userID string, kind domain.FavoriteKind, targetID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND target_kind = $2 AND target_id = $3
	`, userID, kind, targetID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if removed == 0 {
		return nil
	}

	if err := r.bumpCounter(ctx, tx, kind, targetID, -1); err != nil {
		return err
	}

	return tx.Commit()
}

// ListByUser retrieves the user's favorites, newest first
func (r *PostgresFavoriteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	query := `
		SELECT user_id, target_kind, target_id, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []*domain.Favorite
	for rows.Next() {
		f := &domain.Favorite{}
		if err := rows.Scan(&f.UserID, &f.TargetKind, &f.TargetID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}

	return favorites, rows.Err()
}

// Count reads the denormalized counter for a target
func (r *PostgresFavoriteRepository) Count(ctx context.Context, kind domain.FavoriteKind, targetID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT count FROM favorite_counters WHERE target_kind = $1 AND target_id = $2
	`, kind, targetID).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return count, nil
}

func (r *PostgresFavoriteRepository) bumpCounter(ctx context.Context, tx *sql.Tx, kind domain.FavoriteKind, targetID string, delta int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO favorite_counters (target_kind, target_id, count)
		VALUES ($1, $2, GREATEST($3, 0))
		ON CONFLICT (target_kind, target_id)
		DO UPDATE SET count = GREATEST(favorite_counters.count + $3, 0)
	`, kind, targetID, delta)
	if err != nil {
		return fmt.Errorf("failed to update favorite counter: %w", err)
	}

	// Properties also carry the count inline so listings render it without a
	// second lookup.
	if kind == domain.FavoriteProperty {
		_, err = tx.ExecContext(ctx, `
			UPDATE properties SET favorite_count = GREATEST(favorite_count + $2, 0) WHERE id = $1
		`, targetID, delta)
		if err != nil {
			return fmt.Errorf("failed to update property favorite count: %w", err)
		}
	}

	return nil
}

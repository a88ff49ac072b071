package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/estately/estately/internal/domain"
)

// PostgresHoldingRepository implements domain.HoldingRepository using PostgreSQL
type PostgresHoldingRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresHoldingRepository creates a new holding repository
func NewPostgresHoldingRepository(db *sql.DB, logger *slog.Logger) *PostgresHoldingRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresHoldingRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new holding
func (r *PostgresHoldingRepository) Create(ctx context.Context, h *domain.Holding) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}

	query := `
		INSERT INTO holdings (id, user_id, property_id, shares, purchase_price, dividends)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		h.ID, h.UserID, h.PropertyID, h.Shares, h.PurchasePrice, h.Dividends,
	).Scan(&h.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create holding",
			slog.String("user_id", h.UserID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create holding: %w", err)
	}

	return nil
}

// ListByUser retrieves the user's holdings, oldest first
func (r *PostgresHoldingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Holding, error) {
	query := `
		SELECT id, user_id, property_id, shares, purchase_price, dividends, created_at
		FROM holdings
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*domain.Holding
	for rows.Next() {
		h := &domain.Holding{}
		if err := rows.Scan(&h.ID, &h.UserID, &h.PropertyID, &h.Shares, &h.PurchasePrice, &h.Dividends, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}

	return holdings, rows.Err()
}

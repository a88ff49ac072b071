package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/estately/estately/internal/domain"
)

// PostgresInquiryRepository implements domain.InquiryRepository using PostgreSQL
type PostgresInquiryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresInquiryRepository creates a new inquiry repository
func NewPostgresInquiryRepository(db *sql.DB, logger *slog.Logger) *PostgresInquiryRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresInquiryRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new inquiry in new status
func (r *PostgresInquiryRepository) Create(ctx context.Context, inq *domain.Inquiry) error {
	if inq.ID == "" {
		inq.ID = uuid.NewString()
	}
	inq.Status = domain.InquiryNew

	query := `
		INSERT INTO inquiries (id, property_id, from_user_id, to_user_id, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		inq.ID, inq.PropertyID, inq.FromUserID, inq.ToUserID, inq.Message, inq.Status,
	).Scan(&inq.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create inquiry",
			slog.String("property_id", inq.PropertyID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create inquiry: %w", err)
	}

	return nil
}

// ListByRecipient retrieves inquiries addressed to a user, newest first
func (r *PostgresInquiryRepository) ListByRecipient(ctx context.Context, toUserID string) ([]*domain.Inquiry, error) {
	query := `
		SELECT id, property_id, from_user_id, to_user_id, message, status, created_at
		FROM inquiries
		WHERE to_user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, toUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	defer rows.Close()

	var inquiries []*domain.Inquiry
	for rows.Next() {
		inq := &domain.Inquiry{}
		if err := rows.Scan(&inq.ID, &inq.PropertyID, &inq.FromUserID, &inq.ToUserID, &inq.Message, &inq.Status, &inq.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inquiry: %w", err)
		}
		inquiries = append(inquiries, inq)
	}

	return inquiries, rows.Err()
}

// MarkResponded flips an inquiry to responded
func (r *PostgresInquiryRepository) MarkResponded(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE inquiries SET status = $2 WHERE id = $1
	`, id, domain.InquiryResponded)
	if err != nil {
		return fmt.Errorf("failed to mark inquiry responded: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("inquiry %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

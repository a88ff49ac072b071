package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/estately/estately/internal/domain"
)

// PostgresBillRepository implements domain.BillRepository using PostgreSQL.
// Every status transition locks the row first so two concurrent writers cannot
// both observe the pre-transition state.
type PostgresBillRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresBillRepository creates a new bill repository
func NewPostgresBillRepository(db *sql.DB, logger *slog.Logger) *PostgresBillRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBillRepository{
		db:     db,
		logger: logger,
	}
}

const billColumns = `id, lease_id, property_id, landlord_id, tenant_id, bill_type, amount,
	due_date, status, paid_date, proof_url, proof_submitted_at, created_at, updated_at`

// Create inserts a new bill in pending status
func (r *PostgresBillRepository) Create(ctx context.Context, bill *domain.UtilityBill) error {
	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	bill.Status = domain.BillPending

	query := `
		INSERT INTO utility_bills (id, lease_id, property_id, landlord_id, tenant_id, bill_type, amount, due_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		bill.ID, bill.LeaseID, bill.PropertyID, bill.LandlordID, bill.TenantID,
		bill.BillType, bill.Amount, bill.DueDate, bill.Status,
	).Scan(&bill.CreatedAt, &bill.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create bill",
			slog.String("lease_id", bill.LeaseID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create bill: %w", err)
	}

	return nil
}

// GetByID retrieves a bill by ID
func (r *PostgresBillRepository) GetByID(ctx context.Context, id string) (*domain.UtilityBill, error) {
	query := `SELECT ` + billColumns + ` FROM utility_bills WHERE id = $1`

	bill, err := scanBill(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bill: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// ListByLandlord retrieves the landlord's bills, soonest due first
func (r *PostgresBillRepository) ListByLandlord(ctx context.Context, landlordID string) ([]*domain.UtilityBill, error) {
	query := `SELECT ` + billColumns + ` FROM utility_bills WHERE landlord_id = $1 ORDER BY due_date ASC`
	return r.list(ctx, query, landlordID)
}

// ListByTenant retrieves the tenant's bills, soonest due first
func (r *PostgresBillRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.UtilityBill, error) {
	query := `SELECT ` + billColumns + ` FROM utility_bills WHERE tenant_id = $1 ORDER BY due_date ASC`
	return r.list(ctx, query, tenantID)
}

// ListOverdue retrieves the landlord's overdue bills. Only bills the sweeper
// has already flipped count; a pending bill one second past due is not listed
// until the next sweep.
func (r *PostgresBillRepository) ListOverdue(ctx context.Context, landlordID string, now time.Time) ([]*domain.UtilityBill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM utility_bills
		WHERE landlord_id = $1 AND status = $2 AND due_date < $3
		ORDER BY due_date ASC
	`
	return r.list(ctx, query, landlordID, domain.BillOverdue, now)
}

// MarkPaid transitions a bill to paid and stamps paid_date exactly once
func (r *PostgresBillRepository) MarkPaid(ctx context.Context, billID string, paidAt time.Time) (*domain.UtilityBill, error) {
	return r.transition(ctx, billID, func(status domain.BillStatus) error {
		if !status.PayableFrom() {
			return fmt.Errorf("bill %s is %s: %w", billID, status, domain.ErrConflict)
		}
		return nil
	}, `UPDATE utility_bills SET status = $2, paid_date = $3, updated_at = now() WHERE id = $1 RETURNING `+billColumns,
		domain.BillPaid, paidAt)
}

// SubmitProof records the tenant's payment proof and moves the bill to
// submitted_for_review
func (r *PostgresBillRepository) SubmitProof(ctx context.Context, billID, proofURL string, submittedAt time.Time) (*domain.UtilityBill, error) {
	return r.transition(ctx, billID, func(status domain.BillStatus) error {
		if status == domain.BillPaid {
			return fmt.Errorf("bill %s is already paid: %w", billID, domain.ErrConflict)
		}
		return nil
	}, `UPDATE utility_bills SET status = $2, proof_url = $3, proof_submitted_at = $4, updated_at = now() WHERE id = $1 RETURNING `+billColumns,
		domain.BillSubmittedForReview, proofURL, submittedAt)
}

// SweepOverdue flips due pending bills to overdue
func (r *PostgresBillRepository) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE utility_bills
		SET status = $1, updated_at = now()
		WHERE status = $2 AND due_date < $3
	`, domain.BillOverdue, domain.BillPending, now)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep overdue bills: %w", err)
	}
	return result.RowsAffected()
}

// transition locks the bill row, checks the guard against its current status,
// then runs the update. updateQuery takes the bill ID as $1 followed by args.
func (r *PostgresBillRepository) transition(
	ctx context.Context,
	billID string,
	guard func(domain.BillStatus) error,
	updateQuery string,
	args ...interface{},
) (*domain.UtilityBill, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status domain.BillStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM utility_bills WHERE id = $1 FOR UPDATE`, billID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bill %s: %w", billID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock bill: %w", err)
	}

	if err := guard(status); err != nil {
		return nil, err
	}

	bill, err := scanBill(tx.QueryRowContext(ctx, updateQuery, append([]interface{}{billID}, args...)...))
	if err != nil {
		return nil, fmt.Errorf("failed to update bill: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bill update: %w", err)
	}

	return bill, nil
}

func (r *PostgresBillRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.UtilityBill, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*domain.UtilityBill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}

	return bills, rows.Err()
}

func scanBill(row rowScanner) (*domain.UtilityBill, error) {
	bill := &domain.UtilityBill{}
	var proofURL sql.NullString
	err := row.Scan(
		&bill.ID, &bill.LeaseID, &bill.PropertyID, &bill.LandlordID, &bill.TenantID,
		&bill.BillType, &bill.Amount, &bill.DueDate, &bill.Status,
		&bill.PaidDate, &proofURL, &bill.ProofSubmittedAt,
		&bill.CreatedAt, &bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	bill.ProofURL = proofURL.String
	return bill, nil
}

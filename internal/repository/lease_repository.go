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

// PostgresLeaseRepository implements domain.LeaseRepository using PostgreSQL
type PostgresLeaseRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresLeaseRepository creates a new lease repository
func NewPostgresLeaseRepository(db *sql.DB, logger *slog.Logger) *PostgresLeaseRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLeaseRepository{
		db:     db,
		logger: logger,
	}
}

const leaseColumns = `id, property_id, landlord_id, tenant_id, status, start_date, end_date,
	monthly_rent, created_at, updated_at`

// Create inserts a new lease in active status
func (r *PostgresLeaseRepository) Create(ctx context.Context, lease *domain.Lease) error {
	if lease.ID == "" {
		lease.ID = uuid.NewString()
	}
	lease.Status = domain.LeaseActive

	query := `
		INSERT INTO leases (id, property_id, landlord_id, tenant_id, status, start_date, end_date, monthly_rent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		lease.ID, lease.PropertyID, lease.LandlordID, lease.TenantID,
		lease.Status, lease.StartDate, lease.EndDate, lease.MonthlyRent,
	).Scan(&lease.CreatedAt, &lease.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create lease",
			slog.String("property_id", lease.PropertyID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create lease: %w", err)
	}

	return nil
}

// GetByID retrieves a lease by ID
func (r *PostgresLeaseRepository) GetByID(ctx context.Context, id string) (*domain.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE id = $1`

	lease, err := scanLease(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lease: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lease: %w", err)
	}
	return lease, nil
}

// ListByLandlord retrieves the landlord's leases, newest first
func (r *PostgresLeaseRepository) ListByLandlord(ctx context.Context, landlordID string) ([]*domain.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE landlord_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, landlordID)
}

// ListByTenant retrieves the tenant's leases, newest first
func (r *PostgresLeaseRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE tenant_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, tenantID)
}

// Terminate moves an active lease to terminated. The status guard is in SQL so
// concurrent terminations serialize on the row.
func (r *PostgresLeaseRepository) Terminate(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status domain.LeaseStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM leases WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lease %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to lock lease: %w", err)
	}

	if status != domain.LeaseActive {
		return fmt.Errorf("lease %s is %s: %w", id, status, domain.ErrConflict)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE leases SET status = $2, updated_at = now() WHERE id = $1`,
		id, domain.LeaseTerminated,
	)
	if err != nil {
		return fmt.Errorf("failed to terminate lease: %w", err)
	}

	return tx.Commit()
}

// ExpireDue flips active leases past their end date to expired
func (r *PostgresLeaseRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE leases
		SET status = $1, updated_at = now()
		WHERE status = $2 AND end_date < $3
	`, domain.LeaseExpired, domain.LeaseActive, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire leases: %w", err)
	}
	return result.RowsAffected()
}

// ActiveTenants lists tenants on the landlord's active leases
func (r *PostgresLeaseRepository) ActiveTenants(ctx context.Context, landlordID string) ([]*domain.TenantSummary, error) {
	query := `
		SELECT u.id, u.full_name, u.email, l.property_id, l.id, l.end_date
		FROM leases l
		JOIN users u ON u.id = l.tenant_id
		WHERE l.landlord_id = $1 AND l.status = $2
		ORDER BY l.end_date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, landlordID, domain.LeaseActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*domain.TenantSummary
	for rows.Next() {
		t := &domain.TenantSummary{}
		if err := rows.Scan(&t.TenantID, &t.FullName, &t.Email, &t.PropertyID, &t.LeaseID, &t.EndDate); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	return tenants, rows.Err()
}

// CountActive returns how many leases are currently active
func (r *PostgresLeaseRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM leases WHERE status = $1`, domain.LeaseActive,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active leases: %w", err)
	}
	return count, nil
}

func (r *PostgresLeaseRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Lease, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leases: %w", err)
	}
	defer rows.Close()

	var leases []*domain.Lease
	for rows.Next() {
		lease, err := scanLease(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lease: %w", err)
		}
		leases = append(leases, lease)
	}

	return leases, rows.Err()
}

func scanLease(row rowScanner) (*domain.Lease, error) {
	lease := &domain.Lease{}
	err := row.Scan(
		&lease.ID, &lease.PropertyID, &lease.LandlordID, &lease.TenantID, &lease.Status,
		&lease.StartDate, &lease.EndDate, &lease.MonthlyRent, &lease.CreatedAt, &lease.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return lease, nil
}

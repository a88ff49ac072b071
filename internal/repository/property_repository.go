package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/estately/estately/internal/domain"
)

// PostgresPropertyRepository implements domain.PropertyRepository using PostgreSQL
type PostgresPropertyRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPropertyRepository creates a new property repository
func NewPostgresPropertyRepository(db *sql.DB, logger *slog.Logger) *PostgresPropertyRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPropertyRepository{
		db:     db,
		logger: logger,
	}
}

const propertyColumns = `id, owner_id, title, description, address, city, property_kind,
	rent_monthly, area_sqm, bedrooms, available, favorite_count, share_price, total_shares,
	created_at, updated_at`

// Create inserts a new property
func (r *PostgresPropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := `
		INSERT INTO properties (id, owner_id, title, description, address, city, property_kind,
			rent_monthly, area_sqm, bedrooms, available, share_price, total_shares)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.OwnerID, p.Title, p.Description, p.Address, p.City, p.PropertyKind,
		p.RentMonthly, p.AreaSqm, p.Bedrooms, p.Available, p.SharePrice, p.TotalShares,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create property",
			slog.String("owner_id", p.OwnerID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create property: %w", err)
	}

	return nil
}

// GetByID retrieves a property by ID
func (r *PostgresPropertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	return scanProperty(r.db.QueryRowContext(ctx, query, id))
}

// List retrieves properties matching the filters, newest first
func (r *PostgresPropertyRepository) List(ctx context.Context, filters domain.PropertyFilters) ([]*domain.Property, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filters.City != "" {
		conds = append(conds, "city = "+arg(filters.City))
	}
	if filters.MinRent != nil {
		conds = append(conds, "rent_monthly >= "+arg(*filters.MinRent))
	}
	if filters.MaxRent != nil {
		conds = append(conds, "rent_monthly <= "+arg(*filters.MaxRent))
	}
	if filters.MinBedrooms != nil {
		conds = append(conds, "bedrooms >= "+arg(*filters.MinBedrooms))
	}
	if filters.Available != nil {
		conds = append(conds, "available = "+arg(*filters.Available))
	}

	query := `SELECT ` + propertyColumns + ` FROM properties`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += " LIMIT " + arg(limit)
	if filters.Offset > 0 {
		query += " OFFSET " + arg(filters.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	var properties []*domain.Property
	for rows.Next() {
		p, err := scanPropertyRows(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}

	return properties, rows.Err()
}

// Update persists the provided fields; ownership never changes.
func (r *PostgresPropertyRepository) Update(ctx context.Context, id string, update domain.PropertyUpdate) (*domain.Property, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(column string, v interface{}) {
		args = append(args, v)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if update.Title != nil {
		set("title", *update.Title)
	}
	if update.Description != nil {
		set("description", *update.Description)
	}
	if update.Address != nil {
		set("address", *update.Address)
	}
	if update.City != nil {
		set("city", *update.City)
	}
	if update.RentMonthly != nil {
		set("rent_monthly", *update.RentMonthly)
	}
	if update.AreaSqm != nil {
		set("area_sqm", *update.AreaSqm)
	}
	if update.Bedrooms != nil {
		set("bedrooms", *update.Bedrooms)
	}
	if update.Available != nil {
		set("available", *update.Available)
	}
	if update.SharePrice != nil {
		set("share_price", *update.SharePrice)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := `UPDATE properties SET ` + strings.Join(sets, ", ") +
		`, updated_at = now() WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + propertyColumns

	return scanProperty(r.db.QueryRowContext(ctx, query, args...))
}

// Delete removes a property. A property with dependent leases, bills,
// holdings, or inquiries cannot be deleted; flipping available off is the
// way to retire such a listing.
func (r *PostgresPropertyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("property %s has dependent records: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("failed to delete property: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// isForeignKeyViolation reports whether err is Postgres error 23503.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPropertyFields(row rowScanner) (*domain.Property, error) {
	p := &domain.Property{}
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Address, &p.City, &p.PropertyKind,
		&p.RentMonthly, &p.AreaSqm, &p.Bedrooms, &p.Available, &p.FavoriteCount,
		&p.SharePrice, &p.TotalShares, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanProperty(row *sql.Row) (*domain.Property, error) {
	p, err := scanPropertyFields(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("property: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return p, nil
}

func scanPropertyRows(rows *sql.Rows) (*domain.Property, error) {
	p, err := scanPropertyFields(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan property: %w", err)
	}
	return p, nil
}

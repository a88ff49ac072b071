package database

import (
	"context"
	"fmt"
)

// schemaDDL creates all tables if they do not exist. Statements are ordered by
// dependency; there is no cascading delete between aggregates.
var schemaDDL = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email         TEXT NOT NULL UNIQUE,
		full_name     TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		verified      BOOLEAN NOT NULL DEFAULT FALSE,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		owner_id       UUID NOT NULL REFERENCES users(id),
		title          TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		address        TEXT NOT NULL,
		city           TEXT NOT NULL,
		property_kind  TEXT NOT NULL DEFAULT 'residential',
		rent_monthly   BIGINT NOT NULL DEFAULT 0,
		area_sqm       DOUBLE PRECISION NOT NULL DEFAULT 0,
		bedrooms       INT NOT NULL DEFAULT 0,
		available      BOOLEAN NOT NULL DEFAULT TRUE,
		favorite_count BIGINT NOT NULL DEFAULT 0,
		share_price    DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_shares   BIGINT NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_owner ON properties(owner_id)`,
	`CREATE TABLE IF NOT EXISTS leases (
		id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		property_id  UUID NOT NULL REFERENCES properties(id),
		landlord_id  UUID NOT NULL REFERENCES users(id),
		tenant_id    UUID NOT NULL REFERENCES users(id),
		status       TEXT NOT NULL DEFAULT 'active',
		start_date   TIMESTAMPTZ NOT NULL,
		end_date     TIMESTAMPTZ NOT NULL,
		monthly_rent BIGINT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leases_landlord ON leases(landlord_id)`,
	`CREATE INDEX IF NOT EXISTS idx_leases_tenant ON leases(tenant_id)`,
	`CREATE TABLE IF NOT EXISTS utility_bills (
		id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		lease_id           UUID NOT NULL REFERENCES leases(id),
		property_id        UUID NOT NULL REFERENCES properties(id),
		landlord_id        UUID NOT NULL REFERENCES users(id),
		tenant_id          UUID NOT NULL REFERENCES users(id),
		bill_type          TEXT NOT NULL,
		amount             BIGINT NOT NULL,
		due_date           TIMESTAMPTZ NOT NULL,
		status             TEXT NOT NULL DEFAULT 'pending',
		paid_date          TIMESTAMPTZ,
		proof_url          TEXT NOT NULL DEFAULT '',
		proof_submitted_at TIMESTAMPTZ,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bills_landlord_status ON utility_bills(landlord_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_bills_tenant ON utility_bills(tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bills_due ON utility_bills(status, due_date)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user_id     UUID NOT NULL REFERENCES users(id),
		target_kind TEXT NOT NULL,
		target_id   UUID NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, target_kind, target_id)
	)`,
	`CREATE TABLE IF NOT EXISTS favorite_counters (
		target_kind TEXT NOT NULL,
		target_id   UUID NOT NULL,
		count       BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (target_kind, target_id)
	)`,
	`CREATE TABLE IF NOT EXISTS holdings (
		id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id        UUID NOT NULL REFERENCES users(id),
		property_id    UUID NOT NULL REFERENCES properties(id),
		shares         BIGINT NOT NULL,
		purchase_price DOUBLE PRECISION NOT NULL,
		dividends      DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_holdings_user ON holdings(user_id)`,
	`CREATE TABLE IF NOT EXISTS inquiries (
		id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		property_id  UUID NOT NULL REFERENCES properties(id),
		from_user_id UUID NOT NULL REFERENCES users(id),
		to_user_id   UUID NOT NULL REFERENCES users(id),
		message      TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'new',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inquiries_to_user ON inquiries(to_user_id)`,
}

// InitSchema creates the schema. Safe to run on every startup.
func (cp *ConnectionPool) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaDDL {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	cp.logger.Info("database schema initialized")
	return nil
}

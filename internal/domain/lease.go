package domain

import (
	"context"
	"time"
)

// LeaseStatus is the lifecycle state of a lease.
type LeaseStatus string

const (
	LeaseActive     LeaseStatus = "active"
	LeaseTerminated LeaseStatus = "terminated"
	LeaseExpired    LeaseStatus = "expired"
)

// Lease links one tenant, one landlord, and one property. Financial terms are
// immutable once the lease is active.
type Lease struct {
	ID          string      `json:"id"`
	PropertyID  string      `json:"propertyId"`
	LandlordID  string      `json:"landlordId"`
	TenantID    string      `json:"tenantId"`
	Status      LeaseStatus `json:"status"`
	StartDate   time.Time   `json:"startDate"`
	EndDate     time.Time   `json:"endDate"`
	MonthlyRent int64       `json:"monthlyRent"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// TenantSummary is a landlord-facing view of a tenant on an active lease.
type TenantSummary struct {
	TenantID   string    `json:"tenantId"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	PropertyID string    `json:"propertyId"`
	LeaseID    string    `json:"leaseId"`
	EndDate    time.Time `json:"endDate"`
}

// LeaseRepository defines data access for leases
type LeaseRepository interface {
	Create(ctx context.Context, lease *Lease) error
	GetByID(ctx context.Context, id string) (*Lease, error)
	ListByLandlord(ctx context.Context, landlordID string) ([]*Lease, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Lease, error)
	// Terminate moves an active lease to terminated; ErrConflict otherwise.
	Terminate(ctx context.Context, id string) error
	// ExpireDue flips active leases whose end date has passed to expired and
	// returns how many rows changed.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	// ActiveTenants lists tenants on the landlord's active leases. Terminated
	// and expired leases are excluded.
	ActiveTenants(ctx context.Context, landlordID string) ([]*TenantSummary, error)
	CountActive(ctx context.Context) (int, error)
}

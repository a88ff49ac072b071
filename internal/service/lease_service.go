package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/security"
)

// LeaseService handles lease lifecycle
type LeaseService struct {
	leaseRepo    domain.LeaseRepository
	propertyRepo domain.PropertyRepository
	userRepo     domain.UserRepository
	authz        *security.AuthorizationService
	logger       *slog.Logger
}

// NewLeaseService creates a new lease service
func NewLeaseService(
	leaseRepo domain.LeaseRepository,
	propertyRepo domain.PropertyRepository,
	userRepo domain.UserRepository,
	authz *security.AuthorizationService,
	logger *slog.Logger,
) *LeaseService {
	if logger == nil {
		logger = slog.Default()
	}

	return &LeaseService{
		leaseRepo:    leaseRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		authz:        authz,
		logger:       logger,
	}
}

// Create opens a lease on a property the actor owns
func (s *LeaseService) Create(ctx context.Context, actor *domain.User, lease *domain.Lease) (*domain.Lease, error) {
	if err := s.authz.ValidatePermission(actor.Role, security.PermCreateLease); err != nil {
		return nil, err
	}
	if lease.PropertyID == "" || lease.TenantID == "" {
		return nil, fmt.Errorf("property and tenant are required: %w", domain.ErrInvalid)
	}
	if lease.MonthlyRent < 0 {
		return nil, fmt.Errorf("rent cannot be negative: %w", domain.ErrInvalid)
	}
	if !lease.EndDate.After(lease.StartDate) {
		return nil, fmt.Errorf("end date must be after start date: %w", domain.ErrInvalid)
	}

	property, err := s.propertyRepo.GetByID(ctx, lease.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateOwnership(actor.Role, actor.ID, property.OwnerID); err != nil {
		return nil, err
	}

	tenant, err := s.userRepo.GetByID(ctx, lease.TenantID)
	if err != nil {
		return nil, fmt.Errorf("tenant lookup: %w", err)
	}
	if tenant.Role != domain.RoleTenant {
		return nil, fmt.Errorf("user %s is not a tenant: %w", tenant.ID, domain.ErrInvalid)
	}

	lease.LandlordID = property.OwnerID
	if err := s.leaseRepo.Create(ctx, lease); err != nil {
		return nil, err
	}

	s.logger.Info("lease created",
		slog.String("lease_id", lease.ID),
		slog.String("property_id", lease.PropertyID),
		slog.String("tenant_id", lease.TenantID),
	)
	return lease, nil
}

// ListForUser lists leases visible to the actor: landlords see leases they
// issued, tenants see leases they hold.
func (s *LeaseService) ListForUser(ctx context.Context, actor *domain.User) ([]*domain.Lease, error) {
	switch actor.Role {
	case domain.RoleLandlord, domain.RoleAdmin:
		return s.leaseRepo.ListByLandlord(ctx, actor.ID)
	default:
		return s.leaseRepo.ListByTenant(ctx, actor.ID)
	}
}

// Terminate moves an active lease to terminated
func (s *LeaseService) Terminate(ctx context.Context, actor *domain.User, leaseID string) error {
	if err := s.authz.ValidatePermission(actor.Role, security.PermTerminateLease); err != nil {
		return err
	}

	lease, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateOwnership(actor.Role, actor.ID, lease.LandlordID); err != nil {
		return err
	}

	if err := s.leaseRepo.Terminate(ctx, leaseID); err != nil {
		return err
	}

	s.logger.Info("lease terminated", slog.String("lease_id", leaseID))
	return nil
}

// Tenants lists tenants on the landlord's active leases
func (s *LeaseService) Tenants(ctx context.Context, actor *domain.User) ([]*domain.TenantSummary, error) {
	if err := s.authz.ValidatePermission(actor.Role, security.PermViewTenants); err != nil {
		return nil, err
	}
	return s.leaseRepo.ActiveTenants(ctx, actor.ID)
}

// ExpireDue flips active leases past their end date to expired
func (s *LeaseService) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	return s.leaseRepo.ExpireDue(ctx, now)
}

// ActiveCount returns the number of currently active leases
func (s *LeaseService) ActiveCount(ctx context.Context) (int, error) {
	return s.leaseRepo.CountActive(ctx)
}

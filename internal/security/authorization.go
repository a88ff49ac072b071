package security

import (
	"fmt"
	"log/slog"

	"github.com/estately/estately/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermCreateProperty  Permission = "create_property"
	PermUpdateProperty  Permission = "update_property"
	PermDeleteProperty  Permission = "delete_property"
	PermCreateLease     Permission = "create_lease"
	PermTerminateLease  Permission = "terminate_lease"
	PermViewTenants     Permission = "view_tenants"
	PermCreateBill      Permission = "create_bill"
	PermMarkBillPaid    Permission = "mark_bill_paid"
	PermViewOverdue     Permission = "view_overdue_bills"
	PermSubmitBillProof Permission = "submit_bill_proof"
	PermViewPortfolio   Permission = "view_portfolio"
	PermManageUsers     Permission = "manage_users"
	PermTriggerSweep    Permission = "trigger_sweep"
	PermReindexSearch   Permission = "reindex_search"
)

// RolePermissions maps roles to their permissions. Ownership checks on the
// specific resource happen in the service layer; this table only gates the
// kind of action a role may attempt.
var RolePermissions = map[domain.Role][]Permission{
	domain.RoleAdmin: {
		PermCreateProperty,
		PermUpdateProperty,
		PermDeleteProperty,
		PermCreateLease,
		PermTerminateLease,
		PermViewTenants,
		PermCreateBill,
		PermMarkBillPaid,
		PermViewOverdue,
		PermSubmitBillProof,
		PermViewPortfolio,
		PermManageUsers,
		PermTriggerSweep,
		PermReindexSearch,
	},
	domain.RoleLandlord: {
		PermCreateProperty,
		PermUpdateProperty,
		PermDeleteProperty,
		PermCreateLease,
		PermTerminateLease,
		PermViewTenants,
		PermCreateBill,
		PermMarkBillPaid,
		PermViewOverdue,
		PermViewPortfolio,
	},
	domain.RoleAgent: {
		PermCreateProperty,
		PermUpdateProperty,
		PermViewPortfolio,
	},
	domain.RoleBuilder: {
		PermCreateProperty,
		PermUpdateProperty,
		PermViewPortfolio,
	},
	domain.RoleTenant: {
		PermSubmitBillProof,
		PermViewPortfolio,
	},
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role domain.Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission validates that a role has a specific permission
func (as *AuthorizationService) ValidatePermission(role domain.Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("%s role cannot %s: %w", role, permission, domain.ErrForbidden)
	}
	return nil
}

// GetRolePermissions returns all permissions for a role
func (as *AuthorizationService) GetRolePermissions(role domain.Role) []Permission {
	return RolePermissions[role]
}

// ValidateOwnership checks that the acting user owns the resource. Admin
// bypasses the check.
func (as *AuthorizationService) ValidateOwnership(role domain.Role, actorID, ownerID string) error {
	if role == domain.RoleAdmin {
		return nil
	}
	if actorID != ownerID {
		as.logger.Warn("ownership check failed",
			slog.String("actor", actorID),
			slog.String("owner", ownerID),
		)
		return fmt.Errorf("not the resource owner: %w", domain.ErrForbidden)
	}
	return nil
}

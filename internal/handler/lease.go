package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/service"
)

// LeaseHandler handles lease endpoints
type LeaseHandler struct {
	leaseService *service.LeaseService
	logger       *slog.Logger
}

// NewLeaseHandler creates a new lease handler
func NewLeaseHandler(leaseService *service.LeaseService, logger *slog.Logger) *LeaseHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &LeaseHandler{
		leaseService: leaseService,
		logger:       logger,
	}
}

// CreateLeaseRequest represents the create payload. Dates are RFC 3339.
type CreateLeaseRequest struct {
	PropertyID  string    `json:"propertyId"`
	TenantID    string    `json:"tenantId"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	MonthlyRent int64     `json:"monthlyRent"`
}

// Create handles POST /api/leases
func (h *LeaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req CreateLeaseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lease, err := h.leaseService.Create(r.Context(), actor, &domain.Lease{
		PropertyID:  req.PropertyID,
		TenantID:    req.TenantID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		MonthlyRent: req.MonthlyRent,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, lease)
}

// List handles GET /api/leases
func (h *LeaseHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	leases, err := h.leaseService.ListForUser(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, leases)
}

// Terminate handles POST /api/leases/{id}/terminate
func (h *LeaseHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.leaseService.Terminate(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "lease terminated")
}

// Tenants handles GET /api/landlord/tenants
func (h *LeaseHandler) Tenants(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	tenants, err := h.leaseService.Tenants(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}

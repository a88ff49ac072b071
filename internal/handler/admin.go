package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/estately/estately/internal/security"
	"github.com/estately/estately/internal/security/audit"
)

// SweepRunner triggers one status sweep outside the schedule.
type SweepRunner interface {
	RunNow(ctx context.Context) (billsFlipped, leasesFlipped int64, err error)
}

// AdminHandler handles operational endpoints
type AdminHandler struct {
	sweeper SweepRunner
	authz   *security.AuthorizationService
	audits  *audit.Logger
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(sweeper SweepRunner, authz *security.AuthorizationService, audits *audit.Logger, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AdminHandler{
		sweeper: sweeper,
		authz:   authz,
		audits:  audits,
		logger:  logger,
	}
}

// SweepResult reports what a manual sweep changed
type SweepResult struct {
	BillsOverdue  int64 `json:"billsOverdue"`
	LeasesExpired int64 `json:"leasesExpired"`
}

// Sweep handles POST /api/admin/sweep
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.authz.ValidatePermission(actor.Role, security.PermTriggerSweep); err != nil {
		h.audits.LogDenied(r.Context(), actor.ID, "manual sweep")
		writeError(w, h.logger, err)
		return
	}

	bills, leases, err := h.sweeper.RunNow(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("manual sweep triggered",
		slog.String("user_id", actor.ID),
		slog.Int64("bills_overdue", bills),
		slog.Int64("leases_expired", leases),
	)
	writeJSON(w, http.StatusOK, SweepResult{BillsOverdue: bills, LeasesExpired: leases})
}

package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/security/audit"
	"github.com/estately/estately/internal/service"
	"github.com/estately/estately/internal/upload"
)

// BillHandler handles utility bill endpoints
type BillHandler struct {
	billService *service.BillService
	uploads     upload.Store
	audits      *audit.Logger
	logger      *slog.Logger
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService *service.BillService, uploads upload.Store, audits *audit.Logger, logger *slog.Logger) *BillHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &BillHandler{
		billService: billService,
		uploads:     uploads,
		audits:      audits,
		logger:      logger,
	}
}

// CreateBillRequest represents the create payload
type CreateBillRequest struct {
	LeaseID  string    `json:"leaseId"`
	BillType string    `json:"billType"`
	Amount   int64     `json:"amount"`
	DueDate  time.Time `json:"dueDate"`
}

// Create handles POST /api/bills
func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req CreateBillRequest
	if !decodeBody(w, r, &req) {
		return
	}

	bill, err := h.billService.Create(r.Context(), actor, &domain.UtilityBill{
		LeaseID:  req.LeaseID,
		BillType: req.BillType,
		Amount:   req.Amount,
		DueDate:  req.DueDate,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, bill)
}

// List handles GET /api/bills
func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	bills, err := h.billService.ListForUser(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

// ListOverdue handles GET /api/bills/overdue
func (h *BillHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	bills, err := h.billService.ListOverdue(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

// MarkPaid handles POST /api/bills/{id}/mark-as-paid
func (h *BillHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	bill, err := h.billService.MarkPaid(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.audits.LogBillTransition(r.Context(), actor.ID, bill.ID, string(bill.Status))
	writeJSON(w, http.StatusOK, bill)
}

// SubmitPayment handles POST /api/bills/{id}/submit-payment. The proof file
// arrives as multipart form data under the "proof" field.
func (h *BillHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "multipart form expected")
		return
	}

	file, header, err := r.FormFile("proof")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "proof file is required")
		return
	}
	defer file.Close()

	proofURL, err := h.uploads.Save(header.Filename, file)
	if err != nil {
		h.logger.Warn("proof upload rejected",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	bill, err := h.billService.SubmitProof(r.Context(), actor, r.PathValue("id"), proofURL)
	if err != nil {
		// The proof was stored before the transition was validated; take
		// it back so rejected submissions do not pile up on disk.
		if removeErr := h.uploads.Remove(proofURL); removeErr != nil {
			h.logger.Warn("failed to remove rejected proof",
				slog.String("url", proofURL),
				slog.String("error", removeErr.Error()),
			)
		}
		writeError(w, h.logger, err)
		return
	}

	h.audits.LogBillTransition(r.Context(), actor.ID, bill.ID, string(bill.Status))
	writeJSON(w, http.StatusOK, bill)
}

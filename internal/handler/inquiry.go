package handler

import (
	"log/slog"
	"net/http"

	"github.com/estately/estately/internal/service"
)

// InquiryHandler handles inquiry endpoints
type InquiryHandler struct {
	inquiryService *service.InquiryService
	logger         *slog.Logger
}

// NewInquiryHandler creates a new inquiry handler
func NewInquiryHandler(inquiryService *service.InquiryService, logger *slog.Logger) *InquiryHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &InquiryHandler{
		inquiryService: inquiryService,
		logger:         logger,
	}
}

// CreateInquiryRequest represents the inquiry payload
type CreateInquiryRequest struct {
	PropertyID string `json:"propertyId"`
	Message    string `json:"message"`
}

// Create handles POST /api/inquiries
func (h *InquiryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req CreateInquiryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	inquiry, err := h.inquiryService.Create(r.Context(), actor.ID, req.PropertyID, req.Message)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, inquiry)
}

// List handles GET /api/inquiries
func (h *InquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	inquiries, err := h.inquiryService.ListReceived(r.Context(), actor.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, inquiries)
}

// MarkResponded handles POST /api/inquiries/{id}/respond
func (h *InquiryHandler) MarkResponded(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.inquiryService.MarkResponded(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "inquiry marked responded")
}

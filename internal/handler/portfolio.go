package handler

import (
	"log/slog"
	"net/http"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/service"
)

// PortfolioHandler handles investment endpoints
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
	logger           *slog.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(portfolioService *service.PortfolioService, logger *slog.Logger) *PortfolioHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &PortfolioHandler{
		portfolioService: portfolioService,
		logger:           logger,
	}
}

// AddHoldingRequest represents the purchase payload
type AddHoldingRequest struct {
	PropertyID    string  `json:"propertyId"`
	Shares        int64   `json:"shares"`
	PurchasePrice float64 `json:"purchasePrice"`
}

// AddHolding handles POST /api/portfolio/holdings
func (h *PortfolioHandler) AddHolding(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req AddHoldingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	holding, err := h.portfolioService.AddHolding(r.Context(), actor.ID, &domain.Holding{
		PropertyID:    req.PropertyID,
		Shares:        req.Shares,
		PurchasePrice: req.PurchasePrice,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, holding)
}

// Summary handles GET /api/portfolio
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	summary, err := h.portfolioService.Summary(r.Context(), actor.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Holdings handles GET /api/portfolio/holdings
func (h *PortfolioHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	holdings, err := h.portfolioService.Holdings(r.Context(), actor.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, holdings)
}

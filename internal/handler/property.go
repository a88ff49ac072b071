package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/search"
	"github.com/estately/estately/internal/service"
)

// PropertyHandler handles listing endpoints
type PropertyHandler struct {
	propertyService *service.PropertyService
	logger          *slog.Logger
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(propertyService *service.PropertyService, logger *slog.Logger) *PropertyHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &PropertyHandler{
		propertyService: propertyService,
		logger:          logger,
	}
}

// CreatePropertyRequest represents the create payload
type CreatePropertyRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	PropertyKind string  `json:"propertyKind"`
	RentMonthly  int64   `json:"rentMonthly"`
	AreaSqm      float64 `json:"areaSqm"`
	Bedrooms     int     `json:"bedrooms"`
	SharePrice   float64 `json:"sharePrice"`
	TotalShares  int64   `json:"totalShares"`
}

// Create handles POST /api/properties
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req CreatePropertyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	property, err := h.propertyService.Create(r.Context(), actor, &domain.Property{
		Title:        req.Title,
		Description:  req.Description,
		Address:      req.Address,
		City:         req.City,
		PropertyKind: req.PropertyKind,
		RentMonthly:  req.RentMonthly,
		AreaSqm:      req.AreaSqm,
		Bedrooms:     req.Bedrooms,
		SharePrice:   req.SharePrice,
		TotalShares:  req.TotalShares,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, property)
}

// Get handles GET /api/properties/{id}
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	property, err := h.propertyService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, property)
}

// List handles GET /api/properties
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := domain.PropertyFilters{
		City:   q.Get("city"),
		Limit:  intQuery(q.Get("limit")),
		Offset: intQuery(q.Get("offset")),
	}
	if v := q.Get("minRent"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.MinRent = &n
		}
	}
	if v := q.Get("maxRent"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.MaxRent = &n
		}
	}
	if v := q.Get("minBedrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.MinBedrooms = &n
		}
	}
	if v := q.Get("available"); v != "" {
		b := v == "true" || v == "1"
		filters.Available = &b
	}

	properties, err := h.propertyService.List(r.Context(), filters)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, properties)
}

// UpdatePropertyRequest represents the update payload; absent fields stay
// unchanged
type UpdatePropertyRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	RentMonthly *int64   `json:"rentMonthly"`
	AreaSqm     *float64 `json:"areaSqm"`
	Bedrooms    *int     `json:"bedrooms"`
	Available   *bool    `json:"available"`
	SharePrice  *float64 `json:"sharePrice"`
}

// Update handles PUT /api/properties/{id}
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req UpdatePropertyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	property, err := h.propertyService.Update(r.Context(), actor, r.PathValue("id"), domain.PropertyUpdate{
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		RentMonthly: req.RentMonthly,
		AreaSqm:     req.AreaSqm,
		Bedrooms:    req.Bedrooms,
		Available:   req.Available,
		SharePrice:  req.SharePrice,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, property)
}

// Delete handles DELETE /api/properties/{id}
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.propertyService.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "property deleted")
}

// Search handles GET /api/search
func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := search.FilterParams{
		Query:        q.Get("q"),
		City:         q.Get("city"),
		PropertyKind: q.Get("kind"),
		SortBy:       q.Get("sort"),
		Limit:        int64(intQuery(q.Get("limit"))),
		Offset:       int64(intQuery(q.Get("offset"))),
	}
	if v := q.Get("minRent"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			params.MinRent = &n
		}
	}
	if v := q.Get("maxRent"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			params.MaxRent = &n
		}
	}
	if v := q.Get("minBedrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.MinBedrooms = &n
		}
	}
	if v := q.Get("available"); v != "" {
		b := v == "true" || v == "1"
		params.Available = &b
	}

	result, err := h.propertyService.Search(r.Context(), params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Reindex handles POST /api/admin/reindex
func (h *PropertyHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	count, err := h.propertyService.Reindex(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"indexed": count})
}

func intQuery(v string) int {
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

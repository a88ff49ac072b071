package handler

import (
	"log/slog"
	"net/http"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/service"
)

// FavoritesHandler handles bookmark endpoints
type FavoritesHandler struct {
	favoritesService *service.FavoritesService
	logger           *slog.Logger
}

// NewFavoritesHandler creates a new favorites handler
func NewFavoritesHandler(favoritesService *service.FavoritesService, logger *slog.Logger) *FavoritesHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &FavoritesHandler{
		favoritesService: favoritesService,
		logger:           logger,
	}
}

// ToggleResult reports the state after a toggle
type ToggleResult struct {
	Favored bool `json:"favored"`
}

// Toggle handles POST /api/users/favorites/{kind}/{id}. Posting the same
// target twice removes the favorite again.
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	kind := domain.FavoriteKind(r.PathValue("kind"))
	favored, err := h.favoritesService.Toggle(r.Context(), actor.ID, kind, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ToggleResult{Favored: favored})
}

// Remove handles DELETE /api/users/favorites/{kind}/{id}
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	kind := domain.FavoriteKind(r.PathValue("kind"))
	if err := h.favoritesService.Remove(r.Context(), actor.ID, kind, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "favorite removed")
}

// List handles GET /api/users/favorites
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	favorites, err := h.favoritesService.List(r.Context(), actor.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, favorites)
}

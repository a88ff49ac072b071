package handler

import (
	"encoding/json"
	"net/http"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/security/middleware"
)

// actorFromRequest builds the acting user from the verified token claims.
// The role in the token is trusted for the token's lifetime; ownership checks
// against fresh rows happen in the service layer.
func actorFromRequest(r *http.Request) (*domain.User, bool) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		return nil, false
	}
	return &domain.User{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}, true
}

func writeUnauthorized(w http.ResponseWriter) {
	writeErrorStatus(w, http.StatusUnauthorized, "authentication required")
}

func writeErrorStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Success: false, Message: message})
}

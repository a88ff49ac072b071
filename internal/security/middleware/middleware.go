package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/estately/estately/internal/security/audit"
	"github.com/estately/estately/internal/security/auth"
	"github.com/estately/estately/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

// isPublic reports whether the request needs no credentials. Listings and
// search are browsable anonymously; everything mutating is not.
func isPublic(r *http.Request) bool {
	path := r.URL.Path
	switch path {
	case "/health", "/healthz", "/ready", "/readyz", "/metrics":
		return true
	}
	// Verification and password changes require a signed-in user; the rest
	// of the auth surface is reachable before signin by definition.
	if strings.HasPrefix(path, "/api/auth/") &&
		path != "/api/auth/verify" && path != "/api/auth/change-password" {
		return true
	}
	if r.Method == http.MethodGet &&
		(path == "/api/properties" || strings.HasPrefix(path, "/api/properties/") || path == "/api/search") {
		return true
	}
	return false
}

func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), audit.RequestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// JWTMiddleware authenticates requests from the Authorization header or, when
// absent, the session cookie. Public endpoints pass through untouched.
func JWTMiddleware(tm *auth.TokenManager, sessionCookie string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := ""
			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				extracted, err := auth.ExtractToken(authHeader)
				if err != nil {
					http.Error(w, `{"success":false,"message":"invalid authorization header"}`, http.StatusUnauthorized)
					return
				}
				tokenString = extracted
			} else if cookie, err := r.Cookie(sessionCookie); err == nil {
				tokenString = cookie.Value
			}

			if tokenString == "" {
				http.Error(w, `{"success":false,"message":"authentication required"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				log.Debug("token validation failed", slog.String("error", err.Error()))
				http.Error(w, `{"success":false,"message":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/health", "/healthz", "/ready", "/readyz", "/metrics":
				next.ServeHTTP(w, r)
				return
			}

			key := clientKey(r)
			if !limiter.Allow(key) {
				log.Warn("rate limit exceeded", slog.String("key", key))
				http.Error(w, `{"success":false,"message":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			// Credential endpoints get a much tighter budget to slow
			// down brute forcing.
			if isCredentialPath(r) && !limiter.AllowStrict(key, 10, time.Minute) {
				log.Warn("credential rate limit exceeded", slog.String("key", key))
				http.Error(w, `{"success":false,"message":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				userID = claims.UserID
			}

			switch {
			case r.Method == http.MethodDelete:
				auditLog.LogAction(r.Context(), userID, "delete", "resource", r.PathValue("id"), "initiated", r.URL.Path)
			case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/mark-as-paid"):
				auditLog.LogAction(r.Context(), userID, "mark_paid", "utility_bill", r.PathValue("id"), "initiated", "")
			case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/submit-payment"):
				auditLog.LogAction(r.Context(), userID, "submit_proof", "utility_bill", r.PathValue("id"), "initiated", "")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

func isCredentialPath(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	switch r.URL.Path {
	case "/api/auth/signin", "/api/auth/signup", "/api/auth/forgot-password", "/api/auth/reset-password":
		return true
	}
	return false
}

// clientKey prefers the authenticated user; anonymous traffic is bucketed by
// remote address.
func clientKey(r *http.Request) string {
	if claims := GetClaimsFromContext(r.Context()); claims != nil {
		return claims.UserID
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}

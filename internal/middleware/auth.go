package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"fundcrm/internal/domain"
	"fundcrm/internal/service"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "auth_token"

// Auth validates the session cookie, confirms the account is still
// active, and loads the identity and client IP into the context.
// Requests without a valid session get 401.
//
// The account lookup is per request on purpose: deactivating a user
// must cut off their existing sessions, not just new logins.
func Auth(jwtSecret []byte, users domain.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w, "authentication required")
				return
			}

			claims := &service.SessionClaims{}
			token, err := jwt.ParseWithClaims(cookie.Value, claims, func(*jwt.Token) (any, error) {
				return jwtSecret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				writeUnauthorized(w, "invalid or expired session")
				return
			}

			userID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil {
				writeUnauthorized(w, "invalid session subject")
				return
			}

			u, err := users.GetActiveByID(r.Context(), userID)
			if err != nil {
				writeUnauthorized(w, "account is no longer active")
				return
			}

			ctx := domain.WithUser(r.Context(), domain.ContextUser{
				ID:       u.ID,
				Email:    u.Email,
				FullName: u.FullName,
				Role:     u.Role,
			})
			ctx = domain.WithClientIP(ctx, clientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route subtree to the given roles. It must sit
// inside Auth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := domain.UserFromContext(r.Context())
			if !ok {
				writeUnauthorized(w, "authentication required")
				return
			}
			if !allowed[u.Role] {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "insufficient permissions",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

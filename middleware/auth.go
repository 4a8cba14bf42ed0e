package middleware

import (
	"context"
	"net/http"
	"strings"

	"nfl-dynasty-go/services"
)

// ClaimsContextKey is the key used to store commissioner claims in the
// request context.
type ClaimsContextKey string

const ClaimsKey ClaimsContextKey = "commissioner"

// AuthMiddleware gates mutating endpoints behind the commissioner token.
type AuthMiddleware struct {
	authService *services.AuthService
}

func NewAuthMiddleware(authService *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireCommissioner rejects requests without a valid commissioner token.
func (m *AuthMiddleware) RequireCommissioner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.claimsFromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// claimsFromRequest accepts the token from the Authorization header or the
// auth_token cookie.
func (m *AuthMiddleware) claimsFromRequest(r *http.Request) (*services.CommissionerClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return m.authService.ValidateToken(parts[1])
		}
	}

	cookie, err := r.Cookie("auth_token")
	if err == nil && cookie.Value != "" {
		return m.authService.ValidateToken(cookie.Value)
	}
	return nil, http.ErrNoCookie
}

// ClaimsFromContext retrieves the commissioner claims from request context.
func ClaimsFromContext(r *http.Request) *services.CommissionerClaims {
	if claims, ok := r.Context().Value(ClaimsKey).(*services.CommissionerClaims); ok {
		return claims
	}
	return nil
}

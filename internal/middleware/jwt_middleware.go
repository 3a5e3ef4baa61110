package middleware

import (
	"context"
	"net/http"
	"strings"

	"alias_gateway/internal/auth"
	"alias_gateway/internal/config"
	"alias_gateway/internal/utils"
)

// ContextKey defines the type for context keys to avoid conflicts
type ContextKey string

const (
	AdminClaimsKey ContextKey = "adminClaims"
	AdminUserKey   ContextKey = "adminUser"
)

// AdminJWTMiddleware validates admin session tokens on admin routes.
func AdminJWTMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := r.Header.Get("Authorization")
			if tokenString == "" {
				utils.RespondWithError(w, http.StatusUnauthorized, "Missing authentication token")
				return
			}

			// Remove "Bearer " prefix if present
			tokenString = strings.TrimPrefix(tokenString, "Bearer ")

			claims, err := auth.ValidateAdminJWT(tokenString, cfg)
			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			// Embed claims into request context
			ctx := context.WithValue(r.Context(), AdminClaimsKey, claims)
			ctx = context.WithValue(ctx, AdminUserKey, claims.User)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdminClaims retrieves the admin claims from the request context
func GetAdminClaims(ctx context.Context) (*auth.AdminClaims, bool) {
	claims, ok := ctx.Value(AdminClaimsKey).(*auth.AdminClaims)
	return claims, ok
}

// GetAdminUser retrieves the admin user from the request context
func GetAdminUser(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(AdminUserKey).(string)
	return user, ok
}

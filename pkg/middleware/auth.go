package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"socialgram/internal/data/repository"
	"socialgram/pkg/token"
	"socialgram/pkg/utils"
)

// Auth validates the bearer access token and puts the account id on the
// request context. Tokens are identity carriers only: services still gate
// operations on the account's auth progression.
func Auth(issuer *token.Issuer, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			userID, err := issuer.ValidateAccess(parts[1])
			if err != nil {
				logger.Warn("Access token rejected", zap.Error(err))
				utils.ResponseError(w, err)
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the account id when a valid bearer token is present
// and passes the request through anonymously otherwise. Used on public read
// endpoints whose payload personalizes for a known viewer.
func OptionalAuth(issuer *token.Issuer, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				if userID, err := issuer.ValidateAccess(parts[1]); err == nil {
					r = r.WithContext(utils.SetUserContext(r.Context(), userID))
				} else {
					logger.Debug("Optional auth token rejected", zap.Error(err))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Admin requires the authenticated account to hold the ADMIN or MANAGER role.
func Admin(userRepo repository.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error("Admin check: failed to get user",
					zap.Error(err), zap.String("user_id", userID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			if user == nil || (user.Role != "ADMIN" && user.Role != "MANAGER") {
				logger.Warn("Admin check: insufficient role",
					zap.String("user_id", userID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

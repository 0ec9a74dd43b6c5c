package middleware

import (
	"context"
	"net/http"
	"time"

	"anara-skills/registrar/internal/auth"
	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/logging"
	"anara-skills/registrar/internal/services"
)

// BlockStatus reports whether the account id exists and whether it is blocked.
type BlockStatus func(ctx context.Context, id string) (found bool, blocked bool, err error)

// IsActiveMiddleware rejects authenticated callers whose account has since
// been removed or blocked. Must run after AuthMiddleware.
func IsActiveMiddleware(status BlockStatus) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initTime := time.Now()

			claims := auth.GetUserClaims(r.Context())
			if claims == nil || claims.UserID() == "" {
				common.RespondErrorDetail(w, initTime, http.StatusUnauthorized, "Unauthorized", services.CodeInvalidToken, nil)
				return
			}

			found, blocked, err := status(r.Context(), claims.UserID())
			switch {
			case err != nil:
				logging.Error("Block status lookup failed", "user_id", claims.UserID(), "error", err.Error())
				common.RespondErrorDetail(w, initTime, http.StatusInternalServerError, "Server error", services.CodeStorageFailed, nil)
				return
			case !found:
				common.RespondErrorDetail(w, initTime, http.StatusNotFound, "Account not found", services.CodeNotFound, nil)
				return
			case blocked:
				common.RespondErrorDetail(w, initTime, http.StatusForbidden, "Access denied. Account is blocked.", services.CodeAccountBlocked, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

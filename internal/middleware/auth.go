package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anara-skills/registrar/internal/auth"
	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/logging"
	"anara-skills/registrar/internal/services"
)

// TokenCookie is the cookie the web client stores the session token in.
const TokenCookie = "token"

// TokenVerifier checks a session token for one role.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string, role constants.Role) (*auth.JWTClaims, error)
}

// AuthMiddleware accepts a bearer token or the token cookie signed with the
// secret of role and stores the claims in the request context.
func AuthMiddleware(tokens TokenVerifier, role constants.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initTime := time.Now()

			token := bearerToken(r)
			if token == "" {
				common.RespondErrorDetail(w, initTime, http.StatusUnauthorized,
					"Please login to access this resource.", services.CodeInvalidToken, nil)
				return
			}

			claims, err := tokens.Verify(r.Context(), token, role)
			if err != nil {
				msg := "Invalid or expired token."
				if errors.Is(err, auth.ErrTokenRevoked) {
					msg = "Session has been logged out."
				}
				logging.Debug("Token rejected", "role", role.String(), "error", err.Error())
				common.RespondErrorDetail(w, initTime, http.StatusUnauthorized, msg, services.CodeInvalidToken, nil)
				return
			}

			annotate(r.Context(), claims)
			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

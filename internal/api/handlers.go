package api

import (
	"net/http"
	"time"

	"anara-skills/registrar/internal/auth"
	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/services"
)

// requireClaims returns the caller set by the auth middleware or writes 401.
func requireClaims(w http.ResponseWriter, r *http.Request, initTime time.Time) (auth.UserClaims, bool) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil || claims.UserID() == "" {
		common.RespondErrorDetail(w, initTime, http.StatusUnauthorized, "Unauthorized: missing claims", services.CodeInvalidToken, nil)
		return nil, false
	}
	return claims, true
}

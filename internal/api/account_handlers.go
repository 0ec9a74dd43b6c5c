package api

import (
	"net/http"
	"time"

	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/middleware"
	"anara-skills/registrar/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

func sessionCookie(r *http.Request, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
}

// AdminRegisterHandler handles POST /api/v1/admin/register
func AdminRegisterHandler(accounts AccountManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.AdminRegisterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, "Invalid request body")
			return
		}

		admin, err := accounts.RegisterAdmin(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Admin registered successfully.", admin, http.StatusCreated)
	}
}

// LoginHandler handles POST .../login for role and sets the session cookie.
func LoginHandler(accounts AccountManager, role constants.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, "Invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			respondBadRequest(w, initTime, "Please enter email and password.")
			return
		}

		resp, err := accounts.Login(r.Context(), role, req.Email, req.Password)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}

		http.SetCookie(w, sessionCookie(r, resp.Token, resp.ExpiresAt))
		common.RespondSuccess(w, initTime, "Logged in successfully.", resp)
	}
}

// LogoutHandler handles GET .../logout, revoking the presented token.
func LogoutHandler(accounts AccountManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, ok := requireClaims(w, r, initTime)
		if !ok {
			return
		}
		if err := accounts.Logout(r.Context(), claims); err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}

		http.SetCookie(w, sessionCookie(r, "", time.Unix(0, 0)))
		common.RespondSuccess(w, initTime, "Logged out successfully.", nil)
	}
}

// MeHandler handles GET .../me
func MeHandler(accounts AccountManager, role constants.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, ok := requireClaims(w, r, initTime)
		if !ok {
			return
		}
		profile, err := accounts.Me(r.Context(), role, claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Profile fetched.", profile)
	}
}

// ForgotPasswordHandler handles POST .../forgot-password
func ForgotPasswordHandler(accounts AccountManager, role constants.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ForgotPasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, "Invalid request body")
			return
		}

		if err := accounts.ForgotPassword(r.Context(), role, req.Email); err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Password reset link sent to "+req.Email+".", nil)
	}
}

// ResetPasswordHandler handles PUT .../reset-password/{token}
func ResetPasswordHandler(accounts AccountManager, role constants.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		token := chi.URLParam(r, "token")
		if token == "" {
			respondBadRequest(w, initTime, "Reset token is required.")
			return
		}

		var req dtos.ResetPasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, "Invalid request body")
			return
		}

		if err := accounts.ResetPassword(r.Context(), role, token, req); err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Password reset successfully.", nil)
	}
}

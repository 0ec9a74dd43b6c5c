package api

import (
	"net/http"
	"time"

	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/models/dtos"
)

// SendOTPHandler handles POST .../send-email-otp
func SendOTPHandler(gate OTPGate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.OTPRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, "Invalid request body")
			return
		}

		status, err := gate.RequestOTP(r.Context(), req.Email)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "OTP sent to your email.", status)
	}
}

// ResendOTPHandler handles POST .../resend-otp
func ResendOTPHandler(gate OTPGate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.OTPRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, "Invalid request body")
			return
		}

		status, err := gate.ResendOTP(r.Context(), req.Email)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "A new OTP has been sent to your email.", status)
	}
}

// VerifyOTPHandler handles POST .../verify-email-otp
func VerifyOTPHandler(gate OTPGate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.VerifyOTPRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, "Invalid request body")
			return
		}
		if req.Email == "" || req.OTP == "" {
			respondBadRequest(w, initTime, "Email and OTP are required.")
			return
		}

		if err := gate.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Email verified successfully.", nil)
	}
}

// OTPStatusHandler handles POST .../check-otp-status
func OTPStatusHandler(gate OTPGate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.OTPRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, "Invalid request body")
			return
		}

		status, err := gate.Status(r.Context(), req.Email)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "OTP status fetched.", status)
	}
}

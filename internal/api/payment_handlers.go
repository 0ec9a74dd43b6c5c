package api

import (
	"net/http"
	"time"

	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

// CandidatesOfVolunteerHandler handles GET /api/v1/volunteer/usersdetails
func CandidatesOfVolunteerHandler(admin Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, ok := requireClaims(w, r, initTime)
		if !ok {
			return
		}
		view, err := admin.CandidatesOfVolunteer(r.Context(), claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Candidates fetched.", view)
	}
}

// CreatePaymentRequestHandler handles POST /api/v1/payment-requests/request
func CreatePaymentRequestHandler(payments PaymentWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, ok := requireClaims(w, r, initTime)
		if !ok {
			return
		}
		var req dtos.CreatePaymentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, "Invalid request body")
			return
		}

		pr, err := payments.CreateRequest(r.Context(), claims.UserID(), req.UserCount, req.Amount)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Payment request created.", pr, http.StatusCreated)
	}
}

// MyPaymentRequestsHandler handles GET /api/v1/payment-requests/my-requests
func MyPaymentRequestsHandler(payments PaymentWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, ok := requireClaims(w, r, initTime)
		if !ok {
			return
		}
		list, err := payments.ListForVolunteer(r.Context(), claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Payment requests fetched.", list)
	}
}

// AllPaymentRequestsHandler handles GET /api/v1/admin/payment-requests/all?status=
func AllPaymentRequestsHandler(payments PaymentWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		list, err := payments.ListAll(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Payment requests fetched.", list)
	}
}

// ApprovePaymentHandler handles PATCH /api/v1/admin/payment-requests/approve/{requestId}
func ApprovePaymentHandler(payments PaymentWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, ok := requireClaims(w, r, initTime)
		if !ok {
			return
		}
		result, err := payments.Approve(r.Context(), chi.URLParam(r, "requestId"), claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, result.Message, result)
	}
}

// RejectPaymentHandler handles PATCH /api/v1/admin/payment-requests/reject/{requestId}
func RejectPaymentHandler(payments PaymentWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.RejectPaymentRequest
		if r.ContentLength != 0 {
			if err := decodeJSON(w, r, &req); err != nil {
				respondBadRequest(w, initTime, "Invalid request body")
				return
			}
		}

		pr, err := payments.Reject(r.Context(), chi.URLParam(r, "requestId"), req.Reason)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Payment request rejected.", pr)
	}
}

// MarkPaidHandler handles PATCH /api/v1/admin/payment-requests/mark-paid/{requestId}
func MarkPaidHandler(payments PaymentWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.MarkPaidRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, "Invalid request body")
			return
		}

		pr, err := payments.MarkPaid(r.Context(), chi.URLParam(r, "requestId"), req.PaymentID, req.OrderID)
		if err != nil {
			respondServiceError(w, initTime, err, nil)
			return
		}
		common.RespondSuccess(w, initTime, "Payment request marked as paid.", pr)
	}
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"anara-skills/registrar/internal/auth"
	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/logging"
	"anara-skills/registrar/internal/middleware"
	"anara-skills/registrar/internal/models/dtos"
	gormModels "anara-skills/registrar/internal/models/gorm"
	"anara-skills/registrar/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logging.UseNop()
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withClaims(req *http.Request, id string, role constants.Role) *http.Request {
	claims := &auth.JWTClaims{UserUUID: id, RoleValue: role, JTI: "jti-" + id, Expiry: time.Now().Add(time.Hour)}
	return req.WithContext(auth.SetUserClaims(req.Context(), claims))
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) dtos.APIResponse {
	t.Helper()
	var resp dtos.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestSendOTPHandler_Success(t *testing.T) {
	gate := &mockOTPGate{
		requestFunc: func(ctx context.Context, email string) (*dtos.OTPStatusResponse, error) {
			return &dtos.OTPStatusResponse{Email: email, Exists: true, ExpiresInSeconds: 300, RemainingAttempts: 5}, nil
		},
	}

	rr := httptest.NewRecorder()
	SendOTPHandler(gate).ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/api/v1/candidate/send-email-otp", dtos.OTPRequest{Email: "a@example.org"}))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "a@example.org", data["email"])
	assert.EqualValues(t, 300, data["expires_in_seconds"])
}

func TestSendOTPHandler_RateLimited(t *testing.T) {
	gate := &mockOTPGate{
		requestFunc: func(ctx context.Context, email string) (*dtos.OTPStatusResponse, error) {
			return nil, &services.ServiceError{
				Kind:    services.KindRateLimit,
				Code:    services.CodeRateLimited,
				Message: "Please wait before requesting another OTP.",
				Meta:    map[string]any{"retry_after_seconds": 120},
			}
		},
	}

	rr := httptest.NewRecorder()
	SendOTPHandler(gate).ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/", dtos.OTPRequest{Email: "a@example.org"}))

	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "120", rr.Header().Get("Retry-After"))
	resp := decodeResponse(t, rr)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, services.CodeRateLimited, resp.ErrorCode)
	assert.EqualValues(t, 120, resp.Meta["retry_after_seconds"])
}

func TestSendOTPHandler_InvalidBody(t *testing.T) {
	gate := &mockOTPGate{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))

	rr := httptest.NewRecorder()
	SendOTPHandler(gate).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.CodeValidation, decodeResponse(t, rr).ErrorCode)
}

func TestVerifyOTPHandler(t *testing.T) {
	var gotEmail, gotCode string
	gate := &mockOTPGate{
		verifyFunc: func(ctx context.Context, email, code string) error {
			gotEmail, gotCode = email, code
			if code != "123456" {
				return &services.ServiceError{
					Kind:    services.KindValidation,
					Code:    services.CodeInvalidCode,
					Message: "Invalid OTP.",
					Meta:    map[string]any{"remaining_attempts": 3},
				}
			}
			return nil
		},
	}
	h := VerifyOTPHandler(gate)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/", dtos.VerifyOTPRequest{Email: "v@example.org", OTP: "123456"}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "v@example.org", gotEmail)
	assert.Equal(t, "123456", gotCode)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/", dtos.VerifyOTPRequest{Email: "v@example.org", OTP: "000000"}))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, services.CodeInvalidCode, resp.ErrorCode)
	assert.EqualValues(t, 3, resp.Meta["remaining_attempts"])

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/", dtos.VerifyOTPRequest{Email: "v@example.org"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func candidateMultipart(t *testing.T) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	fields := map[string]string{
		"name":                     "Asha",
		"email":                    "Asha@Example.org",
		"phone":                    "9000000001",
		"password":                 "secret123",
		"volunteerRegNum":          "ASF/FE/00001",
		"pwdCategory":              "No",
		"entrepreneurshipInterest": "No",
		"educationQualification":   "10th",
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, field := range []string{"image", "educationDocument", "bankPassbook"} {
		fw, err := mw.CreateFormFile(field, field+".jpg")
		require.NoError(t, err)
		_, err = fw.Write([]byte("data-" + field))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidate/register", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRegisterCandidateHandler_Success(t *testing.T) {
	reg := &mockRegistrar{
		candidateFunc: func(ctx context.Context, form dtos.CandidateForm, files dtos.Files) (*dtos.RegistrationResponse, error) {
			assert.Equal(t, "Asha", form.Name)
			assert.Equal(t, "Asha@Example.org", form.Email)
			assert.Equal(t, "ASF/FE/00001", form.VolunteerRegNum)
			assert.Equal(t, "10th", form.EducationQualification)
			assert.True(t, files.Has("image"))
			assert.True(t, files.Has("bankPassbook"))
			assert.Equal(t, "educationDocument.jpg", files["educationDocument"].Filename)
			assert.Equal(t, []byte("data-image"), files["image"].Data)
			assert.False(t, files.Has("pwdCertificate"))

			return &dtos.RegistrationResponse{
				ID:        "cand-1",
				Role:      "candidate",
				RegNumber: "ASF/CANDIDATE/00001",
				Status:    true,
				Message:   "Candidate registered successfully",
				Steps:     []dtos.RegistrationStep{{Name: "validation", Status: true, Message: "OK"}},
			}, nil
		},
	}

	rr := httptest.NewRecorder()
	RegisterCandidateHandler(reg).ServeHTTP(rr, candidateMultipart(t))

	require.Equal(t, http.StatusCreated, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, "Candidate registered successfully", resp.Message)
	assert.Equal(t, "ASF/CANDIDATE/00001", resp.Data.(map[string]any)["reg_number"])
}

func TestRegisterCandidateHandler_FailureCarriesSteps(t *testing.T) {
	reg := &mockRegistrar{
		candidateFunc: func(ctx context.Context, form dtos.CandidateForm, files dtos.Files) (*dtos.RegistrationResponse, error) {
			return &dtos.RegistrationResponse{
					Status: false,
					Steps: []dtos.RegistrationStep{
						{Name: "validation", Status: true, Message: "OK"},
						{Name: "duplicate_check", Status: false, Message: "already registered"},
					},
				}, &services.ServiceError{
					Kind:    services.KindConflict,
					Code:    services.CodeAlreadyRegistered,
					Message: "User already exists with this email or phone.",
				}
		},
	}

	rr := httptest.NewRecorder()
	RegisterCandidateHandler(reg).ServeHTTP(rr, candidateMultipart(t))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, services.CodeAlreadyRegistered, resp.ErrorCode)
	steps, ok := resp.Meta["steps"].([]any)
	require.True(t, ok)
	assert.Len(t, steps, 2)
}

func TestRegisterVolunteerHandler_NotMultipart(t *testing.T) {
	reg := &mockRegistrar{}
	rr := httptest.NewRecorder()
	RegisterVolunteerHandler(reg).ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/", map[string]string{"name": "x"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTemporaryNumberHandler(t *testing.T) {
	created := true
	reg := &mockRegistrar{
		tempFunc: func(ctx context.Context, email string) (*dtos.TemporaryNumberResponse, error) {
			return &dtos.TemporaryNumberResponse{Email: email, RegNumber: "T/ASF/FE/00001", Created: created}, nil
		},
	}
	h := TemporaryNumberHandler(reg)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/", dtos.OTPRequest{Email: "v@example.org"}))
	assert.Equal(t, http.StatusCreated, rr.Code)

	created = false
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/", dtos.OTPRequest{Email: "v@example.org"}))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLoginHandler_SetsCookie(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	accounts := &mockAccounts{
		loginFunc: func(ctx context.Context, role constants.Role, email, password string) (*dtos.LoginResponse, error) {
			assert.Equal(t, constants.RoleVolunteer, role)
			return &dtos.LoginResponse{Token: "signed-token", ExpiresAt: expires, Role: role.String()}, nil
		},
	}

	rr := httptest.NewRecorder()
	LoginHandler(accounts, constants.RoleVolunteer).ServeHTTP(rr,
		jsonRequest(t, http.MethodPost, "/", dtos.LoginRequest{Email: "v@example.org", Password: "secret123"}))

	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.TokenCookie, cookies[0].Name)
	assert.Equal(t, "signed-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	accounts := &mockAccounts{
		loginFunc: func(ctx context.Context, role constants.Role, email, password string) (*dtos.LoginResponse, error) {
			return nil, &services.ServiceError{Kind: services.KindUnauthorized, Code: services.CodeInvalidCredentials, Message: "Invalid email or password."}
		},
	}

	rr := httptest.NewRecorder()
	LoginHandler(accounts, constants.RoleCandidate).ServeHTTP(rr,
		jsonRequest(t, http.MethodPost, "/", dtos.LoginRequest{Email: "c@example.org", Password: "wrong-pass"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, rr.Result().Cookies())

	rr = httptest.NewRecorder()
	LoginHandler(accounts, constants.RoleCandidate).ServeHTTP(rr,
		jsonRequest(t, http.MethodPost, "/", dtos.LoginRequest{Email: "c@example.org"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogoutHandler(t *testing.T) {
	var revoked string
	accounts := &mockAccounts{
		logoutFunc: func(ctx context.Context, claims auth.UserClaims) error {
			revoked = claims.TokenID()
			return nil
		},
	}
	h := LogoutHandler(accounts)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, withClaims(httptest.NewRequest(http.MethodGet, "/", nil), "adm-1", constants.RoleAdmin))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "jti-adm-1", revoked)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
}

func TestMeHandler(t *testing.T) {
	accounts := &mockAccounts{
		meFunc: func(ctx context.Context, role constants.Role, id string) (any, error) {
			if id == "missing" {
				return nil, &services.ServiceError{Kind: services.KindNotFound, Code: services.CodeNotFound, Message: "Account not found."}
			}
			return map[string]string{"id": id, "role": role.String()}, nil
		},
	}
	h := MeHandler(accounts, constants.RoleCandidate)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, withClaims(httptest.NewRequest(http.MethodGet, "/", nil), "cand-3", constants.RoleCandidate))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "cand-3", decodeResponse(t, rr).Data.(map[string]any)["id"])

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, withClaims(httptest.NewRequest(http.MethodGet, "/", nil), "missing", constants.RoleCandidate))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestResetPasswordHandler_ReadsToken(t *testing.T) {
	var gotToken string
	accounts := &mockAccounts{
		resetFunc: func(ctx context.Context, role constants.Role, token string, req dtos.ResetPasswordRequest) error {
			gotToken = token
			assert.Equal(t, constants.RoleAdmin, role)
			assert.Equal(t, "newpass123", req.Password)
			return nil
		},
	}

	r := chi.NewRouter()
	r.Put("/password/reset/{token}", ResetPasswordHandler(accounts, constants.RoleAdmin))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(t, http.MethodPut, "/password/reset/abc123",
		dtos.ResetPasswordRequest{Password: "newpass123", ConfirmPassword: "newpass123"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "abc123", gotToken)
}

func TestCreatePaymentRequestHandler(t *testing.T) {
	payments := &mockPayments{
		createFunc: func(ctx context.Context, volunteerID string, userCount int, amount *int) (*gormModels.PaymentRequest, error) {
			assert.Equal(t, "vol-1", volunteerID)
			assert.Nil(t, amount)
			fifty := 50
			return &gormModels.PaymentRequest{ID: "pr-1", VolunteerID: volunteerID, UserCount: userCount, Amount: &fifty, Status: constants.PaymentStatusPending}, nil
		},
	}

	req := withClaims(jsonRequest(t, http.MethodPost, "/", dtos.CreatePaymentRequest{UserCount: 50}), "vol-1", constants.RoleVolunteer)
	rr := httptest.NewRecorder()
	CreatePaymentRequestHandler(payments).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	data := decodeResponse(t, rr).Data.(map[string]any)
	assert.EqualValues(t, 50, data["amount"])
	assert.Equal(t, "pending", data["status"])
}

func TestApprovePaymentHandler(t *testing.T) {
	payments := &mockPayments{
		approveFunc: func(ctx context.Context, requestID, adminID string) (*dtos.ApprovalResult, error) {
			if adminID == "adm-dup" {
				return nil, &services.ServiceError{Kind: services.KindConflict, Code: services.CodeAlreadyApproved, Message: "You have already approved this request."}
			}
			return &dtos.ApprovalResult{
				RequestID:     requestID,
				Status:        "pending",
				ApprovalCount: 1,
				Message:       "Payment request approval recorded (1/3 approvals)",
			}, nil
		},
	}

	r := chi.NewRouter()
	r.Patch("/approve/{requestId}", ApprovePaymentHandler(payments))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, withClaims(httptest.NewRequest(http.MethodPatch, "/approve/pr-9", nil), "adm-1", constants.RoleAdmin))
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, "Payment request approval recorded (1/3 approvals)", resp.Message)
	assert.Equal(t, "pr-9", resp.Data.(map[string]any)["request_id"])

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, withClaims(httptest.NewRequest(http.MethodPatch, "/approve/pr-9", nil), "adm-dup", constants.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.CodeAlreadyApproved, decodeResponse(t, rr).ErrorCode)
}

func TestRejectPaymentHandler(t *testing.T) {
	var gotReason *string
	payments := &mockPayments{
		rejectFunc: func(ctx context.Context, requestID string, reason *string) (*gormModels.PaymentRequest, error) {
			gotReason = reason
			return &gormModels.PaymentRequest{ID: requestID, Status: constants.PaymentStatusRejected, RejectionReason: reason}, nil
		},
	}

	r := chi.NewRouter()
	r.Patch("/reject/{requestId}", RejectPaymentHandler(payments))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/reject/pr-1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, gotReason)

	why := "duplicate request"
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(t, http.MethodPatch, "/reject/pr-1", dtos.RejectPaymentRequest{Reason: &why}))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotReason)
	assert.Equal(t, why, *gotReason)
}

func TestAllPaymentRequestsHandler_PassesStatus(t *testing.T) {
	var gotStatus string
	payments := &mockPayments{
		listFunc: func(ctx context.Context, status string) ([]gormModels.PaymentRequest, error) {
			gotStatus = status
			return []gormModels.PaymentRequest{}, nil
		},
	}

	rr := httptest.NewRecorder()
	AllPaymentRequestsHandler(payments).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/all?status=approved", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "approved", gotStatus)
}

func TestRegNumberWildcardRoutes(t *testing.T) {
	var seen []string
	admin := &mockDashboard{
		volunteerFunc: func(ctx context.Context, regNumber string) (*services.VolunteerWithCandidates, error) {
			seen = append(seen, regNumber)
			return &services.VolunteerWithCandidates{Volunteer: &gormModels.Volunteer{}}, nil
		},
		toggleFunc: func(ctx context.Context, regNumber string) (*dtos.BlockToggleResponse, error) {
			return &dtos.BlockToggleResponse{RegNumber: regNumber, IsBlocked: true}, nil
		},
	}

	r := chi.NewRouter()
	r.Get("/volunteer/*", VolunteerWithCandidatesHandler(admin))
	r.Put("/users/block/*", ToggleCandidateBlockHandler(admin))

	for _, path := range []string{"/volunteer/ASF/FE/00012", "/volunteer/ASF%2FFE%2F00012"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
	assert.Equal(t, []string{"ASF/FE/00012", "ASF/FE/00012"}, seen)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/users/block/ASF/CANDIDATE/00003", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, "Candidate has been blocked.", resp.Message)
	assert.Equal(t, "ASF/CANDIDATE/00003", resp.Data.(map[string]any)["reg_number"])
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		kind services.ErrorKind
		want int
	}{
		{services.KindValidation, http.StatusBadRequest},
		{services.KindNotFound, http.StatusNotFound},
		{services.KindConflict, http.StatusBadRequest},
		{services.KindRateLimit, http.StatusTooManyRequests},
		{services.KindDependency, http.StatusInternalServerError},
		{services.KindUnauthorized, http.StatusUnauthorized},
		{services.KindForbidden, http.StatusForbidden},
	}
	for _, tc := range cases {
		err := &services.ServiceError{Kind: tc.kind, Code: "X", Message: "x"}
		assert.Equal(t, tc.want, StatusForError(err), tc.kind)
	}
	assert.Equal(t, http.StatusInternalServerError, StatusForError(errors.New("boom")))
}

func TestRespondServiceError_HidesUnknownErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	respondServiceError(rr, time.Now(), errors.New("pq: connection refused"), nil)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, "Internal Server Error", resp.Message)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestHealthCheckHandler(t *testing.T) {
	up := time.Now().Add(-time.Minute)

	rr := httptest.NewRecorder()
	HealthCheckHandler(HealthChecks{
		"postgres": func(ctx context.Context) error { return nil },
	}, up).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var ok dtos.HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&ok))
	assert.Equal(t, "ok", ok.Status)
	assert.Equal(t, "ok", ok.Services["postgres"].Status)

	rr = httptest.NewRecorder()
	HealthCheckHandler(HealthChecks{
		"postgres": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("dial tcp: refused") },
	}, up).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var down dtos.HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&down))
	assert.Equal(t, "down", down.Status)
	assert.Equal(t, "down", down.Services["redis"].Status)
	assert.Equal(t, "dial tcp: refused", down.Services["redis"].Details)
}

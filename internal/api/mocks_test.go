package api

import (
	"context"

	"anara-skills/registrar/internal/auth"
	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/models/dtos"
	gormModels "anara-skills/registrar/internal/models/gorm"
	"anara-skills/registrar/internal/services"
)

type mockOTPGate struct {
	requestFunc func(ctx context.Context, email string) (*dtos.OTPStatusResponse, error)
	verifyFunc  func(ctx context.Context, email, code string) error
	statusFunc  func(ctx context.Context, email string) (*dtos.OTPStatusResponse, error)
}

func (m *mockOTPGate) RequestOTP(ctx context.Context, email string) (*dtos.OTPStatusResponse, error) {
	return m.requestFunc(ctx, email)
}

func (m *mockOTPGate) ResendOTP(ctx context.Context, email string) (*dtos.OTPStatusResponse, error) {
	return m.requestFunc(ctx, email)
}

func (m *mockOTPGate) VerifyOTP(ctx context.Context, email, code string) error {
	return m.verifyFunc(ctx, email, code)
}

func (m *mockOTPGate) Status(ctx context.Context, email string) (*dtos.OTPStatusResponse, error) {
	return m.statusFunc(ctx, email)
}

type mockRegistrar struct {
	candidateFunc func(ctx context.Context, form dtos.CandidateForm, files dtos.Files) (*dtos.RegistrationResponse, error)
	volunteerFunc func(ctx context.Context, form dtos.VolunteerForm, files dtos.Files) (*dtos.RegistrationResponse, error)
	tempFunc      func(ctx context.Context, email string) (*dtos.TemporaryNumberResponse, error)
}

func (m *mockRegistrar) RegisterCandidate(ctx context.Context, form dtos.CandidateForm, files dtos.Files) (*dtos.RegistrationResponse, error) {
	return m.candidateFunc(ctx, form, files)
}

func (m *mockRegistrar) RegisterVolunteer(ctx context.Context, form dtos.VolunteerForm, files dtos.Files) (*dtos.RegistrationResponse, error) {
	return m.volunteerFunc(ctx, form, files)
}

func (m *mockRegistrar) IssueTemporaryNumber(ctx context.Context, email string) (*dtos.TemporaryNumberResponse, error) {
	return m.tempFunc(ctx, email)
}

type mockAccounts struct {
	loginFunc  func(ctx context.Context, role constants.Role, email, password string) (*dtos.LoginResponse, error)
	logoutFunc func(ctx context.Context, claims auth.UserClaims) error
	meFunc     func(ctx context.Context, role constants.Role, id string) (any, error)
	resetFunc  func(ctx context.Context, role constants.Role, token string, req dtos.ResetPasswordRequest) error
}

func (m *mockAccounts) RegisterAdmin(ctx context.Context, req dtos.AdminRegisterRequest) (*gormModels.Admin, error) {
	return &gormModels.Admin{Name: req.Name, Email: req.Email}, nil
}

func (m *mockAccounts) Login(ctx context.Context, role constants.Role, email, password string) (*dtos.LoginResponse, error) {
	return m.loginFunc(ctx, role, email, password)
}

func (m *mockAccounts) Logout(ctx context.Context, claims auth.UserClaims) error {
	return m.logoutFunc(ctx, claims)
}

func (m *mockAccounts) Me(ctx context.Context, role constants.Role, id string) (any, error) {
	return m.meFunc(ctx, role, id)
}

func (m *mockAccounts) ForgotPassword(ctx context.Context, role constants.Role, email string) error {
	return nil
}

func (m *mockAccounts) ResetPassword(ctx context.Context, role constants.Role, token string, req dtos.ResetPasswordRequest) error {
	return m.resetFunc(ctx, role, token, req)
}

type mockPayments struct {
	createFunc  func(ctx context.Context, volunteerID string, userCount int, amount *int) (*gormModels.PaymentRequest, error)
	approveFunc func(ctx context.Context, requestID, adminID string) (*dtos.ApprovalResult, error)
	rejectFunc  func(ctx context.Context, requestID string, reason *string) (*gormModels.PaymentRequest, error)
	listFunc    func(ctx context.Context, status string) ([]gormModels.PaymentRequest, error)
}

func (m *mockPayments) CreateRequest(ctx context.Context, volunteerID string, userCount int, amount *int) (*gormModels.PaymentRequest, error) {
	return m.createFunc(ctx, volunteerID, userCount, amount)
}

func (m *mockPayments) ListForVolunteer(ctx context.Context, volunteerID string) ([]gormModels.PaymentRequest, error) {
	return nil, nil
}

func (m *mockPayments) ListAll(ctx context.Context, status string) ([]gormModels.PaymentRequest, error) {
	return m.listFunc(ctx, status)
}

func (m *mockPayments) Approve(ctx context.Context, requestID, adminID string) (*dtos.ApprovalResult, error) {
	return m.approveFunc(ctx, requestID, adminID)
}

func (m *mockPayments) Reject(ctx context.Context, requestID string, reason *string) (*gormModels.PaymentRequest, error) {
	return m.rejectFunc(ctx, requestID, reason)
}

func (m *mockPayments) MarkPaid(ctx context.Context, requestID, gatewayPaymentID, gatewayOrderID string) (*gormModels.PaymentRequest, error) {
	return &gormModels.PaymentRequest{ID: requestID}, nil
}

// mockDashboard embeds the interface so unused methods panic if reached.
type mockDashboard struct {
	Dashboard
	volunteerFunc func(ctx context.Context, regNumber string) (*services.VolunteerWithCandidates, error)
	toggleFunc    func(ctx context.Context, regNumber string) (*dtos.BlockToggleResponse, error)
}

func (m *mockDashboard) VolunteerWithCandidates(ctx context.Context, regNumber string) (*services.VolunteerWithCandidates, error) {
	return m.volunteerFunc(ctx, regNumber)
}

func (m *mockDashboard) ToggleCandidateBlock(ctx context.Context, regNumber string) (*dtos.BlockToggleResponse, error) {
	return m.toggleFunc(ctx, regNumber)
}

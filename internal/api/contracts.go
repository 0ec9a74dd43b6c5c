package api

import (
	"context"

	"anara-skills/registrar/internal/auth"
	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/models/dtos"
	gormModels "anara-skills/registrar/internal/models/gorm"
	"anara-skills/registrar/internal/services"
)

// The handlers depend on these narrow views of the services so tests can
// swap in function-field mocks.

type OTPGate interface {
	RequestOTP(ctx context.Context, email string) (*dtos.OTPStatusResponse, error)
	ResendOTP(ctx context.Context, email string) (*dtos.OTPStatusResponse, error)
	VerifyOTP(ctx context.Context, email, code string) error
	Status(ctx context.Context, email string) (*dtos.OTPStatusResponse, error)
}

type Registrar interface {
	RegisterCandidate(ctx context.Context, form dtos.CandidateForm, files dtos.Files) (*dtos.RegistrationResponse, error)
	RegisterVolunteer(ctx context.Context, form dtos.VolunteerForm, files dtos.Files) (*dtos.RegistrationResponse, error)
	IssueTemporaryNumber(ctx context.Context, email string) (*dtos.TemporaryNumberResponse, error)
}

type AccountManager interface {
	RegisterAdmin(ctx context.Context, req dtos.AdminRegisterRequest) (*gormModels.Admin, error)
	Login(ctx context.Context, role constants.Role, email, password string) (*dtos.LoginResponse, error)
	Logout(ctx context.Context, claims auth.UserClaims) error
	Me(ctx context.Context, role constants.Role, id string) (any, error)
	ForgotPassword(ctx context.Context, role constants.Role, email string) error
	ResetPassword(ctx context.Context, role constants.Role, token string, req dtos.ResetPasswordRequest) error
}

type PaymentWorkflow interface {
	CreateRequest(ctx context.Context, volunteerID string, userCount int, amount *int) (*gormModels.PaymentRequest, error)
	ListForVolunteer(ctx context.Context, volunteerID string) ([]gormModels.PaymentRequest, error)
	ListAll(ctx context.Context, status string) ([]gormModels.PaymentRequest, error)
	Approve(ctx context.Context, requestID, adminID string) (*dtos.ApprovalResult, error)
	Reject(ctx context.Context, requestID string, reason *string) (*gormModels.PaymentRequest, error)
	MarkPaid(ctx context.Context, requestID, gatewayPaymentID, gatewayOrderID string) (*gormModels.PaymentRequest, error)
}

type Dashboard interface {
	ListVolunteers(ctx context.Context) ([]services.VolunteerSummary, error)
	ListCandidates(ctx context.Context) ([]services.CandidateDetail, error)
	Totals(ctx context.Context) (*dtos.RegistrantTotals, error)
	CandidateCountPerVolunteer(ctx context.Context) ([]dtos.VolunteerCandidateCount, error)
	VolunteerWithCandidates(ctx context.Context, regNumber string) (*services.VolunteerWithCandidates, error)
	CandidatesOfVolunteer(ctx context.Context, volunteerID string) (*services.VolunteerWithCandidates, error)
	CandidateByRegNumber(ctx context.Context, regNumber string) (*services.CandidateDetail, error)
	ToggleVolunteerBlock(ctx context.Context, regNumber string) (*dtos.BlockToggleResponse, error)
	ToggleCandidateBlock(ctx context.Context, regNumber string) (*dtos.BlockToggleResponse, error)
}

type Catalog interface {
	CreateCourse(ctx context.Context, req dtos.CourseRequest, image *dtos.UploadedFile) (*gormModels.Course, error)
	UpdateCourse(ctx context.Context, id string, req dtos.CourseRequest, image *dtos.UploadedFile) (*gormModels.Course, error)
	ListCourses(ctx context.Context) ([]gormModels.Course, error)
	DeleteCourse(ctx context.Context, id string) error
	CreateJobRole(ctx context.Context, req dtos.JobRoleRequest) (*gormModels.JobRole, error)
	AttachCourses(ctx context.Context, jobRoleID string, courseIDs []string) (*gormModels.JobRole, error)
	ListJobRoles(ctx context.Context) ([]gormModels.JobRole, error)
	DeleteJobRole(ctx context.Context, id string) error
	SearchCourses(ctx context.Context, keyword string) ([]gormModels.Course, error)
	SelectCourse(ctx context.Context, candidateID, courseID string) (*dtos.CourseSelectionResponse, error)
	CourseSelection(ctx context.Context, candidateID string) (*dtos.CourseSelectionResponse, error)
	UpdateCCCStatus(ctx context.Context, candidateID, status string, certificate *dtos.UploadedFile) (*dtos.CCCStatusResponse, error)
	CCCStatus(ctx context.Context, candidateID string) (*dtos.CCCStatusResponse, error)
}

type AssetLibrary interface {
	Upload(ctx context.Context, kind, ownerID, subject string, file dtos.UploadedFile) (*gormModels.Asset, error)
	List(ctx context.Context, kind string) ([]gormModels.Asset, error)
	Replace(ctx context.Context, id, subject string, file dtos.UploadedFile) (*gormModels.Asset, error)
	Delete(ctx context.Context, id string) error
	SendLetterhead(ctx context.Context, req dtos.SendLetterheadRequest, pdf dtos.UploadedFile) (*dtos.LetterheadResult, error)
	SentMessages(ctx context.Context, email string) ([]gormModels.SentMessage, error)
}

var (
	_ OTPGate         = (*services.OTPService)(nil)
	_ Registrar       = (*services.RegistrationService)(nil)
	_ AccountManager  = (*services.AccountService)(nil)
	_ PaymentWorkflow = (*services.PaymentService)(nil)
	_ Dashboard       = (*services.AdminService)(nil)
	_ Catalog         = (*services.CatalogService)(nil)
	_ AssetLibrary    = (*services.AssetService)(nil)
)

package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"anara-skills/registrar/internal/auth"
	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/db/repositories"
	"anara-skills/registrar/internal/logging"
	"anara-skills/registrar/internal/metrics"
	"anara-skills/registrar/internal/models/dtos"
	gormModels "anara-skills/registrar/internal/models/gorm"
	"anara-skills/registrar/internal/providers"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// resetPaths are the frontend routes that accept a reset token, per role.
var resetPaths = map[constants.Role]string{
	constants.RoleCandidate: "/reset-password/",
	constants.RoleVolunteer: "/volunteer/reset-password/",
	constants.RoleAdmin:     "/password/reset/",
}

// Indian mobile number, optionally with the +91 country code.
var adminPhonePattern = regexp.MustCompile(`^(\+91)?[6-9]\d{9}$`)

// account is the role independent view of a login record.
type account struct {
	ID           string
	Email        string
	PasswordHash string
	Verified     bool
	Blocked      bool
	ResetExpire  *time.Time
	Profile      any
}

// AccountService handles credentials for all three roles.
type AccountService struct {
	registrants *repositories.RegistrantRepository
	admins      *repositories.AdminRepository
	tokens      *auth.TokenIssuer
	email       providers.EmailSender
	frontendURL string
	metrics     *metrics.MetricsRegistry

	Now      func() time.Time
	HashCost int
}

func NewAccountService(
	db *gorm.DB,
	tokens *auth.TokenIssuer,
	email providers.EmailSender,
	frontendURL string,
	m *metrics.MetricsRegistry,
) *AccountService {
	return &AccountService{
		registrants: repositories.NewRegistrantRepository(db),
		admins:      repositories.NewAdminRepository(db),
		tokens:      tokens,
		email:       email,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		metrics:     m,
		Now:         time.Now,
		HashCost:    bcrypt.DefaultCost,
	}
}

func fromCandidate(c *gormModels.Candidate) *account {
	return &account{ID: c.ID, Email: c.Email, PasswordHash: c.PasswordHash, Verified: c.AccountVerified,
		Blocked: c.IsBlocked, ResetExpire: c.ResetPasswordExpire, Profile: c}
}

func fromVolunteer(v *gormModels.Volunteer) *account {
	return &account{ID: v.ID, Email: v.Email, PasswordHash: v.PasswordHash, Verified: v.AccountVerified,
		Blocked: v.IsBlocked, ResetExpire: v.ResetPasswordExpire, Profile: v}
}

func fromAdmin(a *gormModels.Admin) *account {
	return &account{ID: a.ID, Email: a.Email, PasswordHash: a.PasswordHash, Verified: true,
		ResetExpire: a.ResetPasswordExpire, Profile: a}
}

type lookupKind int

const (
	byEmail lookupKind = iota
	byID
	byResetToken
)

// findAccount returns (nil, nil) when no record matches.
func (s *AccountService) findAccount(ctx context.Context, role constants.Role, kind lookupKind, value string) (*account, error) {
	var (
		acc *account
		err error
	)
	switch role {
	case constants.RoleCandidate:
		var c *gormModels.Candidate
		switch kind {
		case byEmail:
			c, err = s.registrants.FindCandidateByEmail(ctx, value)
		case byID:
			c, err = s.registrants.FindCandidateByID(ctx, value)
		default:
			c, err = s.registrants.FindCandidateByResetToken(ctx, value)
		}
		if err == nil {
			acc = fromCandidate(c)
		}
	case constants.RoleVolunteer:
		var v *gormModels.Volunteer
		switch kind {
		case byEmail:
			v, err = s.registrants.FindVolunteerByEmail(ctx, value)
		case byID:
			v, err = s.registrants.FindVolunteerByID(ctx, value)
		default:
			v, err = s.registrants.FindVolunteerByResetToken(ctx, value)
		}
		if err == nil {
			acc = fromVolunteer(v)
		}
	case constants.RoleAdmin:
		var a *gormModels.Admin
		switch kind {
		case byEmail:
			a, err = s.admins.FindByEmail(ctx, value)
		case byID:
			a, err = s.admins.FindByID(ctx, value)
		default:
			a, err = s.admins.FindByResetToken(ctx, value)
		}
		if err == nil {
			acc = fromAdmin(a)
		}
	default:
		return nil, validationError(fmt.Sprintf("unknown role %q", role))
	}

	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to load account", err)
	}
	return acc, nil
}

func validatePassword(password string) error {
	if n := len(password); n < constants.PasswordMinLength || n > constants.PasswordMaxLength {
		return validationError(fmt.Sprintf("Password must be between %d and %d characters.",
			constants.PasswordMinLength, constants.PasswordMaxLength))
	}
	return nil
}

// RegisterAdmin creates an admin account.
func (s *AccountService) RegisterAdmin(ctx context.Context, req dtos.AdminRegisterRequest) (*gormModels.Admin, error) {
	email := NormalizeEmail(req.Email)
	if err := requireAll(req.Name, email, req.Phone, req.Password); err != nil {
		return nil, err
	}
	if !validEmail(email) {
		return nil, validationError("Please provide a valid email address.")
	}
	if !adminPhonePattern.MatchString(strings.TrimSpace(req.Phone)) {
		return nil, validationError("Please provide a valid phone number.")
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.HashCost)
	if err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to hash password", err)
	}

	admin := &gormModels.Admin{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(KindConflict, CodeAlreadyRegistered, "Admin already exists.")
		}
		return nil, dependencyError(CodeStorageFailed, "failed to create admin", err)
	}

	logging.Info("Admin registered", "admin_id", admin.ID)
	return admin, nil
}

// Login checks the password and issues a session token for role.
func (s *AccountService) Login(ctx context.Context, role constants.Role, email, password string) (*dtos.LoginResponse, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("Email and password are required.")
	}

	acc, err := s.findAccount(ctx, role, byEmail, email)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, newError(KindUnauthorized, CodeInvalidCredentials, constants.MsgInvalidCredentials)
	}
	if !acc.Verified {
		return nil, newError(KindValidation, CodeEmailNotVerified, constants.MsgAccountNotVerified)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		logging.Warn("Failed login attempt", "role", role, "email", email)
		return nil, newError(KindUnauthorized, CodeInvalidCredentials, constants.MsgInvalidCredentials)
	}
	if acc.Blocked {
		return nil, newError(KindForbidden, CodeAccountBlocked, constants.MsgAccountBlocked)
	}

	token, expiresAt, err := s.tokens.Issue(acc.ID, role)
	if err != nil {
		return nil, dependencyError(CodeInvalidToken, "failed to issue session token", err)
	}

	logging.Info("Login successful", "role", role, "user_id", acc.ID)
	return &dtos.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Role:      role.String(),
		Profile:   acc.Profile,
	}, nil
}

// Logout revokes the presented token until it would have expired.
func (s *AccountService) Logout(ctx context.Context, claims auth.UserClaims) error {
	if claims == nil {
		return newError(KindUnauthorized, CodeInvalidToken, "Unauthorized. Please login again.")
	}
	if err := s.tokens.Revoke(ctx, claims.TokenID(), claims.ExpiresAt()); err != nil {
		return dependencyError(CodeStorageFailed, "failed to revoke token", err)
	}
	logging.Info("Logout", "role", claims.Role(), "user_id", claims.UserID())
	return nil
}

// Me returns the profile of the logged in account.
func (s *AccountService) Me(ctx context.Context, role constants.Role, id string) (any, error) {
	acc, err := s.findAccount(ctx, role, byID, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, newError(KindNotFound, CodeNotFound, "Account not found.")
	}
	return acc.Profile, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newResetToken() (string, error) {
	buf := make([]byte, constants.ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *AccountService) storeResetToken(ctx context.Context, role constants.Role, id string, hash *string, expire *time.Time) error {
	switch role {
	case constants.RoleCandidate:
		return s.registrants.SetResetToken(ctx, &gormModels.Candidate{}, id, hash, expire)
	case constants.RoleVolunteer:
		return s.registrants.SetResetToken(ctx, &gormModels.Volunteer{}, id, hash, expire)
	default:
		return s.admins.SetResetToken(ctx, id, hash, expire)
	}
}

func (s *AccountService) storePassword(ctx context.Context, role constants.Role, id, hash string) error {
	switch role {
	case constants.RoleCandidate:
		return s.registrants.UpdatePassword(ctx, &gormModels.Candidate{}, id, hash)
	case constants.RoleVolunteer:
		return s.registrants.UpdatePassword(ctx, &gormModels.Volunteer{}, id, hash)
	default:
		return s.admins.UpdatePassword(ctx, id, hash)
	}
}

// ForgotPassword emails a single use reset link. Only the sha256 of the
// token is stored.
func (s *AccountService) ForgotPassword(ctx context.Context, role constants.Role, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return validationError(constants.MsgEmailRequired)
	}

	acc, err := s.findAccount(ctx, role, byEmail, email)
	if err != nil {
		return err
	}
	if acc == nil {
		return newError(KindNotFound, CodeNotFound, "No account found with this email.")
	}

	token, err := newResetToken()
	if err != nil {
		return dependencyError(CodeStorageFailed, "failed to generate reset token", err)
	}
	hash := hashResetToken(token)
	expire := s.Now().Add(constants.ResetTokenTTL)
	if err := s.storeResetToken(ctx, role, acc.ID, &hash, &expire); err != nil {
		return dependencyError(CodeStorageFailed, "failed to store reset token", err)
	}

	link := s.frontendURL + resetPaths[role] + token
	err = s.email.Send(ctx, providers.Email{
		To:      acc.Email,
		Subject: "Password Reset Request",
		HTML:    resetPasswordEmail(link, int(constants.ResetTokenTTL.Minutes())),
	})
	if err != nil {
		s.metrics.EmailFailure("reset_password")
		if clearErr := s.storeResetToken(ctx, role, acc.ID, nil, nil); clearErr != nil {
			logging.Error("Failed to clear reset token after send failure", "user_id", acc.ID, "error", clearErr)
		}
		return dependencyError(CodeDispatchFailed, "Cannot send reset password token.", err)
	}

	logging.Info("Password reset requested", "role", role, "user_id", acc.ID)
	return nil
}

// ResetPassword sets a new password for the holder of a valid reset token.
func (s *AccountService) ResetPassword(ctx context.Context, role constants.Role, token string, req dtos.ResetPasswordRequest) error {
	if strings.TrimSpace(token) == "" {
		return validationError(constants.MsgResetTokenInvalid)
	}

	acc, err := s.findAccount(ctx, role, byResetToken, hashResetToken(token))
	if err != nil {
		return err
	}
	if acc == nil || acc.ResetExpire == nil || !s.Now().Before(*acc.ResetExpire) {
		return validationError(constants.MsgResetTokenInvalid)
	}
	if req.Password != req.ConfirmPassword {
		return validationError(constants.MsgPasswordMismatch)
	}
	if err := validatePassword(req.Password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.HashCost)
	if err != nil {
		return dependencyError(CodeStorageFailed, "failed to hash password", err)
	}
	if err := s.storePassword(ctx, role, acc.ID, string(hash)); err != nil {
		return dependencyError(CodeStorageFailed, "failed to update password", err)
	}

	logging.Info("Password reset", "role", role, "user_id", acc.ID)
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

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

// VerificationGate is the part of the OTP service registration depends on.
type VerificationGate interface {
	IsVerified(ctx context.Context, email string) (bool, error)
	Consume(ctx context.Context, email string) error
}

var (
	validGenders                 = []string{"Male", "Female", "Other"}
	validYesNo                   = []string{"Yes", "No"}
	validEducationQualifications = []string{"5th", "6th", "7th", "8th", "9th", "10th", "ITI"}
	validEmploymentStatuses      = []string{"Employed", "Un-employed"}
)

const dobLayout = "2006-01-02"

// errInsertConflict marks a unique violation on insert whose cause is
// resolved after the transaction has been rolled back.
var errInsertConflict = errors.New("registrant insert violated a unique index")

// RegistrationService creates candidate and volunteer records from a
// validated form, its uploaded documents and a verified email.
type RegistrationService struct {
	db           *gorm.DB
	registrants  *repositories.RegistrantRepository
	allocator    *IdentifierAllocator
	storage      providers.DocumentStorage
	email        providers.EmailSender
	candidateOTP VerificationGate
	volunteerOTP VerificationGate
	metrics      *metrics.MetricsRegistry

	Now      func() time.Time
	HashCost int
}

func NewRegistrationService(
	db *gorm.DB,
	allocator *IdentifierAllocator,
	storage providers.DocumentStorage,
	email providers.EmailSender,
	candidateOTP VerificationGate,
	volunteerOTP VerificationGate,
	m *metrics.MetricsRegistry,
) *RegistrationService {
	return &RegistrationService{
		db:           db,
		registrants:  repositories.NewRegistrantRepository(db),
		allocator:    allocator,
		storage:      storage,
		email:        email,
		candidateOTP: candidateOTP,
		volunteerOTP: volunteerOTP,
		metrics:      m,
		Now:          time.Now,
		HashCost:     bcrypt.DefaultCost,
	}
}

// stepLog accumulates the per-step outcome returned to the client.
type stepLog struct {
	steps []dtos.RegistrationStep
}

func (l *stepLog) ok(name, message string) {
	l.steps = append(l.steps, dtos.RegistrationStep{Name: name, Status: true, Message: message})
}

func (l *stepLog) fail(name string, err error) {
	msg := err.Error()
	if se, ok := AsServiceError(err); ok {
		msg = se.Message
	}
	l.steps = append(l.steps, dtos.RegistrationStep{Name: name, Status: false, Message: msg})
}

// documentUploader uploads sequentially and remembers what landed so a later
// failure can remove it again.
type documentUploader struct {
	storage  providers.DocumentStorage
	uploaded []gormModels.RegistrantDocument
}

func (u *documentUploader) put(ctx context.Context, field, folder string, file dtos.UploadedFile) (string, error) {
	obj, err := u.storage.Upload(ctx, file.Data, folder, file.Filename)
	if err != nil {
		return "", dependencyError(CodeUploadFailed, fmt.Sprintf("failed to upload %s", field), err)
	}
	u.uploaded = append(u.uploaded, gormModels.RegistrantDocument{Field: field, URL: obj.URL, PublicID: obj.PublicID})
	return obj.URL, nil
}

func (u *documentUploader) putOptional(ctx context.Context, field, folder string, files dtos.Files) (*string, error) {
	if !files.Has(field) {
		return nil, nil
	}
	url, err := u.put(ctx, field, folder, files[field])
	if err != nil {
		return nil, err
	}
	return &url, nil
}

// rollback deletes every uploaded object. Failures are logged, never returned.
func (u *documentUploader) rollback(ctx context.Context) {
	// Detached so a cancelled request still cleans up.
	ctx = context.WithoutCancel(ctx)
	for _, doc := range u.uploaded {
		if err := u.storage.Delete(ctx, doc.PublicID); err != nil {
			logging.Error("Failed to delete uploaded document during rollback",
				"public_id", doc.PublicID,
				"field", doc.Field,
				"error", err,
			)
		}
	}
	u.uploaded = nil
}

func (u *documentUploader) records(ownerID string, role constants.Role) []gormModels.RegistrantDocument {
	out := make([]gormModels.RegistrantDocument, len(u.uploaded))
	for i, d := range u.uploaded {
		d.OwnerID = ownerID
		d.OwnerRole = role.String()
		out[i] = d
	}
	return out
}

func requireAll(values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return validationError(constants.MsgAllFieldsRequired)
		}
	}
	return nil
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func truthy(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// validateBase checks the fields shared by both forms and returns the parsed
// date of birth.
func validateBase(f *dtos.RegistrantForm) (time.Time, error) {
	if err := requireAll(f.Name, f.Email, f.Phone, f.Password, f.Guardian, f.Address,
		f.CurrentAddress, f.DOB, f.Gender, f.BankAccNumber, f.BankName, f.IFSC, f.Undertaking); err != nil {
		return time.Time{}, err
	}
	if !validEmail(NormalizeEmail(f.Email)) {
		return time.Time{}, validationError("Please provide a valid email address.")
	}
	if n := len(f.Password); n < constants.PasswordMinLength || n > constants.PasswordMaxLength {
		return time.Time{}, validationError(fmt.Sprintf("Password must be between %d and %d characters.",
			constants.PasswordMinLength, constants.PasswordMaxLength))
	}
	if !oneOf(f.Gender, validGenders) {
		return time.Time{}, validationError("Please select a valid gender.")
	}
	dob, err := time.Parse(dobLayout, strings.TrimSpace(f.DOB))
	if err != nil {
		return time.Time{}, validationError("Date of birth must be in YYYY-MM-DD format.")
	}
	if !truthy(f.Undertaking) {
		return time.Time{}, validationError(constants.MsgConfirmationRequired)
	}
	return dob, nil
}

func validateCandidate(f *dtos.CandidateForm, files dtos.Files) (time.Time, error) {
	dob, err := validateBase(&f.RegistrantForm)
	if err != nil {
		return dob, err
	}
	if err := requireAll(f.VolunteerRegNum, f.PwdCategory, f.EntrepreneurshipInterest, f.EducationQualification); err != nil {
		return dob, err
	}
	if !files.Has("image") || !files.Has("educationDocument") || !files.Has("bankPassbook") {
		return dob, validationError(constants.MsgDocumentsRequired)
	}
	if !oneOf(f.EducationQualification, validEducationQualifications) {
		return dob, validationError(constants.MsgInvalidQualification)
	}
	if !oneOf(f.PwdCategory, validYesNo) || !oneOf(f.EntrepreneurshipInterest, validYesNo) {
		return dob, validationError("PWD category and entrepreneurship interest must be Yes or No.")
	}
	if f.PwdCategory == "Yes" && !files.Has("pwdCertificate") {
		return dob, validationError(constants.MsgPWDCertificateRequired)
	}
	if f.EntrepreneurshipInterest == "Yes" && !files.Has("bplCertificate") {
		return dob, validationError(constants.MsgBPLCertificateRequired)
	}
	return dob, nil
}

func validateVolunteer(f *dtos.VolunteerForm, files dtos.Files, now time.Time) (time.Time, int, int, error) {
	dob, err := validateBase(&f.RegistrantForm)
	if err != nil {
		return dob, 0, 0, err
	}
	if err := requireAll(f.Age, f.EmploymentStatus, f.EducationDegree, f.EducationYearOfCompletion); err != nil {
		return dob, 0, 0, err
	}
	age, err := strconv.Atoi(strings.TrimSpace(f.Age))
	if err != nil || age <= 0 || age > 120 {
		return dob, 0, 0, validationError("Please provide a valid age.")
	}
	year, err := strconv.Atoi(strings.TrimSpace(f.EducationYearOfCompletion))
	if err != nil || year < 1900 || year > now.Year() {
		return dob, 0, 0, validationError(fmt.Sprintf("Year of completion must be between 1900 and %d.", now.Year()))
	}
	if !oneOf(f.EmploymentStatus, validEmploymentStatuses) {
		return dob, 0, 0, validationError("Employment status must be Employed or Un-employed.")
	}
	if f.EmploymentStatus == "Employed" && strings.TrimSpace(f.MonthlyIncomeRange) == "" {
		return dob, 0, 0, validationError(constants.MsgIncomeRangeRequired)
	}
	if !files.Has("image") || !files.Has("educationCertificate") || !files.Has("bankDocument") {
		return dob, 0, 0, validationError(constants.MsgDocumentsRequired)
	}
	return dob, age, year, nil
}

func (s *RegistrationService) requireVerified(ctx context.Context, gate VerificationGate, email string) error {
	verified, err := gate.IsVerified(ctx, email)
	if err != nil {
		return err
	}
	if !verified {
		return newError(KindValidation, CodeEmailNotVerified, constants.MsgEmailNotVerified)
	}
	return nil
}

func (s *RegistrationService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.HashCost)
	if err != nil {
		return "", dependencyError(CodeStorageFailed, "failed to hash password", err)
	}
	return string(h), nil
}

func baseFromForm(f *dtos.RegistrantForm, email string, dob time.Time) gormModels.RegistrantBase {
	return gormModels.RegistrantBase{
		Name:            strings.TrimSpace(f.Name),
		Guardian:        strings.TrimSpace(f.Guardian),
		Email:           email,
		Phone:           strings.TrimSpace(f.Phone),
		Address:         strings.TrimSpace(f.Address),
		CurrentAddress:  strings.TrimSpace(f.CurrentAddress),
		DOB:             dob,
		Gender:          f.Gender,
		BankAccNumber:   strings.TrimSpace(f.BankAccNumber),
		BankName:        strings.TrimSpace(f.BankName),
		IFSC:            strings.ToUpper(strings.TrimSpace(f.IFSC)),
		Undertaking:     true,
		AccountVerified: true,
	}
}

// persist allocates a number and inserts record in one transaction, retrying
// when the number turns out to be taken.
func (s *RegistrationService) persist(
	ctx context.Context,
	scheme IdentifierScheme,
	base *gormModels.RegistrantBase,
	record interface{},
	docs func(ownerID string) []gormModels.RegistrantDocument,
) error {
	return withIdentifierRetry(ctx, s.metrics, scheme, func() error {
		var number string
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			n, err := s.allocator.AllocateWithin(ctx, tx, scheme)
			if err != nil {
				return err
			}
			number = n
			base.ID = ""
			base.RegNumber = n

			if err := tx.Create(record).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return errInsertConflict
				}
				return dependencyError(CodeStorageFailed, "failed to save registration", err)
			}
			if d := docs(base.ID); len(d) > 0 {
				if err := tx.Create(&d).Error; err != nil {
					return dependencyError(CodeStorageFailed, "failed to record uploaded documents", err)
				}
			}
			return nil
		})
		if errors.Is(err, errInsertConflict) {
			return s.classifyInsertConflict(ctx, scheme, number)
		}
		return err
	})
}

// classifyInsertConflict decides whether a unique violation came from the
// registration number or from the contact details.
func (s *RegistrationService) classifyInsertConflict(ctx context.Context, scheme IdentifierScheme, number string) error {
	var count int64
	err := s.db.WithContext(ctx).Table(scheme.Table).Where("reg_number = ?", number).Count(&count).Error
	if err != nil {
		return dependencyError(CodeStorageFailed, "failed to check registration number", err)
	}
	if count > 0 {
		return duplicateIdentifier(number)
	}
	return newError(KindConflict, CodeAlreadyRegistered, constants.MsgEmailOrPhoneRegistered)
}

func (s *RegistrationService) sendConfirmation(ctx context.Context, to, subject, body string) bool {
	err := s.email.Send(context.WithoutCancel(ctx), providers.Email{To: to, Subject: subject, HTML: body})
	if err != nil {
		s.metrics.EmailFailure("registration")
		logging.Warn("Failed to send registration confirmation", "email", to, "error", err)
		return false
	}
	return true
}

func (s *RegistrationService) finish(ctx context.Context, gate VerificationGate, email string) {
	if err := gate.Consume(ctx, email); err != nil {
		logging.Warn("Failed to consume OTP challenge after registration", "email", email, "error", err)
	}
}

// abort records the failed step and returns the partial step log with err.
func (l *stepLog) abort(role constants.Role, email, name string, err error) (*dtos.RegistrationResponse, error) {
	l.fail(name, err)
	return &dtos.RegistrationResponse{
		Role:    role.String(),
		Email:   email,
		Status:  false,
		Message: "Registration failed",
		Steps:   l.steps,
	}, err
}

// RegisterCandidate registers a candidate under an existing, unblocked volunteer.
func (s *RegistrationService) RegisterCandidate(ctx context.Context, form dtos.CandidateForm, files dtos.Files) (*dtos.RegistrationResponse, error) {
	role := constants.RoleCandidate
	email := NormalizeEmail(form.Email)
	log := &stepLog{}

	dob, err := validateCandidate(&form, files)
	if err != nil {
		s.metrics.Registration(role.String(), "invalid")
		return log.abort(role, email, "validation", err)
	}
	log.ok("validation", "All fields and documents present")

	if err := s.requireVerified(ctx, s.candidateOTP, email); err != nil {
		s.metrics.Registration(role.String(), "unverified")
		return log.abort(role, email, "email_verification", err)
	}
	log.ok("email_verification", "Email verified")

	taken, err := s.registrants.CandidateContactTaken(ctx, email, strings.TrimSpace(form.Phone))
	if err != nil {
		return log.abort(role, email, "duplicate_check", dependencyError(CodeStorageFailed, "failed to check existing registrations", err))
	}
	if taken {
		s.metrics.Registration(role.String(), "duplicate")
		return log.abort(role, email, "duplicate_check",
			newError(KindConflict, CodeAlreadyRegistered, constants.MsgEmailOrPhoneRegistered))
	}
	log.ok("duplicate_check", "Email and phone are available")

	volunteerRegNum := strings.TrimSpace(form.VolunteerRegNum)
	volunteer, err := s.registrants.FindVolunteerByRegNumber(ctx, volunteerRegNum)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return log.abort(role, email, "volunteer_reference", validationError(constants.MsgInvalidVolunteerRegNum))
		}
		return log.abort(role, email, "volunteer_reference", dependencyError(CodeStorageFailed, "failed to look up volunteer", err))
	}
	if volunteer.IsBlocked {
		return log.abort(role, email, "volunteer_reference",
			newError(KindForbidden, CodeAccountBlocked, "The referring volunteer account is blocked."))
	}
	log.ok("volunteer_reference", "Volunteer "+volunteer.RegNumber+" found")

	hash, err := s.hash(form.Password)
	if err != nil {
		return log.abort(role, email, "persist", err)
	}

	up := &documentUploader{storage: s.storage}
	candidate := gormModels.Candidate{
		RegistrantBase:           baseFromForm(&form.RegistrantForm, email, dob),
		VolunteerRegNumber:       volunteer.RegNumber,
		EducationQualification:   form.EducationQualification,
		PwdCategory:              form.PwdCategory,
		EntrepreneurshipInterest: form.EntrepreneurshipInterest,
		CCCCertified:             "Pending",
	}
	candidate.PasswordHash = hash

	uploadErr := func() error {
		var err error
		if candidate.Image, err = up.put(ctx, "image", constants.FolderUsers, files["image"]); err != nil {
			return err
		}
		if candidate.EducationDocument, err = up.put(ctx, "educationDocument", constants.FolderDocuments, files["educationDocument"]); err != nil {
			return err
		}
		if candidate.BankPassbook, err = up.put(ctx, "bankPassbook", constants.FolderDocuments, files["bankPassbook"]); err != nil {
			return err
		}
		if candidate.PoliceVerification, err = up.putOptional(ctx, "policeVerification", constants.FolderDocuments, files); err != nil {
			return err
		}
		if form.PwdCategory == "Yes" {
			if candidate.PwdCertificate, err = up.putOptional(ctx, "pwdCertificate", constants.FolderDocuments, files); err != nil {
				return err
			}
		}
		if form.EntrepreneurshipInterest == "Yes" {
			if candidate.BplCertificate, err = up.putOptional(ctx, "bplCertificate", constants.FolderDocuments, files); err != nil {
				return err
			}
		}
		return nil
	}()
	if uploadErr != nil {
		up.rollback(ctx)
		s.metrics.Registration(role.String(), "upload_failed")
		return log.abort(role, email, "document_upload", uploadErr)
	}
	log.ok("document_upload", fmt.Sprintf("%d documents uploaded", len(up.uploaded)))

	err = s.persist(ctx, SchemeCandidate, &candidate.RegistrantBase, &candidate, func(id string) []gormModels.RegistrantDocument {
		return up.records(id, role)
	})
	if err != nil {
		up.rollback(ctx)
		s.metrics.Registration(role.String(), "persist_failed")
		return log.abort(role, email, "persist", err)
	}
	log.ok("persist", "Registered as "+candidate.RegNumber)

	s.finish(ctx, s.candidateOTP, email)

	if s.sendConfirmation(ctx, email, "Welcome to Anara Skills Foundation - Your Registration is Successful!",
		registrationEmail(candidate.Name, email, candidate.RegNumber, "Education Qualification", candidate.EducationQualification)) {
		log.ok("confirmation_email", "Confirmation email sent")
	} else {
		log.steps = append(log.steps, dtos.RegistrationStep{Name: "confirmation_email", Status: false, Message: "Confirmation email could not be sent"})
	}

	s.metrics.Registration(role.String(), "success")
	logging.Info("Candidate registered",
		"candidate_id", candidate.ID,
		"reg_number", candidate.RegNumber,
		"volunteer_reg_number", candidate.VolunteerRegNumber,
	)

	return &dtos.RegistrationResponse{
		ID:        candidate.ID,
		Role:      role.String(),
		Name:      candidate.Name,
		Email:     email,
		RegNumber: candidate.RegNumber,
		Status:    true,
		Message:   "User registered successfully.",
		Steps:     log.steps,
	}, nil
}

// RegisterVolunteer registers a field executive.
func (s *RegistrationService) RegisterVolunteer(ctx context.Context, form dtos.VolunteerForm, files dtos.Files) (*dtos.RegistrationResponse, error) {
	role := constants.RoleVolunteer
	email := NormalizeEmail(form.Email)
	log := &stepLog{}

	dob, age, year, err := validateVolunteer(&form, files, s.Now())
	if err != nil {
		s.metrics.Registration(role.String(), "invalid")
		return log.abort(role, email, "validation", err)
	}
	log.ok("validation", "All fields and documents present")

	if err := s.requireVerified(ctx, s.volunteerOTP, email); err != nil {
		s.metrics.Registration(role.String(), "unverified")
		return log.abort(role, email, "email_verification", err)
	}
	log.ok("email_verification", "Email verified")

	taken, err := s.registrants.VolunteerContactTaken(ctx, email, strings.TrimSpace(form.Phone))
	if err != nil {
		return log.abort(role, email, "duplicate_check", dependencyError(CodeStorageFailed, "failed to check existing registrations", err))
	}
	if taken {
		s.metrics.Registration(role.String(), "duplicate")
		return log.abort(role, email, "duplicate_check",
			newError(KindConflict, CodeAlreadyRegistered, constants.MsgEmailOrPhoneRegistered))
	}
	log.ok("duplicate_check", "Email and phone are available")

	hash, err := s.hash(form.Password)
	if err != nil {
		return log.abort(role, email, "persist", err)
	}

	volunteer := gormModels.Volunteer{
		RegistrantBase:            baseFromForm(&form.RegistrantForm, email, dob),
		Age:                       age,
		EmploymentStatus:          form.EmploymentStatus,
		EducationDegree:           strings.TrimSpace(form.EducationDegree),
		EducationYearOfCompletion: year,
	}
	volunteer.PasswordHash = hash
	if income := strings.TrimSpace(form.MonthlyIncomeRange); income != "" {
		volunteer.MonthlyIncomeRange = &income
	}

	up := &documentUploader{storage: s.storage}
	uploadErr := func() error {
		var err error
		if volunteer.Image, err = up.put(ctx, "image", constants.FolderUsers, files["image"]); err != nil {
			return err
		}
		if volunteer.EducationCertificate, err = up.put(ctx, "educationCertificate", constants.FolderDocuments, files["educationCertificate"]); err != nil {
			return err
		}
		if volunteer.BankDocument, err = up.put(ctx, "bankDocument", constants.FolderDocuments, files["bankDocument"]); err != nil {
			return err
		}
		volunteer.PoliceVerification, err = up.putOptional(ctx, "policeVerification", constants.FolderDocuments, files)
		return err
	}()
	if uploadErr != nil {
		up.rollback(ctx)
		s.metrics.Registration(role.String(), "upload_failed")
		return log.abort(role, email, "document_upload", uploadErr)
	}
	log.ok("document_upload", fmt.Sprintf("%d documents uploaded", len(up.uploaded)))

	err = s.persist(ctx, SchemeVolunteer, &volunteer.RegistrantBase, &volunteer, func(id string) []gormModels.RegistrantDocument {
		return up.records(id, role)
	})
	if err != nil {
		up.rollback(ctx)
		s.metrics.Registration(role.String(), "persist_failed")
		return log.abort(role, email, "persist", err)
	}
	log.ok("persist", "Registered as "+volunteer.RegNumber)

	s.finish(ctx, s.volunteerOTP, email)

	if s.sendConfirmation(ctx, email, "Welcome to Anara Skills Foundation - Volunteer Registration Successful!",
		registrationEmail(volunteer.Name, email, volunteer.RegNumber, "Employment Status", volunteer.EmploymentStatus)) {
		log.ok("confirmation_email", "Confirmation email sent")
	} else {
		log.steps = append(log.steps, dtos.RegistrationStep{Name: "confirmation_email", Status: false, Message: "Confirmation email could not be sent"})
	}

	s.metrics.Registration(role.String(), "success")
	logging.Info("Volunteer registered", "volunteer_id", volunteer.ID, "reg_number", volunteer.RegNumber)

	return &dtos.RegistrationResponse{
		ID:        volunteer.ID,
		Role:      role.String(),
		Name:      volunteer.Name,
		Email:     email,
		RegNumber: volunteer.RegNumber,
		Status:    true,
		Message:   "Volunteer registered successfully.",
		Steps:     log.steps,
	}, nil
}

// IssueTemporaryNumber hands a verified volunteer email its T/ASF/FE number,
// reusing the one already issued to that email.
func (s *RegistrationService) IssueTemporaryNumber(ctx context.Context, email string) (*dtos.TemporaryNumberResponse, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, validationError(constants.MsgEmailRequired)
	}
	if err := s.requireVerified(ctx, s.volunteerOTP, email); err != nil {
		return nil, err
	}

	var existing gormModels.TemporaryRegistration
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &dtos.TemporaryNumberResponse{Email: email, RegNumber: existing.RegNumber}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dependencyError(CodeStorageFailed, "failed to look up temporary registration", err)
	}

	var reg gormModels.TemporaryRegistration
	err = withIdentifierRetry(ctx, s.metrics, SchemeTemporaryVolunteer, func() error {
		var number string
		txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			n, err := s.allocator.AllocateWithin(ctx, tx, SchemeTemporaryVolunteer)
			if err != nil {
				return err
			}
			number = n
			reg = gormModels.TemporaryRegistration{Email: email, RegNumber: n}
			if err := tx.Create(&reg).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return errInsertConflict
				}
				return dependencyError(CodeStorageFailed, "failed to save temporary registration", err)
			}
			return nil
		})
		if errors.Is(txErr, errInsertConflict) {
			return s.classifyInsertConflict(ctx, SchemeTemporaryVolunteer, number)
		}
		return txErr
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			// Issued concurrently for the same email.
			if e := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; e == nil {
				return &dtos.TemporaryNumberResponse{Email: email, RegNumber: existing.RegNumber}, nil
			}
		}
		return nil, err
	}

	s.sendConfirmation(ctx, email, "Your Temporary Registration Number", temporaryNumberEmail(reg.RegNumber))
	logging.Info("Temporary registration number issued", "email", email, "reg_number", reg.RegNumber)

	return &dtos.TemporaryNumberResponse{Email: email, RegNumber: reg.RegNumber, Created: true}, nil
}

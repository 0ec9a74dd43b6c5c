package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"anara-skills/registrar/internal/models/dtos"
	gormModels "anara-skills/registrar/internal/models/gorm"
	"anara-skills/registrar/internal/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Fake verification gate
type fakeGate struct {
	mu       sync.Mutex
	verified map[string]bool
	consumed []string
}

func newFakeGate(emails ...string) *fakeGate {
	g := &fakeGate{verified: map[string]bool{}}
	for _, e := range emails {
		g.verified[e] = true
	}
	return g
}

func (g *fakeGate) IsVerified(_ context.Context, email string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verified[email], nil
}

func (g *fakeGate) Consume(_ context.Context, email string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.verified, email)
	g.consumed = append(g.consumed, email)
	return nil
}

type registrationFixture struct {
	db           *gorm.DB
	svc          *RegistrationService
	storage      *mockStorage
	email        *mockEmail
	candidateOTP *fakeGate
	volunteerOTP *fakeGate
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	f := &registrationFixture{
		db:           setupTestDB(t),
		storage:      &mockStorage{},
		email:        &mockEmail{},
		candidateOTP: newFakeGate(),
		volunteerOTP: newFakeGate(),
	}
	f.svc = NewRegistrationService(f.db, NewIdentifierAllocator(f.db, nil), f.storage, f.email, f.candidateOTP, f.volunteerOTP, nil)
	f.svc.HashCost = bcrypt.MinCost
	f.svc.Now = newFakeClock().Now
	return f
}

func file(name string) dtos.UploadedFile {
	return dtos.UploadedFile{Filename: name, ContentType: "application/pdf", Data: []byte("%PDF-" + name)}
}

func baseForm(email, phone string) dtos.RegistrantForm {
	return dtos.RegistrantForm{
		Name:           "Asha Devi",
		Email:          email,
		Phone:          phone,
		Password:       "s3cretpass",
		Guardian:       "Ram Lal",
		Address:        "12 Main Road",
		CurrentAddress: "12 Main Road",
		DOB:            "2001-04-12",
		Gender:         "Female",
		BankAccNumber:  "00112233",
		BankName:       "State Bank",
		IFSC:           "sbin0001",
		Undertaking:    "true",
	}
}

func candidateForm(email, phone, volunteerReg string) dtos.CandidateForm {
	return dtos.CandidateForm{
		RegistrantForm:           baseForm(email, phone),
		VolunteerRegNum:          volunteerReg,
		PwdCategory:              "No",
		EntrepreneurshipInterest: "No",
		EducationQualification:   "10th",
	}
}

func candidateFiles() dtos.Files {
	return dtos.Files{
		"image":             file("photo.jpg"),
		"educationDocument": file("marks.pdf"),
		"bankPassbook":      file("passbook.pdf"),
	}
}

func volunteerForm(email, phone string) dtos.VolunteerForm {
	return dtos.VolunteerForm{
		RegistrantForm:            baseForm(email, phone),
		Age:                       "32",
		EmploymentStatus:          "Employed",
		MonthlyIncomeRange:        "10000-20000",
		EducationDegree:           "B.A.",
		EducationYearOfCompletion: "2012",
	}
}

func volunteerFiles() dtos.Files {
	return dtos.Files{
		"image":                file("photo.jpg"),
		"educationCertificate": file("degree.pdf"),
		"bankDocument":         file("cheque.pdf"),
	}
}

func TestRegisterVolunteerThenCandidate(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()
	f.volunteerOTP.verified["vol@example.org"] = true
	f.candidateOTP.verified["cand@example.org"] = true

	vol, err := f.svc.RegisterVolunteer(ctx, volunteerForm("Vol@Example.org", "9000000001"), volunteerFiles())
	require.NoError(t, err)
	assert.True(t, vol.Status)
	assert.Equal(t, "ASF/FE/00001", vol.RegNumber)
	assert.Equal(t, "vol@example.org", vol.Email)

	cand, err := f.svc.RegisterCandidate(ctx, candidateForm("cand@example.org", "9000000002", vol.RegNumber), candidateFiles())
	require.NoError(t, err)
	assert.Equal(t, "ASF/CANDIDATE/00001", cand.RegNumber)

	var stored gormModels.Candidate
	require.NoError(t, f.db.Where("id = ?", cand.ID).First(&stored).Error)
	assert.True(t, stored.AccountVerified)
	assert.Equal(t, vol.RegNumber, stored.VolunteerRegNumber)
	assert.Equal(t, "SBIN0001", stored.IFSC)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cretpass")))
	assert.Nil(t, stored.PoliceVerification)

	var docs int64
	f.db.Model(&gormModels.RegistrantDocument{}).Where("owner_id = ?", cand.ID).Count(&docs)
	assert.Equal(t, int64(3), docs)

	assert.Equal(t, []string{"cand@example.org"}, f.candidateOTP.consumed)
	assert.Equal(t, []string{"vol@example.org"}, f.volunteerOTP.consumed)
	assert.Equal(t, 2, f.email.count())
	assert.Contains(t, f.email.last().HTML, "ASF/CANDIDATE/00001")
	assert.Empty(t, f.storage.deleted)
}

func TestRegisterCandidate_Validation(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*dtos.CandidateForm, dtos.Files)
		want   string
	}{
		{"missing name", func(c *dtos.CandidateForm, _ dtos.Files) { c.Name = " " }, "All fields are required."},
		{"missing document", func(_ *dtos.CandidateForm, fs dtos.Files) { delete(fs, "bankPassbook") }, "All required documents must be uploaded."},
		{"bad qualification", func(c *dtos.CandidateForm, _ dtos.Files) { c.EducationQualification = "12th" }, "Please select a valid education qualification."},
		{"no undertaking", func(c *dtos.CandidateForm, _ dtos.Files) { c.Undertaking = "false" }, "Confirmation is required."},
		{"pwd without certificate", func(c *dtos.CandidateForm, _ dtos.Files) { c.PwdCategory = "Yes" }, "PWD Certificate is required."},
		{"bpl without certificate", func(c *dtos.CandidateForm, _ dtos.Files) { c.EntrepreneurshipInterest = "Yes" }, "BPL/marginalized category certificate is required."},
		{"bad gender", func(c *dtos.CandidateForm, _ dtos.Files) { c.Gender = "x" }, "Please select a valid gender."},
		{"short password", func(c *dtos.CandidateForm, _ dtos.Files) { c.Password = "short" }, "Password must be between 8 and 32 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := candidateForm("c@example.org", "9000000002", "ASF/FE/00001")
			files := candidateFiles()
			tt.mutate(&form, files)

			resp, err := f.svc.RegisterCandidate(ctx, form, files)
			require.ErrorIs(t, err, ErrValidation)
			se, _ := AsServiceError(err)
			assert.Equal(t, tt.want, se.Message)
			assert.False(t, resp.Status)
			require.Len(t, resp.Steps, 1)
			assert.Equal(t, "validation", resp.Steps[0].Name)
		})
	}
	assert.Empty(t, f.storage.uploads)
}

func TestRegisterCandidate_RequiresVerifiedEmail(t *testing.T) {
	f := newRegistrationFixture(t)

	_, err := f.svc.RegisterCandidate(context.Background(), candidateForm("c@example.org", "9000000002", "ASF/FE/00001"), candidateFiles())
	assert.ErrorIs(t, err, ErrEmailNotVerified)
	assert.Empty(t, f.storage.uploads)
}

func TestRegisterCandidate_UnknownOrBlockedVolunteer(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()
	f.candidateOTP.verified["c@example.org"] = true

	resp, err := f.svc.RegisterCandidate(ctx, candidateForm("c@example.org", "9000000002", "ASF/FE/00099"), candidateFiles())
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "volunteer_reference", resp.Steps[len(resp.Steps)-1].Name)

	createTestVolunteer(t, f.db, 7, true)
	_, err = f.svc.RegisterCandidate(ctx, candidateForm("c@example.org", "9000000002", SchemeVolunteer.Format(7)), candidateFiles())
	assert.ErrorIs(t, err, ErrAccountBlocked)
	assert.Empty(t, f.storage.uploads)
}

func TestRegisterCandidate_DuplicateContact(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()
	vol := createTestVolunteer(t, f.db, 1, false)
	f.candidateOTP.verified["first@example.org"] = true
	f.candidateOTP.verified["second@example.org"] = true

	_, err := f.svc.RegisterCandidate(ctx, candidateForm("first@example.org", "9000000002", vol.RegNumber), candidateFiles())
	require.NoError(t, err)

	// Same phone, different email.
	_, err = f.svc.RegisterCandidate(ctx, candidateForm("second@example.org", "9000000002", vol.RegNumber), candidateFiles())
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterCandidate_UploadFailureRollsBack(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()
	vol := createTestVolunteer(t, f.db, 1, false)
	f.candidateOTP.verified["c@example.org"] = true

	calls := 0
	f.storage.uploadFunc = func(_ context.Context, _ []byte, folder, filename string) (providers.StoredObject, error) {
		calls++
		if calls == 3 {
			return providers.StoredObject{}, errBoom
		}
		return providers.StoredObject{URL: "https://cdn.example/" + filename, PublicID: folder + "/" + filename}, nil
	}

	resp, err := f.svc.RegisterCandidate(ctx, candidateForm("c@example.org", "9000000002", vol.RegNumber), candidateFiles())
	require.ErrorIs(t, err, ErrUploadFailed)
	assert.Equal(t, "document_upload", resp.Steps[len(resp.Steps)-1].Name)
	assert.ElementsMatch(t, []string{"users/photo.jpg", "documents/marks.pdf"}, f.storage.deleted)

	var count int64
	f.db.Model(&gormModels.Candidate{}).Count(&count)
	assert.Zero(t, count)
	assert.True(t, f.candidateOTP.verified["c@example.org"], "challenge is kept for a retry")
}

func TestRegisterCandidate_InsertConflictRollsBackUploads(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()
	vol := createTestVolunteer(t, f.db, 1, false)
	f.candidateOTP.verified["c@example.org"] = true

	// Another registration takes the phone number while documents upload.
	var raced bool
	f.storage.uploadFunc = func(_ context.Context, _ []byte, folder, filename string) (providers.StoredObject, error) {
		if !raced {
			raced = true
			other := gormModels.Candidate{
				RegistrantBase: gormModels.RegistrantBase{
					Name:         "Other",
					Email:        "other@example.org",
					Phone:        "9000000002",
					PasswordHash: "x",
					RegNumber:    SchemeCandidate.Format(50),
				},
				VolunteerRegNumber: vol.RegNumber,
			}
			if err := f.db.Create(&other).Error; err != nil {
				return providers.StoredObject{}, err
			}
		}
		return providers.StoredObject{URL: "https://cdn.example/" + filename, PublicID: folder + "/" + filename}, nil
	}

	resp, err := f.svc.RegisterCandidate(ctx, candidateForm("c@example.org", "9000000002", vol.RegNumber), candidateFiles())
	require.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, "persist", resp.Steps[len(resp.Steps)-1].Name)

	require.Len(t, f.storage.uploads, 3)
	uploaded := make([]string, 0, len(f.storage.uploads))
	for _, u := range f.storage.uploads {
		uploaded = append(uploaded, u.PublicID)
	}
	assert.ElementsMatch(t, uploaded, f.storage.deleted)

	var count int64
	f.db.Model(&gormModels.Candidate{}).Where("email = ?", "c@example.org").Count(&count)
	assert.Zero(t, count)
	f.db.Model(&gormModels.RegistrantDocument{}).Count(&count)
	assert.Zero(t, count)
	assert.True(t, f.candidateOTP.verified["c@example.org"], "challenge is kept for a retry")
}

func TestRegisterCandidate_OptionalAndConditionalDocuments(t *testing.T) {
	f := newRegistrationFixture(t)
	vol := createTestVolunteer(t, f.db, 1, false)
	f.candidateOTP.verified["c@example.org"] = true

	form := candidateForm("c@example.org", "9000000002", vol.RegNumber)
	form.PwdCategory = "Yes"
	files := candidateFiles()
	files["pwdCertificate"] = file("pwd.pdf")
	files["policeVerification"] = file("police.pdf")

	resp, err := f.svc.RegisterCandidate(context.Background(), form, files)
	require.NoError(t, err)

	var stored gormModels.Candidate
	require.NoError(t, f.db.Where("id = ?", resp.ID).First(&stored).Error)
	require.NotNil(t, stored.PwdCertificate)
	require.NotNil(t, stored.PoliceVerification)
	assert.Nil(t, stored.BplCertificate)
	assert.Len(t, f.storage.uploads, 5)
}

func TestRegisterVolunteer_Validation(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()

	form := volunteerForm("v@example.org", "9000000001")
	form.MonthlyIncomeRange = ""
	_, err := f.svc.RegisterVolunteer(ctx, form, volunteerFiles())
	require.ErrorIs(t, err, ErrValidation)

	form = volunteerForm("v@example.org", "9000000001")
	form.EducationYearOfCompletion = "1850"
	_, err = f.svc.RegisterVolunteer(ctx, form, volunteerFiles())
	require.ErrorIs(t, err, ErrValidation)

	form = volunteerForm("v@example.org", "9000000001")
	form.EmploymentStatus = "Un-employed"
	form.MonthlyIncomeRange = ""
	_, err = f.svc.RegisterVolunteer(ctx, form, volunteerFiles())
	assert.ErrorIs(t, err, ErrEmailNotVerified, "unemployed volunteers need no income range")
}

func TestRegisterVolunteer_ConfirmationFailureIsBestEffort(t *testing.T) {
	f := newRegistrationFixture(t)
	f.volunteerOTP.verified["v@example.org"] = true
	f.email.sendFunc = func(context.Context, providers.Email) error { return errBoom }

	resp, err := f.svc.RegisterVolunteer(context.Background(), volunteerForm("v@example.org", "9000000001"), volunteerFiles())
	require.NoError(t, err)
	last := resp.Steps[len(resp.Steps)-1]
	assert.Equal(t, "confirmation_email", last.Name)
	assert.False(t, last.Status)
}

func TestRegisterVolunteer_SequentialNumbers(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()

	for i, want := range []string{"ASF/FE/00001", "ASF/FE/00002", "ASF/FE/00003"} {
		email := strings.Replace("vN@example.org", "N", string(rune('a'+i)), 1)
		f.volunteerOTP.verified[email] = true
		resp, err := f.svc.RegisterVolunteer(ctx, volunteerForm(email, "90000001"+string(rune('0'+i))), volunteerFiles())
		require.NoError(t, err)
		assert.Equal(t, want, resp.RegNumber)
	}
}

func TestIssueTemporaryNumber(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()

	_, err := f.svc.IssueTemporaryNumber(ctx, "t@example.org")
	require.ErrorIs(t, err, ErrEmailNotVerified)

	f.volunteerOTP.verified["t@example.org"] = true
	first, err := f.svc.IssueTemporaryNumber(ctx, "T@example.org")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "T/ASF/FE/00001", first.RegNumber)
	assert.True(t, ValidTemporaryNumber(first.RegNumber))

	again, err := f.svc.IssueTemporaryNumber(ctx, "t@example.org")
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, first.RegNumber, again.RegNumber)
	assert.Equal(t, 1, f.email.count())
}

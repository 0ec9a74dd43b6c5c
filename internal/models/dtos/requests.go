package dtos

type OTPRequest struct {
	Email string `json:"email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type AdminRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// UploadedFile is one multipart part already read into memory.
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Files maps the multipart field name to its upload.
type Files map[string]UploadedFile

func (f Files) Has(field string) bool {
	file, ok := f[field]
	return ok && len(file.Data) > 0
}

// RegistrantForm holds the text fields common to both registration forms.
type RegistrantForm struct {
	Name           string
	Email          string
	Phone          string
	Password       string
	Guardian       string
	Address        string
	CurrentAddress string
	DOB            string
	Gender         string
	BankAccNumber  string
	BankName       string
	IFSC           string
	Undertaking    string
}

type CandidateForm struct {
	RegistrantForm
	VolunteerRegNum          string
	PwdCategory              string
	EntrepreneurshipInterest string
	EducationQualification   string
}

type VolunteerForm struct {
	RegistrantForm
	Age                       string
	EmploymentStatus          string
	MonthlyIncomeRange        string
	EducationDegree           string
	EducationYearOfCompletion string
}

type CreatePaymentRequest struct {
	UserCount int  `json:"userCount"`
	Amount    *int `json:"amount,omitempty"`
}

type RejectPaymentRequest struct {
	Reason *string `json:"reason,omitempty"`
}

type MarkPaidRequest struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
}

// CourseRequest creates or edits a course. JobRoleIDs nil leaves the job
// role links untouched on update.
type CourseRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Eligibility string    `json:"eligibility"`
	JobRoleIDs  *[]string `json:"jobRoles,omitempty"`
}

type AttachCoursesRequest struct {
	CourseIDs []string `json:"courses"`
}

type JobRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CourseIDs   []string `json:"courses"`
}

type SelectCourseRequest struct {
	CourseID string `json:"courseId"`
}

type SendLetterheadRequest struct {
	Subject string   `json:"subject"`
	Message string   `json:"message"`
	Emails  []string `json:"emails"`
}

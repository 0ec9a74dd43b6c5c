package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistrantBase holds the columns shared by candidates and volunteers.
type RegistrantBase struct {
	ID                  string     `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Name                string     `gorm:"column:name;not null" json:"name"`
	Guardian            string     `gorm:"column:guardian;not null" json:"guardian"`
	Email               string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Phone               string     `gorm:"column:phone;uniqueIndex;not null" json:"phone"`
	PasswordHash        string     `gorm:"column:password_hash;not null" json:"-"`
	Address             string     `gorm:"column:address" json:"address"`
	CurrentAddress      string     `gorm:"column:current_address" json:"current_address"`
	DOB                 time.Time  `gorm:"column:dob" json:"dob"`
	Gender              string     `gorm:"column:gender" json:"gender"`
	Image               string     `gorm:"column:image" json:"image"`
	PoliceVerification  *string    `gorm:"column:police_verification" json:"police_verification,omitempty"`
	BankAccNumber       string     `gorm:"column:bank_acc_number" json:"bank_acc_number"`
	BankName            string     `gorm:"column:bank_name" json:"bank_name"`
	IFSC                string     `gorm:"column:ifsc" json:"ifsc"`
	Undertaking         bool       `gorm:"column:undertaking;default:false" json:"undertaking"`
	RegNumber           string     `gorm:"column:reg_number;uniqueIndex;not null" json:"reg_number"`
	AccountVerified     bool       `gorm:"column:account_verified;default:false" json:"account_verified"`
	IsBlocked           bool       `gorm:"column:is_blocked;default:false" json:"is_blocked"`
	ResetPasswordToken  *string    `gorm:"column:reset_password_token;index" json:"-"`
	ResetPasswordExpire *time.Time `gorm:"column:reset_password_expire" json:"-"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// Lifecycle states of a registrant record. Unverified and verified live in the
// OTP gate; a persisted record is always registered or blocked.
const (
	StatusUnverified = "unverified"
	StatusVerified   = "verified"
	StatusRegistered = "registered"
	StatusBlocked    = "blocked"
)

func (b *RegistrantBase) Status() string {
	switch {
	case b.IsBlocked:
		return StatusBlocked
	case b.AccountVerified:
		return StatusRegistered
	default:
		return StatusVerified
	}
}

func (b *RegistrantBase) assignID() {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
}

// Candidate is a trainee registered under a volunteer.
type Candidate struct {
	RegistrantBase
	VolunteerRegNumber       string  `gorm:"column:volunteer_reg_number;index;not null" json:"volunteer_reg_number"`
	EducationQualification   string  `gorm:"column:education_qualification" json:"education_qualification"`
	EducationDocument        string  `gorm:"column:education_document" json:"education_document"`
	BankPassbook             string  `gorm:"column:bank_passbook" json:"bank_passbook"`
	PwdCategory              string  `gorm:"column:pwd_category" json:"pwd_category"`
	PwdCertificate           *string `gorm:"column:pwd_certificate" json:"pwd_certificate,omitempty"`
	EntrepreneurshipInterest string  `gorm:"column:entrepreneurship_interest" json:"entrepreneurship_interest"`
	BplCertificate           *string `gorm:"column:bpl_certificate" json:"bpl_certificate,omitempty"`
	CCCCertified             string  `gorm:"column:ccc_certified;default:Pending" json:"ccc_certified"`
	CCCCertificate           *string `gorm:"column:ccc_certificate" json:"ccc_certificate,omitempty"`
	SelectedCourseID         *string `gorm:"column:selected_course_id;type:uuid" json:"selected_course_id,omitempty"`
}

// TableName specifies the table name for GORM
func (Candidate) TableName() string {
	return "candidates"
}

func (c *Candidate) BeforeCreate(tx *gorm.DB) error {
	c.assignID()
	return nil
}

// Volunteer registers candidates and raises payment requests.
type Volunteer struct {
	RegistrantBase
	Age                       int     `gorm:"column:age" json:"age"`
	EmploymentStatus          string  `gorm:"column:employment_status" json:"employment_status"`
	MonthlyIncomeRange        *string `gorm:"column:monthly_income_range" json:"monthly_income_range,omitempty"`
	EducationDegree           string  `gorm:"column:education_degree" json:"education_degree"`
	EducationYearOfCompletion int     `gorm:"column:education_year_of_completion" json:"education_year_of_completion"`
	EducationCertificate      string  `gorm:"column:education_certificate" json:"education_certificate"`
	BankDocument              string  `gorm:"column:bank_document" json:"bank_document"`
}

// TableName specifies the table name for GORM
func (Volunteer) TableName() string {
	return "volunteers"
}

func (v *Volunteer) BeforeCreate(tx *gorm.DB) error {
	v.assignID()
	return nil
}

// RegistrantDocument records every object uploaded for a registrant so it can
// be audited or removed later.
type RegistrantDocument struct {
	ID        string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	OwnerID   string    `gorm:"column:owner_id;type:uuid;index" json:"owner_id"`
	OwnerRole string    `gorm:"column:owner_role" json:"owner_role"`
	Field     string    `gorm:"column:field" json:"field"`
	URL       string    `gorm:"column:url" json:"url"`
	PublicID  string    `gorm:"column:public_id" json:"public_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (RegistrantDocument) TableName() string {
	return "registrant_documents"
}

func (d *RegistrantDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

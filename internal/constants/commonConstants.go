package constants

import "time"

type (
	APIStatus     string
	CachePrefix   string
	PaymentStatus string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixOTP          CachePrefix = "otp:"
	CachePrefixRevokedToken CachePrefix = "revoked_token:"
	CachePrefixJobRoles     CachePrefix = "catalog:job_roles"
)

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
	PaymentStatusPaid     PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusApproved, PaymentStatusRejected, PaymentStatusPaid:
		return true
	}
	return false
}

// Payment approval policy. Fixed for every request.
const (
	PaymentApprovalQuorum = 3
	PaymentMaxWriteRetry  = 5
)

// OTP policy.
const (
	OTPLength         = 6
	OTPTTL            = 5 * time.Minute
	OTPResendInterval = 5 * time.Minute
	OTPMaxAttempts    = 5
	OTPVerifiedTTL    = 30 * time.Minute
)

// Account policy.
const (
	PasswordMinLength  = 8
	PasswordMaxLength  = 32
	ResetTokenTTL      = 15 * time.Minute
	ResetTokenBytes    = 20
	RegistrationRetry  = 3
	MaxUploadSizeBytes = 32 << 20
)

// Storage folders used for uploaded documents.
const (
	FolderUsers        = "users"
	FolderDocuments    = "documents"
	FolderCertificates = "certificates"
	FolderCourses      = "courses"
	FolderSignatures   = "signatures"
	FolderLetterheads  = "letterheads"
)

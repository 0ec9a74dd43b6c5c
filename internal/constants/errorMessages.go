package constants

const (
	MsgAllFieldsRequired      = "All fields are required."
	MsgDocumentsRequired      = "All required documents must be uploaded."
	MsgConfirmationRequired   = "Confirmation is required."
	MsgEmailRequired          = "Email is required."
	MsgEmailAndOTPRequired    = "Email and OTP are required."
	MsgEmailRegistered        = "Email is already registered."
	MsgEmailOrPhoneRegistered = "Email or phone is already registered."
	MsgEmailNotVerified       = "Email not verified. Please verify your email first."
	MsgInvalidVolunteerRegNum = "Invalid Volunteer Registration Number. Please check and try again."
	MsgPWDCertificateRequired = "PWD Certificate is required."
	MsgBPLCertificateRequired = "BPL/marginalized category certificate is required."
	MsgIncomeRangeRequired    = "Monthly income range is required for employed volunteers."
	MsgInvalidQualification   = "Please select a valid education qualification."
	MsgOTPSendFailed          = "Failed to send OTP."
	MsgOTPNotFound            = "OTP not found or expired."
	MsgOTPExpired             = "OTP Expired."
	MsgOTPAlreadyVerified     = "Email already verified."
	MsgOTPExhausted           = "Too many invalid attempts. Please request a new OTP."
	MsgOTPInvalid             = "Invalid OTP."
	MsgOTPRateLimited         = "Please wait before requesting a new OTP."
	MsgPaymentNotFound        = "Payment request not found"
	MsgAlreadyApproved        = "You have already approved this request"
	MsgOnlyApprovedPaid       = "Only approved payment requests can be marked as paid"
	MsgInvalidCredentials     = "Invalid email or password."
	MsgAccountNotVerified     = "Account not verified. Please verify your email first."
	MsgAccountBlocked         = "Access denied. Account is blocked."
	MsgResetTokenInvalid      = "Reset password token is invalid or has expired."
	MsgPasswordMismatch       = "Password and confirm password do not match."
)

const (
	MsgPaymentApproved = "Payment request has been approved with required approvals"
	MsgPaymentRejected = "Payment request has been rejected"
	MsgPaymentPaid     = "Payment request has been marked as paid"
)

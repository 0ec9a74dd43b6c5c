package dtos

import "time"

// --- Controller endpoints ----

type APIResponse struct {
	Status       string         `json:"status"`
	Message      string         `json:"message"`
	ResponseTime string         `json:"response_time"`
	Data         any            `json:"data,omitempty"`
	ErrorCode    string         `json:"error_code,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
}

type RegistrationStep struct {
	Name    string `json:"name"`
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

type RegistrationResponse struct {
	ID        string             `json:"id"`
	Role      string             `json:"role"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	RegNumber string             `json:"reg_number"`
	Status    bool               `json:"status"`
	Message   string             `json:"message"`
	Steps     []RegistrationStep `json:"steps"`
}

type TemporaryNumberResponse struct {
	Email     string `json:"email"`
	RegNumber string `json:"reg_number"`
	Created   bool   `json:"created"`
}

type OTPStatusResponse struct {
	Email             string `json:"email"`
	Exists            bool   `json:"exists"`
	Verified          bool   `json:"verified"`
	ExpiresInSeconds  int    `json:"expires_in_seconds"`
	RemainingAttempts int    `json:"remaining_attempts"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
	Profile   any       `json:"profile"`
}

type ApprovalResult struct {
	RequestID     string `json:"request_id"`
	Status        string `json:"status"`
	ApprovalCount int    `json:"approval_count"`
	Message       string `json:"message"`
}

type RegistrantTotals struct {
	Volunteers int64 `json:"volunteers" db:"volunteers"`
	Candidates int64 `json:"candidates" db:"candidates"`
}

type VolunteerCandidateCount struct {
	VolunteerRegNumber string `json:"volunteer_reg_number" db:"volunteer_reg_number"`
	VolunteerName      string `json:"volunteer_name" db:"volunteer_name"`
	VolunteerEmail     string `json:"volunteer_email" db:"volunteer_email"`
	CandidateCount     int64  `json:"candidate_count" db:"candidate_count"`
}

type CandidateStats struct {
	Total      int64 `json:"total" db:"total"`
	Verified   int64 `json:"verified" db:"verified"`
	Unverified int64 `json:"unverified" db:"unverified"`
}

type BlockToggleResponse struct {
	RegNumber string `json:"reg_number"`
	IsBlocked bool   `json:"is_blocked"`
}

type CourseSelectionResponse struct {
	Selected bool   `json:"selected"`
	CourseID string `json:"course_id,omitempty"`
	Course   any    `json:"course,omitempty"`
}

type CCCStatusResponse struct {
	Status      string `json:"status"`
	Certificate string `json:"certificate,omitempty"`
}

type LetterheadFailure struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

type LetterheadResult struct {
	FileURL string              `json:"file_url"`
	Sent    int                 `json:"sent"`
	Failed  []LetterheadFailure `json:"failed,omitempty"`
}

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

type HealthResponse struct {
	Status   string                   `json:"status"`
	Uptime   string                   `json:"uptime"`
	Services map[string]ServiceStatus `json:"services"`
}

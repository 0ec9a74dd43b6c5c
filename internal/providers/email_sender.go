package providers

import "context"

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Email struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// EmailSender delivers transactional mail: OTP codes, confirmations, reset
// links and letterheads.
type EmailSender interface {
	Send(ctx context.Context, msg Email) error
}

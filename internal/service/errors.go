package service

import "errors"

// Domain errors surfaced to the HTTP layer.
var (
	ErrAlertNotFound      = errors.New("alert not found")
	ErrJobNotFound        = errors.New("job not found")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrInvalidTimeRange   = errors.New("invalid time range: from must be <= to")
	ErrEmailNotConfigured = errors.New("email provider is not configured")
	ErrNoRecipients       = errors.New("no alert email recipients configured")
	ErrInvalidSettings    = errors.New("invalid email settings")
)

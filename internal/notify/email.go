// Package notify delivers alert notifications through external providers.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by senders that lack credentials or a sender address.
var ErrNotConfigured = errors.New("email provider is not configured")

// EmailMessage is one plain-text email addressed to every recipient in To.
type EmailMessage struct {
	To      []string
	Subject string
	Text    string
}

// SendResult describes an accepted message.
type SendResult struct {
	ProviderMessageID string
	StatusCode        int
}

// EmailSender is the outbound email capability used by alert notifications.
type EmailSender interface {
	Configured() bool
	Send(ctx context.Context, msg EmailMessage) (SendResult, error)
}

// SendError is a provider rejection. StatusCode is 0 when no response was received.
type SendError struct {
	StatusCode int
	Message    string
}

func (e *SendError) Error() string {
	if e.StatusCode == 0 {
		return "email send failed: " + e.Message
	}
	return fmt.Sprintf("email send failed (%d): %s", e.StatusCode, e.Message)
}

// ResponseCode returns the provider status code carried by err, if any.
func ResponseCode(err error) *int {
	var se *SendError
	if errors.As(err, &se) && se.StatusCode != 0 {
		code := se.StatusCode
		return &code
	}
	return nil
}

// Disabled is an EmailSender that is never configured.
type Disabled struct{}

func (Disabled) Configured() bool { return false }

func (Disabled) Send(context.Context, EmailMessage) (SendResult, error) {
	return SendResult{}, ErrNotConfigured
}

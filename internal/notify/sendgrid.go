package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridEndpoint = "/v3/mail/send"
	sendTimeout      = 15 * time.Second
)

// SendGridOptions configures SendGridSender. Host is only overridden in tests or for regional endpoints.
type SendGridOptions struct {
	APIKey    string
	Host      string
	FromEmail string
	FromName  string
}

// SendGridSender sends email through the SendGrid v3 mail API.
type SendGridSender struct {
	opts   SendGridOptions
	client *rest.Client
}

func NewSendGridSender(opts SendGridOptions) *SendGridSender {
	opts.APIKey = strings.TrimSpace(opts.APIKey)
	opts.FromEmail = strings.TrimSpace(opts.FromEmail)
	opts.Host = strings.TrimRight(strings.TrimSpace(opts.Host), "/")
	return &SendGridSender{
		opts:   opts,
		client: &rest.Client{HTTPClient: &http.Client{Timeout: sendTimeout}},
	}
}

var _ EmailSender = (*SendGridSender)(nil)

// Configured reports whether both an API key and a sender address are set.
func (s *SendGridSender) Configured() bool {
	return s.opts.APIKey != "" && s.opts.FromEmail != ""
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) (SendResult, error) {
	if !s.Configured() {
		return SendResult{}, ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return SendResult{}, &SendError{Message: "no recipients"}
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(s.opts.FromName, s.opts.FromEmail))
	m.Subject = msg.Subject
	p := mail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(mail.NewEmail("", to))
	}
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/plain", msg.Text))

	req := sendgrid.GetRequest(s.opts.APIKey, sendGridEndpoint, s.opts.Host)
	req.Method = rest.Post
	req.Body = mail.GetRequestBody(m)

	resp, err := s.client.SendWithContext(ctx, req)
	if err != nil {
		return SendResult{}, &SendError{Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return SendResult{StatusCode: resp.StatusCode}, &SendError{
			StatusCode: resp.StatusCode,
			Message:    providerMessage(resp.Body, resp.StatusCode),
		}
	}

	res := SendResult{StatusCode: resp.StatusCode}
	for k, v := range resp.Headers {
		if strings.EqualFold(k, "X-Message-Id") && len(v) > 0 {
			res.ProviderMessageID = v[0]
		}
	}
	return res, nil
}

// providerMessage extracts the first error message from a SendGrid error body.
func providerMessage(body string, status int) string {
	var payload struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		for _, e := range payload.Errors {
			if m := strings.TrimSpace(e.Message); m != "" {
				return m
			}
		}
	}
	return http.StatusText(status)
}

package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"

	brevo "github.com/getbrevo/brevo-go/lib"
)

const senderName = "Uptime Report"

// transacSender is the part of the Brevo transactional email API we use.
type transacSender interface {
	SendTransacEmail(ctx context.Context, email brevo.SendSmtpEmail) (brevo.CreateSmtpEmail, *http.Response, error)
}

// Email sends alerts through Brevo transactional email.
type Email struct {
	From string
	To   []string
	api  transacSender
}

// NewEmail returns nil when the API key, sender or recipients are missing.
func NewEmail(apiKey, from string, to []string) *Email {
	if apiKey == "" || from == "" || len(to) == 0 {
		return nil
	}
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)
	client := brevo.NewAPIClient(cfg)
	return &Email{From: from, To: to, api: client.TransactionalEmailsApi}
}

func (e *Email) Send(ctx context.Context, title, text string) error {
	if e == nil || e.api == nil {
		return errors.New("email disabled")
	}
	to := make([]brevo.SendSmtpEmailTo, 0, len(e.To))
	for _, addr := range e.To {
		to = append(to, brevo.SendSmtpEmailTo{Email: addr})
	}
	email := brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  senderName,
			Email: e.From,
		},
		To:          to,
		Subject:     title,
		HtmlContent: fmt.Sprintf("<pre>%s</pre>", html.EscapeString(text)),
		TextContent: text,
	}
	if _, _, err := e.api.SendTransacEmail(ctx, email); err != nil {
		return fmt.Errorf("failed to send email via Brevo: %w", err)
	}
	return nil
}

package sendgrid

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends account-confirmation emails through SendGrid.
type Mailer struct {
	apiKey    string
	fromName  string
	fromEmail string
}

func NewMailer(fromName, fromEmail string) (*Mailer, error) {
	key := os.Getenv("SENDGRID_API_KEY")
	if key == "" {
		return nil, errors.New("SENDGRID_API_KEY not set")
	}
	return &Mailer{
		apiKey:    key,
		fromName:  fromName,
		fromEmail: fromEmail,
	}, nil
}

func (m *Mailer) SendConfirmationEmail(ctx context.Context, toEmail, username, confirmURL string) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(username, toEmail)
	subject := "Confirm your email"

	plain := fmt.Sprintf("Hi %s, please confirm your email: %s", username, confirmURL)
	html := `
		<p>Hi ` + username + `!</p>
		<p>Please confirm your email by clicking the link below:</p>
		<p><a href="` + confirmURL + `">Confirm Email</a></p>
	`

	message := mail.NewSingleEmail(from, subject, to, plain, html)
	client := sendgrid.NewSendClient(m.apiKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send confirmation email: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

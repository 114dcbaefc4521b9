// internal/adapters/out/mail/sendgrid_client.go
package mail

import (
	"context"
	"fmt"
	"html"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridClient implements EmailClient.
type SendGridClient struct {
	apiKey     string
	senderName string
}

func NewSendGridClient(apiKey, senderName string) *SendGridClient {
	if senderName == "" {
		senderName = "FlowiFy"
	}
	return &SendGridClient{apiKey: apiKey, senderName: senderName}
}

// Send sends a plain-text mail; the HTML part is the same text in <pre>.
func (c *SendGridClient) Send(ctx context.Context, from, to, subject, body string) error {
	if c.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if from == "" {
		return fmt.Errorf("from address is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(c.senderName, from),
		subject,
		mail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", html.EscapeString(body)),
	)

	response, err := sendgrid.NewSendClient(c.apiKey).SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}

	if response.StatusCode >= 400 {
		log.Error().
			Int("status", response.StatusCode).
			Str("body", response.Body).
			Msg("[sendgrid] send failed")
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	log.Info().
		Int("status", response.StatusCode).
		Str("to", to).
		Str("subject", subject).
		Msg("[sendgrid] mail sent")
	return nil
}

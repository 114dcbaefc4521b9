// internal/adapters/out/mail/approval_mailer.go
package mail

import (
	"context"
	"fmt"
	"strings"

	usecase "flowify/internal/application/usecase"
)

// EmailClient は実際のメール送信クライアント（SendGrid など）を抽象化した下位インターフェース。
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// ApprovalMailer tells a buyer that their e-mail can now sign up.
type ApprovalMailer struct {
	client      EmailClient
	fromAddress string
	appBaseURL  string // 例: "https://app.flowify.com.br"
}

func NewApprovalMailer(client EmailClient, fromAddress, appBaseURL string) *ApprovalMailer {
	return &ApprovalMailer{
		client:      client,
		fromAddress: strings.TrimSpace(fromAddress),
		appBaseURL:  strings.TrimRight(strings.TrimSpace(appBaseURL), "/"),
	}
}

// signupURL: {base}/signup?email=...
func (m *ApprovalMailer) signupURL(email string) string {
	return fmt.Sprintf("%s/signup?email=%s", m.appBaseURL, strings.TrimSpace(email))
}

func (m *ApprovalMailer) SendApprovalEmail(ctx context.Context, toEmail, planID string) error {
	subject := "Seu acesso ao FlowiFy foi liberado"
	body := fmt.Sprintf(
		`Olá!

Recebemos a confirmação da sua compra. Seu e-mail foi liberado para o plano "%s".

Crie sua conta usando este mesmo e-mail:

  %s

Se você não reconhece esta compra, ignore esta mensagem.

-- 
Equipe FlowiFy`,
		strings.TrimSpace(planID),
		m.signupURL(toEmail),
	)
	return m.client.Send(ctx, m.fromAddress, strings.TrimSpace(toEmail), subject, body)
}

var _ usecase.ApprovalMailerPort = (*ApprovalMailer)(nil)

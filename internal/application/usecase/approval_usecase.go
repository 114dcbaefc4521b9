// internal/application/usecase/approval_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	approvedEmaildom "flowify/internal/domain/approvedEmail"
)

// ErrMissingPurchaseFields: webhook に email / 商品名が無い。
var ErrMissingPurchaseFields = errors.New("usecase: missing required fields: email or product name")

// ApprovalMailerPort はサインアップ案内メールのアウトバウンドポート。
type ApprovalMailerPort interface {
	SendApprovalEmail(ctx context.Context, toEmail, planID string) error
}

// PurchaseEvent is the part of a purchase webhook the approval needs.
type PurchaseEvent struct {
	BuyerEmail  string
	ProductName string
}

// ApprovalUsecase turns a purchase into an approved sign-up e-mail.
type ApprovalUsecase struct {
	repo   approvedEmaildom.Repository
	mailer ApprovalMailerPort // nil なら送信しない
	now    func() time.Time
}

func NewApprovalUsecase(repo approvedEmaildom.Repository, mailer ApprovalMailerPort) *ApprovalUsecase {
	return &ApprovalUsecase{repo: repo, mailer: mailer, now: time.Now}
}

func (u *ApprovalUsecase) WithNow(now func() time.Time) *ApprovalUsecase {
	u.now = now
	return u
}

// Approve stores the approval. A mail failure is logged and does not undo it.
func (u *ApprovalUsecase) Approve(ctx context.Context, ev PurchaseEvent) (approvedEmaildom.ApprovedEmail, error) {
	if strings.TrimSpace(ev.BuyerEmail) == "" || strings.TrimSpace(ev.ProductName) == "" {
		return approvedEmaildom.ApprovedEmail{}, ErrMissingPurchaseFields
	}

	planID := approvedEmaildom.PlanForProductName(ev.ProductName)
	a, err := approvedEmaildom.New(ev.BuyerEmail, planID, u.now())
	if err != nil {
		return approvedEmaildom.ApprovedEmail{}, err
	}

	created, err := u.repo.Create(ctx, a)
	if err != nil {
		return approvedEmaildom.ApprovedEmail{}, err
	}

	log.Info().
		Str("email", created.Email).
		Str("plan", created.PlanID).
		Msg("[approval] email approved")

	if u.mailer != nil {
		if err := u.mailer.SendApprovalEmail(ctx, created.Email, created.PlanID); err != nil {
			log.Error().Err(err).Str("email", created.Email).Msg("[approval] approval mail failed")
		}
	}
	return created, nil
}

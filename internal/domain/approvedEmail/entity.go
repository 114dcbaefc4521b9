// backend/internal/domain/approvedEmail/entity.go
package approvedEmail

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ApprovedEmail は購入 webhook によりサインアップが許可されたメールアドレス。
type ApprovedEmail struct {
	ID        string
	Email     string
	PlanID    string
	CreatedAt time.Time
}

var (
	ErrInvalidEmail  = errors.New("approvedEmail: invalid email")
	ErrInvalidPlanID = errors.New("approvedEmail: invalid plan")
)

const (
	PlanStarter      = "iniciante"
	PlanIntermediate = "intermediario"
	PlanBigode       = "bigode"
)

// New lower-cases the e-mail and validates both fields.
func New(email, planID string, createdAt time.Time) (ApprovedEmail, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" || !strings.Contains(e, "@") {
		return ApprovedEmail{}, ErrInvalidEmail
	}
	p := strings.TrimSpace(planID)
	if p == "" {
		return ApprovedEmail{}, ErrInvalidPlanID
	}
	return ApprovedEmail{Email: e, PlanID: p, CreatedAt: createdAt.UTC()}, nil
}

// PlanForProductName maps a purchased product name to a plan id.
// "chefe" → intermediario, "bigode" → bigode, everything else → iniciante.
func PlanForProductName(productName string) string {
	n := strings.ToLower(productName)
	switch {
	case strings.Contains(n, "chefe"):
		return PlanIntermediate
	case strings.Contains(n, "bigode"):
		return PlanBigode
	default:
		return PlanStarter
	}
}

// Repository stores approvals in the root approvedEmails collection.
type Repository interface {
	Create(ctx context.Context, a ApprovedEmail) (ApprovedEmail, error)
	FindByEmail(ctx context.Context, email string) (ApprovedEmail, bool, error)
}

// backend/internal/domain/plan/entity.go
package plan

import (
	"errors"
	"strings"
)

// Unlimited は上限なしを表す。
const Unlimited = -1

// NoneID は「プラン未契約」を表すユーザー側のプランID。
const NoneID = "none"

// Permissions はテナントごとの利用上限と機能フラグ。
type Permissions struct {
	MaxProducts                      int
	MaxSchedulingsPerMonth           int
	MaxPreSchedulingsPerMonth        int
	MaxWhatsappConfirmationsPerMonth int
	CanExportExcel                   bool
	CanViewAnalytics                 bool
	CanUseCepChecker                 bool
}

// Plan is a subscription plan document (plans/{id}).
type Plan struct {
	ID          string
	Name        string
	Price       float64
	CheckoutURL string
	Features    []string
	Permissions Permissions
	Popular     bool
	Active      bool
}

var (
	ErrInvalidID   = errors.New("plan: invalid id")
	ErrInvalidName = errors.New("plan: invalid name")
	ErrNotFound    = errors.New("plan: not found")
)

func (p Plan) Validate() error {
	if strings.TrimSpace(p.ID) == "" || p.ID == NoneID {
		return ErrInvalidID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	return nil
}

// WithinLimit reports whether one more record fits under limit given the
// current count. Unlimited (-1) always fits; 0 never does.
func WithinLimit(limit, current int) bool {
	if limit == Unlimited {
		return true
	}
	return current < limit
}

// CanAddProduct / CanAddScheduling は現在件数から追加可否を判定する。
func (p Plan) CanAddProduct(current int) bool {
	return WithinLimit(p.Permissions.MaxProducts, current)
}

func (p Plan) CanAddScheduling(monthlyCount int) bool {
	return WithinLimit(p.Permissions.MaxSchedulingsPerMonth, monthlyCount)
}

func (p Plan) CanAddPreScheduling(monthlyCount int) bool {
	return WithinLimit(p.Permissions.MaxPreSchedulingsPerMonth, monthlyCount)
}

// CanSendWhatsapp is true for any non-zero confirmation allowance.
func (p Plan) CanSendWhatsapp() bool {
	return p.Permissions.MaxWhatsappConfirmationsPerMonth != 0
}

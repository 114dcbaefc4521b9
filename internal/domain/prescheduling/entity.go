// backend/internal/domain/prescheduling/entity.go
package prescheduling

import (
	"errors"
	"strings"
	"time"

	common "flowify/internal/domain/common"
	schedulingdom "flowify/internal/domain/scheduling"
)

// ========================================
// Types
// ========================================

// Status は事前予約のステータス。Pendente → Confirmado のみ。
type Status string

const (
	StatusPending   Status = "Pendente"
	StatusConfirmed Status = "Confirmado"
)

func IsValidStatus(s Status) bool {
	return s == StatusPending || s == StatusConfirmed
}

// 住所は配送予定と同じ形。
type Address = schedulingdom.Address

// PreScheduling は日程が決まる前の仮予約（users/{uid}/preAgendamentos）。
type PreScheduling struct {
	ID               string
	CustomerName     string
	CustomerWhatsapp string
	Address          Address
	ProductID        string
	ProductName      string
	Quantity         int
	Platform         common.Platform
	ExpectedDate     time.Time
	Status           Status
	CreatedAt        time.Time
}

// ========================================
// Errors
// ========================================

var (
	ErrInvalidID           = errors.New("prescheduling: invalid id")
	ErrInvalidCustomerName = errors.New("prescheduling: invalid customer name")
	ErrInvalidWhatsapp     = errors.New("prescheduling: whatsapp needs area code and number")
	ErrInvalidCEP          = errors.New("prescheduling: invalid cep")
	ErrInvalidAddress      = errors.New("prescheduling: invalid address")
	ErrInvalidProductID    = errors.New("prescheduling: invalid productId")
	ErrInvalidQuantity     = errors.New("prescheduling: quantity must be positive")
	ErrInvalidPlatform     = errors.New("prescheduling: invalid platform")
	ErrInvalidStatus       = errors.New("prescheduling: invalid status")
	ErrInvalidExpectedDate = errors.New("prescheduling: invalid expected date")
)

// 桁数の下限（DDD + 番号 / CEP 8 桁）
const (
	minWhatsappDigits = 10
	cepDigits         = 8
)

// ========================================
// Constructors
// ========================================

// New normalizes p and validates it. An empty status defaults to Pendente.
func New(p PreScheduling) (PreScheduling, error) {
	p = p.normalize()
	if p.Status == "" {
		p.Status = StatusPending
	}
	p.ExpectedDate = p.ExpectedDate.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	if err := p.Validate(); err != nil {
		return PreScheduling{}, err
	}
	return p, nil
}

// Confirm moves the pre-scheduling to Confirmado. Repeating it is a no-op.
func (p *PreScheduling) Confirm() {
	p.Status = StatusConfirmed
}

// ========================================
// Validation
// ========================================

func (p PreScheduling) Validate() error {
	if strings.TrimSpace(p.CustomerName) == "" {
		return ErrInvalidCustomerName
	}
	if countDigits(p.CustomerWhatsapp) < minWhatsappDigits {
		return ErrInvalidWhatsapp
	}
	if countDigits(p.Address.CEP) != cepDigits {
		return ErrInvalidCEP
	}
	for _, v := range []string{p.Address.Street, p.Address.Number, p.Address.Neighborhood, p.Address.City} {
		if strings.TrimSpace(v) == "" {
			return ErrInvalidAddress
		}
	}
	if strings.TrimSpace(p.ProductID) == "" {
		return ErrInvalidProductID
	}
	if p.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !common.IsValidPlatform(p.Platform) {
		return ErrInvalidPlatform
	}
	if p.ExpectedDate.IsZero() {
		return ErrInvalidExpectedDate
	}
	if !IsValidStatus(p.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// ========================================
// Helpers
// ========================================

func (p PreScheduling) normalize() PreScheduling {
	p.ID = strings.TrimSpace(p.ID)
	p.CustomerName = strings.TrimSpace(p.CustomerName)
	p.CustomerWhatsapp = strings.TrimSpace(p.CustomerWhatsapp)
	p.Address = p.Address.Normalize()
	p.ProductID = strings.TrimSpace(p.ProductID)
	p.ProductName = strings.TrimSpace(p.ProductName)
	p.Platform = common.Platform(strings.TrimSpace(string(p.Platform)))
	p.Status = Status(strings.TrimSpace(string(p.Status)))
	return p
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

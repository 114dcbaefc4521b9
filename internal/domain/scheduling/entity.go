// backend/internal/domain/scheduling/entity.go
package scheduling

import (
	"errors"
	"strings"
	"time"

	common "flowify/internal/domain/common"
)

// ========================================
// Types
// ========================================

// Status は配送予定のステータス。
//   - Agendar  : 日程確認待ち（初期状態）
//   - Agendado : 日程確定済み
//
// 取消状態は存在しない。終端は削除（または Sale への変換）のみ。
type Status string

const (
	StatusToSchedule Status = "Agendar"
	StatusScheduled  Status = "Agendado"
)

func IsValidStatus(s Status) bool {
	switch s {
	case StatusToSchedule, StatusScheduled:
		return true
	default:
		return false
	}
}

// Address は配送先住所（CEP + 分解済みフィールド）。
type Address struct {
	CEP          string
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
}

// Scheduling is a pending delivery owned by one tenant.
type Scheduling struct {
	ID            string
	CustomerName  string
	CustomerPhone string
	Address       Address
	ProductID     string
	ProductName   string
	Quantity      int
	Platform      common.Platform
	Status        Status
	ScheduledFor  time.Time
	CreatedAt     time.Time
}

// ========================================
// Errors
// ========================================

var (
	ErrInvalidID           = errors.New("scheduling: invalid id")
	ErrInvalidCustomerName = errors.New("scheduling: invalid customer name")
	ErrInvalidPhone        = errors.New("scheduling: invalid customer phone")
	ErrInvalidAddress      = errors.New("scheduling: invalid address")
	ErrInvalidProductID    = errors.New("scheduling: invalid productId")
	ErrInvalidQuantity     = errors.New("scheduling: quantity must be positive")
	ErrInvalidPlatform     = errors.New("scheduling: invalid platform")
	ErrInvalidStatus       = errors.New("scheduling: invalid status")
	ErrInvalidScheduledFor = errors.New("scheduling: invalid scheduled date")
)

// ========================================
// Constructors
// ========================================

// New builds a validated Scheduling. id may be empty for records that are
// not persisted yet. An empty status defaults to Agendar.
func New(
	id string,
	customerName, customerPhone string,
	addr Address,
	productID, productName string,
	quantity int,
	platform common.Platform,
	status Status,
	scheduledFor time.Time,
	createdAt time.Time,
) (Scheduling, error) {
	if status == "" {
		status = StatusToSchedule
	}
	s := Scheduling{
		ID:            strings.TrimSpace(id),
		CustomerName:  strings.TrimSpace(customerName),
		CustomerPhone: strings.TrimSpace(customerPhone),
		Address:       addr.Normalize(),
		ProductID:     strings.TrimSpace(productID),
		ProductName:   strings.TrimSpace(productName),
		Quantity:      quantity,
		Platform:      common.Platform(strings.TrimSpace(string(platform))),
		Status:        Status(strings.TrimSpace(string(status))),
		ScheduledFor:  scheduledFor.UTC(),
		CreatedAt:     createdAt.UTC(),
	}
	if err := s.Validate(); err != nil {
		return Scheduling{}, err
	}
	return s, nil
}

// ========================================
// Behavior
// ========================================

// FullAddress は Sale に保存する住所文字列を返す。
// 順序固定: 通り, 番地, 地区, 市（", " 区切り）。CEP と補足は含めない。
func (s Scheduling) FullAddress() string {
	a := s.Address
	return a.Street + ", " + a.Number + ", " + a.Neighborhood + ", " + a.City
}

// DisplayAddress is the "street, number - neighborhood, city" form used in
// customer-facing messages.
func (s Scheduling) DisplayAddress() string {
	a := s.Address
	return a.Street + ", " + a.Number + " - " + a.Neighborhood + ", " + a.City
}

// Confirm moves the scheduling to Agendado. Repeating it is a no-op.
func (s *Scheduling) Confirm() {
	s.Status = StatusScheduled
}

// ========================================
// Validation
// ========================================

func (s Scheduling) Validate() error {
	if strings.TrimSpace(s.CustomerName) == "" {
		return ErrInvalidCustomerName
	}
	if strings.TrimSpace(s.CustomerPhone) == "" {
		return ErrInvalidPhone
	}
	if err := validateAddress(s.Address); err != nil {
		return err
	}
	if strings.TrimSpace(s.ProductID) == "" {
		return ErrInvalidProductID
	}
	if s.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !common.IsValidPlatform(s.Platform) {
		return ErrInvalidPlatform
	}
	if !IsValidStatus(s.Status) {
		return ErrInvalidStatus
	}
	if s.ScheduledFor.IsZero() {
		return ErrInvalidScheduledFor
	}
	return nil
}

// 空白のみの値も未入力として扱う
func validateAddress(a Address) error {
	for _, v := range []string{a.Street, a.Number, a.Neighborhood, a.City} {
		if strings.TrimSpace(v) == "" {
			return ErrInvalidAddress
		}
	}
	return nil
}

// Normalize trims every address field.
func (a Address) Normalize() Address {
	return Address{
		CEP:          strings.TrimSpace(a.CEP),
		Street:       strings.TrimSpace(a.Street),
		Number:       strings.TrimSpace(a.Number),
		Complement:   strings.TrimSpace(a.Complement),
		Neighborhood: strings.TrimSpace(a.Neighborhood),
		City:         strings.TrimSpace(a.City),
	}
}

// backend/internal/domain/sale/entity.go
package sale

import (
	"errors"
	"strings"
	"time"

	common "flowify/internal/domain/common"
)

// ========================================
// Types
// ========================================

type Status string

// StatusPaid は現行モデルで唯一のステータス。COD のため Sale 作成時点で入金済み扱い。
const StatusPaid Status = "Pago"

// Sale is a finalized COD transaction.
type Sale struct {
	ID            string
	CustomerName  string
	CustomerPhone string
	Address       string
	ProductID     string
	ProductName   string
	Platform      common.Platform
	Quantity      int
	TotalValue    float64
	Commission    float64
	Status        Status
	CreatedAt     time.Time
}

// ========================================
// Errors
// ========================================

var (
	ErrInvalidID           = errors.New("sale: invalid id")
	ErrInvalidCustomerName = errors.New("sale: invalid customer name")
	ErrInvalidPhone        = errors.New("sale: invalid customer phone")
	ErrInvalidProductID    = errors.New("sale: invalid productId")
	ErrInvalidPlatform     = errors.New("sale: invalid platform")
	ErrInvalidQuantity     = errors.New("sale: quantity must be positive")
	ErrInvalidTotalValue   = errors.New("sale: total value must not be negative")
	ErrInvalidCommission   = errors.New("sale: commission must not be negative")
	ErrInvalidStatus       = errors.New("sale: invalid status")
)

// ========================================
// Constructors
// ========================================

// New builds a validated Sale. Status is always Pago.
func New(
	id string,
	customerName, customerPhone, address string,
	productID, productName string,
	platform common.Platform,
	quantity int,
	totalValue, commission float64,
	createdAt time.Time,
) (Sale, error) {
	s := Sale{
		ID:            strings.TrimSpace(id),
		CustomerName:  strings.TrimSpace(customerName),
		CustomerPhone: strings.TrimSpace(customerPhone),
		Address:       strings.TrimSpace(address),
		ProductID:     strings.TrimSpace(productID),
		ProductName:   strings.TrimSpace(productName),
		Platform:      common.Platform(strings.TrimSpace(string(platform))),
		Quantity:      quantity,
		TotalValue:    totalValue,
		Commission:    commission,
		Status:        StatusPaid,
		CreatedAt:     createdAt.UTC(),
	}
	if err := s.Validate(); err != nil {
		return Sale{}, err
	}
	return s, nil
}

// ========================================
// Validation
// ========================================

func (s Sale) Validate() error {
	if s.CustomerName == "" {
		return ErrInvalidCustomerName
	}
	if s.CustomerPhone == "" {
		return ErrInvalidPhone
	}
	if s.ProductID == "" {
		return ErrInvalidProductID
	}
	if !common.IsValidPlatform(s.Platform) {
		return ErrInvalidPlatform
	}
	if s.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if s.TotalValue < 0 {
		return ErrInvalidTotalValue
	}
	if s.Commission < 0 {
		return ErrInvalidCommission
	}
	if s.Status != StatusPaid {
		return ErrInvalidStatus
	}
	return nil
}

// backend/internal/domain/product/entity.go
package product

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	common "flowify/internal/domain/common"
)

// ========================================
// Types
// ========================================

// PriceCommission は (プラットフォーム, 数量) → (価格, コミッション) の 1 行。
// Price / Commission はその数量の明細全体の金額で、単価ではない。
type PriceCommission struct {
	Platform   common.Platform
	Quantity   int
	Price      float64
	Commission float64
}

// Product はテナントの商品カタログ 1 件。
type Product struct {
	ID            string
	Name          string
	Description   string
	Prices        []PriceCommission
	CoveredCities []string
	CreatedAt     time.Time
}

// ========================================
// Errors
// ========================================

var (
	ErrInvalidID         = errors.New("product: invalid id")
	ErrInvalidName       = errors.New("product: invalid name")
	ErrInvalidPrices     = errors.New("product: at least one price entry is required")
	ErrInvalidPlatform   = errors.New("product: invalid platform")
	ErrInvalidQuantity   = errors.New("product: quantity must be positive")
	ErrInvalidPrice      = errors.New("product: price must not be negative")
	ErrInvalidCommission = errors.New("product: commission must not be negative")
	ErrInvalidCity       = errors.New("product: invalid city")

	// ErrPriceNotFound は価格表に該当プラットフォームの行が無いことを表す。
	ErrPriceNotFound = errors.New("product: price not found")
)

// PriceNotFoundError carries the lookup key that failed.
type PriceNotFoundError struct {
	Platform common.Platform
	Quantity int
}

func (e *PriceNotFoundError) Error() string {
	return fmt.Sprintf("price for platform %s and quantity %d not found", e.Platform, e.Quantity)
}

func (e *PriceNotFoundError) Unwrap() error { return ErrPriceNotFound }

// ========================================
// Constructors
// ========================================

func New(
	id, name, description string,
	prices []PriceCommission,
	coveredCities []string,
	createdAt time.Time,
) (Product, error) {
	p := Product{
		ID:            strings.TrimSpace(id),
		Name:          strings.TrimSpace(name),
		Description:   strings.TrimSpace(description),
		Prices:        normalizePrices(prices),
		CoveredCities: NormalizeCities(coveredCities),
		CreatedAt:     createdAt.UTC(),
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// ========================================
// Behavior
// ========================================

// ResolvePrice は価格表から行を選ぶ。
//  1. platform と quantity が両方一致する最初の行
//  2. 無ければ platform だけ一致する最初の行（数量は問わない）
//  3. それも無ければ *PriceNotFoundError
func (p Product) ResolvePrice(platform common.Platform, quantity int) (PriceCommission, error) {
	if pc, err := p.ExactPrice(platform, quantity); err == nil {
		return pc, nil
	}
	for _, pc := range p.Prices {
		if pc.Platform == platform {
			return pc, nil
		}
	}
	return PriceCommission{}, &PriceNotFoundError{Platform: platform, Quantity: quantity}
}

// ExactPrice returns the first row matching both platform and quantity.
// Manual sale entry uses it; there is no platform-only fallback here.
func (p Product) ExactPrice(platform common.Platform, quantity int) (PriceCommission, error) {
	for _, pc := range p.Prices {
		if pc.Platform == platform && pc.Quantity == quantity {
			return pc, nil
		}
	}
	return PriceCommission{}, &PriceNotFoundError{Platform: platform, Quantity: quantity}
}

// CoversCity reports whether city is in the covered list, ignoring case and
// accents. A product without covered cities delivers nowhere.
func (p Product) CoversCity(city string) bool {
	c := NormalizeCity(city)
	if c == "" {
		return false
	}
	for _, v := range p.CoveredCities {
		if v == c {
			return true
		}
	}
	return false
}

// ========================================
// Validation
// ========================================

func (p Product) Validate() error {
	if p.Name == "" {
		return ErrInvalidName
	}
	return ValidatePrices(p.Prices)
}

func ValidatePrices(prices []PriceCommission) error {
	if len(prices) == 0 {
		return ErrInvalidPrices
	}
	for _, pc := range prices {
		if !common.IsValidPlatform(pc.Platform) {
			return ErrInvalidPlatform
		}
		if pc.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if pc.Price < 0 {
			return ErrInvalidPrice
		}
		if pc.Commission < 0 {
			return ErrInvalidCommission
		}
	}
	return nil
}

// ========================================
// Helpers
// ========================================

// 順序は保持する（lookup は先頭一致なので並び替えない）。
func normalizePrices(prices []PriceCommission) []PriceCommission {
	out := make([]PriceCommission, 0, len(prices))
	for _, pc := range prices {
		pc.Platform = common.Platform(strings.TrimSpace(string(pc.Platform)))
		out = append(out, pc)
	}
	return out
}

// NormalizeCity lowercases and strips diacritics: "São Paulo" → "sao paulo".
func NormalizeCity(city string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(city))
	if err != nil {
		out = strings.TrimSpace(city)
	}
	return strings.ToLower(out)
}

// NormalizeCities normalizes each name and drops blanks and duplicates, keeping order.
func NormalizeCities(xs []string) []string {
	if len(xs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(xs))
	out := make([]string, 0, len(xs))
	for _, v := range xs {
		v = NormalizeCity(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

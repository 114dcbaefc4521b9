package sale

import (
	"context"
	"errors"

	common "flowify/internal/domain/common"
)

// UpdateSaleInput は部分更新。nil のフィールドは変更しない。
// ProductName / TotalValue / Commission は usecase が価格表から埋める。
type UpdateSaleInput struct {
	CustomerName  *string
	CustomerPhone *string
	Address       *string
	ProductID     *string
	ProductName   *string
	Platform      *common.Platform
	Quantity      *int
	TotalValue    *float64
	Commission    *float64
}

// Apply returns s with the non-nil fields of in set. Status and CreatedAt are kept.
func (s Sale) Apply(in UpdateSaleInput) Sale {
	if in.CustomerName != nil {
		s.CustomerName = *in.CustomerName
	}
	if in.CustomerPhone != nil {
		s.CustomerPhone = *in.CustomerPhone
	}
	if in.Address != nil {
		s.Address = *in.Address
	}
	if in.ProductID != nil {
		s.ProductID = *in.ProductID
	}
	if in.ProductName != nil {
		s.ProductName = *in.ProductName
	}
	if in.Platform != nil {
		s.Platform = *in.Platform
	}
	if in.Quantity != nil {
		s.Quantity = *in.Quantity
	}
	if in.TotalValue != nil {
		s.TotalValue = *in.TotalValue
	}
	if in.Commission != nil {
		s.Commission = *in.Commission
	}
	return s
}

// Filter は一覧取得の条件（空値は無条件）。
type Filter struct {
	Platform  common.Platform
	ProductID string
	Created   common.TimeRange
}

func (f Filter) Matches(s Sale) bool {
	if f.Platform != "" && s.Platform != f.Platform {
		return false
	}
	if f.ProductID != "" && s.ProductID != f.ProductID {
		return false
	}
	return f.Created.Contains(s.CreatedAt)
}

// Repository is scoped to users/{uid}/sales. List returns newest first.
type Repository interface {
	GetByID(ctx context.Context, uid, id string) (Sale, error)
	List(ctx context.Context, uid string, filter Filter) ([]Sale, error)

	Create(ctx context.Context, uid string, s Sale) (Sale, error)
	Update(ctx context.Context, uid, id string, in UpdateSaleInput) (Sale, error)
	Delete(ctx context.Context, uid, id string) error
}

var (
	ErrNotFound = errors.New("sale: not found")
	ErrConflict = errors.New("sale: conflict")
)

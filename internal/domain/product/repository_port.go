package product

import (
	"context"
	"errors"
)

// UpdateProductInput は部分更新。nil のフィールドは変更しない。
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Prices        *[]PriceCommission
	CoveredCities *[]string
}

// Repository is scoped to users/{uid}/products.
type Repository interface {
	GetByID(ctx context.Context, uid, id string) (Product, error)
	List(ctx context.Context, uid string) ([]Product, error)
	Count(ctx context.Context, uid string) (int, error)

	Create(ctx context.Context, uid string, p Product) (Product, error)
	Update(ctx context.Context, uid, id string, in UpdateProductInput) (Product, error)
	Delete(ctx context.Context, uid, id string) error
}

var (
	ErrNotFound = errors.New("product: not found")
)

package usecase

import (
	"context"
	"time"

	billingdom "flowify/internal/domain/billing"
	saledom "flowify/internal/domain/sale"
)

// SaleLister is the read side of the sales collection.
type SaleLister interface {
	List(ctx context.Context, uid string, filter saledom.Filter) ([]saledom.Sale, error)
}

// BillingUsecase computes Faturamento rows on demand; nothing is stored.
type BillingUsecase struct {
	sales SaleLister
	loc   *time.Location
}

func NewBillingUsecase(sales SaleLister, loc *time.Location) *BillingUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &BillingUsecase{sales: sales, loc: loc}
}

// Monthly returns one row per calendar month, newest first.
func (u *BillingUsecase) Monthly(ctx context.Context, actor *Actor) ([]billingdom.Faturamento, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	sales, err := u.sales.List(ctx, uid, saledom.Filter{})
	if err != nil {
		return nil, err
	}
	return billingdom.AggregateMonthly(sales, u.loc), nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	common "flowify/internal/domain/common"
	productdom "flowify/internal/domain/product"
	saledom "flowify/internal/domain/sale"
)

// ErrInvalidSaleTotal: 手動登録で解決した金額が 0 以下。
var ErrInvalidSaleTotal = errors.New("usecase: sale total must be positive")

// SaleUsecase orchestrates sale operations.
type SaleUsecase struct {
	repo     saledom.Repository
	products ConversionProductReader
	now      func() time.Time
}

func NewSaleUsecase(repo saledom.Repository, products ConversionProductReader) *SaleUsecase {
	return &SaleUsecase{repo: repo, products: products, now: time.Now}
}

func (u *SaleUsecase) WithNow(now func() time.Time) *SaleUsecase {
	u.now = now
	return u
}

// CreateSaleInput is a sale typed in by hand, without a prior scheduling.
type CreateSaleInput struct {
	CustomerName  string
	CustomerPhone string
	Address       string
	ProductID     string
	Platform      common.Platform
	Quantity      int
}

// Queries

func (u *SaleUsecase) GetByID(ctx context.Context, actor *Actor, id string) (saledom.Sale, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return saledom.Sale{}, err
	}
	return u.repo.GetByID(ctx, uid, strings.TrimSpace(id))
}

func (u *SaleUsecase) List(ctx context.Context, actor *Actor, filter saledom.Filter) ([]saledom.Sale, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	return u.repo.List(ctx, uid, filter)
}

// Commands

// Create registers a manual sale. Price and commission come from the
// product's price row for exactly (platform, quantity); a missing row is
// ErrPriceNotFound and a zero price is ErrInvalidSaleTotal.
func (u *SaleUsecase) Create(ctx context.Context, actor *Actor, in CreateSaleInput) (saledom.Sale, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return saledom.Sale{}, err
	}

	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return saledom.Sale{}, saledom.ErrInvalidProductID
	}
	prod, err := u.products.GetByID(ctx, uid, productID)
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			return saledom.Sale{}, fmt.Errorf("%w: productId=%s", ErrProductNotFound, productID)
		}
		return saledom.Sale{}, err
	}

	pc, err := prod.ExactPrice(in.Platform, in.Quantity)
	if err != nil {
		return saledom.Sale{}, err
	}
	if pc.Price <= 0 {
		return saledom.Sale{}, ErrInvalidSaleTotal
	}

	s, err := saledom.New(
		"",
		in.CustomerName,
		digitsOnly(in.CustomerPhone),
		in.Address,
		prod.ID,
		prod.Name,
		in.Platform,
		in.Quantity,
		pc.Price,
		pc.Commission,
		u.now(),
	)
	if err != nil {
		return saledom.Sale{}, err
	}
	return u.repo.Create(ctx, uid, s)
}

// Update edits a sale. When product, platform or quantity change, price and
// commission are re-resolved exactly as Create does. Status stays Pago.
func (u *SaleUsecase) Update(ctx context.Context, actor *Actor, id string, in saledom.UpdateSaleInput) (saledom.Sale, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return saledom.Sale{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return saledom.Sale{}, saledom.ErrInvalidID
	}

	cur, err := u.repo.GetByID(ctx, uid, id)
	if err != nil {
		return saledom.Sale{}, err
	}

	// 金額・手数料はクライアントから受け取らない
	in.ProductName, in.TotalValue, in.Commission = nil, nil, nil
	in.CustomerName = trimKeep(in.CustomerName)
	in.Address = trimKeep(in.Address)
	in.ProductID = trimKeep(in.ProductID)
	if in.CustomerPhone != nil {
		in.CustomerPhone = ptr(digitsOnly(*in.CustomerPhone))
	}
	if in.Platform != nil {
		in.Platform = ptr(common.Platform(strings.TrimSpace(string(*in.Platform))))
	}

	next := cur.Apply(in)
	if next.ProductID != cur.ProductID || next.Platform != cur.Platform || next.Quantity != cur.Quantity {
		if next.ProductID == "" {
			return saledom.Sale{}, saledom.ErrInvalidProductID
		}
		prod, err := u.products.GetByID(ctx, uid, next.ProductID)
		if err != nil {
			if errors.Is(err, productdom.ErrNotFound) {
				return saledom.Sale{}, fmt.Errorf("%w: productId=%s", ErrProductNotFound, next.ProductID)
			}
			return saledom.Sale{}, err
		}
		pc, err := prod.ExactPrice(next.Platform, next.Quantity)
		if err != nil {
			return saledom.Sale{}, err
		}
		if pc.Price <= 0 {
			return saledom.Sale{}, ErrInvalidSaleTotal
		}
		in.ProductName = ptr(prod.Name)
		in.TotalValue = ptr(pc.Price)
		in.Commission = ptr(pc.Commission)
		next = cur.Apply(in)
	}

	if err := next.Validate(); err != nil {
		return saledom.Sale{}, err
	}
	return u.repo.Update(ctx, uid, id, in)
}

func (u *SaleUsecase) Delete(ctx context.Context, actor *Actor, id string) error {
	uid, err := requireActor(actor)
	if err != nil {
		return err
	}
	return u.repo.Delete(ctx, uid, strings.TrimSpace(id))
}

// 電話番号は数字のみ保存する
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

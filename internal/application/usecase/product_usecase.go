// internal/application/usecase/product_usecase.go
package usecase

import (
	"context"
	"strings"
	"time"

	productdom "flowify/internal/domain/product"
)

// ProductUsecase manages the actor's product catalog.
type ProductUsecase struct {
	repo         productdom.Repository
	entitlements *EntitlementUsecase
	now          func() time.Time
}

func NewProductUsecase(repo productdom.Repository, entitlements *EntitlementUsecase) *ProductUsecase {
	return &ProductUsecase{repo: repo, entitlements: entitlements, now: time.Now}
}

func (u *ProductUsecase) WithNow(now func() time.Time) *ProductUsecase {
	u.now = now
	return u
}

type CreateProductInput struct {
	Name          string
	Description   string
	Prices        []productdom.PriceCommission
	CoveredCities []string
}

// Queries

func (u *ProductUsecase) GetByID(ctx context.Context, actor *Actor, id string) (productdom.Product, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return productdom.Product{}, err
	}
	return u.repo.GetByID(ctx, uid, strings.TrimSpace(id))
}

func (u *ProductUsecase) List(ctx context.Context, actor *Actor) ([]productdom.Product, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	return u.repo.List(ctx, uid)
}

// CoverageResult は CheckCoverage の結果。City は正規化済みの都市名。
type CoverageResult struct {
	ProductID   string
	ProductName string
	City        string
	Covered     bool
}

// CheckCoverage reports whether the product delivers to city.
// Requires canUseCepChecker on the actor's plan.
func (u *ProductUsecase) CheckCoverage(ctx context.Context, actor *Actor, productID, city string) (CoverageResult, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return CoverageResult{}, err
	}
	if u.entitlements != nil {
		pl, err := u.entitlements.ActivePlan(ctx, actor)
		if err != nil {
			return CoverageResult{}, err
		}
		if !pl.Permissions.CanUseCepChecker {
			return CoverageResult{}, ErrFeatureNotInPlan
		}
	}

	c := productdom.NormalizeCity(city)
	if c == "" {
		return CoverageResult{}, productdom.ErrInvalidCity
	}
	p, err := u.repo.GetByID(ctx, uid, strings.TrimSpace(productID))
	if err != nil {
		return CoverageResult{}, err
	}
	return CoverageResult{
		ProductID:   p.ID,
		ProductName: p.Name,
		City:        c,
		Covered:     p.CoversCity(c),
	}, nil
}

// Commands

// Create validates the product and enforces the plan's maxProducts limit.
func (u *ProductUsecase) Create(ctx context.Context, actor *Actor, in CreateProductInput) (productdom.Product, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return productdom.Product{}, err
	}

	p, err := productdom.New("", in.Name, in.Description, in.Prices, in.CoveredCities, u.now())
	if err != nil {
		return productdom.Product{}, err
	}

	if u.entitlements != nil {
		pl, err := u.entitlements.ActivePlan(ctx, actor)
		if err != nil {
			return productdom.Product{}, err
		}
		count, err := u.repo.Count(ctx, uid)
		if err != nil {
			return productdom.Product{}, err
		}
		if !pl.CanAddProduct(count) {
			return productdom.Product{}, ErrPlanLimitReached
		}
	}

	return u.repo.Create(ctx, uid, p)
}

func (u *ProductUsecase) Update(ctx context.Context, actor *Actor, id string, in productdom.UpdateProductInput) (productdom.Product, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return productdom.Product{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrInvalidID
	}

	in.Name = trimPtr(in.Name)
	if in.Name == nil && in.Description == nil && in.Prices == nil && in.CoveredCities == nil {
		return u.repo.GetByID(ctx, uid, id)
	}
	if in.Prices != nil {
		if err := productdom.ValidatePrices(*in.Prices); err != nil {
			return productdom.Product{}, err
		}
	}
	if in.CoveredCities != nil {
		cities := productdom.NormalizeCities(*in.CoveredCities)
		if cities == nil {
			cities = []string{}
		}
		in.CoveredCities = &cities
	}
	return u.repo.Update(ctx, uid, id, in)
}

// Delete removes the product. Schedulings that still reference it will fail
// conversion with ErrProductNotFound until they are corrected.
func (u *ProductUsecase) Delete(ctx context.Context, actor *Actor, id string) error {
	uid, err := requireActor(actor)
	if err != nil {
		return err
	}
	return u.repo.Delete(ctx, uid, strings.TrimSpace(id))
}

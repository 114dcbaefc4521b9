// internal/application/usecase/prescheduling_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	common "flowify/internal/domain/common"
	preschedulingdom "flowify/internal/domain/prescheduling"
	productdom "flowify/internal/domain/product"
)

// PreSchedulingUsecase manages pre-schedulings (users/{uid}/preAgendamentos).
type PreSchedulingUsecase struct {
	repo         preschedulingdom.Repository
	products     ConversionProductReader
	entitlements *EntitlementUsecase

	loc *time.Location
	now func() time.Time
}

func NewPreSchedulingUsecase(
	repo preschedulingdom.Repository,
	products ConversionProductReader,
	entitlements *EntitlementUsecase,
	loc *time.Location,
) *PreSchedulingUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &PreSchedulingUsecase{
		repo:         repo,
		products:     products,
		entitlements: entitlements,
		loc:          loc,
		now:          time.Now,
	}
}

func (u *PreSchedulingUsecase) WithNow(now func() time.Time) *PreSchedulingUsecase {
	u.now = now
	return u
}

// Queries

func (u *PreSchedulingUsecase) GetByID(ctx context.Context, actor *Actor, id string) (preschedulingdom.PreScheduling, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return preschedulingdom.PreScheduling{}, err
	}
	return u.repo.GetByID(ctx, uid, strings.TrimSpace(id))
}

func (u *PreSchedulingUsecase) List(ctx context.Context, actor *Actor, filter preschedulingdom.Filter) ([]preschedulingdom.PreScheduling, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	return u.repo.List(ctx, uid, filter)
}

// Commands

// Create checks the product and the plan's maxPreSchedulingsPerMonth, then
// stores the record with the product name cached.
func (u *PreSchedulingUsecase) Create(ctx context.Context, actor *Actor, in preschedulingdom.PreScheduling) (preschedulingdom.PreScheduling, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return preschedulingdom.PreScheduling{}, err
	}

	in.ID = ""
	in.CreatedAt = u.now()
	p, err := preschedulingdom.New(in)
	if err != nil {
		return preschedulingdom.PreScheduling{}, err
	}

	name, err := u.productName(ctx, uid, p.ProductID)
	if err != nil {
		return preschedulingdom.PreScheduling{}, err
	}
	p.ProductName = name

	if u.entitlements != nil {
		pl, err := u.entitlements.ActivePlan(ctx, actor)
		if err != nil {
			return preschedulingdom.PreScheduling{}, err
		}
		count, err := u.repo.Count(ctx, uid, preschedulingdom.Filter{
			Created: common.MonthRange(u.now().In(u.loc)),
		})
		if err != nil {
			return preschedulingdom.PreScheduling{}, err
		}
		if !pl.CanAddPreScheduling(count) {
			return preschedulingdom.PreScheduling{}, ErrPlanLimitReached
		}
	}

	return u.repo.Create(ctx, uid, p)
}

func (u *PreSchedulingUsecase) Update(ctx context.Context, actor *Actor, id string, in preschedulingdom.UpdatePreSchedulingInput) (preschedulingdom.PreScheduling, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return preschedulingdom.PreScheduling{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return preschedulingdom.PreScheduling{}, preschedulingdom.ErrInvalidID
	}

	cur, err := u.repo.GetByID(ctx, uid, id)
	if err != nil {
		return preschedulingdom.PreScheduling{}, err
	}

	in.ProductName = nil
	if in.ProductID = trimKeep(in.ProductID); in.ProductID != nil && *in.ProductID != "" && *in.ProductID != cur.ProductID {
		name, err := u.productName(ctx, uid, *in.ProductID)
		if err != nil {
			return preschedulingdom.PreScheduling{}, err
		}
		in.ProductName = &name
	}

	// 適用後の値で検証し、正規化済みの値を保存する
	next := cur.Apply(in)
	if err := next.Validate(); err != nil {
		return preschedulingdom.PreScheduling{}, err
	}
	return u.repo.Update(ctx, uid, id, normalizedPrePatch(in, next))
}

// Confirm moves Pendente → Confirmado.
func (u *PreSchedulingUsecase) Confirm(ctx context.Context, actor *Actor, id string) (preschedulingdom.PreScheduling, error) {
	st := preschedulingdom.StatusConfirmed
	return u.Update(ctx, actor, id, preschedulingdom.UpdatePreSchedulingInput{Status: &st})
}

func (u *PreSchedulingUsecase) Delete(ctx context.Context, actor *Actor, id string) error {
	uid, err := requireActor(actor)
	if err != nil {
		return err
	}
	return u.repo.Delete(ctx, uid, strings.TrimSpace(id))
}

func (u *PreSchedulingUsecase) productName(ctx context.Context, uid, productID string) (string, error) {
	prod, err := u.products.GetByID(ctx, uid, productID)
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			return "", fmt.Errorf("%w: productId=%s", ErrProductNotFound, productID)
		}
		return "", err
	}
	return prod.Name, nil
}

// normalizedPrePatch keeps the fields set in in, taking their values from next.
func normalizedPrePatch(in preschedulingdom.UpdatePreSchedulingInput, next preschedulingdom.PreScheduling) preschedulingdom.UpdatePreSchedulingInput {
	out := preschedulingdom.UpdatePreSchedulingInput{}
	if in.CustomerName != nil {
		out.CustomerName = ptr(next.CustomerName)
	}
	if in.CustomerWhatsapp != nil {
		out.CustomerWhatsapp = ptr(next.CustomerWhatsapp)
	}
	if in.Address != nil {
		out.Address = ptr(next.Address)
	}
	if in.ProductID != nil {
		out.ProductID = ptr(next.ProductID)
	}
	if in.ProductName != nil {
		out.ProductName = ptr(next.ProductName)
	}
	if in.Quantity != nil {
		out.Quantity = ptr(next.Quantity)
	}
	if in.Platform != nil {
		out.Platform = ptr(next.Platform)
	}
	if in.ExpectedDate != nil {
		out.ExpectedDate = ptr(next.ExpectedDate)
	}
	if in.Status != nil {
		out.Status = ptr(next.Status)
	}
	return out
}

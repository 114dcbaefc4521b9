// internal/application/usecase/entitlement_usecase.go
package usecase

import (
	"context"
	"errors"
	"time"

	plandom "flowify/internal/domain/plan"
	userdom "flowify/internal/domain/user"
)

var (
	// ErrNoActivePlan: 未契約 / 無効化 / 期限切れ / プラン文書なし。
	ErrNoActivePlan = errors.New("usecase: no active plan")
	// ErrPlanLimitReached: 件数上限に達している。
	ErrPlanLimitReached = errors.New("usecase: plan limit reached")
	// ErrFeatureNotInPlan: 機能フラグが無効。
	ErrFeatureNotInPlan = errors.New("usecase: feature not included in plan")
)

type UserReader interface {
	GetByID(ctx context.Context, uid string) (userdom.User, error)
}

type PlanReader interface {
	GetByID(ctx context.Context, id string) (plandom.Plan, error)
}

// EntitlementUsecase resolves the plan that gates an actor's writes.
// It only reads; limits are checked by the calling usecase.
type EntitlementUsecase struct {
	users UserReader
	plans PlanReader
	now   func() time.Time
}

func NewEntitlementUsecase(users UserReader, plans PlanReader) *EntitlementUsecase {
	return &EntitlementUsecase{users: users, plans: plans, now: time.Now}
}

func (u *EntitlementUsecase) WithNow(now func() time.Time) *EntitlementUsecase {
	u.now = now
	return u
}

// Profile returns the tenant profile for the actor.
func (u *EntitlementUsecase) Profile(ctx context.Context, actor *Actor) (userdom.User, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return userdom.User{}, err
	}
	return u.users.GetByID(ctx, uid)
}

// ActivePlan returns the actor's plan, or ErrNoActivePlan when access is
// missing, expired, or the plan document is absent or inactive.
func (u *EntitlementUsecase) ActivePlan(ctx context.Context, actor *Actor) (plandom.Plan, error) {
	usr, err := u.Profile(ctx, actor)
	if err != nil {
		if errors.Is(err, userdom.ErrNotFound) {
			return plandom.Plan{}, ErrNoActivePlan
		}
		return plandom.Plan{}, err
	}
	if !usr.HasAccess(u.now()) {
		return plandom.Plan{}, ErrNoActivePlan
	}

	p, err := u.plans.GetByID(ctx, usr.PlanID)
	if err != nil {
		if errors.Is(err, plandom.ErrNotFound) {
			return plandom.Plan{}, ErrNoActivePlan
		}
		return plandom.Plan{}, err
	}
	if !p.Active {
		return plandom.Plan{}, ErrNoActivePlan
	}
	return p, nil
}

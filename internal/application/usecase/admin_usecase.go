// internal/application/usecase/admin_usecase.go
package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	plandom "flowify/internal/domain/plan"
	saledom "flowify/internal/domain/sale"
	userdom "flowify/internal/domain/user"
)

// AdminUserStore は管理画面で使う users の操作。
type AdminUserStore interface {
	GetByID(ctx context.Context, uid string) (userdom.User, error)
	List(ctx context.Context) ([]userdom.User, error)
	Update(ctx context.Context, uid string, in userdom.UpdateUserInput) (userdom.User, error)
}

// RankingEntry は売上ランキングの 1 行（全テナント横断）。
type RankingEntry struct {
	UID        string
	Name       string
	Email      string
	PlanID     string
	Revenue    float64
	Commission float64
	SalesCount int
}

// AdminUsecase is the back-office. Every call requires an admin actor that
// is not impersonating anyone.
type AdminUsecase struct {
	users  AdminUserStore
	totals saledom.TotalsReader
	plans  PlanReader
}

func NewAdminUsecase(users AdminUserStore, totals saledom.TotalsReader, plans PlanReader) *AdminUsecase {
	return &AdminUsecase{users: users, totals: totals, plans: plans}
}

func requireAdmin(a *Actor) error {
	if _, err := requireActor(a); err != nil {
		return err
	}
	if !a.IsAdmin() || a.IsImpersonated() {
		return ErrForbidden
	}
	return nil
}

func (u *AdminUsecase) ListUsers(ctx context.Context, actor *Actor) ([]userdom.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return u.users.List(ctx)
}

// UpdateUser changes plan, active flag and access expiry of any user.
// The plan must exist, or be "none" to revoke access.
func (u *AdminUsecase) UpdateUser(ctx context.Context, actor *Actor, uid string, in userdom.UpdateUserInput) (userdom.User, error) {
	if err := requireAdmin(actor); err != nil {
		return userdom.User{}, err
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.User{}, userdom.ErrInvalidUID
	}

	if in.PlanID != nil {
		planID := strings.TrimSpace(*in.PlanID)
		if planID == "" {
			return userdom.User{}, userdom.ErrInvalidPlanID
		}
		if planID != plandom.NoneID {
			if _, err := u.plans.GetByID(ctx, planID); err != nil {
				if errors.Is(err, plandom.ErrNotFound) {
					return userdom.User{}, userdom.ErrInvalidPlanID
				}
				return userdom.User{}, err
			}
		}
		in.PlanID = &planID
	}

	// 存在確認（Update は NotFound を返すが、ログに残す前に確定させる）
	if _, err := u.users.GetByID(ctx, uid); err != nil {
		return userdom.User{}, err
	}
	out, err := u.users.Update(ctx, uid, in)
	if err != nil {
		return userdom.User{}, err
	}

	ev := log.Info().Str("admin", actor.UID).Str("uid", uid).Str("plan", out.PlanID).Bool("active", out.Active)
	if out.AccessExpiresAt != nil {
		ev = ev.Time("accessExpiresAt", *out.AccessExpiresAt)
	}
	ev.Msg("[admin] user updated")
	return out, nil
}

// Ranking lists every user with their all-time sales totals, highest
// revenue first. Users without sales appear with zero totals.
func (u *AdminUsecase) Ranking(ctx context.Context, actor *Actor) ([]RankingEntry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := u.users.List(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := u.totals.TotalsByTenant(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]RankingEntry, 0, len(users))
	for _, usr := range users {
		t := totals[usr.UID]
		out = append(out, RankingEntry{
			UID:        usr.UID,
			Name:       usr.Name,
			Email:      usr.Email,
			PlanID:     usr.PlanID,
			Revenue:    t.Revenue,
			Commission: t.Commission,
			SalesCount: t.Count,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	return out, nil
}

package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	userdom "flowify/internal/domain/user"
)

// AccessSweepUsecase deactivates tenants whose paid access has expired.
type AccessSweepUsecase struct {
	users userdom.Repository
	now   func() time.Time
}

func NewAccessSweepUsecase(users userdom.Repository) *AccessSweepUsecase {
	return &AccessSweepUsecase{users: users, now: time.Now}
}

func (u *AccessSweepUsecase) WithNow(now func() time.Time) *AccessSweepUsecase {
	u.now = now
	return u
}

// SweepResult は 1 回の実行結果。
type SweepResult struct {
	Deactivated []string
	Failed      []string
}

// Run deactivates every expired user. Individual failures are collected and
// the sweep continues; only the listing error aborts the run.
func (u *AccessSweepUsecase) Run(ctx context.Context) (SweepResult, error) {
	now := u.now()
	expired, err := u.users.ListExpired(ctx, now)
	if err != nil {
		return SweepResult{}, err
	}

	var res SweepResult
	for _, usr := range expired {
		if !usr.Active || !usr.AccessExpired(now) {
			continue
		}
		if err := u.users.SetActive(ctx, usr.UID, false); err != nil {
			log.Error().Err(err).Str("uid", usr.UID).Msg("[sweep] deactivate failed")
			res.Failed = append(res.Failed, usr.UID)
			continue
		}
		res.Deactivated = append(res.Deactivated, usr.UID)
	}

	log.Info().
		Int("deactivated", len(res.Deactivated)).
		Int("failed", len(res.Failed)).
		Msg("[sweep] access sweep finished")
	return res, nil
}

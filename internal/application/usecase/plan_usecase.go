package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	plandom "flowify/internal/domain/plan"
)

// PlanUsecase exposes the plan catalog and seeds its defaults.
type PlanUsecase struct {
	repo plandom.Repository
}

func NewPlanUsecase(repo plandom.Repository) *PlanUsecase {
	return &PlanUsecase{repo: repo}
}

// ListActive returns plans that can currently be purchased.
func (u *PlanUsecase) ListActive(ctx context.Context) ([]plandom.Plan, error) {
	all, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]plandom.Plan, 0, len(all))
	for _, p := range all {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

// SeedDefaults upserts the built-in catalog and returns the seeded ids.
func (u *PlanUsecase) SeedDefaults(ctx context.Context) ([]string, error) {
	var ids []string
	for _, p := range plandom.DefaultPlans() {
		if err := p.Validate(); err != nil {
			return ids, fmt.Errorf("plan %q: %w", p.ID, err)
		}
		if err := u.repo.Upsert(ctx, p); err != nil {
			return ids, fmt.Errorf("upsert plan %q: %w", p.ID, err)
		}
		log.Info().Str("plan", p.ID).Msg("[plans] seeded")
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// internal/adapters/in/http/handlers/plan_handler.go
package handlers

import (
	"errors"
	"net/http"

	hc "flowify/internal/adapters/in/http/handlers/common"
	usecase "flowify/internal/application/usecase"
	plandom "flowify/internal/domain/plan"
	userdom "flowify/internal/domain/user"
)

type permissionsDTO struct {
	MaxProducts                      int  `json:"maxProducts"`
	MaxSchedulingsPerMonth           int  `json:"maxSchedulingsPerMonth"`
	MaxPreSchedulingsPerMonth        int  `json:"maxPreSchedulingsPerMonth"`
	MaxWhatsappConfirmationsPerMonth int  `json:"maxWhatsappConfirmationsPerMonth"`
	CanExportExcel                   bool `json:"canExportExcel"`
	CanViewAnalytics                 bool `json:"canViewAnalytics"`
	CanUseCepChecker                 bool `json:"canUseCepChecker"`
}

type planDTO struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Price       float64        `json:"price"`
	CheckoutURL string         `json:"checkoutUrl"`
	Features    []string       `json:"features"`
	Permissions permissionsDTO `json:"permissions"`
	Popular     bool           `json:"popular"`
}

func toPlanDTO(p plandom.Plan) planDTO {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return planDTO{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		CheckoutURL: p.CheckoutURL,
		Features:    features,
		Permissions: permissionsDTO(p.Permissions),
		Popular:     p.Popular,
	}
}

// PlanHandler serves GET /api/plans (公開。料金ページ用)。
type PlanHandler struct {
	uc *usecase.PlanUsecase
}

func NewPlanHandler(uc *usecase.PlanUsecase) http.Handler {
	return &PlanHandler{uc: uc}
}

func (h *PlanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		hc.MethodNotAllowed(w)
		return
	}
	plans, err := h.uc.ListActive(r.Context())
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	out := make([]planDTO, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanDTO(p))
	}
	hc.WriteJSON(w, http.StatusOK, map[string]any{"items": out})
}

// MeHandler serves /api/me: ログイン中テナントのプロフィールと有効プラン。
// POST は初回ログイン時のプロフィール作成（承認済み e-mail のみ）。
type MeHandler struct {
	uc     *usecase.EntitlementUsecase
	signup *usecase.SignupUsecase
}

// signup は nil 可（POST は 405）。
func NewMeHandler(uc *usecase.EntitlementUsecase, signup *usecase.SignupUsecase) http.Handler {
	return &MeHandler{uc: uc, signup: signup}
}

type meDTO struct {
	UID             string   `json:"uid"`
	Name            string   `json:"nome"`
	Email           string   `json:"email"`
	Role            string   `json:"role"`
	Active          bool     `json:"active"`
	AccessExpiresAt string   `json:"accessExpiresAt,omitempty"`
	ImpersonatedBy  string   `json:"impersonatedBy,omitempty"`
	Plan            *planDTO `json:"plan"`
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet:
		h.get(w, r)
	case r.Method == http.MethodPost && h.signup != nil:
		h.ensure(w, r)
	default:
		hc.MethodNotAllowed(w)
	}
}

func (h *MeHandler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	u, err := h.uc.Profile(r.Context(), actor)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	h.render(w, r, actor, u, http.StatusOK)
}

// POST /api/me
func (h *MeHandler) ensure(w http.ResponseWriter, r *http.Request) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	u, created, err := h.signup.EnsureProfile(r.Context(), actor)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	h.render(w, r, actor, u, code)
}

func (h *MeHandler) render(w http.ResponseWriter, r *http.Request, actor *usecase.Actor, u userdom.User, code int) {
	out := meDTO{
		UID:            u.UID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           string(u.Role),
		Active:         u.Active,
		ImpersonatedBy: actor.ImpersonatorUID,
	}
	if u.AccessExpiresAt != nil {
		out.AccessExpiresAt = formatTime(*u.AccessExpiresAt)
	}

	pl, err := h.uc.ActivePlan(r.Context(), actor)
	switch {
	case err == nil:
		dto := toPlanDTO(pl)
		out.Plan = &dto
	case errors.Is(err, usecase.ErrNoActivePlan):
		// plan: null
	default:
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, code, out)
}

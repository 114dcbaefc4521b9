// internal/adapters/in/http/handlers/admin_handler.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	hc "flowify/internal/adapters/in/http/handlers/common"
	usecase "flowify/internal/application/usecase"
	userdom "flowify/internal/domain/user"
)

const adminPath = "/api/admin"

// AdminHandler は /api/admin（管理者専用の利用者管理・売上ランキング）を担当します。
type AdminHandler struct {
	uc  *usecase.AdminUsecase
	loc *time.Location
}

func NewAdminHandler(uc *usecase.AdminUsecase, loc *time.Location) http.Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &AdminHandler{uc: uc, loc: loc}
}

type adminUserDTO struct {
	UID             string `json:"uid"`
	Name            string `json:"nome"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	PlanID          string `json:"planId"`
	Active          bool   `json:"active"`
	AccessExpiresAt string `json:"accessExpiresAt,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
}

type rankingDTO struct {
	Position   int     `json:"posicao"`
	UID        string  `json:"uid"`
	Name       string  `json:"nome"`
	Email      string  `json:"email"`
	PlanID     string  `json:"planId"`
	Revenue    float64 `json:"faturamento"`
	Commission float64 `json:"comissao"`
	SalesCount int     `json:"vendas"`
}

// accessExpiresAt: 省略 = 変更なし / null = 期限なし / "2006-01-02" or RFC3339
type adminUserPatch struct {
	PlanID          *string         `json:"planId"`
	Active          *bool           `json:"active"`
	AccessExpiresAt json.RawMessage `json:"accessExpiresAt"`
}

func toAdminUserDTO(u userdom.User) adminUserDTO {
	out := adminUserDTO{
		UID:       u.UID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		PlanID:    u.PlanID,
		Active:    u.Active,
		CreatedAt: formatTime(u.CreatedAt),
	}
	if u.AccessExpiresAt != nil {
		out.AccessExpiresAt = formatTime(*u.AccessExpiresAt)
	}
	return out
}

func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, adminPath)

	switch {
	// GET /api/admin/users
	case len(parts) == 1 && parts[0] == "users" && r.Method == http.MethodGet:
		h.listUsers(w, r)
	// PATCH /api/admin/users/{uid}
	case len(parts) == 2 && parts[0] == "users" && (r.Method == http.MethodPatch || r.Method == http.MethodPut):
		h.updateUser(w, r, parts[1])
	// GET /api/admin/ranking
	case len(parts) == 1 && parts[0] == "ranking" && r.Method == http.MethodGet:
		h.ranking(w, r)

	case len(parts) == 1 && (parts[0] == "users" || parts[0] == "ranking"),
		len(parts) == 2 && parts[0] == "users":
		hc.MethodNotAllowed(w)
	default:
		hc.NotFound(w)
	}
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	users, err := h.uc.ListUsers(r.Context(), actor)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, paginate(users, parsePage(r), toAdminUserDTO))
}

func (h *AdminHandler) updateUser(w http.ResponseWriter, r *http.Request, uid string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	var req adminUserPatch
	if err := hc.DecodeJSON(r, &req); err != nil {
		hc.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	in := userdom.UpdateUserInput{PlanID: req.PlanID, Active: req.Active}
	switch raw := bytes.TrimSpace(req.AccessExpiresAt); {
	case len(raw) == 0:
	case bytes.Equal(raw, []byte("null")):
		in.ClearAccessExpiry = true
	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			hc.WriteErrorMessage(w, http.StatusBadRequest, "accessExpiresAt must be a date or null")
			return
		}
		t, ok := parseDate(s, h.loc)
		if !ok {
			hc.WriteErrorMessage(w, http.StatusBadRequest, "accessExpiresAt must be a date or null")
			return
		}
		in.AccessExpiresAt = &t
	}

	u, err := h.uc.UpdateUser(r.Context(), actor, uid, in)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, toAdminUserDTO(u))
}

func (h *AdminHandler) ranking(w http.ResponseWriter, r *http.Request) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	rows, err := h.uc.Ranking(r.Context(), actor)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	out := make([]rankingDTO, 0, len(rows))
	for i, e := range rows {
		out = append(out, rankingDTO{
			Position:   i + 1,
			UID:        e.UID,
			Name:       e.Name,
			Email:      e.Email,
			PlanID:     e.PlanID,
			Revenue:    e.Revenue,
			Commission: e.Commission,
			SalesCount: e.SalesCount,
		})
	}
	hc.WriteJSON(w, http.StatusOK, map[string]any{"items": out})
}

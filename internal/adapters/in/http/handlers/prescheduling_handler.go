// internal/adapters/in/http/handlers/prescheduling_handler.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	hc "flowify/internal/adapters/in/http/handlers/common"
	usecase "flowify/internal/application/usecase"
	common "flowify/internal/domain/common"
	predom "flowify/internal/domain/prescheduling"
)

const preSchedulingsPath = "/api/pre-schedulings"

// PreSchedulingHandler は /api/pre-schedulings（事前予約）を担当します。
type PreSchedulingHandler struct {
	uc  *usecase.PreSchedulingUsecase
	loc *time.Location
}

func NewPreSchedulingHandler(uc *usecase.PreSchedulingUsecase, loc *time.Location) http.Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &PreSchedulingHandler{uc: uc, loc: loc}
}

// ------------------------------------------------------------
// DTO
// ------------------------------------------------------------

type preSchedulingDTO struct {
	ID               string `json:"id"`
	CustomerName     string `json:"clienteNome"`
	CustomerWhatsapp string `json:"clienteWhatsapp"`
	CEP              string `json:"cep"`
	Street           string `json:"endereco"`
	Number           string `json:"numero"`
	Complement       string `json:"complemento"`
	Neighborhood     string `json:"bairro"`
	City             string `json:"cidade"`
	ProductID        string `json:"produtoId"`
	ProductName      string `json:"produtoNome"`
	Quantity         int    `json:"quantidade"`
	Platform         string `json:"plataforma"`
	ExpectedDate     string `json:"dataPrevista"`
	Status           string `json:"status"`
	CreatedAt        string `json:"createdAt,omitempty"`
}

type preSchedulingRequest struct {
	CustomerName     *string `json:"clienteNome"`
	CustomerWhatsapp *string `json:"clienteWhatsapp"`
	CEP              *string `json:"cep"`
	Street           *string `json:"endereco"`
	Number           *string `json:"numero"`
	Complement       *string `json:"complemento"`
	Neighborhood     *string `json:"bairro"`
	City             *string `json:"cidade"`
	ProductID        *string `json:"produtoId"`
	Quantity         *int    `json:"quantidade"`
	Platform         *string `json:"plataforma"`
	ExpectedDate     *string `json:"dataPrevista"`
}

func (q preSchedulingRequest) address() schedulingRequest {
	return schedulingRequest{
		CEP:          q.CEP,
		Street:       q.Street,
		Number:       q.Number,
		Complement:   q.Complement,
		Neighborhood: q.Neighborhood,
		City:         q.City,
	}
}

func toPreSchedulingDTO(p predom.PreScheduling) preSchedulingDTO {
	return preSchedulingDTO{
		ID:               p.ID,
		CustomerName:     p.CustomerName,
		CustomerWhatsapp: p.CustomerWhatsapp,
		CEP:              p.Address.CEP,
		Street:           p.Address.Street,
		Number:           p.Address.Number,
		Complement:       p.Address.Complement,
		Neighborhood:     p.Address.Neighborhood,
		City:             p.Address.City,
		ProductID:        p.ProductID,
		ProductName:      p.ProductName,
		Quantity:         p.Quantity,
		Platform:         string(p.Platform),
		ExpectedDate:     formatTime(p.ExpectedDate),
		Status:           string(p.Status),
		CreatedAt:        formatTime(p.CreatedAt),
	}
}

// ------------------------------------------------------------
// Routing
// ------------------------------------------------------------

func (h *PreSchedulingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, preSchedulingsPath)

	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.list(w, r)
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.create(w, r)

	case len(parts) == 1 && r.Method == http.MethodGet:
		h.get(w, r, parts[0])
	case len(parts) == 1 && (r.Method == http.MethodPatch || r.Method == http.MethodPut):
		h.update(w, r, parts[0])
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.delete(w, r, parts[0])

	// POST /api/pre-schedulings/{id}/confirm
	case len(parts) == 2 && parts[1] == "confirm" && r.Method == http.MethodPost:
		h.confirm(w, r, parts[0])

	case len(parts) <= 1:
		hc.MethodNotAllowed(w)
	default:
		hc.NotFound(w)
	}
}

func (h *PreSchedulingHandler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	filter := predom.Filter{
		Status:  predom.Status(strings.TrimSpace(r.URL.Query().Get("status"))),
		Created: parseCreatedRange(r, h.loc),
	}
	if filter.Status != "" && !predom.IsValidStatus(filter.Status) {
		hc.WriteError(w, r, predom.ErrInvalidStatus)
		return
	}

	items, err := h.uc.List(r.Context(), actor, filter)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, paginate(items, parsePage(r), toPreSchedulingDTO))
}

func (h *PreSchedulingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	p, err := h.uc.GetByID(r.Context(), actor, id)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, toPreSchedulingDTO(p))
}

func (h *PreSchedulingHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	var req preSchedulingRequest
	if err := hc.DecodeJSON(r, &req); err != nil {
		hc.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	in := predom.PreScheduling{
		Address: req.address().overlayAddress(predom.Address{}),
	}
	if req.CustomerName != nil {
		in.CustomerName = *req.CustomerName
	}
	if req.CustomerWhatsapp != nil {
		in.CustomerWhatsapp = *req.CustomerWhatsapp
	}
	if req.ProductID != nil {
		in.ProductID = *req.ProductID
	}
	if req.Quantity != nil {
		in.Quantity = *req.Quantity
	}
	if req.Platform != nil {
		in.Platform = common.Platform(strings.TrimSpace(*req.Platform))
	}
	if req.ExpectedDate != nil {
		t, ok := parseDate(*req.ExpectedDate, h.loc)
		if !ok {
			hc.WriteError(w, r, predom.ErrInvalidExpectedDate)
			return
		}
		in.ExpectedDate = t
	}

	p, err := h.uc.Create(r.Context(), actor, in)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusCreated, toPreSchedulingDTO(p))
}

func (h *PreSchedulingHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	var req preSchedulingRequest
	if err := hc.DecodeJSON(r, &req); err != nil {
		hc.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	in := predom.UpdatePreSchedulingInput{
		CustomerName:     req.CustomerName,
		CustomerWhatsapp: req.CustomerWhatsapp,
		ProductID:        req.ProductID,
		Quantity:         req.Quantity,
	}
	if req.Platform != nil {
		p := common.Platform(strings.TrimSpace(*req.Platform))
		in.Platform = &p
	}
	if req.ExpectedDate != nil {
		t, ok := parseDate(*req.ExpectedDate, h.loc)
		if !ok {
			hc.WriteError(w, r, predom.ErrInvalidExpectedDate)
			return
		}
		in.ExpectedDate = &t
	}
	if addr := req.address(); addr.hasAddress() {
		cur, err := h.uc.GetByID(r.Context(), actor, id)
		if err != nil {
			hc.WriteError(w, r, err)
			return
		}
		a := addr.overlayAddress(cur.Address)
		in.Address = &a
	}

	p, err := h.uc.Update(r.Context(), actor, id, in)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, toPreSchedulingDTO(p))
}

func (h *PreSchedulingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	if err := h.uc.Delete(r.Context(), actor, id); err != nil {
		hc.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PreSchedulingHandler) confirm(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	p, err := h.uc.Confirm(r.Context(), actor, id)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, toPreSchedulingDTO(p))
}

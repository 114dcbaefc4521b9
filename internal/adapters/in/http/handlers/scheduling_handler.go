// internal/adapters/in/http/handlers/scheduling_handler.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	hc "flowify/internal/adapters/in/http/handlers/common"
	usecase "flowify/internal/application/usecase"
	common "flowify/internal/domain/common"
	schedulingdom "flowify/internal/domain/scheduling"
)

const schedulingsPath = "/api/schedulings"

// SchedulingHandler は /api/schedulings 関連（変換・WhatsApp を含む）を担当します。
type SchedulingHandler struct {
	uc   *usecase.SchedulingUsecase
	conv *usecase.SchedulingConversionUsecase
	loc  *time.Location
}

func NewSchedulingHandler(
	uc *usecase.SchedulingUsecase,
	conv *usecase.SchedulingConversionUsecase,
	loc *time.Location,
) http.Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &SchedulingHandler{uc: uc, conv: conv, loc: loc}
}

// ------------------------------------------------------------
// DTO
// ------------------------------------------------------------

type schedulingDTO struct {
	ID             string `json:"id"`
	CustomerName   string `json:"clienteNome"`
	CustomerPhone  string `json:"clienteTelefone"`
	CEP            string `json:"cep"`
	Street         string `json:"endereco"`
	Number         string `json:"numero"`
	Complement     string `json:"complemento"`
	Neighborhood   string `json:"bairro"`
	City           string `json:"cidade"`
	DisplayAddress string `json:"enderecoCompleto"`
	ProductID      string `json:"produtoId"`
	ProductName    string `json:"produtoNome"`
	Quantity       int    `json:"quantidade"`
	Platform       string `json:"plataforma"`
	Status         string `json:"status"`
	ScheduledFor   string `json:"dataAgendamento"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// schedulingRequest は作成・部分更新の共通ボディ。
type schedulingRequest struct {
	CustomerName  *string `json:"clienteNome"`
	CustomerPhone *string `json:"clienteTelefone"`
	CEP           *string `json:"cep"`
	Street        *string `json:"endereco"`
	Number        *string `json:"numero"`
	Complement    *string `json:"complemento"`
	Neighborhood  *string `json:"bairro"`
	City          *string `json:"cidade"`
	ProductID     *string `json:"produtoId"`
	Quantity      *int    `json:"quantidade"`
	Platform      *string `json:"plataforma"`
	Status        *string `json:"status"`
	ScheduledFor  *string `json:"dataAgendamento"`
}

func (q schedulingRequest) hasAddress() bool {
	return q.CEP != nil || q.Street != nil || q.Number != nil ||
		q.Complement != nil || q.Neighborhood != nil || q.City != nil
}

// overlayAddress applies the request's address fields onto base.
func (q schedulingRequest) overlayAddress(base schedulingdom.Address) schedulingdom.Address {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.CEP, q.CEP)
	set(&base.Street, q.Street)
	set(&base.Number, q.Number)
	set(&base.Complement, q.Complement)
	set(&base.Neighborhood, q.Neighborhood)
	set(&base.City, q.City)
	return base
}

func toSchedulingDTO(s schedulingdom.Scheduling) schedulingDTO {
	return schedulingDTO{
		ID:             s.ID,
		CustomerName:   s.CustomerName,
		CustomerPhone:  s.CustomerPhone,
		CEP:            s.Address.CEP,
		Street:         s.Address.Street,
		Number:         s.Address.Number,
		Complement:     s.Address.Complement,
		Neighborhood:   s.Address.Neighborhood,
		City:           s.Address.City,
		DisplayAddress: s.DisplayAddress(),
		ProductID:      s.ProductID,
		ProductName:    s.ProductName,
		Quantity:       s.Quantity,
		Platform:       string(s.Platform),
		Status:         string(s.Status),
		ScheduledFor:   formatTime(s.ScheduledFor),
		CreatedAt:      formatTime(s.CreatedAt),
	}
}

// ------------------------------------------------------------
// Routing
// ------------------------------------------------------------

func (h *SchedulingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, schedulingsPath)

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

	// POST /api/schedulings/{id}/confirm
	case len(parts) == 2 && parts[1] == "confirm" && r.Method == http.MethodPost:
		h.confirm(w, r, parts[0])
	// POST /api/schedulings/{id}/convert
	case len(parts) == 2 && parts[1] == "convert" && r.Method == http.MethodPost:
		h.convert(w, r, parts[0])
	// GET /api/schedulings/{id}/whatsapp
	case len(parts) == 2 && parts[1] == "whatsapp" && r.Method == http.MethodGet:
		h.whatsapp(w, r, parts[0])

	case len(parts) <= 1:
		hc.MethodNotAllowed(w)
	default:
		hc.NotFound(w)
	}
}

func (h *SchedulingHandler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := schedulingdom.Filter{
		Status:   schedulingdom.Status(strings.TrimSpace(q.Get("status"))),
		Platform: common.Platform(strings.TrimSpace(q.Get("plataforma"))),
		Created:  parseCreatedRange(r, h.loc),
	}
	if filter.Status != "" && !schedulingdom.IsValidStatus(filter.Status) {
		hc.WriteError(w, r, schedulingdom.ErrInvalidStatus)
		return
	}
	if filter.Platform != "" && !common.IsValidPlatform(filter.Platform) {
		hc.WriteError(w, r, schedulingdom.ErrInvalidPlatform)
		return
	}

	items, err := h.uc.List(r.Context(), actor, filter)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, paginate(items, parsePage(r), toSchedulingDTO))
}

func (h *SchedulingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	s, err := h.uc.GetByID(r.Context(), actor, id)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, toSchedulingDTO(s))
}

func (h *SchedulingHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	var req schedulingRequest
	if err := hc.DecodeJSON(r, &req); err != nil {
		hc.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	in := usecase.CreateSchedulingInput{
		Address: req.overlayAddress(schedulingdom.Address{}),
	}
	if req.CustomerName != nil {
		in.CustomerName = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		in.CustomerPhone = *req.CustomerPhone
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
	if req.Status != nil {
		in.Status = schedulingdom.Status(strings.TrimSpace(*req.Status))
	}
	if req.ScheduledFor != nil {
		t, ok := parseDate(*req.ScheduledFor, h.loc)
		if !ok {
			hc.WriteError(w, r, schedulingdom.ErrInvalidScheduledFor)
			return
		}
		in.ScheduledFor = t
	}

	s, err := h.uc.Create(r.Context(), actor, in)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusCreated, toSchedulingDTO(s))
}

func (h *SchedulingHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	var req schedulingRequest
	if err := hc.DecodeJSON(r, &req); err != nil {
		hc.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	in := schedulingdom.UpdateSchedulingInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
	}
	if req.Platform != nil {
		p := common.Platform(strings.TrimSpace(*req.Platform))
		in.Platform = &p
	}
	if req.Status != nil {
		st := schedulingdom.Status(strings.TrimSpace(*req.Status))
		in.Status = &st
	}
	if req.ScheduledFor != nil {
		t, ok := parseDate(*req.ScheduledFor, h.loc)
		if !ok {
			hc.WriteError(w, r, schedulingdom.ErrInvalidScheduledFor)
			return
		}
		in.ScheduledFor = &t
	}
	// 住所は部分指定を現在値に重ねてから丸ごと渡す
	if req.hasAddress() {
		cur, err := h.uc.GetByID(r.Context(), actor, id)
		if err != nil {
			hc.WriteError(w, r, err)
			return
		}
		addr := req.overlayAddress(cur.Address)
		in.Address = &addr
	}

	s, err := h.uc.Update(r.Context(), actor, id, in)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, toSchedulingDTO(s))
}

func (h *SchedulingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
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

func (h *SchedulingHandler) confirm(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	s, err := h.uc.Confirm(r.Context(), actor, id)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, toSchedulingDTO(s))
}

// POST /api/schedulings/{id}/convert → 201 + Sale
func (h *SchedulingHandler) convert(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	if h.conv == nil {
		hc.WriteErrorMessage(w, http.StatusServiceUnavailable, "conversion is not configured")
		return
	}
	sale, err := h.conv.ConvertByID(r.Context(), actor, id)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusCreated, toSaleDTO(sale))
}

func (h *SchedulingHandler) whatsapp(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	link, err := h.uc.WhatsappLink(r.Context(), actor, id)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, map[string]string{"url": link})
}

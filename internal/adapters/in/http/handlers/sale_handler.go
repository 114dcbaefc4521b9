// internal/adapters/in/http/handlers/sale_handler.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	hc "flowify/internal/adapters/in/http/handlers/common"
	usecase "flowify/internal/application/usecase"
	common "flowify/internal/domain/common"
	saledom "flowify/internal/domain/sale"
)

const salesPath = "/api/sales"

// SaleHandler は /api/sales 関連（手動登録・CSV 出力）を担当します。
type SaleHandler struct {
	uc     *usecase.SaleUsecase
	export *usecase.SalesExportUsecase
	loc    *time.Location
}

// export は nil 可（EXPORT_BUCKET 未設定時は 503 を返す）。
func NewSaleHandler(uc *usecase.SaleUsecase, export *usecase.SalesExportUsecase, loc *time.Location) http.Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleHandler{uc: uc, export: export, loc: loc}
}

// ------------------------------------------------------------
// DTO
// ------------------------------------------------------------

type saleDTO struct {
	ID            string  `json:"id"`
	CustomerName  string  `json:"clienteNome"`
	CustomerPhone string  `json:"clienteTelefone"`
	Address       string  `json:"endereco"`
	ProductID     string  `json:"produtoId"`
	ProductName   string  `json:"produtoNome"`
	Platform      string  `json:"plataforma"`
	Quantity      int     `json:"quantidade"`
	TotalValue    float64 `json:"valorTotal"`
	Commission    float64 `json:"comissao"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"createdAt,omitempty"`
}

type saleRequest struct {
	CustomerName  string `json:"clienteNome"`
	CustomerPhone string `json:"clienteTelefone"`
	Address       string `json:"endereco"`
	ProductID     string `json:"produtoId"`
	Platform      string `json:"plataforma"`
	Quantity      int    `json:"quantidade"`
}

// PATCH 用。金額と手数料は受け付けない（価格表から再計算する）。
type saleUpdateRequest struct {
	CustomerName  *string `json:"clienteNome"`
	CustomerPhone *string `json:"clienteTelefone"`
	Address       *string `json:"endereco"`
	ProductID     *string `json:"produtoId"`
	Platform      *string `json:"plataforma"`
	Quantity      *int    `json:"quantidade"`
}

func toSaleDTO(s saledom.Sale) saleDTO {
	return saleDTO{
		ID:            s.ID,
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		Address:       s.Address,
		ProductID:     s.ProductID,
		ProductName:   s.ProductName,
		Platform:      string(s.Platform),
		Quantity:      s.Quantity,
		TotalValue:    s.TotalValue,
		Commission:    s.Commission,
		Status:        string(s.Status),
		CreatedAt:     formatTime(s.CreatedAt),
	}
}

// ------------------------------------------------------------
// Routing
// ------------------------------------------------------------

func (h *SaleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, salesPath)

	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.list(w, r)
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.create(w, r)

	// POST /api/sales/export
	case len(parts) == 1 && parts[0] == "export":
		if r.Method != http.MethodPost {
			hc.MethodNotAllowed(w)
			return
		}
		h.exportCSV(w, r)

	case len(parts) == 1 && r.Method == http.MethodGet:
		h.get(w, r, parts[0])
	case len(parts) == 1 && r.Method == http.MethodPatch:
		h.update(w, r, parts[0])
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.delete(w, r, parts[0])

	case len(parts) <= 1:
		hc.MethodNotAllowed(w)
	default:
		hc.NotFound(w)
	}
}

func (h *SaleHandler) filter(r *http.Request) (saledom.Filter, error) {
	q := r.URL.Query()
	f := saledom.Filter{
		Platform:  common.Platform(strings.TrimSpace(q.Get("plataforma"))),
		ProductID: strings.TrimSpace(q.Get("produtoId")),
		Created:   parseCreatedRange(r, h.loc),
	}
	if f.Platform != "" && !common.IsValidPlatform(f.Platform) {
		return saledom.Filter{}, saledom.ErrInvalidPlatform
	}
	return f, nil
}

func (h *SaleHandler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	f, err := h.filter(r)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	items, err := h.uc.List(r.Context(), actor, f)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, paginate(items, parsePage(r), toSaleDTO))
}

func (h *SaleHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	s, err := h.uc.GetByID(r.Context(), actor, id)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, toSaleDTO(s))
}

// POST /api/sales (手動登録)
func (h *SaleHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	var req saleRequest
	if err := hc.DecodeJSON(r, &req); err != nil {
		hc.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.uc.Create(r.Context(), actor, usecase.CreateSaleInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Address:       req.Address,
		ProductID:     req.ProductID,
		Platform:      common.Platform(strings.TrimSpace(req.Platform)),
		Quantity:      req.Quantity,
	})
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusCreated, toSaleDTO(s))
}

// PATCH /api/sales/{id}
func (h *SaleHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	var req saleUpdateRequest
	if err := hc.DecodeJSON(r, &req); err != nil {
		hc.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	in := saledom.UpdateSaleInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Address:       req.Address,
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
	}
	if req.Platform != nil {
		p := common.Platform(strings.TrimSpace(*req.Platform))
		in.Platform = &p
	}

	s, err := h.uc.Update(r.Context(), actor, id, in)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, toSaleDTO(s))
}

func (h *SaleHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
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

// POST /api/sales/export?plataforma=&produtoId=&from=&to=
func (h *SaleHandler) exportCSV(w http.ResponseWriter, r *http.Request) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	if h.export == nil {
		hc.WriteErrorMessage(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}
	f, err := h.filter(r)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	obj, err := h.export.Export(r.Context(), actor, f)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusCreated, map[string]string{
		"bucket": obj.Bucket,
		"name":   obj.Name,
		"url":    obj.URL,
	})
}

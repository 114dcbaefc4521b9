// internal/adapters/in/http/handlers/product_handler.go
package handlers

import (
	"net/http"
	"strings"

	hc "flowify/internal/adapters/in/http/handlers/common"
	usecase "flowify/internal/application/usecase"
	common "flowify/internal/domain/common"
	productdom "flowify/internal/domain/product"
)

const productsPath = "/api/products"

// ProductHandler は /api/products 関連のエンドポイントを担当します。
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewProductHandler(uc *usecase.ProductUsecase) http.Handler {
	return &ProductHandler{uc: uc}
}

// ------------------------------------------------------------
// DTO
// ------------------------------------------------------------

type priceCommissionDTO struct {
	Platform   string  `json:"plataforma"`
	Quantity   int     `json:"quantidade"`
	Price      float64 `json:"preco"`
	Commission float64 `json:"comissao"`
}

type productDTO struct {
	ID            string               `json:"id"`
	Name          string               `json:"nome"`
	Description   string               `json:"descricao"`
	Prices        []priceCommissionDTO `json:"precosComissoes"`
	CoveredCities []string             `json:"coveredCities"`
	CreatedAt     string               `json:"createdAt,omitempty"`
}

type productRequest struct {
	Name          *string               `json:"nome"`
	Description   *string               `json:"descricao"`
	Prices        *[]priceCommissionDTO `json:"precosComissoes"`
	CoveredCities *[]string             `json:"coveredCities"`
}

func toProductDTO(p productdom.Product) productDTO {
	prices := make([]priceCommissionDTO, 0, len(p.Prices))
	for _, pc := range p.Prices {
		prices = append(prices, priceCommissionDTO{
			Platform:   string(pc.Platform),
			Quantity:   pc.Quantity,
			Price:      pc.Price,
			Commission: pc.Commission,
		})
	}
	cities := p.CoveredCities
	if cities == nil {
		cities = []string{}
	}
	return productDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Prices:        prices,
		CoveredCities: cities,
		CreatedAt:     formatTime(p.CreatedAt),
	}
}

type coverageDTO struct {
	ProductID   string `json:"produtoId"`
	ProductName string `json:"produtoNome"`
	City        string `json:"cidade"`
	Covered     bool   `json:"disponivel"`
}

func fromPriceDTOs(in []priceCommissionDTO) []productdom.PriceCommission {
	out := make([]productdom.PriceCommission, 0, len(in))
	for _, pc := range in {
		out = append(out, productdom.PriceCommission{
			Platform:   common.Platform(strings.TrimSpace(pc.Platform)),
			Quantity:   pc.Quantity,
			Price:      pc.Price,
			Commission: pc.Commission,
		})
	}
	return out
}

// ------------------------------------------------------------
// Routing
// ------------------------------------------------------------

func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, productsPath)

	switch {
	// GET /api/products
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.list(w, r)
	// POST /api/products
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.create(w, r)
	// GET /api/products/{id}
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.get(w, r, parts[0])
	// PATCH /api/products/{id}
	case len(parts) == 1 && (r.Method == http.MethodPatch || r.Method == http.MethodPut):
		h.update(w, r, parts[0])
	// DELETE /api/products/{id}
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.delete(w, r, parts[0])
	// GET /api/products/{id}/coverage?cidade=
	case len(parts) == 2 && parts[1] == "coverage":
		if r.Method != http.MethodGet {
			hc.MethodNotAllowed(w)
			return
		}
		h.coverage(w, r, parts[0])
	case len(parts) <= 1:
		hc.MethodNotAllowed(w)
	default:
		hc.NotFound(w)
	}
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	items, err := h.uc.List(r.Context(), actor)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, paginate(items, parsePage(r), toProductDTO))
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	p, err := h.uc.GetByID(r.Context(), actor, id)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, toProductDTO(p))
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	var req productRequest
	if err := hc.DecodeJSON(r, &req); err != nil {
		hc.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	in := usecase.CreateProductInput{}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Prices != nil {
		in.Prices = fromPriceDTOs(*req.Prices)
	}
	if req.CoveredCities != nil {
		in.CoveredCities = *req.CoveredCities
	}

	p, err := h.uc.Create(r.Context(), actor, in)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusCreated, toProductDTO(p))
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	var req productRequest
	if err := hc.DecodeJSON(r, &req); err != nil {
		hc.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	in := productdom.UpdateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		CoveredCities: req.CoveredCities,
	}
	if req.Prices != nil {
		prices := fromPriceDTOs(*req.Prices)
		in.Prices = &prices
	}

	p, err := h.uc.Update(r.Context(), actor, id, in)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, toProductDTO(p))
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
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

func (h *ProductHandler) coverage(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}
	res, err := h.uc.CheckCoverage(r.Context(), actor, id, r.URL.Query().Get("cidade"))
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	hc.WriteJSON(w, http.StatusOK, coverageDTO{
		ProductID:   res.ProductID,
		ProductName: res.ProductName,
		City:        res.City,
		Covered:     res.Covered,
	})
}

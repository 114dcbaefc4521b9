// internal/adapters/in/http/handlers/billing_handler.go
package handlers

import (
	"net/http"

	hc "flowify/internal/adapters/in/http/handlers/common"
	usecase "flowify/internal/application/usecase"
	billingdom "flowify/internal/domain/billing"
)

// BillingHandler serves GET /api/billing (月次の Faturamento 一覧、新しい月が先頭)。
type BillingHandler struct {
	uc *usecase.BillingUsecase
}

func NewBillingHandler(uc *usecase.BillingUsecase) http.Handler {
	return &BillingHandler{uc: uc}
}

type faturamentoDTO struct {
	ID              string  `json:"id"`
	MonthLabel      string  `json:"mes"`
	TotalValue      float64 `json:"valorTotal"`
	TotalCommission float64 `json:"comissaoTotal"`
	OrderCount      int     `json:"pedidos"`
	LastSaleAt      string  `json:"ultimaVenda,omitempty"`
}

func toFaturamentoDTO(f billingdom.Faturamento) faturamentoDTO {
	return faturamentoDTO{
		ID:              f.ID,
		MonthLabel:      f.MonthLabel,
		TotalValue:      f.TotalValue,
		TotalCommission: f.TotalCommission,
		OrderCount:      f.OrderCount,
		LastSaleAt:      formatTime(f.LastSaleAt),
	}
}

func (h *BillingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if len(pathParts(r.URL.Path, "/api/billing")) != 0 {
		hc.NotFound(w)
		return
	}
	if r.Method != http.MethodGet {
		hc.MethodNotAllowed(w)
		return
	}
	actor, ok := hc.RequireActor(w, r)
	if !ok {
		return
	}

	rows, err := h.uc.Monthly(r.Context(), actor)
	if err != nil {
		hc.WriteError(w, r, err)
		return
	}
	out := make([]faturamentoDTO, 0, len(rows))
	for _, f := range rows {
		out = append(out, toFaturamentoDTO(f))
	}
	hc.WriteJSON(w, http.StatusOK, map[string]any{"items": out})
}

// backend/internal/domain/sale/totals.go
package sale

import "context"

// TenantTotals は 1 テナント分の売上集計。
type TenantTotals struct {
	UID        string
	Revenue    float64
	Commission float64
	Count      int
}

// Add accumulates s into t.
func (t *TenantTotals) Add(s Sale) {
	t.Revenue += s.TotalValue
	t.Commission += s.Commission
	t.Count++
}

// TotalsReader aggregates sales across every tenant (admin only).
type TotalsReader interface {
	TotalsByTenant(ctx context.Context) (map[string]TenantTotals, error)
}

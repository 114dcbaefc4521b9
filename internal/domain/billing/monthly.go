// backend/internal/domain/billing/monthly.go
package billing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	saledom "flowify/internal/domain/sale"
)

// Faturamento は 1 か月分の売上集計行。
type Faturamento struct {
	ID              string // "MM/YYYY"
	MonthLabel      string // "Maio/2024"
	TotalValue      float64
	TotalCommission float64
	OrderCount      int
	LastSaleAt      time.Time // その月で最も新しい Sale の作成日時
}

var monthNamesPtBR = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// MonthLabelPtBR returns "Março/2024" style labels.
func MonthLabelPtBR(t time.Time) string {
	name := monthNamesPtBR[t.Month()-1]
	return strings.ToUpper(name[:1]) + name[1:] + fmt.Sprintf("/%04d", t.Year())
}

// AggregateMonthly groups sales by calendar month in loc (UTC when nil) and
// returns rows newest month first. Sales without a creation time are skipped.
func AggregateMonthly(sales []saledom.Sale, loc *time.Location) []Faturamento {
	if loc == nil {
		loc = time.UTC
	}

	type key struct {
		year  int
		month time.Month
	}
	rows := make(map[key]*Faturamento)

	for _, s := range sales {
		if s.CreatedAt.IsZero() {
			continue
		}
		at := s.CreatedAt.In(loc)
		k := key{year: at.Year(), month: at.Month()}

		row, ok := rows[k]
		if !ok {
			row = &Faturamento{
				ID:         fmt.Sprintf("%02d/%04d", int(at.Month()), at.Year()),
				MonthLabel: MonthLabelPtBR(at),
			}
			rows[k] = row
		}
		row.TotalValue += s.TotalValue
		row.TotalCommission += s.Commission
		row.OrderCount++
		if at.After(row.LastSaleAt) {
			row.LastSaleAt = at
		}
	}

	keys := make([]key, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year > keys[j].year
		}
		return keys[i].month > keys[j].month
	})

	out := make([]Faturamento, 0, len(keys))
	for _, k := range keys {
		out = append(out, *rows[k])
	}
	return out
}

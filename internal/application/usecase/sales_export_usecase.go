// internal/application/usecase/sales_export_usecase.go
package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	saledom "flowify/internal/domain/sale"
)

// ExportObject は書き出し先オブジェクトの情報。
type ExportObject struct {
	Bucket string
	Name   string
	URL    string
}

// ExportWriter stores a finished export file.
type ExportWriter interface {
	Write(ctx context.Context, objectName, contentType string, data []byte) (ExportObject, error)
}

// SalesExportUsecase writes the actor's sales as CSV to object storage.
type SalesExportUsecase struct {
	sales        SaleLister
	writer       ExportWriter
	entitlements *EntitlementUsecase

	loc   *time.Location
	now   func() time.Time
	newID func() string
}

func NewSalesExportUsecase(
	sales SaleLister,
	writer ExportWriter,
	entitlements *EntitlementUsecase,
	loc *time.Location,
) *SalesExportUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &SalesExportUsecase{
		sales:        sales,
		writer:       writer,
		entitlements: entitlements,
		loc:          loc,
		now:          time.Now,
		newID:        func() string { return uuid.NewString() },
	}
}

func (u *SalesExportUsecase) WithNow(now func() time.Time) *SalesExportUsecase {
	u.now = now
	return u
}

var salesCSVHeader = []string{
	"id", "data", "cliente", "telefone", "endereco", "produto",
	"plataforma", "quantidade", "valorTotal", "comissao", "status",
}

// Export requires canExportExcel on the actor's plan.
func (u *SalesExportUsecase) Export(ctx context.Context, actor *Actor, filter saledom.Filter) (ExportObject, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return ExportObject{}, err
	}
	if u.entitlements != nil {
		pl, err := u.entitlements.ActivePlan(ctx, actor)
		if err != nil {
			return ExportObject{}, err
		}
		if !pl.Permissions.CanExportExcel {
			return ExportObject{}, ErrFeatureNotInPlan
		}
	}

	sales, err := u.sales.List(ctx, uid, filter)
	if err != nil {
		return ExportObject{}, err
	}
	data, err := EncodeSalesCSV(sales, u.loc)
	if err != nil {
		return ExportObject{}, err
	}

	name := fmt.Sprintf("exports/%s/vendas-%s-%s.csv", uid, u.now().In(u.loc).Format("20060102"), u.newID())
	obj, err := u.writer.Write(ctx, name, "text/csv; charset=utf-8", data)
	if err != nil {
		return ExportObject{}, fmt.Errorf("write export %s: %w", name, err)
	}

	log.Info().
		Str("uid", uid).
		Str("object", obj.Name).
		Int("rows", len(sales)).
		Msg("[export] sales exported")
	return obj, nil
}

// EncodeSalesCSV renders sales with a header row. Dates use dd/mm/yyyy in loc.
func EncodeSalesCSV(sales []saledom.Sale, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(salesCSVHeader); err != nil {
		return nil, err
	}
	for _, s := range sales {
		row := []string{
			s.ID,
			s.CreatedAt.In(loc).Format("02/01/2006"),
			s.CustomerName,
			s.CustomerPhone,
			s.Address,
			s.ProductName,
			string(s.Platform),
			strconv.Itoa(s.Quantity),
			strconv.FormatFloat(s.TotalValue, 'f', 2, 64),
			strconv.FormatFloat(s.Commission, 'f', 2, 64),
			string(s.Status),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

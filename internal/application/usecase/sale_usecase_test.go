package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "flowify/internal/domain/common"
	plandom "flowify/internal/domain/plan"
	productdom "flowify/internal/domain/product"
	saledom "flowify/internal/domain/sale"
)

func TestSaleCreate_Manual(t *testing.T) {
	m := newMemStore()
	seedTenant(m, plandom.Permissions{})
	uc := NewSaleUsecase(memSales{m}, memProducts{m}).WithNow(func() time.Time { return fixedNow })

	s, err := uc.Create(context.Background(), testActor(), CreateSaleInput{
		CustomerName:  "Bia",
		CustomerPhone: "(11) 98888-7777",
		ProductID:     "p1",
		Platform:      common.PlatformHyppe,
		Quantity:      1,
	})
	require.NoError(t, err)
	assert.Equal(t, "11988887777", s.CustomerPhone)
	assert.Equal(t, 100.0, s.TotalValue)
	assert.Equal(t, 10.0, s.Commission)
	assert.Equal(t, saledom.StatusPaid, s.Status)
	assert.Equal(t, "Creme", s.ProductName)
	assert.Empty(t, s.Address)
}

func TestSaleCreate_Errors(t *testing.T) {
	m := newMemStore()
	seedTenant(m, plandom.Permissions{})
	m.putProduct(testUID, productdom.Product{
		ID:     "free",
		Name:   "Brinde",
		Prices: []productdom.PriceCommission{{Platform: common.PlatformHyppe, Quantity: 1, Price: 0}},
	})
	uc := NewSaleUsecase(memSales{m}, memProducts{m})

	base := CreateSaleInput{CustomerName: "Bia", CustomerPhone: "11", ProductID: "p1", Platform: common.PlatformLogzz, Quantity: 1}

	_, err := uc.Create(context.Background(), testActor(), base)
	assert.ErrorIs(t, err, ErrPriceNotFound)

	in := base
	in.ProductID = "nope"
	_, err = uc.Create(context.Background(), testActor(), in)
	assert.ErrorIs(t, err, ErrProductNotFound)

	// 数量が一致しない行には落ちない
	in = base
	in.Platform = common.PlatformHyppe
	in.Quantity = 5
	_, err = uc.Create(context.Background(), testActor(), in)
	assert.ErrorIs(t, err, ErrPriceNotFound)

	in = base
	in.ProductID = "free"
	in.Platform = common.PlatformHyppe
	_, err = uc.Create(context.Background(), testActor(), in)
	assert.ErrorIs(t, err, ErrInvalidSaleTotal)

	_, err = uc.Create(context.Background(), nil, base)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.Empty(t, m.salesOf(testUID))
}

func newSaleEditFixture(t *testing.T) (*memStore, *SaleUsecase, saledom.Sale) {
	t.Helper()
	m := newMemStore()
	seedTenant(m, plandom.Permissions{})
	m.putProduct(testUID, productdom.Product{
		ID:   "p2",
		Name: "Serum",
		Prices: []productdom.PriceCommission{
			{Platform: common.PlatformLogzz, Quantity: 2, Price: 300, Commission: 45},
			{Platform: common.PlatformLogzz, Quantity: 1, Price: 160, Commission: 20},
		},
	})
	uc := NewSaleUsecase(memSales{m}, memProducts{m}).WithNow(func() time.Time { return fixedNow })
	s, err := uc.Create(context.Background(), testActor(), CreateSaleInput{
		CustomerName: "Bia", CustomerPhone: "11988887777", Address: "Rua A, 10",
		ProductID: "p1", Platform: common.PlatformHyppe, Quantity: 1,
	})
	require.NoError(t, err)
	return m, uc, s
}

func TestSaleUpdate_ContactFieldsKeepPrice(t *testing.T) {
	_, uc, s := newSaleEditFixture(t)

	got, err := uc.Update(context.Background(), testActor(), s.ID, saledom.UpdateSaleInput{
		CustomerName:  ptr("  Beatriz "),
		CustomerPhone: ptr("(11) 97777-6666"),
		Address:       ptr(" Rua B, 20 "),
		TotalValue:    ptr(1.0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Beatriz", got.CustomerName)
	assert.Equal(t, "11977776666", got.CustomerPhone)
	assert.Equal(t, "Rua B, 20", got.Address)
	assert.Equal(t, 100.0, got.TotalValue)
	assert.Equal(t, 10.0, got.Commission)
	assert.Equal(t, saledom.StatusPaid, got.Status)
	assert.Equal(t, fixedNow, got.CreatedAt)
}

func TestSaleUpdate_ReResolvesPrice(t *testing.T) {
	m, uc, s := newSaleEditFixture(t)

	got, err := uc.Update(context.Background(), testActor(), s.ID, saledom.UpdateSaleInput{
		ProductID: ptr("p2"),
		Platform:  ptr(common.PlatformLogzz),
		Quantity:  ptr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "Serum", got.ProductName)
	assert.Equal(t, 300.0, got.TotalValue)
	assert.Equal(t, 45.0, got.Commission)
	assert.Equal(t, saledom.StatusPaid, got.Status)

	stored, err := memSales{m}.GetByID(context.Background(), testUID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestSaleUpdate_Errors(t *testing.T) {
	m, uc, s := newSaleEditFixture(t)
	ctx := context.Background()

	// 価格表に完全一致する行がなければ更新しない
	_, err := uc.Update(ctx, testActor(), s.ID, saledom.UpdateSaleInput{Quantity: ptr(3)})
	assert.ErrorIs(t, err, ErrPriceNotFound)

	_, err = uc.Update(ctx, testActor(), s.ID, saledom.UpdateSaleInput{ProductID: ptr("nope")})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = uc.Update(ctx, testActor(), s.ID, saledom.UpdateSaleInput{CustomerName: ptr("   ")})
	assert.ErrorIs(t, err, saledom.ErrInvalidCustomerName)

	_, err = uc.Update(ctx, testActor(), s.ID, saledom.UpdateSaleInput{Quantity: ptr(0)})
	assert.Error(t, err)

	_, err = uc.Update(ctx, testActor(), "missing", saledom.UpdateSaleInput{CustomerName: ptr("X")})
	assert.ErrorIs(t, err, saledom.ErrNotFound)

	_, err = uc.Update(ctx, testActor(), " ", saledom.UpdateSaleInput{})
	assert.ErrorIs(t, err, saledom.ErrInvalidID)

	_, err = uc.Update(ctx, nil, s.ID, saledom.UpdateSaleInput{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	stored, err := memSales{m}.GetByID(ctx, testUID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, stored)
}

func TestBillingMonthly(t *testing.T) {
	m := newMemStore()
	sales := memSales{m}
	for _, s := range []saledom.Sale{
		{TotalValue: 100, Commission: 10, CreatedAt: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)},
		{TotalValue: 50, Commission: 5, CreatedAt: time.Date(2024, 5, 30, 10, 0, 0, 0, time.UTC)},
		{TotalValue: 70, Commission: 7, CreatedAt: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)},
	} {
		_, err := sales.Create(context.Background(), testUID, s)
		require.NoError(t, err)
	}

	rows, err := NewBillingUsecase(sales, time.UTC).Monthly(context.Background(), testActor())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "05/2024", rows[0].ID)
	assert.Equal(t, 150.0, rows[0].TotalValue)
	assert.Equal(t, 2, rows[0].OrderCount)
	assert.Equal(t, "04/2024", rows[1].ID)
}

type memExportWriter struct {
	name string
	data []byte
	err  error
}

func (w *memExportWriter) Write(_ context.Context, objectName, _ string, data []byte) (ExportObject, error) {
	if w.err != nil {
		return ExportObject{}, w.err
	}
	w.name = objectName
	w.data = data
	return ExportObject{Bucket: "b", Name: objectName}, nil
}

func TestSalesExport(t *testing.T) {
	m := newMemStore()
	seedTenant(m, plandom.Permissions{CanExportExcel: true})
	_, err := memSales{m}.Create(context.Background(), testUID, saledom.Sale{
		CustomerName: "Ana, a cliente",
		ProductName:  "Creme",
		Platform:     common.PlatformHyppe,
		Quantity:     1,
		TotalValue:   100,
		Commission:   10,
		Status:       saledom.StatusPaid,
		CreatedAt:    fixedNow,
	})
	require.NoError(t, err)

	w := &memExportWriter{}
	ent := NewEntitlementUsecase(memUsers{m}, memPlans{m}).WithNow(func() time.Time { return fixedNow })
	uc := NewSalesExportUsecase(memSales{m}, w, ent, time.UTC).WithNow(func() time.Time { return fixedNow })
	uc.newID = func() string { return "abc" }

	obj, err := uc.Export(context.Background(), testActor(), saledom.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "exports/u1/vendas-20240520-abc.csv", obj.Name)

	records, err := csv.NewReader(strings.NewReader(string(w.data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, salesCSVHeader, records[0])
	assert.Equal(t, "Ana, a cliente", records[1][2])
	assert.Equal(t, "20/05/2024", records[1][1])
	assert.Equal(t, "100.00", records[1][8])
	assert.Equal(t, "Pago", records[1][10])
}

func TestSalesExport_Gated(t *testing.T) {
	m := newMemStore()
	seedTenant(m, plandom.Permissions{CanExportExcel: false})
	ent := NewEntitlementUsecase(memUsers{m}, memPlans{m})
	uc := NewSalesExportUsecase(memSales{m}, &memExportWriter{}, ent, nil)

	_, err := uc.Export(context.Background(), testActor(), saledom.Filter{})
	assert.ErrorIs(t, err, ErrFeatureNotInPlan)
}

func TestSalesExport_WriterError(t *testing.T) {
	m := newMemStore()
	seedTenant(m, plandom.Permissions{CanExportExcel: true})
	boom := errors.New("bucket down")
	uc := NewSalesExportUsecase(memSales{m}, &memExportWriter{err: boom}, nil, nil)

	_, err := uc.Export(context.Background(), testActor(), saledom.Filter{})
	assert.ErrorIs(t, err, boom)
}

package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "flowify/internal/domain/common"
	productdom "flowify/internal/domain/product"
	saledom "flowify/internal/domain/sale"
	schedulingdom "flowify/internal/domain/scheduling"
)

const testUID = "u1"

var fixedNow = time.Date(2024, 5, 20, 14, 0, 0, 0, time.UTC)

func testActor() *Actor { return &Actor{UID: testUID, Email: "u1@example.com"} }

func anaScheduling(id string, platform common.Platform, quantity int) schedulingdom.Scheduling {
	return schedulingdom.Scheduling{
		ID:            id,
		CustomerName:  "Ana",
		CustomerPhone: "11999990000",
		Address: schedulingdom.Address{
			CEP:          "01000-000",
			Street:       "Rua A",
			Number:       "10",
			Neighborhood: "Centro",
			City:         "SP",
		},
		ProductID:    "p1",
		ProductName:  "Creme",
		Quantity:     quantity,
		Platform:     platform,
		Status:       schedulingdom.StatusToSchedule,
		ScheduledFor: fixedNow.Add(48 * time.Hour),
		CreatedAt:    fixedNow.Add(-time.Hour),
	}
}

func newConversionFixture(prices ...productdom.PriceCommission) (*memStore, *SchedulingConversionUsecase) {
	m := newMemStore()
	m.putProduct(testUID, productdom.Product{ID: "p1", Name: "Creme", Prices: prices})
	uc := NewSchedulingConversionUsecase(memProducts{m}, memSchedulings{m}, m).
		WithNow(func() time.Time { return fixedNow })
	return m, uc
}

func TestConvert_Scenario_AnaBecomesPaidSale(t *testing.T) {
	m, uc := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	s := anaScheduling("s1", common.PlatformHyppe, 1)
	m.putScheduling(testUID, s)

	got, err := uc.Convert(context.Background(), testActor(), s)
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Ana", got.CustomerName)
	assert.Equal(t, 100.0, got.TotalValue)
	assert.Equal(t, 10.0, got.Commission)
	assert.Equal(t, saledom.StatusPaid, got.Status)
	assert.Equal(t, fixedNow, got.CreatedAt)

	assert.False(t, m.hasScheduling(testUID, "s1"))
	sales := m.salesOf(testUID)
	require.Len(t, sales, 1)
	assert.Equal(t, got.ID, sales[0].ID)
}

func TestConvert_NeverCoexist(t *testing.T) {
	m, uc := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	s := anaScheduling("s1", common.PlatformHyppe, 1)
	m.putScheduling(testUID, s)

	_, err := uc.Convert(context.Background(), testActor(), s)
	require.NoError(t, err)
	assert.False(t, m.hasScheduling(testUID, "s1"))
	assert.Len(t, m.salesOf(testUID), 1)

	// 失敗時はどちらも変化しない
	m2, uc2 := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	s2 := anaScheduling("s2", common.PlatformLogzz, 1)
	m2.putScheduling(testUID, s2)

	_, err = uc2.Convert(context.Background(), testActor(), s2)
	require.Error(t, err)
	assert.True(t, m2.hasScheduling(testUID, "s2"))
	assert.Empty(t, m2.salesOf(testUID))
}

func TestConvert_PriceResolution(t *testing.T) {
	prices := []productdom.PriceCommission{
		{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10},
		{Platform: common.PlatformHyppe, Quantity: 2, Price: 180, Commission: 20},
	}

	cases := []struct {
		name       string
		quantity   int
		wantTotal  float64
		wantCommis float64
	}{
		{name: "exact match", quantity: 2, wantTotal: 180, wantCommis: 20},
		{name: "platform fallback takes first entry", quantity: 5, wantTotal: 100, wantCommis: 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, uc := newConversionFixture(prices...)
			s := anaScheduling("s1", common.PlatformHyppe, tc.quantity)
			m.putScheduling(testUID, s)

			got, err := uc.Convert(context.Background(), testActor(), s)
			require.NoError(t, err)
			assert.Equal(t, tc.wantTotal, got.TotalValue)
			assert.Equal(t, tc.wantCommis, got.Commission)
			assert.Equal(t, tc.quantity, got.Quantity)
		})
	}
}

func TestConvert_PriceNotFoundLeavesSchedulingIntact(t *testing.T) {
	m, uc := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	s := anaScheduling("s1", common.PlatformLogzz, 1)
	m.putScheduling(testUID, s)

	_, err := uc.Convert(context.Background(), testActor(), s)
	require.ErrorIs(t, err, ErrPriceNotFound)

	var pnf *productdom.PriceNotFoundError
	require.True(t, errors.As(err, &pnf))
	assert.Equal(t, common.PlatformLogzz, pnf.Platform)
	assert.Equal(t, 1, pnf.Quantity)
	assert.Equal(t, "price for platform Logzz and quantity 1 not found", err.Error())

	assert.True(t, m.hasScheduling(testUID, "s1"))
	assert.Empty(t, m.salesOf(testUID))
	assert.Zero(t, m.txRuns)
}

func TestConvert_AddressComposition(t *testing.T) {
	m, uc := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	s := anaScheduling("s1", common.PlatformHyppe, 1)
	s.Address.Complement = "apto 3"
	m.putScheduling(testUID, s)

	got, err := uc.Convert(context.Background(), testActor(), s)
	require.NoError(t, err)
	assert.Equal(t, "Rua A, 10, Centro, SP", got.Address)
}

func TestConvert_NotAuthenticated(t *testing.T) {
	m, uc := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	s := anaScheduling("s1", common.PlatformHyppe, 1)
	m.putScheduling(testUID, s)

	_, err := uc.Convert(context.Background(), nil, s)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = uc.Convert(context.Background(), &Actor{UID: "  "}, s)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.True(t, m.hasScheduling(testUID, "s1"))
	assert.Empty(t, m.salesOf(testUID))
	assert.Zero(t, m.txRuns)
}

func TestConvert_ProductNotFound(t *testing.T) {
	m, uc := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	s := anaScheduling("s1", common.PlatformHyppe, 1)
	s.ProductID = "gone"
	m.putScheduling(testUID, s)

	_, err := uc.Convert(context.Background(), testActor(), s)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.False(t, IsRetryable(err))
	assert.True(t, m.hasScheduling(testUID, "s1"))
}

func TestConvert_OtherTenantCannotSeeProduct(t *testing.T) {
	m, uc := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	s := anaScheduling("s1", common.PlatformHyppe, 1)
	m.putScheduling("u2", s)

	_, err := uc.Convert(context.Background(), &Actor{UID: "u2"}, s)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.True(t, m.hasScheduling("u2", "s1"))
}

func TestConvert_SecondConversionFails(t *testing.T) {
	m, uc := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	s := anaScheduling("s1", common.PlatformHyppe, 1)
	m.putScheduling(testUID, s)

	_, err := uc.Convert(context.Background(), testActor(), s)
	require.NoError(t, err)

	_, err = uc.Convert(context.Background(), testActor(), s)
	assert.ErrorIs(t, err, ErrSchedulingNotFound)
	assert.Len(t, m.salesOf(testUID), 1)
}

func TestConvert_ConcurrentConversionsCreateOneSale(t *testing.T) {
	m, uc := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	s := anaScheduling("s1", common.PlatformHyppe, 1)
	m.putScheduling(testUID, s)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Convert(context.Background(), testActor(), s)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrSchedulingNotFound)
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, m.salesOf(testUID), 1)
	assert.False(t, m.hasScheduling(testUID, "s1"))
}

func TestConvert_CommitFailureIsRetryable(t *testing.T) {
	m, uc := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	s := anaScheduling("s1", common.PlatformHyppe, 1)
	m.putScheduling(testUID, s)
	m.commitErr = errors.New("aborted")

	_, err := uc.Convert(context.Background(), testActor(), s)
	require.ErrorIs(t, err, ErrTransactionFailure)
	assert.True(t, IsRetryable(err))
	assert.True(t, m.hasScheduling(testUID, "s1"))
	assert.Empty(t, m.salesOf(testUID))

	// 再試行すれば成功する
	m.commitErr = nil
	_, err = uc.Convert(context.Background(), testActor(), s)
	require.NoError(t, err)
	assert.Len(t, m.salesOf(testUID), 1)
}

func TestConvert_TimeoutReportsUnknownOutcome(t *testing.T) {
	m, uc := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	uc.WithTimeout(20 * time.Millisecond)
	s := anaScheduling("s1", common.PlatformHyppe, 1)
	m.putScheduling(testUID, s)
	m.commitHang = true

	_, err := uc.Convert(context.Background(), testActor(), s)
	require.ErrorIs(t, err, ErrTransactionFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "outcome unknown")
}

func TestConvert_EitherStatusIsAccepted(t *testing.T) {
	m, uc := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	s := anaScheduling("s1", common.PlatformHyppe, 1)
	s.Status = schedulingdom.StatusScheduled
	m.putScheduling(testUID, s)

	_, err := uc.Convert(context.Background(), testActor(), s)
	require.NoError(t, err)
}

func TestConvertByID(t *testing.T) {
	m, uc := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	m.putScheduling(testUID, anaScheduling("s1", common.PlatformHyppe, 1))

	got, err := uc.ConvertByID(context.Background(), testActor(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Creme", got.ProductName)

	_, err = uc.ConvertByID(context.Background(), testActor(), "s1")
	assert.ErrorIs(t, err, ErrSchedulingNotFound)

	_, err = uc.ConvertByID(context.Background(), testActor(), " ")
	assert.ErrorIs(t, err, schedulingdom.ErrInvalidID)
}

func TestConvert_ImpersonatedActorWritesIntoTargetNamespace(t *testing.T) {
	m, uc := newConversionFixture(productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10})
	m.putScheduling(testUID, anaScheduling("s1", common.PlatformHyppe, 1))

	admin := &Actor{UID: "root", Role: "admin"}
	as, err := admin.Impersonate(testUID)
	require.NoError(t, err)

	_, err = uc.ConvertByID(context.Background(), as, "s1")
	require.NoError(t, err)
	assert.Len(t, m.salesOf(testUID), 1)
	assert.Empty(t, m.salesOf("root"))
}

func TestConvert_StaleSchedulingIsRejected(t *testing.T) {
	m, uc := newConversionFixture(
		productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10},
		productdom.PriceCommission{Platform: common.PlatformHyppe, Quantity: 3, Price: 250, Commission: 30},
	)
	stale := anaScheduling("s1", common.PlatformHyppe, 1)
	edited := stale
	edited.Quantity = 3
	edited.Address.Street = "Rua Nova"
	m.putScheduling(testUID, edited)

	_, err := uc.Convert(context.Background(), testActor(), stale)
	require.ErrorIs(t, err, ErrSchedulingChanged)
	assert.False(t, IsRetryable(err))
	assert.True(t, m.hasScheduling(testUID, "s1"))
	assert.Empty(t, m.salesOf(testUID))
}

// staleOnceReader returns an outdated copy on the first read only.
type staleOnceReader struct {
	inner ConversionSchedulingReader
	stale schedulingdom.Scheduling
	calls int
}

func (r *staleOnceReader) GetByID(ctx context.Context, uid, id string) (schedulingdom.Scheduling, error) {
	r.calls++
	if r.calls == 1 {
		return r.stale, nil
	}
	return r.inner.GetByID(ctx, uid, id)
}

func TestConvertByID_RereadsAfterConcurrentEdit(t *testing.T) {
	m := newMemStore()
	m.putProduct(testUID, productdom.Product{ID: "p1", Name: "Creme", Prices: []productdom.PriceCommission{
		{Platform: common.PlatformHyppe, Quantity: 1, Price: 100, Commission: 10},
		{Platform: common.PlatformHyppe, Quantity: 3, Price: 250, Commission: 30},
	}})
	stale := anaScheduling("s1", common.PlatformHyppe, 1)
	edited := stale
	edited.Quantity = 3
	m.putScheduling(testUID, edited)

	reader := &staleOnceReader{inner: memSchedulings{m}, stale: stale}
	uc := NewSchedulingConversionUsecase(memProducts{m}, reader, m).
		WithNow(func() time.Time { return fixedNow })

	got, err := uc.ConvertByID(context.Background(), testActor(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, reader.calls)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, 250.0, got.TotalValue)
	assert.Equal(t, 30.0, got.Commission)
	assert.False(t, m.hasScheduling(testUID, "s1"))
	assert.Len(t, m.salesOf(testUID), 1)
}

package sale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "flowify/internal/domain/common"
)

func TestNew_ForcesPaidStatus(t *testing.T) {
	s, err := New("", "Ana", "11", "Rua A, 10, Centro, SP", "p1", "Creme", common.PlatformHyppe, 1, 100, 10, time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, s.Status)
	assert.Equal(t, Status("Pago"), s.Status)
}

func TestNew_Validation(t *testing.T) {
	now := time.Now()

	_, err := New("", "", "11", "", "p1", "", common.PlatformHyppe, 1, 100, 10, now)
	assert.ErrorIs(t, err, ErrInvalidCustomerName)

	_, err = New("", "Ana", "11", "", "p1", "", "Other", 1, 100, 10, now)
	assert.ErrorIs(t, err, ErrInvalidPlatform)

	_, err = New("", "Ana", "11", "", "p1", "", common.PlatformLogzz, 0, 100, 10, now)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = New("", "Ana", "11", "", "p1", "", common.PlatformLogzz, 1, -5, 10, now)
	assert.ErrorIs(t, err, ErrInvalidTotalValue)
}

func TestFilter_Matches(t *testing.T) {
	s := Sale{Platform: common.PlatformLogzz, ProductID: "p1", CreatedAt: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)}

	assert.True(t, Filter{}.Matches(s))
	assert.True(t, Filter{Platform: common.PlatformLogzz, ProductID: "p1"}.Matches(s))
	assert.False(t, Filter{ProductID: "p2"}.Matches(s))
	assert.False(t, Filter{Created: common.MonthRange(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))}.Matches(s))
}

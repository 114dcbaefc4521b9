package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithinLimit(t *testing.T) {
	assert.True(t, WithinLimit(Unlimited, 10_000))
	assert.True(t, WithinLimit(5, 4))
	assert.False(t, WithinLimit(5, 5))
	assert.False(t, WithinLimit(0, 0))
}

func TestDefaultPlans(t *testing.T) {
	plans := DefaultPlans()
	ids := make([]string, 0, len(plans))
	for _, p := range plans {
		assert.NoError(t, p.Validate())
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"iniciante", "intermediario", "bigode"}, ids)

	starter := plans[0]
	assert.True(t, starter.CanAddProduct(4))
	assert.False(t, starter.CanAddProduct(5))
	assert.False(t, starter.CanSendWhatsapp())
	assert.True(t, plans[1].CanSendWhatsapp())
	assert.True(t, plans[2].CanAddScheduling(1_000))
	assert.True(t, starter.CanAddPreScheduling(19))
	assert.False(t, starter.CanAddPreScheduling(20))
	assert.True(t, plans[1].CanAddPreScheduling(500))
}

func TestValidate_RejectsNoneID(t *testing.T) {
	assert.ErrorIs(t, Plan{ID: NoneID, Name: "x"}.Validate(), ErrInvalidID)
}

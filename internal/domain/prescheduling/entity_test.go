package prescheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "flowify/internal/domain/common"
)

var expected = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sample() PreScheduling {
	return PreScheduling{
		CustomerName:     " Carla ",
		CustomerWhatsapp: "(11) 98888-7777",
		Address: Address{
			CEP:          "01001-000",
			Street:       " Rua A",
			Number:       "10",
			Neighborhood: "Centro",
			City:         "São Paulo",
		},
		ProductID:    "p1",
		Quantity:     1,
		Platform:     common.PlatformLogzz,
		ExpectedDate: expected,
	}
}

func TestNew_DefaultsToPending(t *testing.T) {
	p, err := New(sample())
	require.NoError(t, err)
	assert.Equal(t, "Carla", p.CustomerName)
	assert.Equal(t, "Rua A", p.Address.Street)
	assert.Equal(t, StatusPending, p.Status)

	p.Confirm()
	assert.Equal(t, StatusConfirmed, p.Status)
}

func TestNew_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *PreScheduling)
		want   error
	}{
		{"blank name", func(p *PreScheduling) { p.CustomerName = "  " }, ErrInvalidCustomerName},
		{"short whatsapp", func(p *PreScheduling) { p.CustomerWhatsapp = "98888-777" }, ErrInvalidWhatsapp},
		{"short cep", func(p *PreScheduling) { p.Address.CEP = "0100-100" }, ErrInvalidCEP},
		{"blank street", func(p *PreScheduling) { p.Address.Street = " " }, ErrInvalidAddress},
		{"no product", func(p *PreScheduling) { p.ProductID = "" }, ErrInvalidProductID},
		{"zero quantity", func(p *PreScheduling) { p.Quantity = 0 }, ErrInvalidQuantity},
		{"unknown platform", func(p *PreScheduling) { p.Platform = "Shopee" }, ErrInvalidPlatform},
		{"no expected date", func(p *PreScheduling) { p.ExpectedDate = time.Time{} }, ErrInvalidExpectedDate},
		{"unknown status", func(p *PreScheduling) { p.Status = "Agendado" }, ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := sample()
			tc.mutate(&p)
			_, err := New(p)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestApply_TrimsAndKeepsOthers(t *testing.T) {
	p, err := New(sample())
	require.NoError(t, err)

	name := "  Carla Souza "
	st := StatusConfirmed
	got := p.Apply(UpdatePreSchedulingInput{CustomerName: &name, Status: &st})
	assert.Equal(t, "Carla Souza", got.CustomerName)
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Equal(t, p.Address, got.Address)
	assert.NoError(t, got.Validate())
}

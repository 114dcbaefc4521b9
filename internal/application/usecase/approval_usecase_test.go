package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userdom "flowify/internal/domain/user"
)

type recordingMailer struct {
	to, plan string
	err      error
}

func (r *recordingMailer) SendApprovalEmail(_ context.Context, toEmail, planID string) error {
	r.to, r.plan = toEmail, planID
	return r.err
}

func TestApprove_MapsProductToPlan(t *testing.T) {
	cases := map[string]string{
		"Plano Chefe Anual": "intermediario",
		"BIGODE":            "bigode",
		"Plano Iniciante":   "iniciante",
		"Outro":             "iniciante",
	}
	for product, want := range cases {
		t.Run(product, func(t *testing.T) {
			m := newMemStore()
			mailer := &recordingMailer{}
			uc := NewApprovalUsecase(memApproved{m}, mailer)

			a, err := uc.Approve(context.Background(), PurchaseEvent{BuyerEmail: " Ana@Example.COM ", ProductName: product})
			require.NoError(t, err)
			assert.Equal(t, want, a.PlanID)
			assert.Equal(t, "ana@example.com", a.Email)
			assert.Equal(t, "ana@example.com", mailer.to)

			found, ok, err := memApproved{m}.FindByEmail(context.Background(), "ana@example.com")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, want, found.PlanID)
		})
	}
}

func TestApprove_MissingFields(t *testing.T) {
	uc := NewApprovalUsecase(memApproved{newMemStore()}, nil)

	_, err := uc.Approve(context.Background(), PurchaseEvent{ProductName: "x"})
	assert.ErrorIs(t, err, ErrMissingPurchaseFields)

	_, err = uc.Approve(context.Background(), PurchaseEvent{BuyerEmail: "a@b.c"})
	assert.ErrorIs(t, err, ErrMissingPurchaseFields)
}

func TestApprove_MailFailureKeepsApproval(t *testing.T) {
	m := newMemStore()
	uc := NewApprovalUsecase(memApproved{m}, &recordingMailer{err: errors.New("sendgrid down")})

	_, err := uc.Approve(context.Background(), PurchaseEvent{BuyerEmail: "a@b.c", ProductName: "Bigode"})
	require.NoError(t, err)
	assert.Len(t, m.approved, 1)
}

func TestAccessSweep(t *testing.T) {
	m := newMemStore()
	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)
	m.users["expired"] = userdom.User{UID: "expired", Active: true, PlanID: "p", AccessExpiresAt: &past}
	m.users["valid"] = userdom.User{UID: "valid", Active: true, PlanID: "p", AccessExpiresAt: &future}
	m.users["forever"] = userdom.User{UID: "forever", Active: true, PlanID: "p"}

	res, err := NewAccessSweepUsecase(memUsers{m}).
		WithNow(func() time.Time { return fixedNow }).
		Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"expired"}, res.Deactivated)
	assert.Empty(t, res.Failed)

	assert.False(t, m.users["expired"].Active)
	assert.True(t, m.users["valid"].Active)
	assert.True(t, m.users["forever"].Active)
}

func TestPlanSeedDefaults(t *testing.T) {
	m := newMemStore()
	uc := NewPlanUsecase(memPlans{m})

	ids, err := uc.SeedDefaults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"iniciante", "intermediario", "bigode"}, ids)

	// 再実行しても件数は増えない
	_, err = uc.SeedDefaults(context.Background())
	require.NoError(t, err)
	assert.Len(t, m.plans, 3)

	p := m.plans["bigode"]
	p.Active = false
	m.plans["bigode"] = p
	active, err := uc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 2)
	for _, a := range active {
		assert.NotEqual(t, "bigode", a.ID)
	}
}

func TestActorImpersonate(t *testing.T) {
	admin := &Actor{UID: "root", Role: userdom.RoleAdmin}
	as, err := admin.Impersonate(" u9 ")
	require.NoError(t, err)
	assert.Equal(t, "u9", as.UID)
	assert.True(t, as.IsImpersonated())
	assert.Equal(t, "root", as.ImpersonatorUID)
	assert.False(t, as.IsAdmin())

	_, err = (&Actor{UID: "u1", Role: userdom.RoleUser}).Impersonate("u9")
	assert.ErrorIs(t, err, ErrForbidden)

	var none *Actor
	_, err = none.Impersonate("u9")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

package handlers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	usecase "flowify/internal/application/usecase"
	approvedEmaildom "flowify/internal/domain/approvedEmail"
	plandom "flowify/internal/domain/plan"
	predom "flowify/internal/domain/prescheduling"
	productdom "flowify/internal/domain/product"
	saledom "flowify/internal/domain/sale"
	schedulingdom "flowify/internal/domain/scheduling"
	userdom "flowify/internal/domain/user"
)

// backend はハンドラテスト用のテナント別インメモリストア。
type backend struct {
	mu          sync.Mutex
	seq         int
	products    map[string]map[string]productdom.Product
	schedulings map[string]map[string]schedulingdom.Scheduling
	sales       map[string]map[string]saledom.Sale
	pre         map[string]map[string]predom.PreScheduling
	users       map[string]userdom.User
	approved    []approvedEmaildom.ApprovedEmail
}

func newBackend() *backend {
	return &backend{
		products:    map[string]map[string]productdom.Product{},
		schedulings: map[string]map[string]schedulingdom.Scheduling{},
		sales:       map[string]map[string]saledom.Sale{},
		pre:         map[string]map[string]predom.PreScheduling{},
		users:       map[string]userdom.User{},
	}
}

func (b *backend) id(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s%d", prefix, b.seq)
}

func bucket[T any](m map[string]map[string]T, uid string) map[string]T {
	if m[uid] == nil {
		m[uid] = map[string]T{}
	}
	return m[uid]
}

// ---- products ----

type fakeProducts struct{ b *backend }

func (r fakeProducts) GetByID(_ context.Context, uid, id string) (productdom.Product, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	p, ok := bucket(r.b.products, uid)[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (r fakeProducts) List(_ context.Context, uid string) ([]productdom.Product, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	out := []productdom.Product{}
	for _, p := range bucket(r.b.products, uid) {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeProducts) Count(ctx context.Context, uid string) (int, error) {
	xs, _ := r.List(ctx, uid)
	return len(xs), nil
}

func (r fakeProducts) Create(_ context.Context, uid string, p productdom.Product) (productdom.Product, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if p.ID == "" {
		p.ID = r.b.id("p")
	}
	bucket(r.b.products, uid)[p.ID] = p
	return p, nil
}

func (r fakeProducts) Update(_ context.Context, uid, id string, in productdom.UpdateProductInput) (productdom.Product, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	p, ok := bucket(r.b.products, uid)[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Prices != nil {
		p.Prices = *in.Prices
	}
	bucket(r.b.products, uid)[id] = p
	return p, nil
}

func (r fakeProducts) Delete(_ context.Context, uid, id string) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if _, ok := bucket(r.b.products, uid)[id]; !ok {
		return productdom.ErrNotFound
	}
	delete(r.b.products[uid], id)
	return nil
}

// ---- schedulings ----

type fakeSchedulings struct{ b *backend }

func (r fakeSchedulings) GetByID(_ context.Context, uid, id string) (schedulingdom.Scheduling, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	s, ok := bucket(r.b.schedulings, uid)[id]
	if !ok {
		return schedulingdom.Scheduling{}, schedulingdom.ErrNotFound
	}
	return s, nil
}

func (r fakeSchedulings) List(_ context.Context, uid string, f schedulingdom.Filter) ([]schedulingdom.Scheduling, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	out := []schedulingdom.Scheduling{}
	for _, s := range bucket(r.b.schedulings, uid) {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeSchedulings) Count(ctx context.Context, uid string, f schedulingdom.Filter) (int, error) {
	xs, _ := r.List(ctx, uid, f)
	return len(xs), nil
}

func (r fakeSchedulings) Create(_ context.Context, uid string, s schedulingdom.Scheduling) (schedulingdom.Scheduling, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if s.ID == "" {
		s.ID = r.b.id("s")
	}
	bucket(r.b.schedulings, uid)[s.ID] = s
	return s, nil
}

func (r fakeSchedulings) Update(_ context.Context, uid, id string, in schedulingdom.UpdateSchedulingInput) (schedulingdom.Scheduling, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	s, ok := bucket(r.b.schedulings, uid)[id]
	if !ok {
		return schedulingdom.Scheduling{}, schedulingdom.ErrNotFound
	}
	if in.Status != nil {
		s.Status = *in.Status
	}
	if in.Address != nil {
		s.Address = *in.Address
	}
	if in.Quantity != nil {
		s.Quantity = *in.Quantity
	}
	bucket(r.b.schedulings, uid)[id] = s
	return s, nil
}

func (r fakeSchedulings) Delete(_ context.Context, uid, id string) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if _, ok := bucket(r.b.schedulings, uid)[id]; !ok {
		return schedulingdom.ErrNotFound
	}
	delete(r.b.schedulings[uid], id)
	return nil
}

// ---- sales ----

type fakeSales struct{ b *backend }

func (r fakeSales) GetByID(_ context.Context, uid, id string) (saledom.Sale, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	s, ok := bucket(r.b.sales, uid)[id]
	if !ok {
		return saledom.Sale{}, saledom.ErrNotFound
	}
	return s, nil
}

func (r fakeSales) List(_ context.Context, uid string, f saledom.Filter) ([]saledom.Sale, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	out := []saledom.Sale{}
	for _, s := range bucket(r.b.sales, uid) {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r fakeSales) Create(_ context.Context, uid string, s saledom.Sale) (saledom.Sale, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	s.ID = r.b.id("v")
	bucket(r.b.sales, uid)[s.ID] = s
	return s, nil
}

func (r fakeSales) Update(_ context.Context, uid, id string, in saledom.UpdateSaleInput) (saledom.Sale, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	s, ok := bucket(r.b.sales, uid)[id]
	if !ok {
		return saledom.Sale{}, saledom.ErrNotFound
	}
	s = s.Apply(in)
	r.b.sales[uid][s.ID] = s
	return s, nil
}

func (r fakeSales) Delete(_ context.Context, uid, id string) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if _, ok := bucket(r.b.sales, uid)[id]; !ok {
		return saledom.ErrNotFound
	}
	delete(r.b.sales[uid], id)
	return nil
}

func (r fakeSales) TotalsByTenant(_ context.Context) (map[string]saledom.TenantTotals, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	out := map[string]saledom.TenantTotals{}
	for owner, sales := range r.b.sales {
		t := saledom.TenantTotals{UID: owner}
		for _, s := range sales {
			t.Add(s)
		}
		out[owner] = t
	}
	return out, nil
}

// ---- pre-schedulings ----

type fakePreSchedulings struct{ b *backend }

func (r fakePreSchedulings) GetByID(_ context.Context, uid, id string) (predom.PreScheduling, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	p, ok := bucket(r.b.pre, uid)[id]
	if !ok {
		return predom.PreScheduling{}, predom.ErrNotFound
	}
	return p, nil
}

func (r fakePreSchedulings) List(_ context.Context, uid string, f predom.Filter) ([]predom.PreScheduling, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	out := []predom.PreScheduling{}
	for _, p := range bucket(r.b.pre, uid) {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakePreSchedulings) Count(ctx context.Context, uid string, f predom.Filter) (int, error) {
	xs, _ := r.List(ctx, uid, f)
	return len(xs), nil
}

func (r fakePreSchedulings) Create(_ context.Context, uid string, p predom.PreScheduling) (predom.PreScheduling, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	p.ID = r.b.id("pre")
	bucket(r.b.pre, uid)[p.ID] = p
	return p, nil
}

func (r fakePreSchedulings) Update(_ context.Context, uid, id string, in predom.UpdatePreSchedulingInput) (predom.PreScheduling, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	p, ok := bucket(r.b.pre, uid)[id]
	if !ok {
		return predom.PreScheduling{}, predom.ErrNotFound
	}
	p = p.Apply(in)
	r.b.pre[uid][id] = p
	return p, nil
}

func (r fakePreSchedulings) Delete(_ context.Context, uid, id string) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if _, ok := bucket(r.b.pre, uid)[id]; !ok {
		return predom.ErrNotFound
	}
	delete(r.b.pre[uid], id)
	return nil
}

// ---- users / plans / approved e-mails ----

type fakeUsers struct{ b *backend }

func (r fakeUsers) GetByID(_ context.Context, uid string) (userdom.User, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	u, ok := r.b.users[uid]
	if !ok {
		return userdom.User{}, userdom.ErrNotFound
	}
	return u, nil
}

func (r fakeUsers) List(_ context.Context) ([]userdom.User, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	out := []userdom.User{}
	for _, u := range r.b.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (r fakeUsers) Create(_ context.Context, u userdom.User) (userdom.User, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if _, ok := r.b.users[u.UID]; ok {
		return userdom.User{}, userdom.ErrAlreadyExists
	}
	r.b.users[u.UID] = u
	return u, nil
}

func (r fakeUsers) Update(_ context.Context, uid string, in userdom.UpdateUserInput) (userdom.User, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	u, ok := r.b.users[uid]
	if !ok {
		return userdom.User{}, userdom.ErrNotFound
	}
	u = u.Apply(in)
	r.b.users[uid] = u
	return u, nil
}

type fakePlans struct{}

func (fakePlans) GetByID(_ context.Context, id string) (plandom.Plan, error) {
	for _, p := range plandom.DefaultPlans() {
		if p.ID == id {
			return p, nil
		}
	}
	return plandom.Plan{}, plandom.ErrNotFound
}

type fakeApproved struct{ b *backend }

func (r fakeApproved) FindByEmail(_ context.Context, email string) (approvedEmaildom.ApprovedEmail, bool, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	for _, a := range r.b.approved {
		if a.Email == email {
			return a, true, nil
		}
	}
	return approvedEmaildom.ApprovedEmail{}, false, nil
}

// ---- conversion ----

// fakeConversion は直列化のみ行う（ロールバックはテストしない）。
type fakeConversion struct {
	b   *backend
	err error
}

type fakeTx struct {
	b   *backend
	uid string
}

func (tx fakeTx) GetScheduling(_ context.Context, id string) (schedulingdom.Scheduling, error) {
	s, ok := bucket(tx.b.schedulings, tx.uid)[id]
	if !ok {
		return schedulingdom.Scheduling{}, schedulingdom.ErrNotFound
	}
	return s, nil
}

func (tx fakeTx) CreateSale(_ context.Context, s saledom.Sale) (saledom.Sale, error) {
	s.ID = tx.b.id("v")
	bucket(tx.b.sales, tx.uid)[s.ID] = s
	return s, nil
}

func (tx fakeTx) DeleteScheduling(_ context.Context, id string) error {
	delete(bucket(tx.b.schedulings, tx.uid), id)
	return nil
}

func (c fakeConversion) RunConversion(ctx context.Context, uid string, fn func(ctx context.Context, tx usecase.ConversionTx) error) error {
	if c.err != nil {
		return c.err
	}
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	return fn(ctx, fakeTx{b: c.b, uid: uid})
}

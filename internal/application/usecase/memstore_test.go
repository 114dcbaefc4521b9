package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	approvedEmaildom "flowify/internal/domain/approvedEmail"
	plandom "flowify/internal/domain/plan"
	preschedulingdom "flowify/internal/domain/prescheduling"
	productdom "flowify/internal/domain/product"
	saledom "flowify/internal/domain/sale"
	schedulingdom "flowify/internal/domain/scheduling"
	userdom "flowify/internal/domain/user"
)

// memStore is an in-memory stand-in for Firestore. Transactions hold the
// lock for their whole duration and buffer writes until commit.
type memStore struct {
	mu sync.Mutex
	id int

	products    map[string]map[string]productdom.Product
	schedulings map[string]map[string]schedulingdom.Scheduling
	sales       map[string]map[string]saledom.Sale
	pre         map[string]map[string]preschedulingdom.PreScheduling
	users       map[string]userdom.User
	plans       map[string]plandom.Plan
	approved    []approvedEmaildom.ApprovedEmail

	// commitErr makes the next commits fail without applying writes.
	commitErr error
	// commitHang blocks commits until the context is done.
	commitHang bool
	txRuns     int
}

func newMemStore() *memStore {
	return &memStore{
		products:    map[string]map[string]productdom.Product{},
		schedulings: map[string]map[string]schedulingdom.Scheduling{},
		sales:       map[string]map[string]saledom.Sale{},
		pre:         map[string]map[string]preschedulingdom.PreScheduling{},
		users:       map[string]userdom.User{},
		plans:       map[string]plandom.Plan{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.id++
	return fmt.Sprintf("%s%d", prefix, m.id)
}

func (m *memStore) putProduct(uid string, p productdom.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.products[uid] == nil {
		m.products[uid] = map[string]productdom.Product{}
	}
	m.products[uid][p.ID] = p
}

func (m *memStore) putScheduling(uid string, s schedulingdom.Scheduling) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.schedulings[uid] == nil {
		m.schedulings[uid] = map[string]schedulingdom.Scheduling{}
	}
	m.schedulings[uid][s.ID] = s
}

func (m *memStore) salesOf(uid string) []saledom.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]saledom.Sale, 0, len(m.sales[uid]))
	for _, s := range m.sales[uid] {
		out = append(out, s)
	}
	return out
}

func (m *memStore) hasScheduling(uid, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.schedulings[uid][id]
	return ok
}

// ------------------------------------------------------------
// conversion transaction
// ------------------------------------------------------------

type memTx struct {
	m          *memStore
	uid        string
	newSales   []saledom.Sale
	deletedIDs []string
}

func (tx *memTx) GetScheduling(_ context.Context, id string) (schedulingdom.Scheduling, error) {
	s, ok := tx.m.schedulings[tx.uid][id]
	if !ok {
		return schedulingdom.Scheduling{}, schedulingdom.ErrNotFound
	}
	return s, nil
}

func (tx *memTx) CreateSale(_ context.Context, s saledom.Sale) (saledom.Sale, error) {
	s.ID = tx.m.nextID("sale-")
	tx.newSales = append(tx.newSales, s)
	return s, nil
}

func (tx *memTx) DeleteScheduling(_ context.Context, id string) error {
	tx.deletedIDs = append(tx.deletedIDs, id)
	return nil
}

func (m *memStore) RunConversion(ctx context.Context, uid string, fn func(ctx context.Context, tx ConversionTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txRuns++

	tx := &memTx{m: m, uid: uid}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	if m.commitHang {
		<-ctx.Done()
		return ctx.Err()
	}
	if m.commitErr != nil {
		return m.commitErr
	}

	if m.sales[uid] == nil {
		m.sales[uid] = map[string]saledom.Sale{}
	}
	for _, s := range tx.newSales {
		m.sales[uid][s.ID] = s
	}
	for _, id := range tx.deletedIDs {
		delete(m.schedulings[uid], id)
	}
	return nil
}

// ------------------------------------------------------------
// repositories
// ------------------------------------------------------------

type memProducts struct{ m *memStore }

func (r memProducts) GetByID(_ context.Context, uid, id string) (productdom.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[uid][id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (r memProducts) List(_ context.Context, uid string) ([]productdom.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]productdom.Product, 0)
	for _, p := range r.m.products[uid] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memProducts) Count(ctx context.Context, uid string) (int, error) {
	xs, err := r.List(ctx, uid)
	return len(xs), err
}

func (r memProducts) Create(_ context.Context, uid string, p productdom.Product) (productdom.Product, error) {
	r.m.mu.Lock()
	p.ID = r.m.nextID("prod-")
	r.m.mu.Unlock()
	r.m.putProduct(uid, p)
	return p, nil
}

func (r memProducts) Update(ctx context.Context, uid, id string, in productdom.UpdateProductInput) (productdom.Product, error) {
	p, err := r.GetByID(ctx, uid, id)
	if err != nil {
		return productdom.Product{}, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Prices != nil {
		p.Prices = *in.Prices
	}
	if in.CoveredCities != nil {
		p.CoveredCities = *in.CoveredCities
	}
	r.m.putProduct(uid, p)
	return p, nil
}

func (r memProducts) Delete(_ context.Context, uid, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.products[uid][id]; !ok {
		return productdom.ErrNotFound
	}
	delete(r.m.products[uid], id)
	return nil
}

type memSchedulings struct{ m *memStore }

func (r memSchedulings) GetByID(_ context.Context, uid, id string) (schedulingdom.Scheduling, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.schedulings[uid][id]
	if !ok {
		return schedulingdom.Scheduling{}, schedulingdom.ErrNotFound
	}
	return s, nil
}

func (r memSchedulings) List(_ context.Context, uid string, f schedulingdom.Filter) ([]schedulingdom.Scheduling, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]schedulingdom.Scheduling, 0)
	for _, s := range r.m.schedulings[uid] {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memSchedulings) Count(ctx context.Context, uid string, f schedulingdom.Filter) (int, error) {
	xs, err := r.List(ctx, uid, f)
	return len(xs), err
}

func (r memSchedulings) Create(_ context.Context, uid string, s schedulingdom.Scheduling) (schedulingdom.Scheduling, error) {
	r.m.mu.Lock()
	s.ID = r.m.nextID("sch-")
	r.m.mu.Unlock()
	r.m.putScheduling(uid, s)
	return s, nil
}

func (r memSchedulings) Update(ctx context.Context, uid, id string, in schedulingdom.UpdateSchedulingInput) (schedulingdom.Scheduling, error) {
	s, err := r.GetByID(ctx, uid, id)
	if err != nil {
		return schedulingdom.Scheduling{}, err
	}
	s = applySchedulingPatch(s, in)
	r.m.putScheduling(uid, s)
	return s, nil
}

func (r memSchedulings) Delete(_ context.Context, uid, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.schedulings[uid][id]; !ok {
		return schedulingdom.ErrNotFound
	}
	delete(r.m.schedulings[uid], id)
	return nil
}

type memPreSchedulings struct{ m *memStore }

func (r memPreSchedulings) GetByID(_ context.Context, uid, id string) (preschedulingdom.PreScheduling, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.pre[uid][id]
	if !ok {
		return preschedulingdom.PreScheduling{}, preschedulingdom.ErrNotFound
	}
	return p, nil
}

func (r memPreSchedulings) List(_ context.Context, uid string, f preschedulingdom.Filter) ([]preschedulingdom.PreScheduling, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]preschedulingdom.PreScheduling, 0)
	for _, p := range r.m.pre[uid] {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPreSchedulings) Count(ctx context.Context, uid string, f preschedulingdom.Filter) (int, error) {
	xs, err := r.List(ctx, uid, f)
	return len(xs), err
}

func (r memPreSchedulings) Create(_ context.Context, uid string, p preschedulingdom.PreScheduling) (preschedulingdom.PreScheduling, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p.ID = r.m.nextID("pre-")
	if r.m.pre[uid] == nil {
		r.m.pre[uid] = map[string]preschedulingdom.PreScheduling{}
	}
	r.m.pre[uid][p.ID] = p
	return p, nil
}

func (r memPreSchedulings) Update(_ context.Context, uid, id string, in preschedulingdom.UpdatePreSchedulingInput) (preschedulingdom.PreScheduling, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.pre[uid][id]
	if !ok {
		return preschedulingdom.PreScheduling{}, preschedulingdom.ErrNotFound
	}
	p = p.Apply(in)
	r.m.pre[uid][id] = p
	return p, nil
}

func (r memPreSchedulings) Delete(_ context.Context, uid, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.pre[uid][id]; !ok {
		return preschedulingdom.ErrNotFound
	}
	delete(r.m.pre[uid], id)
	return nil
}

type memSales struct{ m *memStore }

func (r memSales) GetByID(_ context.Context, uid, id string) (saledom.Sale, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sales[uid][id]
	if !ok {
		return saledom.Sale{}, saledom.ErrNotFound
	}
	return s, nil
}

func (r memSales) List(_ context.Context, uid string, f saledom.Filter) ([]saledom.Sale, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]saledom.Sale, 0)
	for _, s := range r.m.sales[uid] {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memSales) Create(_ context.Context, uid string, s saledom.Sale) (saledom.Sale, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s.ID = r.m.nextID("sale-")
	if r.m.sales[uid] == nil {
		r.m.sales[uid] = map[string]saledom.Sale{}
	}
	r.m.sales[uid][s.ID] = s
	return s, nil
}

func (r memSales) Update(_ context.Context, uid, id string, in saledom.UpdateSaleInput) (saledom.Sale, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sales[uid][id]
	if !ok {
		return saledom.Sale{}, saledom.ErrNotFound
	}
	s = s.Apply(in)
	r.m.sales[uid][id] = s
	return s, nil
}

func (r memSales) TotalsByTenant(_ context.Context) (map[string]saledom.TenantTotals, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := map[string]saledom.TenantTotals{}
	for uid, sales := range r.m.sales {
		for _, s := range sales {
			t := out[uid]
			t.UID = uid
			t.Add(s)
			out[uid] = t
		}
	}
	return out, nil
}

func (r memSales) Delete(_ context.Context, uid, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.sales[uid][id]; !ok {
		return saledom.ErrNotFound
	}
	delete(r.m.sales[uid], id)
	return nil
}

type memUsers struct{ m *memStore }

func (r memUsers) GetByID(_ context.Context, uid string) (userdom.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[uid]
	if !ok {
		return userdom.User{}, userdom.ErrNotFound
	}
	return u, nil
}

func (r memUsers) List(_ context.Context) ([]userdom.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]userdom.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (r memUsers) Create(_ context.Context, u userdom.User) (userdom.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[u.UID]; ok {
		return userdom.User{}, userdom.ErrAlreadyExists
	}
	r.m.users[u.UID] = u
	return u, nil
}

func (r memUsers) Update(_ context.Context, uid string, in userdom.UpdateUserInput) (userdom.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[uid]
	if !ok {
		return userdom.User{}, userdom.ErrNotFound
	}
	u = u.Apply(in)
	r.m.users[uid] = u
	return u, nil
}

func (r memUsers) ListExpired(_ context.Context, now time.Time) ([]userdom.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []userdom.User
	for _, u := range r.m.users {
		if u.Active && u.AccessExpired(now) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (r memUsers) SetActive(_ context.Context, uid string, active bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[uid]
	if !ok {
		return userdom.ErrNotFound
	}
	u.Active = active
	r.m.users[uid] = u
	return nil
}

type memPlans struct{ m *memStore }

func (r memPlans) GetByID(_ context.Context, id string) (plandom.Plan, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.plans[id]
	if !ok {
		return plandom.Plan{}, plandom.ErrNotFound
	}
	return p, nil
}

func (r memPlans) List(_ context.Context) ([]plandom.Plan, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]plandom.Plan, 0, len(r.m.plans))
	for _, p := range r.m.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPlans) Upsert(_ context.Context, p plandom.Plan) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.plans[p.ID] = p
	return nil
}

type memApproved struct{ m *memStore }

func (r memApproved) Create(_ context.Context, a approvedEmaildom.ApprovedEmail) (approvedEmaildom.ApprovedEmail, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a.ID = r.m.nextID("appr-")
	r.m.approved = append(r.m.approved, a)
	return a, nil
}

func (r memApproved) FindByEmail(_ context.Context, email string) (approvedEmaildom.ApprovedEmail, bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.approved {
		if a.Email == email {
			return a, true, nil
		}
	}
	return approvedEmaildom.ApprovedEmail{}, false, nil
}

// internal/adapters/out/firestore/sale_repository_fs.go
package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	fscommon "flowify/internal/adapters/out/firestore/common"
	common "flowify/internal/domain/common"
	saledom "flowify/internal/domain/sale"
)

// ============================================================
// Firestore-based Sale Repository (users/{uid}/sales)
// ============================================================

type SaleRepositoryFS struct {
	Client *firestore.Client
}

func NewSaleRepositoryFS(client *firestore.Client) *SaleRepositoryFS {
	return &SaleRepositoryFS{Client: client}
}

func (r *SaleRepositoryFS) col(uid string) *firestore.CollectionRef {
	return tenantCol(r.Client, uid, colSales)
}

// GetByID returns a Sale by document ID.
func (r *SaleRepositoryFS) GetByID(ctx context.Context, uid, id string) (saledom.Sale, error) {
	if r.Client == nil {
		return saledom.Sale{}, fscommon.ErrClientNil
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return saledom.Sale{}, saledom.ErrNotFound
	}

	snap, err := r.col(uid).Doc(id).Get(ctx)
	if fscommon.IsNotFound(err) {
		return saledom.Sale{}, saledom.ErrNotFound
	}
	if err != nil {
		return saledom.Sale{}, err
	}
	return docToSale(snap)
}

// List returns sales newest first.
func (r *SaleRepositoryFS) List(ctx context.Context, uid string, f saledom.Filter) ([]saledom.Sale, error) {
	if r.Client == nil {
		return nil, fscommon.ErrClientNil
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return []saledom.Sale{}, nil
	}

	q := r.col(uid).Query
	if f.Created.From != nil {
		q = q.Where("createdAt", ">=", f.Created.From.UTC())
	}
	if f.Created.To != nil {
		q = q.Where("createdAt", "<=", f.Created.To.UTC())
	}
	q = q.OrderBy("createdAt", firestore.Desc)

	out := make([]saledom.Sale, 0)
	err := fscommon.EachDocument(q.Documents(ctx), func(doc *firestore.DocumentSnapshot) error {
		s, err := docToSale(doc)
		if err != nil {
			return err
		}
		if f.Matches(s) {
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create creates a new Sale document with a Firestore auto-ID.
func (r *SaleRepositoryFS) Create(ctx context.Context, uid string, s saledom.Sale) (saledom.Sale, error) {
	if r.Client == nil {
		return saledom.Sale{}, fscommon.ErrClientNil
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return saledom.Sale{}, saledom.ErrInvalidID
	}

	ref := r.col(uid).NewDoc()
	s.ID = ref.ID
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if _, err := ref.Create(ctx, saleToDocData(s)); err != nil {
		if fscommon.IsAlreadyExists(err) {
			return saledom.Sale{}, saledom.ErrConflict
		}
		return saledom.Sale{}, err
	}
	return s, nil
}

// Update applies a partial update. status and createdAt are never written.
func (r *SaleRepositoryFS) Update(ctx context.Context, uid, id string, in saledom.UpdateSaleInput) (saledom.Sale, error) {
	if r.Client == nil {
		return saledom.Sale{}, fscommon.ErrClientNil
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return saledom.Sale{}, saledom.ErrNotFound
	}

	var updates []firestore.Update
	set := func(path string, v any) {
		updates = append(updates, firestore.Update{Path: path, Value: v})
	}
	if in.CustomerName != nil {
		set("clienteNome", strings.TrimSpace(*in.CustomerName))
	}
	if in.CustomerPhone != nil {
		set("clienteTelefone", strings.TrimSpace(*in.CustomerPhone))
	}
	if in.Address != nil {
		set("endereco", strings.TrimSpace(*in.Address))
	}
	if in.ProductID != nil {
		set("produtoId", strings.TrimSpace(*in.ProductID))
	}
	if in.ProductName != nil {
		set("produtoNome", strings.TrimSpace(*in.ProductName))
	}
	if in.Platform != nil {
		set("plataforma", string(*in.Platform))
	}
	if in.Quantity != nil {
		set("quantidade", *in.Quantity)
	}
	if in.TotalValue != nil {
		set("valorTotal", *in.TotalValue)
	}
	if in.Commission != nil {
		set("comissao", *in.Commission)
	}

	if len(updates) > 0 {
		if _, err := r.col(uid).Doc(id).Update(ctx, updates); err != nil {
			if fscommon.IsNotFound(err) {
				return saledom.Sale{}, saledom.ErrNotFound
			}
			return saledom.Sale{}, err
		}
	}
	return r.GetByID(ctx, uid, id)
}

// Delete removes a Sale document (hard delete).
func (r *SaleRepositoryFS) Delete(ctx context.Context, uid, id string) error {
	if r.Client == nil {
		return fscommon.ErrClientNil
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return saledom.ErrNotFound
	}
	if _, err := r.col(uid).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if fscommon.IsNotFound(err) {
			return saledom.ErrNotFound
		}
		return err
	}
	return nil
}

// TotalsByTenant scans the "sales" collection group and sums per owner
// (users/{uid}/sales/{id} → uid).
func (r *SaleRepositoryFS) TotalsByTenant(ctx context.Context) (map[string]saledom.TenantTotals, error) {
	if r.Client == nil {
		return nil, fscommon.ErrClientNil
	}
	out := make(map[string]saledom.TenantTotals)
	err := fscommon.EachDocument(r.Client.CollectionGroup(colSales).Documents(ctx), func(doc *firestore.DocumentSnapshot) error {
		owner := doc.Ref.Parent.Parent
		if owner == nil || owner.Parent == nil || owner.Parent.ID != colUsers {
			return nil
		}
		s, err := docToSale(doc)
		if err != nil {
			return err
		}
		t := out[owner.ID]
		t.UID = owner.ID
		t.Add(s)
		out[owner.ID] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ============================================================
// Mapping Helpers
// ============================================================

func docToSale(doc *firestore.DocumentSnapshot) (saledom.Sale, error) {
	var raw struct {
		CustomerName  string    `firestore:"clienteNome"`
		CustomerPhone string    `firestore:"clienteTelefone"`
		Address       string    `firestore:"endereco"`
		ProductID     string    `firestore:"produtoId"`
		ProductName   string    `firestore:"produtoNome"`
		Platform      string    `firestore:"plataforma"`
		Quantity      int       `firestore:"quantidade"`
		TotalValue    float64   `firestore:"valorTotal"`
		Commission    float64   `firestore:"comissao"`
		Status        string    `firestore:"status"`
		CreatedAt     time.Time `firestore:"createdAt"`
	}
	if err := doc.DataTo(&raw); err != nil {
		return saledom.Sale{}, err
	}

	return saledom.Sale{
		ID:            strings.TrimSpace(doc.Ref.ID),
		CustomerName:  strings.TrimSpace(raw.CustomerName),
		CustomerPhone: strings.TrimSpace(raw.CustomerPhone),
		Address:       strings.TrimSpace(raw.Address),
		ProductID:     strings.TrimSpace(raw.ProductID),
		ProductName:   strings.TrimSpace(raw.ProductName),
		Platform:      common.Platform(strings.TrimSpace(raw.Platform)),
		Quantity:      raw.Quantity,
		TotalValue:    raw.TotalValue,
		Commission:    raw.Commission,
		Status:        saledom.Status(strings.TrimSpace(raw.Status)),
		CreatedAt:     raw.CreatedAt.UTC(),
	}, nil
}

func saleToDocData(s saledom.Sale) map[string]any {
	return map[string]any{
		"clienteNome":     s.CustomerName,
		"clienteTelefone": s.CustomerPhone,
		"endereco":        s.Address,
		"produtoId":       s.ProductID,
		"produtoNome":     s.ProductName,
		"plataforma":      string(s.Platform),
		"quantidade":      s.Quantity,
		"valorTotal":      s.TotalValue,
		"comissao":        s.Commission,
		"status":          string(s.Status),
		"createdAt":       s.CreatedAt.UTC(),
	}
}

var (
	_ saledom.Repository   = (*SaleRepositoryFS)(nil)
	_ saledom.TotalsReader = (*SaleRepositoryFS)(nil)
)

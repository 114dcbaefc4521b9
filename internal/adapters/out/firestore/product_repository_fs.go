// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	fscommon "flowify/internal/adapters/out/firestore/common"
	common "flowify/internal/domain/common"
	productdom "flowify/internal/domain/product"
)

// ============================================================
// Firestore-based Product Repository (users/{uid}/products)
// ============================================================

type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col(uid string) *firestore.CollectionRef {
	return tenantCol(r.Client, uid, colProducts)
}

// ============================================================
// Queries
// ============================================================

func (r *ProductRepositoryFS) GetByID(ctx context.Context, uid, id string) (productdom.Product, error) {
	if r.Client == nil {
		return productdom.Product{}, fscommon.ErrClientNil
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}

	snap, err := r.col(uid).Doc(id).Get(ctx)
	if fscommon.IsNotFound(err) {
		return productdom.Product{}, productdom.ErrNotFound
	}
	if err != nil {
		return productdom.Product{}, err
	}
	return docToProduct(snap)
}

// List returns the catalog ordered by name.
func (r *ProductRepositoryFS) List(ctx context.Context, uid string) ([]productdom.Product, error) {
	if r.Client == nil {
		return nil, fscommon.ErrClientNil
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return []productdom.Product{}, nil
	}

	out := make([]productdom.Product, 0)
	err := fscommon.EachDocument(r.col(uid).Documents(ctx), func(doc *firestore.DocumentSnapshot) error {
		p, err := docToProduct(doc)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// Count uses an aggregation query so the documents are not transferred.
func (r *ProductRepositoryFS) Count(ctx context.Context, uid string) (int, error) {
	if r.Client == nil {
		return 0, fscommon.ErrClientNil
	}
	return countQuery(ctx, r.col(strings.TrimSpace(uid)).Query)
}

// ============================================================
// Commands
// ============================================================

func (r *ProductRepositoryFS) Create(ctx context.Context, uid string, p productdom.Product) (productdom.Product, error) {
	if r.Client == nil {
		return productdom.Product{}, fscommon.ErrClientNil
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return productdom.Product{}, productdom.ErrInvalidID
	}

	ref := r.col(uid).NewDoc()
	p.ID = ref.ID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	if _, err := ref.Create(ctx, productToDocData(p)); err != nil {
		return productdom.Product{}, err
	}
	return p, nil
}

func (r *ProductRepositoryFS) Update(ctx context.Context, uid, id string, in productdom.UpdateProductInput) (productdom.Product, error) {
	if r.Client == nil {
		return productdom.Product{}, fscommon.ErrClientNil
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}

	var updates []firestore.Update
	if in.Name != nil {
		updates = append(updates, firestore.Update{Path: "nome", Value: strings.TrimSpace(*in.Name)})
	}
	if in.Description != nil {
		updates = append(updates, firestore.Update{Path: "descricao", Value: strings.TrimSpace(*in.Description)})
	}
	if in.Prices != nil {
		updates = append(updates, firestore.Update{Path: "precosComissoes", Value: pricesToDoc(*in.Prices)})
	}
	if in.CoveredCities != nil {
		updates = append(updates, firestore.Update{Path: "coveredCities", Value: *in.CoveredCities})
	}

	ref := r.col(uid).Doc(id)
	if len(updates) > 0 {
		// Update は文書が無いと NotFound を返す
		if _, err := ref.Update(ctx, updates); err != nil {
			if fscommon.IsNotFound(err) {
				return productdom.Product{}, productdom.ErrNotFound
			}
			return productdom.Product{}, err
		}
	}
	return r.GetByID(ctx, uid, id)
}

func (r *ProductRepositoryFS) Delete(ctx context.Context, uid, id string) error {
	if r.Client == nil {
		return fscommon.ErrClientNil
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return productdom.ErrNotFound
	}

	// Exists 前提で削除する
	if _, err := r.col(uid).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if fscommon.IsNotFound(err) {
			return productdom.ErrNotFound
		}
		return err
	}
	return nil
}

// ============================================================
// Mapping Helpers
// ============================================================

type priceDoc struct {
	Platform   string  `firestore:"plataforma"`
	Quantity   int     `firestore:"quantidade"`
	Price      float64 `firestore:"preco"`
	Commission float64 `firestore:"comissao"`
}

func docToProduct(doc *firestore.DocumentSnapshot) (productdom.Product, error) {
	var raw struct {
		Name          string     `firestore:"nome"`
		Description   string     `firestore:"descricao"`
		Prices        []priceDoc `firestore:"precosComissoes"`
		CoveredCities []string   `firestore:"coveredCities"`
		CreatedAt     time.Time  `firestore:"createdAt"`
	}
	if err := doc.DataTo(&raw); err != nil {
		return productdom.Product{}, err
	}

	prices := make([]productdom.PriceCommission, 0, len(raw.Prices))
	for _, pd := range raw.Prices {
		prices = append(prices, productdom.PriceCommission{
			Platform:   common.Platform(strings.TrimSpace(pd.Platform)),
			Quantity:   pd.Quantity,
			Price:      pd.Price,
			Commission: pd.Commission,
		})
	}

	return productdom.Product{
		ID:            strings.TrimSpace(doc.Ref.ID),
		Name:          strings.TrimSpace(raw.Name),
		Description:   strings.TrimSpace(raw.Description),
		Prices:        prices,
		CoveredCities: raw.CoveredCities,
		CreatedAt:     raw.CreatedAt.UTC(),
	}, nil
}

func pricesToDoc(prices []productdom.PriceCommission) []priceDoc {
	out := make([]priceDoc, 0, len(prices))
	for _, pc := range prices {
		out = append(out, priceDoc{
			Platform:   string(pc.Platform),
			Quantity:   pc.Quantity,
			Price:      pc.Price,
			Commission: pc.Commission,
		})
	}
	return out
}

func productToDocData(p productdom.Product) map[string]any {
	data := map[string]any{
		"nome":            p.Name,
		"precosComissoes": pricesToDoc(p.Prices),
		"createdAt":       p.CreatedAt.UTC(),
	}
	if s := strings.TrimSpace(p.Description); s != "" {
		data["descricao"] = s
	}
	if len(p.CoveredCities) > 0 {
		data["coveredCities"] = p.CoveredCities
	}
	return data
}

var _ productdom.Repository = (*ProductRepositoryFS)(nil)

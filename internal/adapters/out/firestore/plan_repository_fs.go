// internal/adapters/out/firestore/plan_repository_fs.go
package firestore

import (
	"context"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"

	fscommon "flowify/internal/adapters/out/firestore/common"
	plandom "flowify/internal/domain/plan"
)

// PlanRepositoryFS reads and seeds the root plans collection.
type PlanRepositoryFS struct {
	Client *firestore.Client
}

func NewPlanRepositoryFS(client *firestore.Client) *PlanRepositoryFS {
	return &PlanRepositoryFS{Client: client}
}

func (r *PlanRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(colPlans)
}

func (r *PlanRepositoryFS) GetByID(ctx context.Context, id string) (plandom.Plan, error) {
	if r.Client == nil {
		return plandom.Plan{}, fscommon.ErrClientNil
	}
	id = strings.TrimSpace(id)
	if id == "" || id == plandom.NoneID {
		return plandom.Plan{}, plandom.ErrNotFound
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if fscommon.IsNotFound(err) {
		return plandom.Plan{}, plandom.ErrNotFound
	}
	if err != nil {
		return plandom.Plan{}, err
	}
	return docToPlan(snap)
}

// List returns all plans ordered by price.
func (r *PlanRepositoryFS) List(ctx context.Context) ([]plandom.Plan, error) {
	if r.Client == nil {
		return nil, fscommon.ErrClientNil
	}

	out := make([]plandom.Plan, 0)
	err := fscommon.EachDocument(r.col().Documents(ctx), func(doc *firestore.DocumentSnapshot) error {
		p, err := docToPlan(doc)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

// Upsert overwrites plans/{p.ID}.
func (r *PlanRepositoryFS) Upsert(ctx context.Context, p plandom.Plan) error {
	if r.Client == nil {
		return fscommon.ErrClientNil
	}
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := r.col().Doc(p.ID).Set(ctx, planDoc{
		Name:        p.Name,
		Price:       p.Price,
		CheckoutURL: p.CheckoutURL,
		Features:    p.Features,
		Permissions: permissionsDoc(p.Permissions),
		Popular:     p.Popular,
		Active:      p.Active,
	})
	return err
}

// ============================================================
// Mapping Helpers
// ============================================================

type planPermissionsDoc struct {
	MaxProducts                      int  `firestore:"maxProducts"`
	MaxSchedulingsPerMonth           int  `firestore:"maxSchedulingsPerMonth"`
	MaxPreSchedulingsPerMonth        int  `firestore:"maxPreSchedulingsPerMonth"`
	MaxWhatsappConfirmationsPerMonth int  `firestore:"maxWhatsappConfirmationsPerMonth"`
	CanExportExcel                   bool `firestore:"canExportExcel"`
	CanViewAnalytics                 bool `firestore:"canViewAnalytics"`
	CanUseCepChecker                 bool `firestore:"canUseCepChecker"`
}

type planDoc struct {
	Name        string             `firestore:"name"`
	Price       float64            `firestore:"price"`
	CheckoutURL string             `firestore:"checkoutUrl"`
	Features    []string           `firestore:"features"`
	Permissions planPermissionsDoc `firestore:"permissions"`
	Popular     bool               `firestore:"popular"`
	Active      bool               `firestore:"active"`
}

func permissionsDoc(p plandom.Permissions) planPermissionsDoc {
	return planPermissionsDoc(p)
}

func docToPlan(doc *firestore.DocumentSnapshot) (plandom.Plan, error) {
	var raw planDoc
	if err := doc.DataTo(&raw); err != nil {
		return plandom.Plan{}, err
	}
	return plandom.Plan{
		ID:          strings.TrimSpace(doc.Ref.ID),
		Name:        strings.TrimSpace(raw.Name),
		Price:       raw.Price,
		CheckoutURL: strings.TrimSpace(raw.CheckoutURL),
		Features:    raw.Features,
		Permissions: plandom.Permissions(raw.Permissions),
		Popular:     raw.Popular,
		Active:      raw.Active,
	}, nil
}

var _ plandom.Repository = (*PlanRepositoryFS)(nil)

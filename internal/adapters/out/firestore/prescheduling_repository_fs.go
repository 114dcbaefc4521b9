// internal/adapters/out/firestore/prescheduling_repository_fs.go
package firestore

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	fscommon "flowify/internal/adapters/out/firestore/common"
	common "flowify/internal/domain/common"
	predom "flowify/internal/domain/prescheduling"
)

// ============================================================
// Firestore-based PreScheduling Repository (users/{uid}/preAgendamentos)
// ============================================================

type PreSchedulingRepositoryFS struct {
	Client *firestore.Client
}

func NewPreSchedulingRepositoryFS(client *firestore.Client) *PreSchedulingRepositoryFS {
	return &PreSchedulingRepositoryFS{Client: client}
}

func (r *PreSchedulingRepositoryFS) col(uid string) *firestore.CollectionRef {
	return tenantCol(r.Client, uid, colPreSchedulings)
}

func (r *PreSchedulingRepositoryFS) GetByID(ctx context.Context, uid, id string) (predom.PreScheduling, error) {
	if r.Client == nil {
		return predom.PreScheduling{}, fscommon.ErrClientNil
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return predom.PreScheduling{}, predom.ErrNotFound
	}

	snap, err := r.col(uid).Doc(id).Get(ctx)
	if fscommon.IsNotFound(err) {
		return predom.PreScheduling{}, predom.ErrNotFound
	}
	if err != nil {
		return predom.PreScheduling{}, err
	}
	return docToPreScheduling(snap)
}

// List は新しい順。status はメモリ上で絞り込む。
func (r *PreSchedulingRepositoryFS) List(ctx context.Context, uid string, f predom.Filter) ([]predom.PreScheduling, error) {
	if r.Client == nil {
		return nil, fscommon.ErrClientNil
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return []predom.PreScheduling{}, nil
	}

	out := make([]predom.PreScheduling, 0)
	err := fscommon.EachDocument(r.rangeQuery(uid, f.Created).Documents(ctx), func(doc *firestore.DocumentSnapshot) error {
		p, err := docToPreScheduling(doc)
		if err != nil {
			return err
		}
		if f.Matches(p) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PreSchedulingRepositoryFS) Count(ctx context.Context, uid string, f predom.Filter) (int, error) {
	if r.Client == nil {
		return 0, fscommon.ErrClientNil
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return 0, nil
	}
	if f.Status == "" {
		return countQuery(ctx, r.rangeQuery(uid, f.Created))
	}
	xs, err := r.List(ctx, uid, f)
	if err != nil {
		return 0, err
	}
	return len(xs), nil
}

func (r *PreSchedulingRepositoryFS) rangeQuery(uid string, tr common.TimeRange) firestore.Query {
	q := r.col(uid).Query
	if tr.From != nil {
		q = q.Where("createdAt", ">=", tr.From.UTC())
	}
	if tr.To != nil {
		q = q.Where("createdAt", "<=", tr.To.UTC())
	}
	return q
}

func (r *PreSchedulingRepositoryFS) Create(ctx context.Context, uid string, p predom.PreScheduling) (predom.PreScheduling, error) {
	if r.Client == nil {
		return predom.PreScheduling{}, fscommon.ErrClientNil
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return predom.PreScheduling{}, predom.ErrInvalidID
	}

	ref := r.col(uid).NewDoc()
	p.ID = ref.ID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if _, err := ref.Create(ctx, preSchedulingToDocData(p)); err != nil {
		return predom.PreScheduling{}, err
	}
	return p, nil
}

func (r *PreSchedulingRepositoryFS) Update(ctx context.Context, uid, id string, in predom.UpdatePreSchedulingInput) (predom.PreScheduling, error) {
	if r.Client == nil {
		return predom.PreScheduling{}, fscommon.ErrClientNil
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return predom.PreScheduling{}, predom.ErrNotFound
	}

	var updates []firestore.Update
	set := func(path string, v any) {
		updates = append(updates, firestore.Update{Path: path, Value: v})
	}
	if in.CustomerName != nil {
		set("clienteNome", strings.TrimSpace(*in.CustomerName))
	}
	if in.CustomerWhatsapp != nil {
		set("clienteWhatsapp", strings.TrimSpace(*in.CustomerWhatsapp))
	}
	if in.Address != nil {
		a := *in.Address
		set("cep", strings.TrimSpace(a.CEP))
		set("endereco", strings.TrimSpace(a.Street))
		set("numero", strings.TrimSpace(a.Number))
		set("complemento", strings.TrimSpace(a.Complement))
		set("bairro", strings.TrimSpace(a.Neighborhood))
		set("cidade", strings.TrimSpace(a.City))
	}
	if in.ProductID != nil {
		set("produtoId", strings.TrimSpace(*in.ProductID))
	}
	if in.ProductName != nil {
		set("produtoNome", strings.TrimSpace(*in.ProductName))
	}
	if in.Quantity != nil {
		set("quantidade", *in.Quantity)
	}
	if in.Platform != nil {
		set("plataforma", string(*in.Platform))
	}
	if in.ExpectedDate != nil {
		set("dataPrevista", in.ExpectedDate.UTC())
	}
	if in.Status != nil {
		set("status", string(*in.Status))
	}

	if len(updates) > 0 {
		if _, err := r.col(uid).Doc(id).Update(ctx, updates); err != nil {
			if fscommon.IsNotFound(err) {
				return predom.PreScheduling{}, predom.ErrNotFound
			}
			return predom.PreScheduling{}, err
		}
	}
	return r.GetByID(ctx, uid, id)
}

func (r *PreSchedulingRepositoryFS) Delete(ctx context.Context, uid, id string) error {
	if r.Client == nil {
		return fscommon.ErrClientNil
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return predom.ErrNotFound
	}
	if _, err := r.col(uid).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if fscommon.IsNotFound(err) {
			return predom.ErrNotFound
		}
		return err
	}
	return nil
}

// ============================================================
// Mapping Helpers
// ============================================================

type preSchedulingDoc struct {
	CustomerName     string    `firestore:"clienteNome"`
	CustomerWhatsapp string    `firestore:"clienteWhatsapp"`
	CEP              string    `firestore:"cep"`
	Street           string    `firestore:"endereco"`
	Number           string    `firestore:"numero"`
	Complement       string    `firestore:"complemento"`
	Neighborhood     string    `firestore:"bairro"`
	City             string    `firestore:"cidade"`
	ProductID        string    `firestore:"produtoId"`
	ProductName      string    `firestore:"produtoNome"`
	Quantity         int       `firestore:"quantidade"`
	Platform         string    `firestore:"plataforma"`
	ExpectedDate     time.Time `firestore:"dataPrevista"`
	Status           string    `firestore:"status"`
	CreatedAt        time.Time `firestore:"createdAt"`
}

func docToPreScheduling(doc *firestore.DocumentSnapshot) (predom.PreScheduling, error) {
	var raw preSchedulingDoc
	if err := doc.DataTo(&raw); err != nil {
		return predom.PreScheduling{}, err
	}
	return predom.PreScheduling{
		ID:               strings.TrimSpace(doc.Ref.ID),
		CustomerName:     strings.TrimSpace(raw.CustomerName),
		CustomerWhatsapp: strings.TrimSpace(raw.CustomerWhatsapp),
		Address: predom.Address{
			CEP:          strings.TrimSpace(raw.CEP),
			Street:       strings.TrimSpace(raw.Street),
			Number:       strings.TrimSpace(raw.Number),
			Complement:   strings.TrimSpace(raw.Complement),
			Neighborhood: strings.TrimSpace(raw.Neighborhood),
			City:         strings.TrimSpace(raw.City),
		},
		ProductID:    strings.TrimSpace(raw.ProductID),
		ProductName:  strings.TrimSpace(raw.ProductName),
		Quantity:     raw.Quantity,
		Platform:     common.Platform(strings.TrimSpace(raw.Platform)),
		ExpectedDate: raw.ExpectedDate.UTC(),
		Status:       predom.Status(strings.TrimSpace(raw.Status)),
		CreatedAt:    raw.CreatedAt.UTC(),
	}, nil
}

func preSchedulingToDocData(p predom.PreScheduling) map[string]any {
	data := map[string]any{
		"clienteNome":     p.CustomerName,
		"clienteWhatsapp": p.CustomerWhatsapp,
		"cep":             p.Address.CEP,
		"endereco":        p.Address.Street,
		"numero":          p.Address.Number,
		"bairro":          p.Address.Neighborhood,
		"cidade":          p.Address.City,
		"produtoId":       p.ProductID,
		"produtoNome":     p.ProductName,
		"quantidade":      p.Quantity,
		"plataforma":      string(p.Platform),
		"dataPrevista":    p.ExpectedDate.UTC(),
		"status":          string(p.Status),
		"createdAt":       p.CreatedAt.UTC(),
	}
	if c := strings.TrimSpace(p.Address.Complement); c != "" {
		data["complemento"] = c
	}
	return data
}

var _ predom.Repository = (*PreSchedulingRepositoryFS)(nil)

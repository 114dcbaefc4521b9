// internal/adapters/out/firestore/scheduling_repository_fs.go
package firestore

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	fscommon "flowify/internal/adapters/out/firestore/common"
	common "flowify/internal/domain/common"
	schedulingdom "flowify/internal/domain/scheduling"
)

// ============================================================
// Firestore-based Scheduling Repository (users/{uid}/agendamentos)
// ============================================================

type SchedulingRepositoryFS struct {
	Client *firestore.Client
}

func NewSchedulingRepositoryFS(client *firestore.Client) *SchedulingRepositoryFS {
	return &SchedulingRepositoryFS{Client: client}
}

func (r *SchedulingRepositoryFS) col(uid string) *firestore.CollectionRef {
	return tenantCol(r.Client, uid, colSchedulings)
}

// ============================================================
// Queries
// ============================================================

func (r *SchedulingRepositoryFS) GetByID(ctx context.Context, uid, id string) (schedulingdom.Scheduling, error) {
	if r.Client == nil {
		return schedulingdom.Scheduling{}, fscommon.ErrClientNil
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return schedulingdom.Scheduling{}, schedulingdom.ErrNotFound
	}

	snap, err := r.col(uid).Doc(id).Get(ctx)
	if fscommon.IsNotFound(err) {
		return schedulingdom.Scheduling{}, schedulingdom.ErrNotFound
	}
	if err != nil {
		return schedulingdom.Scheduling{}, err
	}
	return docToScheduling(snap)
}

// List returns matching schedulings ordered by delivery date.
// The createdAt range is pushed to Firestore; status / platform are applied
// in memory so no composite index is required.
func (r *SchedulingRepositoryFS) List(ctx context.Context, uid string, f schedulingdom.Filter) ([]schedulingdom.Scheduling, error) {
	if r.Client == nil {
		return nil, fscommon.ErrClientNil
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return []schedulingdom.Scheduling{}, nil
	}

	out := make([]schedulingdom.Scheduling, 0)
	err := fscommon.EachDocument(r.rangeQuery(uid, f.Created).Documents(ctx), func(doc *firestore.DocumentSnapshot) error {
		s, err := docToScheduling(doc)
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

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledFor.Before(out[j].ScheduledFor)
	})
	return out, nil
}

func (r *SchedulingRepositoryFS) Count(ctx context.Context, uid string, f schedulingdom.Filter) (int, error) {
	if r.Client == nil {
		return 0, fscommon.ErrClientNil
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return 0, nil
	}
	if f.Status == "" && f.Platform == "" {
		return countQuery(ctx, r.rangeQuery(uid, f.Created))
	}
	xs, err := r.List(ctx, uid, f)
	if err != nil {
		return 0, err
	}
	return len(xs), nil
}

func (r *SchedulingRepositoryFS) rangeQuery(uid string, tr common.TimeRange) firestore.Query {
	q := r.col(uid).Query
	if tr.From != nil {
		q = q.Where("createdAt", ">=", tr.From.UTC())
	}
	if tr.To != nil {
		q = q.Where("createdAt", "<=", tr.To.UTC())
	}
	return q
}

// ============================================================
// Commands
// ============================================================

func (r *SchedulingRepositoryFS) Create(ctx context.Context, uid string, s schedulingdom.Scheduling) (schedulingdom.Scheduling, error) {
	if r.Client == nil {
		return schedulingdom.Scheduling{}, fscommon.ErrClientNil
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return schedulingdom.Scheduling{}, schedulingdom.ErrInvalidID
	}

	ref := r.col(uid).NewDoc()
	s.ID = ref.ID
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if _, err := ref.Create(ctx, schedulingToDocData(s)); err != nil {
		return schedulingdom.Scheduling{}, err
	}
	return s, nil
}

func (r *SchedulingRepositoryFS) Update(ctx context.Context, uid, id string, in schedulingdom.UpdateSchedulingInput) (schedulingdom.Scheduling, error) {
	if r.Client == nil {
		return schedulingdom.Scheduling{}, fscommon.ErrClientNil
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return schedulingdom.Scheduling{}, schedulingdom.ErrNotFound
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
	if in.Status != nil {
		set("status", string(*in.Status))
	}
	if in.ScheduledFor != nil {
		set("dataAgendamento", in.ScheduledFor.UTC())
	}

	if len(updates) > 0 {
		if _, err := r.col(uid).Doc(id).Update(ctx, updates); err != nil {
			if fscommon.IsNotFound(err) {
				return schedulingdom.Scheduling{}, schedulingdom.ErrNotFound
			}
			return schedulingdom.Scheduling{}, err
		}
	}
	return r.GetByID(ctx, uid, id)
}

func (r *SchedulingRepositoryFS) Delete(ctx context.Context, uid, id string) error {
	if r.Client == nil {
		return fscommon.ErrClientNil
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return schedulingdom.ErrNotFound
	}
	if _, err := r.col(uid).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if fscommon.IsNotFound(err) {
			return schedulingdom.ErrNotFound
		}
		return err
	}
	return nil
}

// ============================================================
// Mapping Helpers
// ============================================================

type schedulingDoc struct {
	CustomerName  string    `firestore:"clienteNome"`
	CustomerPhone string    `firestore:"clienteTelefone"`
	CEP           string    `firestore:"cep"`
	Street        string    `firestore:"endereco"`
	Number        string    `firestore:"numero"`
	Complement    string    `firestore:"complemento"`
	Neighborhood  string    `firestore:"bairro"`
	City          string    `firestore:"cidade"`
	ProductID     string    `firestore:"produtoId"`
	ProductName   string    `firestore:"produtoNome"`
	Quantity      int       `firestore:"quantidade"`
	Platform      string    `firestore:"plataforma"`
	Status        string    `firestore:"status"`
	ScheduledFor  time.Time `firestore:"dataAgendamento"`
	CreatedAt     time.Time `firestore:"createdAt"`
}

func docToScheduling(doc *firestore.DocumentSnapshot) (schedulingdom.Scheduling, error) {
	var raw schedulingDoc
	if err := doc.DataTo(&raw); err != nil {
		return schedulingdom.Scheduling{}, err
	}
	return rawToScheduling(doc.Ref.ID, raw), nil
}

// 保存済みデータは検証せずにそのまま返す（古い文書も読めるように）。
func rawToScheduling(id string, raw schedulingDoc) schedulingdom.Scheduling {
	return schedulingdom.Scheduling{
		ID:            strings.TrimSpace(id),
		CustomerName:  strings.TrimSpace(raw.CustomerName),
		CustomerPhone: strings.TrimSpace(raw.CustomerPhone),
		Address: schedulingdom.Address{
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
		Status:       schedulingdom.Status(strings.TrimSpace(raw.Status)),
		ScheduledFor: raw.ScheduledFor.UTC(),
		CreatedAt:    raw.CreatedAt.UTC(),
	}
}

func schedulingToDocData(s schedulingdom.Scheduling) map[string]any {
	data := map[string]any{
		"clienteNome":     s.CustomerName,
		"clienteTelefone": s.CustomerPhone,
		"cep":             s.Address.CEP,
		"endereco":        s.Address.Street,
		"numero":          s.Address.Number,
		"bairro":          s.Address.Neighborhood,
		"cidade":          s.Address.City,
		"produtoId":       s.ProductID,
		"produtoNome":     s.ProductName,
		"quantidade":      s.Quantity,
		"plataforma":      string(s.Platform),
		"status":          string(s.Status),
		"dataAgendamento": s.ScheduledFor.UTC(),
		"createdAt":       s.CreatedAt.UTC(),
	}
	if c := strings.TrimSpace(s.Address.Complement); c != "" {
		data["complemento"] = c
	}
	return data
}

var _ schedulingdom.Repository = (*SchedulingRepositoryFS)(nil)

// internal/adapters/out/firestore/scheduling_conversion_fs.go
package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	fscommon "flowify/internal/adapters/out/firestore/common"
	usecase "flowify/internal/application/usecase"
	saledom "flowify/internal/domain/sale"
	schedulingdom "flowify/internal/domain/scheduling"
)

// SchedulingConversionFS runs the scheduling → sale conversion inside a
// Firestore transaction. Firestore retries the function on contention, and
// a retry re-reads the scheduling, so a concurrent conversion that committed
// first makes this one fail with ErrNotFound.
type SchedulingConversionFS struct {
	Client *firestore.Client
}

func NewSchedulingConversionFS(client *firestore.Client) *SchedulingConversionFS {
	return &SchedulingConversionFS{Client: client}
}

func (s *SchedulingConversionFS) RunConversion(
	ctx context.Context,
	uid string,
	fn func(ctx context.Context, tx usecase.ConversionTx) error,
) error {
	if s == nil || s.Client == nil {
		return fscommon.ErrClientNil
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return usecase.ErrNotAuthenticated
	}

	return s.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &conversionTxFS{client: s.Client, tx: tx, uid: uid})
	})
}

// conversionTxFS adapts *firestore.Transaction to usecase.ConversionTx.
type conversionTxFS struct {
	client *firestore.Client
	tx     *firestore.Transaction
	uid    string
}

func (t *conversionTxFS) GetScheduling(_ context.Context, id string) (schedulingdom.Scheduling, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return schedulingdom.Scheduling{}, schedulingdom.ErrNotFound
	}

	snap, err := t.tx.Get(tenantCol(t.client, t.uid, colSchedulings).Doc(id))
	if fscommon.IsNotFound(err) {
		return schedulingdom.Scheduling{}, schedulingdom.ErrNotFound
	}
	if err != nil {
		return schedulingdom.Scheduling{}, err
	}
	if snap == nil || !snap.Exists() {
		return schedulingdom.Scheduling{}, schedulingdom.ErrNotFound
	}
	return docToScheduling(snap)
}

func (t *conversionTxFS) CreateSale(_ context.Context, s saledom.Sale) (saledom.Sale, error) {
	ref := tenantCol(t.client, t.uid, colSales).NewDoc()
	s.ID = ref.ID
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if err := t.tx.Create(ref, saleToDocData(s)); err != nil {
		return saledom.Sale{}, err
	}
	return s, nil
}

func (t *conversionTxFS) DeleteScheduling(_ context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return schedulingdom.ErrNotFound
	}
	return t.tx.Delete(tenantCol(t.client, t.uid, colSchedulings).Doc(id), firestore.Exists)
}

var _ usecase.SchedulingConversionStore = (*SchedulingConversionFS)(nil)

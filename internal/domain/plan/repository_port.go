package plan

import "context"

// Repository reads and seeds the global plans collection.
type Repository interface {
	GetByID(ctx context.Context, id string) (Plan, error)
	List(ctx context.Context) ([]Plan, error)
	Upsert(ctx context.Context, p Plan) error
}

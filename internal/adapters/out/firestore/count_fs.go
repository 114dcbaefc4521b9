// internal/adapters/out/firestore/count_fs.go
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
)

// countQuery runs a COUNT aggregation over q.
func countQuery(ctx context.Context, q firestore.Query) (int, error) {
	res, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res["all"]
	if !ok {
		return 0, fmt.Errorf("count aggregation: missing result")
	}
	pv, ok := v.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("count aggregation: unexpected result type %T", v)
	}
	return int(pv.GetIntegerValue()), nil
}

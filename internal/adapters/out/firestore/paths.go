// internal/adapters/out/firestore/paths.go
package firestore

import "cloud.google.com/go/firestore"

// コレクション名は既存データと同じ（ポルトガル語キーを含む）。
const (
	colUsers          = "users"
	colProducts       = "products"
	colSchedulings    = "agendamentos"
	colSales          = "sales"
	colPlans          = "plans"
	colApprovedEmails = "approvedEmails"
	colPreSchedulings = "preAgendamentos"
)

// tenantCol returns users/{uid}/{name}.
func tenantCol(client *firestore.Client, uid, name string) *firestore.CollectionRef {
	return client.Collection(colUsers).Doc(uid).Collection(name)
}

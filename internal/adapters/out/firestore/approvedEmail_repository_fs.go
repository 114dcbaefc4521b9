// internal/adapters/out/firestore/approvedEmail_repository_fs.go
package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	fscommon "flowify/internal/adapters/out/firestore/common"
	approvedEmaildom "flowify/internal/domain/approvedEmail"
)

// ApprovedEmailRepositoryFS stores approvals in the root approvedEmails collection.
type ApprovedEmailRepositoryFS struct {
	Client *firestore.Client
}

func NewApprovedEmailRepositoryFS(client *firestore.Client) *ApprovedEmailRepositoryFS {
	return &ApprovedEmailRepositoryFS{Client: client}
}

func (r *ApprovedEmailRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(colApprovedEmails)
}

func (r *ApprovedEmailRepositoryFS) Create(ctx context.Context, a approvedEmaildom.ApprovedEmail) (approvedEmaildom.ApprovedEmail, error) {
	if r.Client == nil {
		return approvedEmaildom.ApprovedEmail{}, fscommon.ErrClientNil
	}

	ref := r.col().NewDoc()
	a.ID = ref.ID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if _, err := ref.Create(ctx, map[string]any{
		"email":     a.Email,
		"plan":      a.PlanID,
		"createdAt": a.CreatedAt.UTC(),
	}); err != nil {
		return approvedEmaildom.ApprovedEmail{}, err
	}
	return a, nil
}

// FindByEmail returns the most recent approval for email.
func (r *ApprovedEmailRepositoryFS) FindByEmail(ctx context.Context, email string) (approvedEmaildom.ApprovedEmail, bool, error) {
	if r.Client == nil {
		return approvedEmaildom.ApprovedEmail{}, false, fscommon.ErrClientNil
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return approvedEmaildom.ApprovedEmail{}, false, nil
	}

	var (
		found approvedEmaildom.ApprovedEmail
		ok    bool
	)
	q := r.col().Where("email", "==", email)
	err := fscommon.EachDocument(q.Documents(ctx), func(doc *firestore.DocumentSnapshot) error {
		var raw struct {
			Email     string    `firestore:"email"`
			Plan      string    `firestore:"plan"`
			CreatedAt time.Time `firestore:"createdAt"`
		}
		if err := doc.DataTo(&raw); err != nil {
			return err
		}
		if !ok || raw.CreatedAt.After(found.CreatedAt) {
			found = approvedEmaildom.ApprovedEmail{
				ID:        doc.Ref.ID,
				Email:     raw.Email,
				PlanID:    raw.Plan,
				CreatedAt: raw.CreatedAt.UTC(),
			}
			ok = true
		}
		return nil
	})
	if err != nil {
		return approvedEmaildom.ApprovedEmail{}, false, err
	}
	return found, ok, nil
}

var _ approvedEmaildom.Repository = (*ApprovedEmailRepositoryFS)(nil)

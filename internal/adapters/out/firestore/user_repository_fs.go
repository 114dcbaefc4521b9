// internal/adapters/out/firestore/user_repository_fs.go
package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	fscommon "flowify/internal/adapters/out/firestore/common"
	userdom "flowify/internal/domain/user"
)

// =====================================================
// Firestore User Repository
// =====================================================
//
// users の DocID は Firebase Auth UID。
// テナントのサブコレクション（products / agendamentos / sales）の親でもある。

type UserRepositoryFS struct {
	Client *firestore.Client
}

func NewUserRepositoryFS(client *firestore.Client) *UserRepositoryFS {
	return &UserRepositoryFS{Client: client}
}

func (r *UserRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(colUsers)
}

func (r *UserRepositoryFS) GetByID(ctx context.Context, uid string) (userdom.User, error) {
	if r.Client == nil {
		return userdom.User{}, fscommon.ErrClientNil
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		// 「存在しない」とは別なので invalid とする
		return userdom.User{}, userdom.ErrInvalidUID
	}

	snap, err := r.col().Doc(uid).Get(ctx)
	if fscommon.IsNotFound(err) {
		return userdom.User{}, userdom.ErrNotFound
	}
	if err != nil {
		return userdom.User{}, err
	}
	return docToUser(snap)
}

func (r *UserRepositoryFS) List(ctx context.Context) ([]userdom.User, error) {
	if r.Client == nil {
		return nil, fscommon.ErrClientNil
	}
	out := make([]userdom.User, 0)
	err := fscommon.EachDocument(r.col().OrderBy("createdAt", firestore.Asc).Documents(ctx), func(doc *firestore.DocumentSnapshot) error {
		u, err := docToUser(doc)
		if err != nil {
			return err
		}
		out = append(out, u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create writes users/{uid}. An existing profile is never overwritten.
func (r *UserRepositoryFS) Create(ctx context.Context, u userdom.User) (userdom.User, error) {
	if r.Client == nil {
		return userdom.User{}, fscommon.ErrClientNil
	}
	u.UID = strings.TrimSpace(u.UID)
	if u.UID == "" {
		return userdom.User{}, userdom.ErrInvalidUID
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := r.col().Doc(u.UID).Create(ctx, userToDocData(u)); err != nil {
		if fscommon.IsAlreadyExists(err) {
			return userdom.User{}, userdom.ErrAlreadyExists
		}
		return userdom.User{}, err
	}
	return u, nil
}

// Update writes plan / active / accessExpiresAt. A cleared expiry is stored as null.
func (r *UserRepositoryFS) Update(ctx context.Context, uid string, in userdom.UpdateUserInput) (userdom.User, error) {
	if r.Client == nil {
		return userdom.User{}, fscommon.ErrClientNil
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.User{}, userdom.ErrInvalidUID
	}

	var updates []firestore.Update
	if in.PlanID != nil {
		updates = append(updates, firestore.Update{Path: "plan", Value: strings.TrimSpace(*in.PlanID)})
	}
	if in.Active != nil {
		updates = append(updates, firestore.Update{Path: "active", Value: *in.Active})
	}
	switch {
	case in.ClearAccessExpiry:
		updates = append(updates, firestore.Update{Path: "accessExpiresAt", Value: nil})
	case in.AccessExpiresAt != nil:
		updates = append(updates, firestore.Update{Path: "accessExpiresAt", Value: in.AccessExpiresAt.UTC()})
	}

	if len(updates) > 0 {
		if _, err := r.col().Doc(uid).Update(ctx, updates); err != nil {
			if fscommon.IsNotFound(err) {
				return userdom.User{}, userdom.ErrNotFound
			}
			return userdom.User{}, err
		}
	}
	return r.GetByID(ctx, uid)
}

// ListExpired queries on accessExpiresAt only and filters active in memory,
// which avoids a composite index.
func (r *UserRepositoryFS) ListExpired(ctx context.Context, now time.Time) ([]userdom.User, error) {
	if r.Client == nil {
		return nil, fscommon.ErrClientNil
	}

	q := r.col().Where("accessExpiresAt", "<=", now.UTC())
	var out []userdom.User
	err := fscommon.EachDocument(q.Documents(ctx), func(doc *firestore.DocumentSnapshot) error {
		u, err := docToUser(doc)
		if err != nil {
			return err
		}
		if u.Active {
			out = append(out, u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepositoryFS) SetActive(ctx context.Context, uid string, active bool) error {
	if r.Client == nil {
		return fscommon.ErrClientNil
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.ErrInvalidUID
	}
	_, err := r.col().Doc(uid).Update(ctx, []firestore.Update{{Path: "active", Value: active}})
	if fscommon.IsNotFound(err) {
		return userdom.ErrNotFound
	}
	return err
}

// =====================================================
// Mapping Helpers
// =====================================================

func docToUser(doc *firestore.DocumentSnapshot) (userdom.User, error) {
	var raw struct {
		Name                    string     `firestore:"nome"`
		Email                   string     `firestore:"email"`
		Plan                    string     `firestore:"plan"`
		Active                  bool       `firestore:"active"`
		Role                    string     `firestore:"role"`
		AccessExpiresAt         *time.Time `firestore:"accessExpiresAt"`
		WhatsappMessageTemplate string     `firestore:"whatsappMessageTemplate"`
		CreatedAt               time.Time  `firestore:"createdAt"`
	}
	if err := doc.DataTo(&raw); err != nil {
		return userdom.User{}, err
	}

	role := userdom.RoleUser
	if strings.EqualFold(strings.TrimSpace(raw.Role), string(userdom.RoleAdmin)) {
		role = userdom.RoleAdmin
	}

	var expires *time.Time
	if raw.AccessExpiresAt != nil && !raw.AccessExpiresAt.IsZero() {
		t := raw.AccessExpiresAt.UTC()
		expires = &t
	}

	return userdom.User{
		UID:                     strings.TrimSpace(doc.Ref.ID),
		Name:                    strings.TrimSpace(raw.Name),
		Email:                   strings.ToLower(strings.TrimSpace(raw.Email)),
		PlanID:                  strings.TrimSpace(raw.Plan),
		Active:                  raw.Active,
		Role:                    role,
		AccessExpiresAt:         expires,
		WhatsappMessageTemplate: raw.WhatsappMessageTemplate,
		CreatedAt:               raw.CreatedAt.UTC(),
	}, nil
}

func userToDocData(u userdom.User) map[string]any {
	data := map[string]any{
		"nome":      u.Name,
		"email":     strings.ToLower(strings.TrimSpace(u.Email)),
		"plan":      u.PlanID,
		"active":    u.Active,
		"role":      string(u.Role),
		"createdAt": u.CreatedAt.UTC(),
	}
	if u.AccessExpiresAt != nil {
		data["accessExpiresAt"] = u.AccessExpiresAt.UTC()
	}
	if u.WhatsappMessageTemplate != "" {
		data["whatsappMessageTemplate"] = u.WhatsappMessageTemplate
	}
	return data
}

var _ userdom.Repository = (*UserRepositoryFS)(nil)

package user

import (
	"context"
	"time"
)

// UpdateUserInput は管理画面からの部分更新。nil は変更しない。
// ClearAccessExpiry が true なら期限なし（生涯アクセス）にする。
type UpdateUserInput struct {
	PlanID            *string
	Active            *bool
	AccessExpiresAt   *time.Time
	ClearAccessExpiry bool
}

// Apply returns u with in applied.
func (u User) Apply(in UpdateUserInput) User {
	if in.PlanID != nil {
		u.PlanID = *in.PlanID
	}
	if in.Active != nil {
		u.Active = *in.Active
	}
	switch {
	case in.ClearAccessExpiry:
		u.AccessExpiresAt = nil
	case in.AccessExpiresAt != nil:
		t := in.AccessExpiresAt.UTC()
		u.AccessExpiresAt = &t
	}
	return u
}

// Repository covers the users collection (root documents only).
type Repository interface {
	GetByID(ctx context.Context, uid string) (User, error)
	// List returns every profile ordered by createdAt.
	List(ctx context.Context) ([]User, error)
	// Create fails with ErrAlreadyExists when users/{uid} exists.
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, uid string, in UpdateUserInput) (User, error)
	// ListExpired returns active users whose accessExpiresAt <= now.
	ListExpired(ctx context.Context, now time.Time) ([]User, error)
	SetActive(ctx context.Context, uid string, active bool) error
}

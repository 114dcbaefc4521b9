// backend/internal/domain/user/entity.go
package user

import (
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User はテナント（= Firebase Auth のユーザー）のプロフィール。users/{uid}
type User struct {
	UID                     string
	Name                    string
	Email                   string
	PlanID                  string
	Active                  bool
	Role                    Role
	AccessExpiresAt         *time.Time
	WhatsappMessageTemplate string
	CreatedAt               time.Time
}

var (
	ErrInvalidUID    = errors.New("user: invalid uid")
	ErrInvalidEmail  = errors.New("user: invalid email")
	ErrInvalidPlanID = errors.New("user: invalid plan")
	ErrNotFound      = errors.New("user: not found")
	ErrAlreadyExists = errors.New("user: already exists")
)

// New builds the profile created at sign-up: name is the e-mail prefix,
// role user, active.
func New(uid, email, planID string, createdAt time.Time) (User, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return User{}, ErrInvalidUID
	}
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(email, "@")
	if at <= 0 {
		return User{}, ErrInvalidEmail
	}
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return User{}, ErrInvalidPlanID
	}
	return User{
		UID:       uid,
		Name:      email[:at],
		Email:     email,
		PlanID:    planID,
		Active:    true,
		Role:      RoleUser,
		CreatedAt: createdAt.UTC(),
	}, nil
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AccessExpired reports whether access has an expiry at or before now.
func (u User) AccessExpired(now time.Time) bool {
	return u.AccessExpiresAt != nil && !u.AccessExpiresAt.After(now)
}

// HasAccess は有効フラグ・期限・プランをまとめて判定する。
func (u User) HasAccess(now time.Time) bool {
	if !u.Active || u.AccessExpired(now) {
		return false
	}
	p := strings.TrimSpace(u.PlanID)
	return p != "" && p != "none"
}

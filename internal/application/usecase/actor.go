// internal/application/usecase/actor.go
package usecase

import (
	"errors"
	"strings"

	userdom "flowify/internal/domain/user"
)

var (
	// ErrNotAuthenticated は Actor が無い（未ログイン）ことを表す。操作は開始されない。
	ErrNotAuthenticated = errors.New("usecase: not authenticated")
	ErrForbidden        = errors.New("usecase: forbidden")
)

// Actor は操作主体。テナントのデータは常に users/{Actor.UID}/... に閉じる。
//
// 管理者のなりすまし（impersonation）は「対象ユーザーの Actor を作り、
// ImpersonatorUID に管理者の uid を残す」ことで表現する。
type Actor struct {
	UID             string
	Email           string
	Role            userdom.Role
	ImpersonatorUID string
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == userdom.RoleAdmin
}

func (a *Actor) IsImpersonated() bool {
	return a != nil && strings.TrimSpace(a.ImpersonatorUID) != ""
}

// Impersonate builds the actor an admin uses to act as targetUID.
func (a *Actor) Impersonate(targetUID string) (*Actor, error) {
	if a == nil || strings.TrimSpace(a.UID) == "" {
		return nil, ErrNotAuthenticated
	}
	if !a.IsAdmin() {
		return nil, ErrForbidden
	}
	targetUID = strings.TrimSpace(targetUID)
	if targetUID == "" {
		return nil, userdom.ErrInvalidUID
	}
	return &Actor{
		UID:             targetUID,
		Role:            userdom.RoleUser,
		ImpersonatorUID: a.UID,
	}, nil
}

// requireActor returns the trimmed uid or ErrNotAuthenticated.
func requireActor(a *Actor) (string, error) {
	if a == nil {
		return "", ErrNotAuthenticated
	}
	uid := strings.TrimSpace(a.UID)
	if uid == "" {
		return "", ErrNotAuthenticated
	}
	return uid, nil
}

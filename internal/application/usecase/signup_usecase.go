// internal/application/usecase/signup_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	approvedEmaildom "flowify/internal/domain/approvedEmail"
	userdom "flowify/internal/domain/user"
)

// ErrEmailNotApproved: 購入 Webhook で承認されていない e-mail。プロフィールは作らない。
var ErrEmailNotApproved = errors.New("usecase: email is not on the approved list")

// ProfileStore is the part of the users repository sign-up needs.
type ProfileStore interface {
	GetByID(ctx context.Context, uid string) (userdom.User, error)
	Create(ctx context.Context, u userdom.User) (userdom.User, error)
}

type ApprovalFinder interface {
	FindByEmail(ctx context.Context, email string) (approvedEmaildom.ApprovedEmail, bool, error)
}

// SignupUsecase provisions users/{uid} on first login.
type SignupUsecase struct {
	users    ProfileStore
	approved ApprovalFinder
	now      func() time.Time
}

func NewSignupUsecase(users ProfileStore, approved ApprovalFinder) *SignupUsecase {
	return &SignupUsecase{users: users, approved: approved, now: time.Now}
}

func (u *SignupUsecase) WithNow(now func() time.Time) *SignupUsecase {
	u.now = now
	return u
}

// EnsureProfile returns the actor's profile, creating it from the approved
// e-mail entry when it does not exist yet. created is true only when this
// call wrote the document.
func (u *SignupUsecase) EnsureProfile(ctx context.Context, actor *Actor) (usr userdom.User, created bool, err error) {
	uid, err := requireActor(actor)
	if err != nil {
		return userdom.User{}, false, err
	}
	// なりすまし中は対象ユーザーのプロフィールを作らない
	if actor.IsImpersonated() {
		return userdom.User{}, false, ErrForbidden
	}

	usr, err = u.users.GetByID(ctx, uid)
	if err == nil {
		return usr, false, nil
	}
	if !errors.Is(err, userdom.ErrNotFound) {
		return userdom.User{}, false, err
	}

	email := strings.ToLower(strings.TrimSpace(actor.Email))
	if email == "" {
		return userdom.User{}, false, ErrEmailNotApproved
	}
	a, ok, err := u.approved.FindByEmail(ctx, email)
	if err != nil {
		return userdom.User{}, false, err
	}
	if !ok {
		return userdom.User{}, false, ErrEmailNotApproved
	}

	draft, err := userdom.New(uid, email, a.PlanID, u.now())
	if err != nil {
		return userdom.User{}, false, err
	}
	usr, err = u.users.Create(ctx, draft)
	if errors.Is(err, userdom.ErrAlreadyExists) {
		// 同時リクエストで先に作られた
		usr, err = u.users.GetByID(ctx, uid)
		return usr, false, err
	}
	if err != nil {
		return userdom.User{}, false, err
	}

	log.Info().
		Str("uid", uid).
		Str("plan", usr.PlanID).
		Msg("[signup] profile created")
	return usr, true, nil
}

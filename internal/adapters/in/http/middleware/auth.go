// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog/log"

	usecase "flowify/internal/application/usecase"
	userdom "flowify/internal/domain/user"
)

// ImpersonateHeader は管理者が別ユーザーとして操作するときに付けるヘッダ。
const ImpersonateHeader = "X-Impersonate-UID"

// TokenVerifier は Firebase ID トークンの検証。*fbauth.Client がそのまま満たす。
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// UserReader は users/{uid} の読み取り（role 判定用）。
type UserReader interface {
	GetByID(ctx context.Context, uid string) (userdom.User, error)
}

var _ TokenVerifier = (*fbauth.Client)(nil)

// context key は string を使わず、衝突回避のため独自型を使用（SA1029 対策）
type ctxKey struct{ name string }

var ctxKeyActor = ctxKey{name: "actor"}

// AuthMiddleware は
//
//   - Authorization: Bearer <ID_TOKEN>
//
// を検証し、usecase.Actor を context に詰めて次のハンドラへ渡す。
// X-Impersonate-UID があれば、管理者に限り対象ユーザーの Actor に差し替える。
type AuthMiddleware struct {
	Verifier TokenVerifier
	Users    UserReader
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 依存チェック
		if m == nil || m.Verifier == nil || m.Users == nil {
			writeError(w, http.StatusServiceUnavailable, "auth middleware not initialized")
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "unauthorized: missing bearer token")
			return
		}
		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized: empty bearer token")
			return
		}

		token, err := m.Verifier.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			writeError(w, http.StatusUnauthorized, "invalid uid in token")
			return
		}

		actor := &usecase.Actor{UID: uid, Role: userdom.RoleUser}
		if emailRaw, ok := token.Claims["email"]; ok {
			if e, ok2 := emailRaw.(string); ok2 {
				actor.Email = strings.ToLower(strings.TrimSpace(e))
			}
		}

		// role は users/{uid} が正。プロフィール未作成は一般ユーザー扱い
		u, err := m.Users.GetByID(r.Context(), uid)
		switch {
		case err == nil:
			actor.Role = u.Role
		case errors.Is(err, userdom.ErrNotFound):
		default:
			log.Error().Err(err).Str("uid", uid).Msg("[auth] user lookup failed")
			writeError(w, http.StatusServiceUnavailable, "user lookup failed")
			return
		}

		if target := strings.TrimSpace(r.Header.Get(ImpersonateHeader)); target != "" && target != uid {
			imp, err := actor.Impersonate(target)
			if err != nil {
				log.Warn().Str("uid", uid).Str("target", target).Msg("[auth] impersonation denied")
				writeError(w, http.StatusForbidden, err.Error())
				return
			}
			log.Info().Str("admin", uid).Str("target", target).Str("path", r.URL.Path).Msg("[auth] impersonating")
			actor = imp
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// WithActor stores actor in ctx.
func WithActor(ctx context.Context, actor *usecase.Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, actor)
}

// CurrentActor は middleware で検証された Actor を返します。
func CurrentActor(r *http.Request) (*usecase.Actor, bool) {
	a, ok := r.Context().Value(ctxKeyActor).(*usecase.Actor)
	if !ok || a == nil || strings.TrimSpace(a.UID) == "" {
		return nil, false
	}
	return a, true
}

package middleware

import (
	"context"
	"net/http"
	"sync"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/security"
)

// IdentityResolver loads the account behind verified claims. Implemented by
// the auth service; stubbed in handler tests.
type IdentityResolver interface {
	CurrentUser(claims *security.SessionClaims) (*domain.User, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

// identityHolder resolves the session user at most once per request. The
// gate only needs the claims; handlers that need the full user trigger the
// store lookup lazily.
type identityHolder struct {
	claims *security.SessionClaims

	once sync.Once
	load func() (*domain.User, error)
	user *domain.User
	err  error
}

func (h *identityHolder) resolve() (*domain.User, error) {
	h.once.Do(func() {
		if h.claims == nil || h.load == nil {
			return
		}
		h.user, h.err = h.load()
	})
	return h.user, h.err
}

// SessionIdentity verifies the session cookie and installs the per-request
// identity holder. It never rejects a request; anonymous requests carry a
// holder with nil claims.
func SessionIdentity(codec *security.SessionCodec, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := codec.Verify(security.GetCookie(r, security.SessionCookieName))
			holder := &identityHolder{claims: claims}
			if claims != nil {
				holder.load = func() (*domain.User, error) { return resolver.CurrentUser(claims) }
			}
			ctx := context.WithValue(r.Context(), identityContextKey, holder)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionClaimsFromContext returns the verified claims, or nil for an
// anonymous request.
func SessionClaimsFromContext(ctx context.Context) *security.SessionClaims {
	if h, ok := ctx.Value(identityContextKey).(*identityHolder); ok {
		return h.claims
	}
	return nil
}

// CurrentUser returns the fully loaded session user with role and grants,
// or nil when the request is anonymous, the account is gone, or the account
// is no longer ACTIVE. The lookup result is memoized for the request.
func CurrentUser(r *http.Request) (*domain.User, error) {
	h, ok := r.Context().Value(identityContextKey).(*identityHolder)
	if !ok {
		return nil, nil
	}
	return h.resolve()
}

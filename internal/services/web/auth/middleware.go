package auth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/NordCoder/homelab/internal/domain/session"
	"github.com/NordCoder/homelab/internal/obs"
)

type ctxKey int

const identityKey ctxKey = 1

func WithIdentity(ctx context.Context, id session.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromCtx(ctx context.Context) (session.Identity, bool) {
	id, ok := ctx.Value(identityKey).(session.Identity)
	return id, ok
}

// RequireSession lets authenticated requests through with their identity in the
// context and sends everyone else to the login page.
func (c *Controller) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := c.identify(r)
		if err != nil {
			if errors.Is(err, ErrUnauthenticated) {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			obs.WithTrace(r.Context(), c.log).Error("resolve session", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func (c *Controller) identify(r *http.Request) (session.Identity, error) {
	cookie, err := r.Cookie(c.cookie.Name)
	if err != nil {
		return session.Identity{}, ErrUnauthenticated
	}
	return c.uc.Resolve(r.Context(), cookie.Value)
}

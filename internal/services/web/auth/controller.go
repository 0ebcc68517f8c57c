package auth

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/NordCoder/homelab/internal/obs"
	"github.com/NordCoder/homelab/internal/services/web/views"
)

type CookieOpts struct {
	Name   string
	Domain string
	Path   string
	Secure bool
}

type Controller struct {
	log    *zap.Logger
	uc     *Usecase
	views  *views.Renderer
	cookie CookieOpts
}

func NewController(uc *Usecase, v *views.Renderer, cookie CookieOpts, log *zap.Logger) *Controller {
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &Controller{log: obs.Component(log, "web.auth"), uc: uc, views: v, cookie: cookie}
}

// LoginForm serves GET /.
func (c *Controller) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := c.identify(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	if err := c.views.Login(w); err != nil {
		c.writeErr(w, r, err)
	}
}

// Login serves POST /.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	usr, value, err := c.uc.Login(r.Context(), r.PostFormValue("username"))
	if err != nil {
		c.writeErr(w, r, err)
		return
	}
	if old, err := r.Cookie(c.cookie.Name); err == nil {
		if err := c.uc.Logout(r.Context(), old.Value); err != nil {
			obs.WithTrace(r.Context(), c.log).Warn("revoke previous session", zap.Error(err))
		}
	}
	obs.WithTrace(r.Context(), c.log).Info("login", zap.Int64("user_id", usr.ID), zap.String("username", usr.Username))

	c.setSessionCookie(w, value)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout serves GET /logout.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(c.cookie.Name); err == nil {
		if err := c.uc.Logout(r.Context(), cookie.Value); err != nil {
			obs.WithTrace(r.Context(), c.log).Warn("revoke session", zap.Error(err))
		}
	}
	if id, ok := IdentityFromCtx(r.Context()); ok {
		obs.WithTrace(r.Context(), c.log).Info("logout", zap.Int64("user_id", id.UserID))
	}
	c.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (c *Controller) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUsernameRequired):
		http.Error(w, "Username required", http.StatusBadRequest)
	case errors.Is(err, ErrUnauthenticated):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		obs.WithTrace(r.Context(), c.log).Error("auth request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (c *Controller) setSessionCookie(w http.ResponseWriter, value string) {
	ttl := c.uc.SessionTTL()
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookie.Name,
		Value:    value,
		Path:     c.cookie.Path,
		Domain:   c.cookie.Domain,
		HttpOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl).UTC(),
	})
}

func (c *Controller) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookie.Name,
		Value:    "",
		Path:     c.cookie.Path,
		Domain:   c.cookie.Domain,
		HttpOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

// Package web wires the dashboard HTTP surface.
package web

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/NordCoder/homelab/internal/obs"
	"github.com/NordCoder/homelab/internal/services/web/auth"
	"github.com/NordCoder/homelab/internal/services/web/dashboard"
)

type Deps struct {
	Auth      *auth.Controller
	Dashboard *dashboard.Controller
	// Ping reports store health for /healthz.
	Ping   func(ctx context.Context) error
	Logger *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	log := obs.Component(d.Logger, "http")
	mux := http.NewServeMux()

	handle := func(pattern, route string, h http.HandlerFunc) {
		mux.Handle(pattern, obs.Instrument(route, log, h))
	}
	protected := func(pattern, route string, h http.HandlerFunc) {
		mux.Handle(pattern, obs.Instrument(route, log, d.Auth.RequireSession(h)))
	}

	handle("GET /{$}", "login_form", d.Auth.LoginForm)
	handle("POST /{$}", "login", d.Auth.Login)
	protected("GET /dashboard", "dashboard", d.Dashboard.Dashboard)
	protected("POST /add_service", "add_service", d.Dashboard.AddService)
	protected("GET /delete/{id}", "delete_service", d.Dashboard.Delete)
	protected("GET /logout", "logout", d.Auth.Logout)

	mux.Handle("GET /healthz", healthz(d.Ping, log))
	mux.Handle("GET /metrics", obs.MetricsHandler())

	return obs.WithRequestID(obs.HTTPHandler(mux, "dashboard.http"))
}

func healthz(ping func(ctx context.Context) error, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				obs.WithTrace(r.Context(), log).Warn("health check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	})
}

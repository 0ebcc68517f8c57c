package main

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	token "github.com/NordCoder/homelab/internal/auth"
	config "github.com/NordCoder/homelab/internal/config/dashboard"
	"github.com/NordCoder/homelab/internal/services/prober"
	"github.com/NordCoder/homelab/internal/services/web"
	"github.com/NordCoder/homelab/internal/services/web/auth"
	"github.com/NordCoder/homelab/internal/services/web/dashboard"
	"github.com/NordCoder/homelab/internal/services/web/views"
)

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, st *storage) (*http.Server, error) {
	secret := []byte(cfg.Auth.SessionSecret)
	if len(secret) == 0 {
		var err error
		if secret, err = token.GenerateSecret(); err != nil {
			return nil, err
		}
		logger.Warn("auth.session_secret is empty, generated a random one; sessions will not survive a restart")
	}

	renderer, err := views.New()
	if err != nil {
		return nil, fmt.Errorf("views: %w", err)
	}

	authUC := auth.NewUseCase(st.users, st.sessions, auth.Config{
		Secret:     secret,
		SessionTTL: cfg.Auth.SessionTTL,
	})
	authCtl := auth.NewController(authUC, renderer, auth.CookieOpts{
		Name:   cfg.Auth.CookieName,
		Domain: cfg.Auth.CookieDomain,
		Path:   cfg.Auth.CookiePath,
		Secure: cfg.Auth.CookieSecure,
	}, logger)

	p := prober.New(prober.Config{
		Timeout:            cfg.Probe.Timeout,
		UserAgent:          cfg.Probe.UserAgent,
		FollowRedirects:    cfg.Probe.FollowRedirects,
		InsecureSkipVerify: cfg.Probe.InsecureSkipVerify,
	}, logger)
	dashUC := dashboard.NewUseCase(st.services, p, st.tx, st.outbox, dashboard.Config{
		Concurrency: cfg.Probe.Concurrency,
		EmitEvents:  cfg.Events.Enable,
	}, logger)
	dashCtl := dashboard.NewController(dashUC, renderer, logger)

	handler := web.NewRouter(web.Deps{
		Auth:      authCtl,
		Dashboard: dashCtl,
		Ping:      st.ping,
		Logger:    logger,
	})

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, nil
}

func serveHTTP(srv *http.Server, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}

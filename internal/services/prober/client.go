package prober

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/NordCoder/homelab/internal/obs"
)

type Config struct {
	Timeout            time.Duration
	UserAgent          string
	FollowRedirects    bool
	// InsecureSkipVerify accepts any server certificate; off, a TLS failure is Down.
	InsecureSkipVerify bool
}

// NewHTTPClient builds the probe client. Each request is traced through the otelhttp transport.
func NewHTTPClient(cfg Config) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   cfg.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			MinVersion:         tls.VersionTLS12,
		},
	}

	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: obs.HTTPTransport(transport),
	}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client
}

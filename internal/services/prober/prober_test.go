package prober

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/NordCoder/homelab/internal/domain/service"
)

func newProber(timeout time.Duration, follow bool) *Prober {
	return New(Config{Timeout: timeout, UserAgent: "dashboard-test", FollowRedirects: follow}, zap.NewNop())
}

func TestProbe_Classification(t *testing.T) {
	cases := []struct {
		code int
		want service.Status
	}{
		{http.StatusOK, service.StatusRunning},
		{http.StatusNoContent, "Error 204"},
		{http.StatusNotFound, "Error 404"},
		{http.StatusInternalServerError, "Error 500"},
		{http.StatusServiceUnavailable, "Error 503"},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.code)
		}))
		got := newProber(time.Second, true).Probe(context.Background(), srv.URL)
		srv.Close()
		assert.Equal(t, tc.want, got, "code %d", tc.code)
	}
}

func TestProbe_SendsGETWithUserAgent(t *testing.T) {
	var method, ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, ua = r.Method, r.UserAgent()
	}))
	defer srv.Close()

	assert.Equal(t, service.StatusRunning, newProber(time.Second, true).Probe(context.Background(), srv.URL))
	assert.Equal(t, http.MethodGet, method)
	assert.Equal(t, "dashboard-test", ua)
}

func TestProbe_ConnectionRefusedIsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	assert.Equal(t, service.StatusDown, newProber(time.Second, true).Probe(context.Background(), url))
}

func TestProbe_MalformedURLIsDown(t *testing.T) {
	p := newProber(time.Second, true)
	for _, url := range []string{"", "::not a url", "nas.local", "ftp://example.invalid/"} {
		assert.Equal(t, service.StatusDown, p.Probe(context.Background(), url), "url %q", url)
	}
}

func TestProbe_TimeoutIsDown(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	got := newProber(100*time.Millisecond, true).Probe(context.Background(), srv.URL)
	assert.Equal(t, service.StatusDown, got)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestProbe_Redirects(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer target.Close()
	redirect := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer redirect.Close()

	assert.Equal(t, service.StatusRunning, newProber(time.Second, true).Probe(context.Background(), redirect.URL))
	assert.Equal(t, service.Status("Error 302"), newProber(time.Second, false).Probe(context.Background(), redirect.URL))
}

func TestProbe_UntrustedCertificate(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	assert.Equal(t, service.StatusDown, New(Config{Timeout: time.Second}, zap.NewNop()).Probe(context.Background(), srv.URL))

	insecure := New(Config{Timeout: time.Second, InsecureSkipVerify: true}, zap.NewNop())
	assert.Equal(t, service.StatusRunning, insecure.Probe(context.Background(), srv.URL))
}

func TestNew_DefaultTimeout(t *testing.T) {
	p := New(Config{}, nil)
	assert.Equal(t, DefaultTimeout, p.timeout)
}

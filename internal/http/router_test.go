package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/alumniportal/internal/login"
	"github.com/geocoder89/alumniportal/internal/observability"
	"github.com/geocoder89/alumniportal/internal/repo/memory"
	"github.com/geocoder89/alumniportal/internal/signup"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, staticDir string) *gin.Engine {
	t.Helper()

	repo := memory.NewIdentitiesRepo()
	reg := prometheus.NewRegistry()

	return NewRouter(Deps{
		Env:            "test",
		Signup:         signup.NewService(repo, nil, nil, time.Second),
		Login:          login.NewResolver(repo),
		Canonical:      repo,
		Prom:           observability.NewProm(reg),
		Gatherer:       reg,
		AllowedOrigins: []string{"*"},
		StaticDir:      staticDir,
	})
}

func serve(r *gin.Engine, method, path, ct, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_SignupThenLogin(t *testing.T) {
	r := newTestRouter(t, "")

	w := serve(r, http.MethodPost, "/api/signup/alumni", "application/json",
		`{"fullName":"Ravi","currentRole":"SDE","mobile":" 9999999999 "}`)
	if w.Code != http.StatusOK {
		t.Fatalf("signup: got %d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id on response")
	}

	w = serve(r, http.MethodPost, "/api/login", "application/json", `{"mobile":"9999999999"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Login success") {
		t.Fatalf("login: got %d body=%s", w.Code, w.Body.String())
	}
}

func TestRouter_RejectsNonJSONPost(t *testing.T) {
	r := newTestRouter(t, "")

	w := serve(r, http.MethodPost, "/api/login", "text/plain", `email=asha@x.com`)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("got %d want 415", w.Code)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, "")

	w := serve(r, http.MethodGet, "/api/health", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"mirror":"disabled"`) {
		t.Fatalf("health: got %d body=%s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "alumniportal_http_requests_total") {
		t.Fatalf("metrics: got %d body=%s", w.Code, w.Body.String())
	}
}

func TestRouter_ServesStaticUI(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>portal</h1>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	r := newTestRouter(t, dir)

	w := serve(r, http.MethodGet, "/", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "portal") {
		t.Fatalf("static: got %d body=%s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodPost, "/nope", "application/json", `{}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown POST: got %d want 404", w.Code)
	}
}

func TestRouter_CanonicalDownIsNotReady(t *testing.T) {
	r := NewRouter(Deps{
		Env:       "test",
		Signup:    signup.NewService(memory.NewIdentitiesRepo(), nil, nil, time.Second),
		Login:     login.NewResolver(memory.NewIdentitiesRepo()),
		Canonical: downPinger{},
	})

	if w := serve(r, http.MethodGet, "/readyz", "", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz: got %d want 503", w.Code)
	}
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return context.DeadlineExceeded }

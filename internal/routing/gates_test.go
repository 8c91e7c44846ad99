package routing

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestGateA_APIRoutesRequireAuth(t *testing.T) {
	a, err := LoadAllowlist(filepath.Join(repoRoot(t), "config/routing/allowlist.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	for name, ep := range a.Entrypoints {
		for _, r := range ep.Routes {
			if RouteClass(r.RouteClass) == RouteClassAPI && !r.RequiresAuth() {
				t.Fatalf("%s: api route without auth: %s", name, r.Path)
			}
			if len(r.Methods) == 0 {
				t.Fatalf("%s: route without methods: %s", name, r.Path)
			}
		}
	}
}

func TestGateB_AllowlistLoadsAndEntrypointsPresent(t *testing.T) {
	a, err := LoadAllowlist(filepath.Join(repoRoot(t), "config/routing/allowlist.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewClassifier(a, "server"); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{"/hierarchy", "/hierarchy/Pete", "/health", "/healthz", "/metrics"} {
		if _, ok := a.Find("server", path); !ok {
			t.Fatalf("missing route %s", path)
		}
	}
}

func TestGateC_JSONOnlyErrorsForAPI(t *testing.T) {
	t.Parallel()

	r := NewRouter(testClassifier(t))

	for _, path := range []string{"/hierarchy/a/b", "/unknown"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("path=%s status=%d", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Fatalf("path=%s content-type=%q", path, ct)
		}
	}

	opsReq := httptest.NewRequest(http.MethodGet, "/metrics/unknown", nil)
	opsRec := httptest.NewRecorder()
	r.ServeHTTP(opsRec, opsReq)
	if !strings.HasPrefix(opsRec.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("ops content-type=%q", opsRec.Header().Get("Content-Type"))
	}

	opsJSONReq := httptest.NewRequest(http.MethodGet, "/metrics/unknown", nil)
	opsJSONReq.Header.Set("Accept", "application/json")
	opsJSONRec := httptest.NewRecorder()
	r.ServeHTTP(opsJSONRec, opsJSONReq)
	if !strings.HasPrefix(opsJSONRec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("ops json content-type=%q", opsJSONRec.Header().Get("Content-Type"))
	}
}

func TestGateC_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	r := NewRouter(testClassifier(t))
	r.Handle(RouteClassOps, http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("content-type=%q", rec.Header().Get("Content-Type"))
	}
}

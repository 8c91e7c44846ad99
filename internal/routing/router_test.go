package routing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jacksonlee411/org-hierarchy/pkg/reqctx"
)

func testClassifier(t *testing.T) *Classifier {
	t.Helper()

	a := Allowlist{
		Version: 1,
		Entrypoints: map[string]Entrypoint{
			"server": {Routes: []Route{
				{Path: "/health", Methods: []string{"GET"}, RouteClass: "ops"},
				{Path: "/hierarchy", Methods: []string{"POST"}, RouteClass: "api", Auth: AuthBasic},
				{Path: "/hierarchy/{name}", Methods: []string{"GET"}, RouteClass: "api", Auth: AuthBasic},
			}},
		},
	}
	c, err := NewClassifier(a, "server")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRouter_PanicBecomes500JSON(t *testing.T) {
	t.Parallel()

	r := NewRouter(testClassifier(t))
	r.Handle(RouteClassAPI, http.MethodGet, "/panic", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req = req.WithContext(reqctx.WithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("content-type=%q", rec.Header().Get("Content-Type"))
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Code != "internal_error" || env.RequestID != "req-1" {
		t.Fatalf("env=%+v", env)
	}
}

func TestRouter_PatternRouteSetsPathValue(t *testing.T) {
	t.Parallel()

	r := NewRouter(testClassifier(t))
	var got string
	r.Handle(RouteClassAPI, http.MethodGet, "/hierarchy/{name}", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got = req.PathValue("name")
		w.WriteHeader(http.StatusOK)
	}))
	r.Handle(RouteClassAPI, http.MethodPost, "/hierarchy", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hierarchy/Pete", nil))
	if rec.Code != http.StatusOK || got != "Pete" {
		t.Fatalf("status=%d name=%q", rec.Code, got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hierarchy", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/hierarchy/Pete", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hierarchy/Pete/peers", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestRouter_PatternMethodsShareEntry(t *testing.T) {
	t.Parallel()

	r := NewRouter(testClassifier(t))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle(RouteClassAPI, http.MethodGet, "/hierarchy/{name}", ok)
	r.Handle(RouteClassAPI, http.MethodHead, "/hierarchy/{name}", ok)
	if len(r.patterns) != 1 || len(r.patterns[0].methods) != 2 {
		t.Fatalf("patterns=%d", len(r.patterns))
	}
}

func TestEntrypointClass_Fallback(t *testing.T) {
	t.Parallel()

	if got := entrypointClass(map[string]routeEntry{}, RouteClassOps); got != RouteClassOps {
		t.Fatalf("got=%q", got)
	}
}

func TestTraceIDFromRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("traceparent", "00-4BF92F3577B34DA6A3CE929D0E0E4736-00f067aa0ba902b7-01")
	if got := traceIDFromRequest(req); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("got=%q", got)
	}
	req.Header.Set("traceparent", "00-zz-00f067aa0ba902b7-01")
	if got := traceIDFromRequest(req); got != "" {
		t.Fatalf("got=%q", got)
	}
}

package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jacksonlee411/org-hierarchy/internal/config"
	"github.com/jacksonlee411/org-hierarchy/internal/routing"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/ports"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/infrastructure/persistence"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/presentation/controllers"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type HandlerOptions struct {
	Config config.Config
	Logger *logrus.Entry
	// Store defaults to an in-memory store.
	Store ports.HierarchyStore
	// Gatherer defaults to the prometheus default registry.
	Gatherer prometheus.Gatherer
}

func NewHandlerWithOptions(opts HandlerOptions) (http.Handler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	allowlistPath := opts.Config.Server.AllowlistPath
	if allowlistPath == "" {
		p, err := defaultAllowlistPath()
		if err != nil {
			return nil, err
		}
		allowlistPath = p
	}

	a, err := routing.LoadAllowlist(allowlistPath)
	if err != nil {
		return nil, err
	}

	classifier, err := routing.NewClassifier(a, "server")
	if err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		logger.Warn("no hierarchy store configured; using in-memory store")
		store = persistence.NewHierarchyMemoryStore()
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	hierarchy := controllers.HierarchyController{
		Service: services.NewEmployeeService(store, logger),
	}

	router := routing.NewRouter(classifier)
	router.Handle(routing.RouteClassOps, http.MethodGet, "/health", http.HandlerFunc(handleHealth))
	router.Handle(routing.RouteClassOps, http.MethodGet, "/healthz", http.HandlerFunc(handleHealth))
	router.Handle(routing.RouteClassOps, http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.Handle(routing.RouteClassAPI, http.MethodPost, "/hierarchy", http.HandlerFunc(hierarchy.HandleSolve))
	router.Handle(routing.RouteClassAPI, http.MethodGet, "/hierarchy/{name}", http.HandlerFunc(hierarchy.HandleSupervisors))

	guarded := withBasicAuth(a, opts.Config.Auth, router)
	traced := otelhttp.NewHandler(withRequestContext(classifier, logger, guarded), "hierarchy-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + string(classifier.Classify(r.URL.Path))
		}),
	)
	return traced, nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func defaultAllowlistPath() (string, error) {
	path := "config/routing/allowlist.yaml"
	for range 8 {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = filepath.Join("..", path)
	}
	return "", errors.New("server: allowlist not found")
}

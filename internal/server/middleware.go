package server

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jacksonlee411/org-hierarchy/internal/config"
	"github.com/jacksonlee411/org-hierarchy/internal/routing"
	"github.com/jacksonlee411/org-hierarchy/pkg/reqctx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hierarchy_http_requests_total",
	Help: "HTTP requests by route class, method and status code",
}, []string{"route_class", "method", "code"})

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// withRequestContext assigns the request id, echoes it in X-Request-Id and
// stores a request-scoped logger in the context.
func withRequestContext(classifier *routing.Classifier, base *logrus.Entry, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := strings.TrimSpace(r.Header.Get(reqctx.HeaderRequestID))
		if requestID == "" || len(requestID) > 128 {
			id, err := reqctx.NewRequestID()
			if err != nil {
				base.WithError(err).Warn("request id generation failed")
			}
			requestID = id
		}
		if requestID != "" {
			w.Header().Set(reqctx.HeaderRequestID, requestID)
		}

		logger := base.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		ctx := reqctx.WithLogger(reqctx.WithRequestID(r.Context(), requestID), logger)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(ctx))

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		rc := classifier.Classify(r.URL.Path)
		httpRequests.WithLabelValues(string(rc), r.Method, strconv.Itoa(status)).Inc()

		entry := logger.WithFields(logrus.Fields{
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if rc == routing.RouteClassOps {
			entry.Debug("request")
		} else {
			entry.Info("request")
		}
	})
}

// withBasicAuth guards the routes the allowlist marks auth: basic with one
// shared credential.
func withBasicAuth(a routing.Allowlist, auth config.AuthConfig, next http.Handler) http.Handler {
	realm := auth.Realm
	if realm == "" {
		realm = "hierarchy"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, ok := a.Find("server", r.URL.Path)
		if ok && !route.RequiresAuth() {
			next.ServeHTTP(w, r)
			return
		}

		gotUser, gotPass, present := r.BasicAuth()
		if !present || !credentialsMatch(gotUser, gotPass, auth) {
			reqctx.Logger(r.Context()).WithField("user", gotUser).Warn("basic auth rejected")
			w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
			routing.WriteError(w, r, routing.RouteClassAPI, http.StatusUnauthorized, "unauthorized", "unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func credentialsMatch(user, pass string, auth config.AuthConfig) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(auth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(auth.Password)) == 1
	return userOK && passOK
}

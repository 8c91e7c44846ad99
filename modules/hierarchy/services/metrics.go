package services

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("org-hierarchy.services")

var (
	solveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hierarchy_solve_total",
		Help: "Hierarchy solve requests by result",
	}, []string{"result"})

	solveEdges = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hierarchy_solve_edges",
		Help:    "Number of edges per hierarchy solve",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 to ~16k
	})

	lookupTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hierarchy_lookup_total",
		Help: "Hierarchy lookups by result",
	}, []string{"result"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hierarchy_operation_duration_seconds",
		Help:    "Hierarchy operation latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"operation"})
)

const (
	resultOK         = "ok"
	resultInvalid    = "invalid"
	resultNotFound   = "not_found"
	resultBadRequest = "bad_request"
	resultError      = "error"
)

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "EmployeeService."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, result string, err error) {
	span.SetAttributes(attribute.String("hierarchy.result", result))
	if err != nil && result == resultError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

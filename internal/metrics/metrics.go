// Package metrics объявляет prometheus-метрики сервиса объявлений.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace: общий префикс метрик.
const Namespace = "offer_service"

const (
	NameGateOperations   = "gate_operations_total"
	NameHTTPRequests     = "http_requests_total"
	NameHTTPDuration     = "http_request_duration_seconds"
	NameEventPublishFail = "event_publish_failures_total"
	LabelOperation       = "operation"
	LabelOutcome         = "outcome"
	LabelRoute           = "route"
	LabelMethod          = "method"
	LabelStatus          = "status"
	LabelKind            = "kind"
)

// Исходы операций над объявлениями.
const (
	OutcomeOK            = "ok"
	OutcomeUserNotFound  = "user_not_found"
	OutcomeOfferNotFound = "offer_not_found"
	OutcomeNotAuthorized = "not_authorized"
	OutcomeInvalid       = "invalid"
	OutcomeError         = "error"
)

var GateOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameGateOperations,
		Help:      "Offer operations by outcome",
		Namespace: Namespace,
	},
	[]string{LabelOperation, LabelOutcome},
)

var HTTPRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameHTTPRequests,
		Help:      "HTTP requests by route and status",
		Namespace: Namespace,
	},
	[]string{LabelMethod, LabelRoute, LabelStatus},
)

var HTTPDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:      NameHTTPDuration,
		Help:      "HTTP request latency",
		Namespace: Namespace,
		Buckets:   prometheus.DefBuckets,
	},
	[]string{LabelMethod, LabelRoute},
)

var EventPublishFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameEventPublishFail,
		Help:      "Lifecycle events that could not be published",
		Namespace: Namespace,
	},
	[]string{LabelKind},
)

// ObserveOperation увеличивает счётчик исхода операции.
func ObserveOperation(operation, outcome string) {
	GateOperations.WithLabelValues(operation, outcome).Inc()
}

// Middleware считает запросы и их длительность по шаблону маршрута chi.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

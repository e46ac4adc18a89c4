package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores Prometheus del servicio.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	CatsCreated     prometheus.Counter
	StatusChanges   prometheus.Counter
	GeocodeFailures prometheus.Counter
	AuthDenied      *prometheus.CounterVec
}

// New crea y registra las métricas en un registry propio
// (evita colisiones con el registry global en tests).
func New() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tnr_http_requests_total",
			Help: "Total de requests HTTP por método y status.",
		}, []string{"method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tnr_http_request_duration_seconds",
			Help:    "Duración de requests HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		CatsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tnr_cats_created_total",
			Help: "Total de gatos registrados.",
		}),
		StatusChanges: factory.NewCounter(prometheus.CounterOpts{
			Name: "tnr_status_changes_total",
			Help: "Total de cambios de estado TNR.",
		}),
		GeocodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "tnr_geocode_failures_total",
			Help: "Total de fallas de geocoding (best effort, nunca fatales).",
		}),
		AuthDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tnr_auth_denied_total",
			Help: "Total de requests denegados por la política de acceso.",
		}, []string{"reason"}),
	}

	return m, reg
}

// Handler expone /metrics sobre el registry dado.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Instrument: middleware chi que cuenta requests y mide duración.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		m.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		m.RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

package mid

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/hamidoujand/user-service/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the http collectors exposed on /metrics.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"path", "method", "status"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// Middleware records one observation per request, labelled by the route
// pattern so path ids do not explode the label space.
func (m *Metrics) Middleware() web.Middleware {
	mid := func(h web.Handler) web.Handler {
		handler := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := h(ctx, w, r)

			path := r.Pattern
			if path == "" {
				path = r.URL.Path
			}

			status := web.GetStatusCode(ctx)
			if status == 0 && err != nil {
				status = http.StatusInternalServerError
			}

			m.requests.WithLabelValues(path, r.Method, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(path, r.Method).Observe(time.Since(web.GetStartedAt(ctx)).Seconds())

			return err
		}
		return handler
	}
	return mid
}

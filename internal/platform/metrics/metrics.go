package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the listing service collectors. It satisfies the
// application Metrics port.
type Recorder struct {
	HTTPRequests    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Submissions     *prometheus.CounterVec
	Moderation      *prometheus.CounterVec
	Notifications   *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	return &Recorder{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoboard_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autoboard_http_request_duration_seconds",
				Help:    "Histogram of response durations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoboard_listing_submissions_total",
				Help: "Listings created, by submission path",
			},
			[]string{"path"},
		),
		Moderation: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoboard_moderation_actions_total",
				Help: "Moderation decisions applied, by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoboard_notifications_total",
				Help: "Notification deliveries, by fan-out rule and result",
			},
			[]string{"rule", "result"},
		),
	}
}

// Register adds every collector to reg. Pass prometheus.DefaultRegisterer
// in the process and a fresh registry in tests.
func (r *Recorder) Register(reg prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{
		r.HTTPRequests,
		r.RequestDuration,
		r.Submissions,
		r.Moderation,
		r.Notifications,
	} {
		if err := reg.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) ListingSubmitted(path string) {
	r.Submissions.WithLabelValues(path).Inc()
}

func (r *Recorder) ModerationAction(action string, outcome string) {
	r.Moderation.WithLabelValues(action, outcome).Inc()
}

func (r *Recorder) NotificationsDispatched(rule string, delivered int, failed int) {
	if delivered > 0 {
		r.Notifications.WithLabelValues(rule, "delivered").Add(float64(delivered))
	}
	if failed > 0 {
		r.Notifications.WithLabelValues(rule, "failed").Add(float64(failed))
	}
}

// Middleware counts requests by matched route pattern so listing ids do not
// explode label cardinality.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := req.Pattern
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.HTTPRequests.WithLabelValues(route, req.Method, strconv.Itoa(status)).Inc()
		r.RequestDuration.WithLabelValues(route, req.Method).Observe(time.Since(start).Seconds())
	})
}

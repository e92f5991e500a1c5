package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewledger_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crewledger_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ProjectsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crewledger_projects_created_total",
		Help: "Projects created",
	})

	OTPSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crewledger_otp_sent_total",
		Help: "One-time passwords issued and mailed",
	})

	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewledger_otp_verifications_total",
			Help: "OTP verification attempts by result",
		},
		[]string{"result"},
	)

	OTPSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crewledger_otp_swept_total",
		Help: "Expired one-time passwords cleared by the sweeper",
	})
)

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

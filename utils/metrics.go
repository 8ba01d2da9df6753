package utils

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatcount_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "eatcount_request_duration_seconds",
			Help: "Request duration seconds",
		},
		[]string{"method", "path"},
	)

	EstimationCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eatcount_estimations_total",
			Help: "Calorie estimation calls by key mode and outcome",
		},
		[]string{"key_mode", "outcome"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(ReqCount, ReqDuration, EstimationCount)
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ScreenLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trendboard",
			Subsystem: "screener",
			Name:      "request_seconds",
			Help:      "Latency of screening endpoints",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"endpoint"},
	)

	ScreenErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trendboard",
			Subsystem: "screener",
			Name:      "request_errors_total",
			Help:      "Errors by screening endpoint",
		},
		[]string{"endpoint"},
	)

	RowsServed = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trendboard",
			Subsystem: "screener",
			Name:      "rows_served",
			Help:      "Rows left after filtering, per request",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ScreenLatency, ScreenErrors, RowsServed)
	})
}

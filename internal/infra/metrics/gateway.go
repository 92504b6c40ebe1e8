package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		GatewayRequests,
		GatewayRequestDuration,
	)
}

// Gateway call results. Bounded so the label set stays small.
const (
	ResultOK           = "ok"
	ResultRemoteError  = "remote_error"
	ResultNetworkError = "network_error"
	ResultInvalid      = "invalid"
)

var (
	// Count of PayChangu calls grouped by operation and result.
	// operation: create_payment|verify_payment|list_banks|mobile_payout|bank_payout|verify_payout
	// result: ok|remote_error|network_error|invalid
	GatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paychangu_requests_total",
			Help: "Count of PayChangu API calls by operation and result.",
		},
		[]string{"operation", "result"},
	)

	// Round-trip latency of calls that reached the network.
	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paychangu_request_duration_seconds",
			Help:    "Duration of PayChangu API calls in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation"},
	)
)

func ObserveGatewayCall(operation, result string, elapsed time.Duration) {
	GatewayRequests.WithLabelValues(norm(operation), norm(result)).Inc()
	if result != ResultInvalid {
		GatewayRequestDuration.WithLabelValues(norm(operation)).Observe(elapsed.Seconds())
	}
}

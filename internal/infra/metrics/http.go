package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(httpRequestsTotal, httpAuthTotal)
}

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_http_requests_total",
			Help: "Relay API requests by method, route pattern and status code.",
		},
		[]string{"method", "route", "code"},
	)

	httpAuthTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_http_auth_total",
			Help: "Tracks admin key checks on the relay API.",
		},
		[]string{"status"}, // status: 'authorized', 'unauthorized'
	)
)

func IncHTTPRequest(method, route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

func IncAuth(status string) {
	httpAuthTotal.WithLabelValues(norm(status)).Inc()
}

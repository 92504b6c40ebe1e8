// Package metrics holds the Prometheus collectors for gateway traffic and the
// relay HTTP server. Each file enqueues its collectors from init(); call
// MustRegister once at startup.
package metrics

import "strings"

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Package metrics serves operation counters in Prometheus text format on a
// dedicated listener.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// MetricsServer exposes the process metrics endpoint.
type MetricsServer struct {
	srv  *http.Server
	name string
}

// New creates a metrics server for the given service name listening on addr.
func New(name, addr string) (*MetricsServer, error) {
	if name == "" {
		return nil, fmt.Errorf("metrics server needs a service name")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	return &MetricsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		name: name,
	}, nil
}

// ListenAndServe blocks serving the metrics endpoint.
func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics listener.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// IncOperation counts one API operation with its outcome ("ok" or the error
// kind mapped at the HTTP boundary).
func IncOperation(op, outcome string) {
	metrics.GetOrCreateCounter(
		fmt.Sprintf(`deed_operations_total{op=%q,outcome=%q}`, op, outcome)).Inc()
}

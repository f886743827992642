// Package metrics provides Prometheus metrics for pinetsh sessions.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command outcome labels
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusNotFound = "not_found"
)

// Metrics holds the collectors of one process
type Metrics struct {
	registry *prometheus.Registry

	commandsTotal *prometheus.CounterVec
	vfsNodes      prometheus.Gauge
	sessions      prometheus.Gauge
}

// New creates collectors registered on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pinetsh_commands_total",
				Help: "Total number of dispatched shell commands",
			},
			[]string{"command", "status"},
		),
		vfsNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pinetsh_vfs_nodes",
				Help: "Number of files/directories in the virtual filesystem",
			},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pinetsh_sessions_active",
				Help: "Number of open shell sessions",
			},
		),
	}

	m.registry.MustRegister(m.commandsTotal, m.vfsNodes, m.sessions)
	return m
}

// RecordCommand counts one dispatched command
func (m *Metrics) RecordCommand(command, status string) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(command, status).Inc()
}

// SetVFSNodes reports the size of the tree
func (m *Metrics) SetVFSNodes(n int) {
	if m == nil {
		return
	}
	m.vfsNodes.Set(float64(n))
}

// SessionOpened increments the active session gauge
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

// SessionClosed decrements the active session gauge
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}

// Gatherer exposes the private registry
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Package telemetry exposes Prometheus counters/gauges for the router and
// send path (spec SPEC_FULL §4.10). It replaces the teacher's hand-rolled
// map[string]uint64 counters (internal/metrics.go in the teacher repo) with
// github.com/prometheus/client_golang, grounded on the dependency carried
// by rockstar-0000-aistore/go.mod: this package's label sets (one label per
// opcode name) are exactly the low-cardinality shape prometheus vectors are
// built for, and the teacher's own /metrics text-format writer
// (writeCounterVec/writeGaugeVec) is superseded rather than reinvented.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mangosgo/wowcore/internal/wowerr"
)

var (
	dispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wowcore_router_dispatched_total",
		Help: "Packets dispatched to a registered opcode slot, by opcode.",
	}, []string{"opcode"})

	droppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wowcore_router_dropped_total",
		Help: "Packets shed from a subscriber's backlog, by opcode.",
	}, []string{"opcode"})

	unhandledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wowcore_router_unhandled_total",
		Help: "Packets for opcodes that were never registered, by opcode.",
	}, []string{"opcode"})

	sendTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wowcore_send_total",
		Help: "Outbound packets written to the connection, by opcode.",
	}, []string{"opcode"})

	sendErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wowcore_send_errors_total",
		Help: "Outbound send failures, by opcode and error kind.",
	}, []string{"opcode", "kind"})

	connectionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wowcore_connection_state",
		Help: "1 if the world connection is up, 0 otherwise.",
	})

	cipherInstalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wowcore_headercipher_installs_total",
		Help: "Number of times the header cipher session key was installed.",
	})
)

func IncDispatched(op string) { dispatchedTotal.WithLabelValues(op).Inc() }
func IncDropped(op string)    { droppedTotal.WithLabelValues(op).Inc() }
func IncUnhandled(op string)  { unhandledTotal.WithLabelValues(op).Inc() }

func IncSend(op string)            { sendTotal.WithLabelValues(op).Inc() }
func IncSendError(op, kind string) { sendErrorsTotal.WithLabelValues(op, kind).Inc() }

func SetConnected(connected bool) {
	if connected {
		connectionState.Set(1)
		return
	}
	connectionState.Set(0)
}

func IncCipherInstall() { cipherInstalls.Inc() }

// StartServer serves /metrics on addr until ctx is cancelled, matching the
// teacher's StartMetricsServer lifecycle (http.Server + ctx.Done()-triggered
// Shutdown with a short grace period).
func StartServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return wowerr.Wrap(err, "telemetry server")
	}
	return nil
}

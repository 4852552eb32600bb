// Package metrics registers the engine's Prometheus counters and serves them
// over HTTP. Counters are updated off the decision branch, never inside it.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_total", Help: "Count of market data trades ingested"},
		[]string{"symbol"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders passed risk and handed to the gateway"},
		[]string{"symbol", "side"},
	)
	RiskRejectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "risk_rejects_total", Help: "Orders rejected by the pre-trade risk gate"},
		[]string{"symbol"},
	)
	AuditLogDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "audit_log_drops_total", Help: "Audit records dropped on a full logger queue"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, OrdersTotal, RiskRejectsTotal, AuditLogDropsTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}

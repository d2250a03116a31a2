// FILE: metrics/metrics.go
// Prometheus instrumentation for the monitor:
//   • termwatch_events_logged_total{event_type} – records committed to the stores
//   • termwatch_notify_failures_total           – dropped notification deliveries
//   • termwatch_sessions_opened_total           – successful terminal sessions
//   • termwatch_connect_failures_total          – failed session opens
//   • termwatch_supervisor_state{state}         – 1 for the current state, 0 otherwise
//   • termwatch_terminal_ready                  – last readiness poll result
//
// Registered in init() and served by the web package at /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	EventsLogged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "termwatch_events_logged_total",
			Help: "Activity records committed to both stores",
		},
		[]string{"event_type"},
	)

	NotifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "termwatch_notify_failures_total",
			Help: "Notification deliveries that failed and were dropped",
		},
	)

	SessionsOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "termwatch_sessions_opened_total",
			Help: "Terminal sessions opened successfully",
		},
	)

	ConnectFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "termwatch_connect_failures_total",
			Help: "Terminal session opens that failed",
		},
	)

	SupervisorState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "termwatch_supervisor_state",
			Help: "Current supervisor state (1 for active state)",
		},
		[]string{"state"},
	)

	TerminalReady = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "termwatch_terminal_ready",
			Help: "Whether the terminal process was present on the last poll",
		},
	)
)

func init() {
	prometheus.MustRegister(
		EventsLogged,
		NotifyFailures,
		SessionsOpened,
		ConnectFailures,
		SupervisorState,
		TerminalReady,
	)
}

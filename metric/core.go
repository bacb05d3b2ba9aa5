package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CoreMetrics holds the framework-level metrics shared by every bot instance.
// Individual components register their own metrics through Registry.Register.
type CoreMetrics struct {
	connectionStatus *prometheus.GaugeVec
	linesReceived    *prometheus.CounterVec
	linesSent        *prometheus.CounterVec
	eventsDispatched *prometheus.CounterVec
	handlerErrors    *prometheus.CounterVec
	reconnects       *prometheus.CounterVec
	livenessProbes   *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

func newCoreMetrics() *CoreMetrics {
	return &CoreMetrics{
		connectionStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ircbot",
			Name:      "connection_status",
			Help:      "Connection state (0=idle, 1=connecting, 2=connected, 3=shutting_down)",
		}, []string{"bot"}),
		linesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ircbot",
			Name:      "lines_received_total",
			Help:      "Total protocol lines received from the server",
		}, []string{"bot"}),
		linesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ircbot",
			Name:      "lines_sent_total",
			Help:      "Total protocol lines written to the server",
		}, []string{"bot"}),
		eventsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ircbot",
			Name:      "events_dispatched_total",
			Help:      "Events dispatched to listeners by event type",
		}, []string{"bot", "type"}),
		handlerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ircbot",
			Name:      "handler_errors_total",
			Help:      "Errors returned or panics recovered from listener handlers",
		}, []string{"bot"}),
		reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ircbot",
			Name:      "reconnects_total",
			Help:      "Reconnect attempts by outcome",
		}, []string{"bot", "outcome"}),
		livenessProbes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ircbot",
			Name:      "liveness_probes_total",
			Help:      "PING probes sent after idle read timeouts",
		}, []string{"bot"}),
		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ircbot",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent dispatching a single event to all listeners",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"bot"}),
	}
}

func (c *CoreMetrics) register(r *Registry) {
	_ = r.Register("core", "connection_status", c.connectionStatus)
	_ = r.Register("core", "lines_received", c.linesReceived)
	_ = r.Register("core", "lines_sent", c.linesSent)
	_ = r.Register("core", "events_dispatched", c.eventsDispatched)
	_ = r.Register("core", "handler_errors", c.handlerErrors)
	_ = r.Register("core", "reconnects", c.reconnects)
	_ = r.Register("core", "liveness_probes", c.livenessProbes)
	_ = r.Register("core", "dispatch_duration", c.dispatchDuration)
}

// RecordConnectionStatus records the lifecycle state of a bot
func (c *CoreMetrics) RecordConnectionStatus(bot string, status int) {
	c.connectionStatus.WithLabelValues(bot).Set(float64(status))
}

// RecordLineReceived counts one inbound protocol line
func (c *CoreMetrics) RecordLineReceived(bot string) {
	c.linesReceived.WithLabelValues(bot).Inc()
}

// RecordLineSent counts one outbound protocol line
func (c *CoreMetrics) RecordLineSent(bot string) {
	c.linesSent.WithLabelValues(bot).Inc()
}

// RecordEventDispatched counts one dispatched event
func (c *CoreMetrics) RecordEventDispatched(bot, eventType string) {
	c.eventsDispatched.WithLabelValues(bot, eventType).Inc()
}

// RecordHandlerError counts one listener handler failure
func (c *CoreMetrics) RecordHandlerError(bot string) {
	c.handlerErrors.WithLabelValues(bot).Inc()
}

// RecordReconnect counts one reconnect attempt with outcome "success" or "failure"
func (c *CoreMetrics) RecordReconnect(bot, outcome string) {
	c.reconnects.WithLabelValues(bot, outcome).Inc()
}

// RecordLivenessProbe counts one idle-timeout PING probe
func (c *CoreMetrics) RecordLivenessProbe(bot string) {
	c.livenessProbes.WithLabelValues(bot).Inc()
}

// RecordDispatchDuration records the time taken to dispatch one event
func (c *CoreMetrics) RecordDispatchDuration(bot string, d time.Duration) {
	c.dispatchDuration.WithLabelValues(bot).Observe(d.Seconds())
}

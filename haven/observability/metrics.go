// haven/observability/metrics.go
package observability

import (
	"net/http"
	"time"

	"haven/haven/support"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "haven"

// Metrics holds the chat counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ChatMessages         *prometheus.CounterVec
	ConversationsCreated prometheus.Counter
	ChatDuration         *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ChatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "User messages processed, by assessed risk level",
		}, []string{"risk_level"}),
		ConversationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversations_created_total",
			Help:      "Conversations started through the chat endpoint",
		}),
		ChatDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_duration_seconds",
			Help:      "Time spent handling one chat message",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	reg.MustRegister(m.ChatMessages, m.ConversationsCreated, m.ChatDuration)
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func (m *Metrics) ObserveMessage(level support.RiskLevel, created bool) {
	m.ChatMessages.WithLabelValues(level.String()).Inc()
	if created {
		m.ConversationsCreated.Inc()
	}
}

func (m *Metrics) ObserveDuration(start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ChatDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver counts events by type and severity in a Prometheus counter
// vector named chatwidget_events_total.
type MetricsObserver struct {
	events *prometheus.CounterVec
}

// NewMetricsObserver creates a MetricsObserver and registers its collector
// with reg.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatwidget",
		Name:      "events_total",
		Help:      "Observability events emitted by the chat widget, by type and level.",
	}, []string{"type", "level"})

	if err := reg.Register(events); err != nil {
		return nil, fmt.Errorf("register events counter: %w", err)
	}
	return &MetricsObserver{events: events}, nil
}

func (o *MetricsObserver) OnEvent(ctx context.Context, event Event) {
	o.events.WithLabelValues(string(event.Type), event.Level.String()).Inc()
}

// Collector exposes the underlying counter vector, mainly for tests.
func (o *MetricsObserver) Collector() *prometheus.CounterVec {
	return o.events
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
)

// Recorder counts relay decisions per operation and outcome.
type Recorder struct {
	outcomes    *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
	delivered   *prometheus.CounterVec
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anonrelay",
			Name:      "outcomes_total",
			Help:      "Relay decisions by operation and outcome.",
		}, []string{"operation", "outcome"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anonrelay",
			Name:      "rate_limited_total",
			Help:      "Rejected send attempts by rate limit reason.",
		}, []string{"reason"}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anonrelay",
			Name:      "delivered_total",
			Help:      "Delivered messages by content kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(r.outcomes, r.rateLimited, r.delivered)
	return r
}

func (r *Recorder) Observe(operation string, o domain.Outcome) {
	r.outcomes.WithLabelValues(operation, o.Kind.String()).Inc()

	switch o.Kind {
	case domain.OutcomeRateLimited:
		r.rateLimited.WithLabelValues(string(o.Reason)).Inc()
	case domain.OutcomeDelivered:
		if o.Content != nil {
			r.delivered.WithLabelValues(string(o.Content.Kind())).Inc()
		}
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the scheduler's prometheus collectors.
type Metrics struct {
	Ticks          prometheus.Counter
	Fired          *prometheus.CounterVec
	DeliveryErrors prometheus.Counter
	OnceDeleted    prometheus.Counter
}

// New registers and returns the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "reminder_scheduler_ticks_total",
			Help: "Number of completed scheduler evaluation passes.",
		}),
		Fired: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_fired_total",
			Help: "Number of reminders fired, by recurrence kind.",
		}, []string{"recurrence"}),
		DeliveryErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "reminder_delivery_errors_total",
			Help: "Number of failed reminder deliveries.",
		}),
		OnceDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "reminder_once_deleted_total",
			Help: "Number of one-time reminders deleted after firing.",
		}),
	}
}

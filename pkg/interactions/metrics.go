package interactions

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	dropReasonDuplicate = "duplicate"
	dropReasonCooldown  = "cooldown"
	dropReasonUnknown   = "unknown_route"
)

var (
	// InteractionDuration is the time taken to handle an interaction, delivery included.
	InteractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "interactions_duration_seconds",
			Help: "Duration of interaction handling",
		},
		[]string{"kind", "name", "outcome"},
	)

	// InteractionsDropped counts interactions that were not handed to a handler.
	InteractionsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_dropped_total",
			Help: "Total number of interactions not dispatched",
		},
		[]string{"reason"},
	)

	// DeliveryFailures counts responses that could not be delivered at all.
	DeliveryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interactions_delivery_failures_total",
			Help: "Total number of responses that could not be delivered",
		},
	)
)

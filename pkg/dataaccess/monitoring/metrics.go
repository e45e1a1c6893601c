// Package monitoring holds the storage metrics shared by every store driver.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "satla"
	subsystem = "store"
)

var storeLabels = []string{"driver", "dal", "operation", "collection"}

var (
	// StoreOperationDuration is how long a store call took, in seconds.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Duration of guild and ticket store calls",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		storeLabels,
	)

	// StoreOperations counts the store calls made.
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operations_total",
			Help:      "Number of guild and ticket store calls",
		},
		storeLabels,
	)
)

// StartOperation counts a store call and returns the timer to observe when it returns.
func StartOperation(driver, dal, operation, collection string) *prometheus.Timer {
	StoreOperations.WithLabelValues(driver, dal, operation, collection).Inc()
	return prometheus.NewTimer(StoreOperationDuration.WithLabelValues(driver, dal, operation, collection))
}

package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cakelora",
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Cart mutations by operation.",
		},
		[]string{"operation"},
	)

	cartPersistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cakelora",
			Subsystem: "cart",
			Name:      "persist_failures_total",
			Help:      "Cart snapshots that could not be written to the slot store.",
		},
	)

	cartRestoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cakelora",
			Subsystem: "cart",
			Name:      "restores_total",
			Help:      "Cart snapshot loads by outcome.",
		},
		[]string{"outcome"},
	)

	cartRestoreDroppedItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cakelora",
			Subsystem: "cart",
			Name:      "restore_dropped_items_total",
			Help:      "Snapshot lines dropped on load, by reason.",
		},
		[]string{"reason"},
	)

	cartActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cakelora",
			Subsystem: "cart",
			Name:      "active_sessions",
			Help:      "Cart managers currently held in memory.",
		},
	)

	customOrdersSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cakelora",
			Subsystem: "custom_order",
			Name:      "submitted_total",
			Help:      "Custom cake requests accepted, by category.",
		},
		[]string{"category"},
	)
)

// Restore outcomes.
const (
	restoreEmpty    = "empty"
	restoreRestored = "restored"
	restoreCorrupt  = "corrupt"
	restoreError    = "error"
)

// Reasons a persisted line is dropped on load.
const (
	dropUnknownProduct = "unknown_product"
	dropUnknownSize    = "unknown_size"
	dropSizeNotOffered = "size_not_offered"
	dropBadQuantity    = "bad_quantity"
)

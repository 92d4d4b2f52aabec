package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conflict stages.
const (
	conflictStageCheck  = "check"
	conflictStageInsert = "insert"
)

var (
	bookingConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_conflicts_total",
		Help: "Reservation commits rejected because the slot was taken, by the stage that caught it",
	}, []string{"stage"})

	reservationsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_committed_total",
		Help: "Reservations written with status requested",
	})

	slotFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slot_list_fallbacks_total",
		Help: "Slot listings served from the default grid because the shop's list was unusable",
	})
)

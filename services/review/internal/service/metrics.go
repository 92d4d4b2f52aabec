package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ratingRecomputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rating_recomputations_total",
		Help: "Shop rating recomputations by result",
	}, []string{"result"})

	ratingDocumentsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rating_documents_skipped_total",
		Help: "Review documents left out of a rating because their rating was not a number",
	})
)

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sanrentan_submissions_total",
		Help: "Guess submissions by outcome.",
	}, []string{"result"})

	answersPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sanrentan_answers_published_total",
		Help: "Correct answers published by the organizer.",
	})

	submissionsScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sanrentan_submissions_scored_total",
		Help: "Submissions scored across all publish passes.",
	})
)

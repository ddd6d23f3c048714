package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intake_submissions_created_total",
		Help: "Number of submissions persisted",
	})

	referenceCodeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intake_reference_code_collisions_total",
		Help: "Number of reference codes rejected by the unique constraint",
	})

	statusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_status_updates_total",
		Help: "Number of status updates by target status",
	}, []string{"status"})
)

package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var incidentsOpened = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_incidents_opened_total",
	Help: "Number of incidents opened, by origin",
}, []string{"origin"})

var incidentsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_incidents_resolved_total",
	Help: "Number of incident resolutions, by decision",
}, []string{"decision"})

var appealsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_appeals_created_total",
	Help: "Number of appeals filed by sellers",
})

var appealsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_appeals_resolved_total",
	Help: "Number of appeal resolutions, by final decision",
}, []string{"decision"})

var scanFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_scan_failures_total",
	Help: "Automatic detection runs that failed and were skipped",
})

var transitionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_transitions_rejected_total",
	Help: "State transitions refused, by entity and reason",
}, []string{"entity", "reason"})

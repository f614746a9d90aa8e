// Package metrics holds the prometheus collectors shared by the stores.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "furrystore"

	metricLabelOrigin  = "origin"
	metricLabelBackend = "backend"
	metricLabelStatus  = "status"
	metricLabelReason  = "reason"
	metricLabelArea    = "area"
)

// Label values.
const (
	OriginLocal  = "local"
	OriginRemote = "remote"

	StatusOK    = "ok"
	StatusError = "error"

	ReasonAbsent    = "absent"
	ReasonMalformed = "malformed"
	ReasonReadError = "read_error"
)

var (
	// NoticesPublished counts change notices delivered through a bus.
	NoticesPublished = newCounterVec(
		"notices_published_total",
		"Number of change notices published on a notification bus",
		metricLabelOrigin,
	)
	// Writes counts commits to a source of truth.
	Writes = newCounterVec(
		"writes_total",
		"Number of commits to a store source of truth",
		metricLabelBackend, metricLabelStatus,
	)
	// Fallbacks counts snapshot reads answered by the initial value.
	Fallbacks = newCounterVec(
		"fallbacks_total",
		"Number of snapshot reads that fell back to the initial value",
		metricLabelBackend, metricLabelReason,
	)
	// CrossTabReceived counts notices received from other execution contexts.
	CrossTabReceived = newCounterVec(
		"crosstab_received_total",
		"Number of cross-context notices accepted for an area",
		metricLabelArea,
	)
	// CrossTabBroadcastFailed counts broadcasts that could not be sent.
	CrossTabBroadcastFailed = newCounterVec(
		"crosstab_broadcast_failed_total",
		"Number of cross-context broadcasts that failed",
		metricLabelArea,
	)
	// Subscriptions tracks live bus subscriptions.
	Subscriptions = newGaugeVec(
		"subscriptions",
		"Number of live notification bus subscriptions",
	)
)

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newGaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

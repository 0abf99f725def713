package controllers

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	controllerReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plugindeps_controller_reconcile_total",
			Help: "Number of reconciliations by controller.",
		},
		[]string{"controller"},
	)
	controllerReconcileErrorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plugindeps_controller_reconcile_error_total",
			Help: "Number of reconciliation errors by controller.",
		},
		[]string{"controller"},
	)

	activationBlocked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "plugindeps_activation_blocked",
			Help: "Number of activations blocked in the last PluginActivation reconcile.",
		},
	)
	activationBlockedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plugindeps_activation_blocked_total",
			Help: "Total number of plugin activations blocked by unmet dependencies.",
		},
	)
	deactivationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plugindeps_deactivations_total",
			Help: "Total number of plugins deactivated by the controller, by reason.",
		},
		[]string{"reason"},
	)

	resolutionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plugindeps_resolution_duration_seconds",
			Help:    "Time taken to build the dependency graph and plan an activation.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	metrics.Registry.MustRegister(
		controllerReconcileTotal,
		controllerReconcileErrorTotal,
		activationBlocked,
		activationBlockedTotal,
		deactivationsTotal,
		resolutionDuration,
	)
}

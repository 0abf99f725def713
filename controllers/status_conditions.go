package controllers

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	pluginsv1alpha1 "github.com/anvil-platform/plugindeps/api/v1alpha1"
)

const (
	ActivationConditionDependenciesSatisfied = "DependenciesSatisfied"
	ActivationConditionApplied               = "Applied"

	ActivationPhaseApplied = "Applied"
	ActivationPhaseBlocked = "Blocked"
)

func setActivationCondition(pa *pluginsv1alpha1.PluginActivation, condition metav1.Condition) {
	if pa == nil {
		return
	}
	condition.ObservedGeneration = pa.Generation
	meta.SetStatusCondition(&pa.Status.Conditions, condition)
}

func summarizeBlocked(blocked []pluginsv1alpha1.BlockedActivation) string {
	// Keep this human-readable and bounded.
	if len(blocked) == 0 {
		return ""
	}
	limit := 4
	parts := make([]string, 0, min(len(blocked), limit))
	for i := 0; i < len(blocked) && i < limit; i++ {
		b := blocked[i]
		parts = append(parts, fmt.Sprintf("%s requires %s", b.Plugin, strings.Join(b.Unsatisfied, ", ")))
	}
	if len(blocked) > limit {
		parts = append(parts, fmt.Sprintf("...and %d more", len(blocked)-limit))
	}
	return strings.Join(parts, "; ")
}

func appliedMessage(active int, deactivated []pluginsv1alpha1.DeactivatedPlugin) string {
	if len(deactivated) == 0 {
		return fmt.Sprintf("%d plugins active", active)
	}
	names := make([]string, 0, len(deactivated))
	for _, d := range deactivated {
		names = append(names, d.Plugin)
	}
	return fmt.Sprintf("%d plugins active; also deactivated: %s", active, strings.Join(names, ", "))
}

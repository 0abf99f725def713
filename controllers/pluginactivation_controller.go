package controllers

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	pluginsv1alpha1 "github.com/anvil-platform/plugindeps/api/v1alpha1"
	"github.com/anvil-platform/plugindeps/internal/graph"
	"github.com/anvil-platform/plugindeps/internal/publish"
	"github.com/anvil-platform/plugindeps/internal/resolver"
)

// PluginActivationReconciler is the host side of dependency resolution: it resolves a
// PluginActivation's requested plugins against the installed Plugins and commits the
// result.
//
// RBAC:
// +kubebuilder:rbac:groups=plugins.anvil.dev,resources=plugins,verbs=get;list;watch
// +kubebuilder:rbac:groups=plugins.anvil.dev,resources=pluginactivations,verbs=get;list;watch;update;patch
// +kubebuilder:rbac:groups=plugins.anvil.dev,resources=pluginactivations/status,verbs=get;update;patch
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch;update
type PluginActivationReconciler struct {
	client.Client
	Scheme    *runtime.Scheme
	Recorder  record.EventRecorder
	Publisher publish.Publisher
}

func (r *PluginActivationReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	controllerReconcileTotal.WithLabelValues("PluginActivation").Inc()

	logger := log.FromContext(ctx).WithValues(
		"controller", "PluginActivation",
		"namespace", req.Namespace,
		"activation", req.Name,
	)

	// 1) Load the activation.
	var pa pluginsv1alpha1.PluginActivation
	if err := r.Get(ctx, req.NamespacedName, &pa); err != nil {
		if client.IgnoreNotFound(err) == nil {
			return ctrl.Result{}, nil
		}
		controllerReconcileErrorTotal.WithLabelValues("PluginActivation").Inc()
		return ctrl.Result{}, err
	}
	scope := activationScope(&pa)
	logger = logger.WithValues("scope", scope)

	// 2) Snapshot the installed plugins.
	var plugins pluginsv1alpha1.PluginList
	if err := r.List(ctx, &plugins, client.InNamespace(req.Namespace)); err != nil {
		logger.Error(err, "failed to list plugins")
		controllerReconcileErrorTotal.WithLabelValues("PluginActivation").Inc()
		return ctrl.Result{}, err
	}

	// 3) Network active set, for sites.
	in := activationInput{
		Scope:   scope,
		Desired: sets.New(pa.Spec.Plugins...),
		Applied: sets.New(pa.Status.Active...),
	}
	if scope == resolver.ScopeLocal {
		network, err := r.networkActivation(ctx, req.Namespace)
		if err != nil {
			logger.Error(err, "failed to load network activation")
			controllerReconcileErrorTotal.WithLabelValues("PluginActivation").Inc()
			return ctrl.Result{}, err
		}
		in.Network = sets.New[string]()
		if network != nil {
			in.Network.Insert(network.Status.Active...)
		}
		in.PreviousNetwork = sets.New(pa.Status.NetworkPlugins...)
	}

	// 4) Resolve.
	start := time.Now()
	g := graph.Build(componentsFromPlugins(plugins.Items))
	plan := planActivation(g, in)
	resolutionDuration.Observe(time.Since(start).Seconds())

	logger.Info(
		"resolved activation",
		"pluginCount", g.Len(),
		"requestedCount", in.Desired.Len(),
		"activeCount", plan.Active.Len(),
		"deactivatedCount", len(plan.Deactivated),
		"blockedCount", len(plan.Blocked),
	)
	for _, d := range plan.Deactivated {
		logger.V(1).Info("deactivating plugin", "plugin", d.Plugin, "reason", d.Reason)
		deactivationsTotal.WithLabelValues(string(d.Reason)).Inc()
	}
	for _, b := range plan.Blocked {
		logger.V(1).Info("activation blocked", "plugin", b.Plugin, "unsatisfied", b.Unsatisfied)
	}
	for _, id := range plan.NetworkConflicts {
		logger.Info("site plugin conflicts with a network-active plugin", "plugin", id)
	}
	activationBlocked.Set(float64(len(plan.Blocked)))
	if len(plan.Blocked) > 0 {
		activationBlockedTotal.Add(float64(len(plan.Blocked)))
	}

	// 5) Commit: status first, then drop deactivated plugins from spec. Blocked plugins
	// stay requested and are retried on every reconcile.
	if err := r.patchActivationStatus(ctx, &pa, in, plan); err != nil {
		logger.Error(err, "failed to patch activation status")
		controllerReconcileErrorTotal.WithLabelValues("PluginActivation").Inc()
		return ctrl.Result{}, err
	}
	if requested := plan.requested(in.Desired); !sets.New(pa.Spec.Plugins...).Equal(requested) {
		before := pa.DeepCopy()
		pa.Spec.Plugins = sets.List(requested)
		if err := r.Patch(ctx, &pa, client.MergeFrom(before)); err != nil {
			logger.Error(err, "failed to patch activation spec")
			controllerReconcileErrorTotal.WithLabelValues("PluginActivation").Inc()
			return ctrl.Result{}, err
		}
	}

	// 6) Tell people about it.
	r.recordOutcome(&pa, plan)
	if len(plan.Deactivated) > 0 || len(plan.Blocked) > 0 {
		if err := r.notify(ctx, &pa, plan); err != nil {
			// Notifications are best effort; the state is already committed.
			logger.Error(err, "failed to publish activation change")
		}
	}

	return ctrl.Result{}, nil
}

func (r *PluginActivationReconciler) patchActivationStatus(ctx context.Context, pa *pluginsv1alpha1.PluginActivation, in activationInput, plan activationPlan) error {
	before := pa.DeepCopy()

	pa.Status.ObservedGeneration = pa.Generation
	pa.Status.Active = sets.List(plan.Active)
	pa.Status.NetworkPlugins = nil
	if in.Network.Len() > 0 {
		pa.Status.NetworkPlugins = sets.List(in.Network)
	}
	pa.Status.Blocked = mergeBlocked(pa.Status.Blocked, plan)
	if len(plan.Deactivated) > 0 {
		pa.Status.RecentlyDeactivated = plan.Deactivated
	}

	setActivationCondition(pa, metav1.Condition{
		Type:    ActivationConditionApplied,
		Status:  metav1.ConditionTrue,
		Reason:  "Applied",
		Message: appliedMessage(plan.Active.Len(), plan.Deactivated),
	})
	if len(pa.Status.Blocked) > 0 {
		pa.Status.Phase = ActivationPhaseBlocked
		pa.Status.Message = summarizeBlocked(pa.Status.Blocked)
		setActivationCondition(pa, metav1.Condition{
			Type:    ActivationConditionDependenciesSatisfied,
			Status:  metav1.ConditionFalse,
			Reason:  "ActivationBlocked",
			Message: pa.Status.Message,
		})
	} else {
		pa.Status.Phase = ActivationPhaseApplied
		pa.Status.Message = appliedMessage(plan.Active.Len(), plan.Deactivated)
		setActivationCondition(pa, metav1.Condition{
			Type:    ActivationConditionDependenciesSatisfied,
			Status:  metav1.ConditionTrue,
			Reason:  "Satisfied",
			Message: "All active plugins have their dependencies satisfied",
		})
	}

	return r.Status().Patch(ctx, pa, client.MergeFrom(before))
}

func (r *PluginActivationReconciler) recordOutcome(pa *pluginsv1alpha1.PluginActivation, plan activationPlan) {
	for _, b := range plan.Blocked {
		r.recordEventf(pa, corev1.EventTypeWarning, "ActivationBlocked", "%s requires %v", b.Plugin, b.Unsatisfied)
	}
	for _, d := range plan.Deactivated {
		switch d.Reason {
		case pluginsv1alpha1.DeactivationReasonCascade:
			r.recordEventf(pa, corev1.EventTypeNormal, "CascadeDeactivated", "%s deactivated: a required plugin is no longer active", d.Plugin)
		case pluginsv1alpha1.DeactivationReasonConflict:
			r.recordEventf(pa, corev1.EventTypeNormal, "ConflictDeactivated", "%s deactivated: a newly activated plugin provides the same capability", d.Plugin)
		default:
			r.recordEventf(pa, corev1.EventTypeNormal, "Deactivated", "%s deactivated: plugin is no longer installed", d.Plugin)
		}
	}
	for _, id := range plan.NetworkConflicts {
		r.recordEventf(pa, corev1.EventTypeWarning, "NetworkConflict", "%s provides the same capability as a site plugin and stays network-active", id)
	}
}

func (r *PluginActivationReconciler) recordEventf(obj client.Object, eventType, reason, messageFmt string, args ...any) {
	if r.Recorder == nil || obj == nil {
		return
	}
	r.Recorder.Eventf(obj, eventType, reason, messageFmt, args...)
}

func (r *PluginActivationReconciler) notify(ctx context.Context, pa *pluginsv1alpha1.PluginActivation, plan activationPlan) error {
	if r.Publisher == nil {
		return nil
	}
	e := publish.ActivationChanged{
		Namespace:  pa.Namespace,
		Activation: pa.Name,
		Scope:      string(activationScope(pa)),
	}
	for _, d := range plan.Deactivated {
		e.Deactivated = append(e.Deactivated, publish.DeactivatedPlugin{Plugin: d.Plugin, Reason: string(d.Reason)})
	}
	for _, b := range plan.Blocked {
		e.Blocked = append(e.Blocked, publish.BlockedPlugin{Plugin: b.Plugin, Unsatisfied: b.Unsatisfied})
	}
	return publish.PublishActivationChanged(ctx, r.Publisher, e)
}

// networkActivation returns the namespace's network activation, or nil. When several
// exist the one with the smallest name is used.
func (r *PluginActivationReconciler) networkActivation(ctx context.Context, namespace string) (*pluginsv1alpha1.PluginActivation, error) {
	var list pluginsv1alpha1.PluginActivationList
	if err := r.List(ctx, &list, client.InNamespace(namespace)); err != nil {
		return nil, fmt.Errorf("list plugin activations: %w", err)
	}
	var chosen *pluginsv1alpha1.PluginActivation
	for i := range list.Items {
		pa := &list.Items[i]
		if activationScope(pa) != resolver.ScopeNetwork {
			continue
		}
		if chosen == nil || pa.Name < chosen.Name {
			chosen = pa
		}
	}
	return chosen, nil
}

func activationScope(pa *pluginsv1alpha1.PluginActivation) resolver.Scope {
	if pa.Spec.Scope == pluginsv1alpha1.ActivationScopeNetwork {
		return resolver.ScopeNetwork
	}
	return resolver.ScopeLocal
}

func (r *PluginActivationReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&pluginsv1alpha1.PluginActivation{}, builder.WithPredicates(predicate.GenerationChangedPredicate{})).
		// A network activation's applied set feeds every site in the namespace.
		Watches(
			&pluginsv1alpha1.PluginActivation{},
			enqueueSitesForNetwork(mgr.GetClient()),
		).
		// Installing, updating or removing a plugin can change any activation.
		Watches(
			&pluginsv1alpha1.Plugin{},
			enqueueActivationsInNamespace(mgr.GetClient()),
		).
		Complete(r)
}

func enqueueSitesForNetwork(c client.Client) handler.EventHandler {
	return handler.EnqueueRequestsFromMapFunc(func(ctx context.Context, obj client.Object) []reconcile.Request {
		pa, ok := obj.(*pluginsv1alpha1.PluginActivation)
		if !ok || activationScope(pa) != resolver.ScopeNetwork {
			return nil
		}

		var list pluginsv1alpha1.PluginActivationList
		if err := c.List(ctx, &list, client.InNamespace(pa.Namespace)); err != nil {
			return nil
		}
		out := make([]reconcile.Request, 0, len(list.Items))
		for i := range list.Items {
			site := &list.Items[i]
			if activationScope(site) != resolver.ScopeLocal {
				continue
			}
			out = append(out, reconcile.Request{NamespacedName: types.NamespacedName{Namespace: site.Namespace, Name: site.Name}})
		}
		return out
	})
}

func enqueueActivationsInNamespace(c client.Client) handler.EventHandler {
	return handler.EnqueueRequestsFromMapFunc(func(ctx context.Context, obj client.Object) []reconcile.Request {
		var list pluginsv1alpha1.PluginActivationList
		if err := c.List(ctx, &list, client.InNamespace(obj.GetNamespace())); err != nil {
			return nil
		}
		out := make([]reconcile.Request, 0, len(list.Items))
		for i := range list.Items {
			pa := &list.Items[i]
			out = append(out, reconcile.Request{NamespacedName: types.NamespacedName{Namespace: pa.Namespace, Name: pa.Name}})
		}
		return out
	})
}

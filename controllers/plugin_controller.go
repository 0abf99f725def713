package controllers

import (
	"context"

	"k8s.io/apimachinery/pkg/api/equality"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/sets"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	pluginsv1alpha1 "github.com/anvil-platform/plugindeps/api/v1alpha1"
	"github.com/anvil-platform/plugindeps/internal/graph"
)

// PluginReconciler publishes the parsed headers of a Plugin and the plugins that
// depend on it.
type PluginReconciler struct {
	client.Client
	Scheme *runtime.Scheme
}

//+kubebuilder:rbac:groups=plugins.anvil.dev,resources=plugins,verbs=get;list;watch
//+kubebuilder:rbac:groups=plugins.anvil.dev,resources=plugins/status,verbs=get;update;patch

func (r *PluginReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	controllerReconcileTotal.WithLabelValues("Plugin").Inc()
	logger := log.FromContext(ctx)

	var p pluginsv1alpha1.Plugin
	if err := r.Get(ctx, req.NamespacedName, &p); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	var plugins pluginsv1alpha1.PluginList
	if err := r.List(ctx, &plugins, client.InNamespace(req.Namespace)); err != nil {
		logger.Error(err, "failed to list plugins")
		controllerReconcileErrorTotal.WithLabelValues("Plugin").Inc()
		return ctrl.Result{}, err
	}
	g := graph.Build(componentsFromPlugins(plugins.Items))

	id := pluginID(&p)
	md, ok := g.Metadata(id)
	if !ok {
		return ctrl.Result{}, nil
	}

	desired := pluginsv1alpha1.PluginStatus{
		ObservedGeneration: p.Generation,
		Version:            md.Version,
		Provides:           sets.List(md.Provides),
		RequiredBy:         g.DependentsOf(id),
	}
	if md.Depends.Len() > 0 {
		desired.Depends = sets.List(md.Depends)
	}
	if len(desired.RequiredBy) == 0 {
		desired.RequiredBy = nil
	}
	if equality.Semantic.DeepEqual(p.Status, desired) {
		return ctrl.Result{}, nil
	}

	before := p.DeepCopy()
	p.Status = desired
	if err := r.Status().Patch(ctx, &p, client.MergeFrom(before)); err != nil {
		logger.Error(err, "failed to patch plugin status", "plugin", id)
		controllerReconcileErrorTotal.WithLabelValues("Plugin").Inc()
		return ctrl.Result{}, err
	}
	logger.V(1).Info("updated plugin status", "plugin", id, "requiredBy", len(desired.RequiredBy))
	return ctrl.Result{}, nil
}

func (r *PluginReconciler) SetupWithManager(mgr ctrl.Manager) error {
	c := mgr.GetClient()
	return ctrl.NewControllerManagedBy(mgr).
		For(&pluginsv1alpha1.Plugin{}, builder.WithPredicates(predicate.GenerationChangedPredicate{})).
		// RequiredBy of every plugin can change when one plugin's headers do.
		Watches(
			&pluginsv1alpha1.Plugin{},
			handler.EnqueueRequestsFromMapFunc(func(ctx context.Context, obj client.Object) []reconcile.Request {
				var list pluginsv1alpha1.PluginList
				if err := c.List(ctx, &list, client.InNamespace(obj.GetNamespace())); err != nil {
					return nil
				}
				out := make([]reconcile.Request, 0, len(list.Items))
				for i := range list.Items {
					out = append(out, reconcile.Request{NamespacedName: types.NamespacedName{Namespace: list.Items[i].Namespace, Name: list.Items[i].Name}})
				}
				return out
			}),
			builder.WithPredicates(predicate.GenerationChangedPredicate{}),
		).
		Complete(r)
}

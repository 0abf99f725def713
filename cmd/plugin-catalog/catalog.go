package main

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/yaml"

	pluginsv1alpha1 "github.com/anvil-platform/plugindeps/api/v1alpha1"
)

const (
	labelManagedBy = "app.kubernetes.io/managed-by"
	managedBy      = "plugin-catalog"
)

// catalog is the on-disk description of a network's installed plugins.
//
//	plugins:
//	- file: akismet/akismet.php
//	  name: Akismet
//	  version: "5.3"
//	  provides: spam-filter
//	activations:
//	- name: site-1
//	  scope: site
//	  plugins: [akismet/akismet.php]
type catalog struct {
	Plugins     []pluginsv1alpha1.PluginSpec `json:"plugins"`
	Activations []catalogActivation          `json:"activations,omitempty"`
}

type catalogActivation struct {
	Name    string                          `json:"name"`
	Scope   pluginsv1alpha1.ActivationScope `json:"scope,omitempty"`
	Plugins []string                        `json:"plugins,omitempty"`
}

type syncResult struct {
	Created, Updated, Unchanged, Pruned int
}

func loadCatalog(path string) (*catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return parseCatalog(raw)
}

func parseCatalog(raw []byte) (*catalog, error) {
	var c catalog
	if err := yaml.UnmarshalStrict(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	files, names := sets.New[string](), sets.New[string]()
	for i, p := range c.Plugins {
		if strings.TrimSpace(p.File) == "" {
			return nil, fmt.Errorf("parse catalog: plugins[%d]: file is required", i)
		}
		if files.Has(p.File) {
			return nil, fmt.Errorf("parse catalog: plugins[%d]: duplicate file %q", i, p.File)
		}
		files.Insert(p.File)
		name := objectName(p.File)
		if names.Has(name) {
			return nil, fmt.Errorf("parse catalog: plugins[%d]: file %q maps to object name %q already in use", i, p.File, name)
		}
		names.Insert(name)
	}
	for i, a := range c.Activations {
		if errs := validation.IsDNS1123Subdomain(a.Name); len(errs) > 0 {
			return nil, fmt.Errorf("parse catalog: activations[%d]: invalid name %q: %s", i, a.Name, strings.Join(errs, "; "))
		}
		switch a.Scope {
		case "", pluginsv1alpha1.ActivationScopeSite, pluginsv1alpha1.ActivationScopeNetwork:
		default:
			return nil, fmt.Errorf("parse catalog: activations[%d]: unknown scope %q", i, a.Scope)
		}
	}
	return &c, nil
}

var reNonDNS = regexp.MustCompile(`[^a-z0-9.-]+`)

// objectName derives a Plugin object name from its file, e.g.
// "Akismet/akismet.php" -> "akismet-akismet.php".
func objectName(file string) string {
	var labels []string
	for _, label := range strings.Split(reNonDNS.ReplaceAllString(strings.ToLower(file), "-"), ".") {
		if label = strings.Trim(label, "-"); label != "" {
			labels = append(labels, label)
		}
	}
	name := strings.Join(labels, ".")
	if len(name) > validation.DNS1123SubdomainMaxLength {
		name = strings.TrimRight(name[:validation.DNS1123SubdomainMaxLength], "-.")
	}
	if name == "" {
		return "plugin"
	}
	return name
}

// syncCatalog makes the Plugin and PluginActivation objects in namespace match c. With
// prune, catalog-managed Plugins missing from c are deleted, which the activation
// controller treats as an uninstall.
func syncCatalog(ctx context.Context, cl client.Client, namespace string, c *catalog, prune bool) (syncResult, error) {
	var res syncResult
	wanted := sets.New[string]()

	for _, spec := range c.Plugins {
		spec := spec
		p := &pluginsv1alpha1.Plugin{ObjectMeta: metav1.ObjectMeta{Name: objectName(spec.File), Namespace: namespace}}
		wanted.Insert(p.Name)
		op, err := controllerutil.CreateOrUpdate(ctx, cl, p, func() error {
			if p.Labels == nil {
				p.Labels = map[string]string{}
			}
			p.Labels[labelManagedBy] = managedBy
			p.Spec = spec
			return nil
		})
		if err != nil {
			return res, fmt.Errorf("sync plugin %s: %w", spec.File, err)
		}
		res.count(op)
	}

	for _, a := range c.Activations {
		a := a
		pa := &pluginsv1alpha1.PluginActivation{ObjectMeta: metav1.ObjectMeta{Name: a.Name, Namespace: namespace}}
		op, err := controllerutil.CreateOrUpdate(ctx, cl, pa, func() error {
			scope := a.Scope
			if scope == "" {
				scope = pluginsv1alpha1.ActivationScopeSite
			}
			pa.Spec.Scope = scope
			pa.Spec.Plugins = a.Plugins
			return nil
		})
		if err != nil {
			return res, fmt.Errorf("sync activation %s: %w", a.Name, err)
		}
		res.count(op)
	}

	if !prune {
		return res, nil
	}
	var existing pluginsv1alpha1.PluginList
	if err := cl.List(ctx, &existing, client.InNamespace(namespace), client.MatchingLabels{labelManagedBy: managedBy}); err != nil {
		return res, fmt.Errorf("list managed plugins: %w", err)
	}
	for i := range existing.Items {
		p := &existing.Items[i]
		if wanted.Has(p.Name) {
			continue
		}
		if err := cl.Delete(ctx, p); client.IgnoreNotFound(err) != nil {
			return res, fmt.Errorf("prune plugin %s: %w", p.Name, err)
		}
		res.Pruned++
	}
	return res, nil
}

func (r *syncResult) count(op controllerutil.OperationResult) {
	switch op {
	case controllerutil.OperationResultCreated:
		r.Created++
	case controllerutil.OperationResultNone:
		r.Unchanged++
	default:
		r.Updated++
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/apimachinery/pkg/util/wait"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	"sigs.k8s.io/controller-runtime/pkg/client"

	pluginsv1alpha1 "github.com/anvil-platform/plugindeps/api/v1alpha1"
)

var (
	scheme = runtime.NewScheme()
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(pluginsv1alpha1.AddToScheme(scheme))
}

func main() {
	var kubeconfig string
	if home := homedir.HomeDir(); home != "" {
		kubeconfig = filepath.Join(home, ".kube", "config")
	} else {
		kubeconfig = os.Getenv("KUBECONFIG")
	}
	flag.StringVar(&kubeconfig, "kubeconfig", kubeconfig, "absolute path to the kubeconfig file")

	var catalogPath string
	var namespace string
	var prune bool
	var waitFor time.Duration
	flag.StringVar(&catalogPath, "catalog", "plugins.yaml", "YAML catalog of installed plugins")
	flag.StringVar(&namespace, "namespace", "default", "Namespace (network) to sync into")
	flag.BoolVar(&prune, "prune", false, "Delete catalog-managed plugins that are no longer listed")
	flag.DurationVar(&waitFor, "wait", 0, "Wait up to this long for activations to be resolved and print the outcome")
	flag.Parse()

	c, err := loadCatalog(catalogPath)
	if err != nil {
		log.Fatalf("Error loading catalog: %v", err)
	}

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		log.Fatalf("Error building kubeconfig: %v", err)
	}

	k8sClient, err := client.New(config, client.Options{Scheme: scheme})
	if err != nil {
		log.Fatalf("Error creating client: %v", err)
	}

	ctx := context.Background()
	res, err := syncCatalog(ctx, k8sClient, namespace, c, prune)
	if err != nil {
		log.Fatalf("Error syncing catalog: %v", err)
	}
	fmt.Printf("Synced %s into %s: %d created, %d updated, %d unchanged, %d pruned\n",
		catalogPath, namespace, res.Created, res.Updated, res.Unchanged, res.Pruned)

	if waitFor <= 0 {
		return
	}
	for _, a := range c.Activations {
		pa, err := waitForActivation(ctx, k8sClient, client.ObjectKey{Namespace: namespace, Name: a.Name}, waitFor)
		if err != nil {
			fmt.Printf("Timeout waiting for activation %s: %v\n", a.Name, err)
			continue
		}
		fmt.Printf("Activation %s: %s, active=[%s]\n", a.Name, pa.Status.Phase, strings.Join(pa.Status.Active, ", "))
		for _, b := range pa.Status.Blocked {
			fmt.Printf("  blocked %s: requires %s\n", b.Plugin, strings.Join(b.Unsatisfied, ", "))
		}
		for _, d := range pa.Status.RecentlyDeactivated {
			fmt.Printf("  deactivated %s (%s)\n", d.Plugin, d.Reason)
		}
	}
}

// waitForActivation polls until the controller has observed the activation's current
// generation.
func waitForActivation(ctx context.Context, cl client.Client, key client.ObjectKey, timeout time.Duration) (*pluginsv1alpha1.PluginActivation, error) {
	var pa pluginsv1alpha1.PluginActivation
	err := wait.PollUntilContextTimeout(ctx, time.Second, timeout, true, func(ctx context.Context) (bool, error) {
		if err := cl.Get(ctx, key, &pa); err != nil {
			return false, client.IgnoreNotFound(err)
		}
		return pa.Status.Phase != "" && pa.Status.ObservedGeneration >= pa.Generation, nil
	})
	if err != nil {
		return nil, err
	}
	return &pa, nil
}

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestE2ESmoke_PluginActivation(t *testing.T) {
	if os.Getenv("PLUGINDEPS_E2E") == "" {
		t.Skip("set PLUGINDEPS_E2E=1 to run Kind-based smoke test")
	}

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not found in PATH")
	}
	if _, err := exec.LookPath("kubectl"); err != nil {
		t.Skip("kubectl not found in PATH")
	}

	repoRoot := findRepoRoot(t)
	kindBin := "kind"
	if _, err := exec.LookPath("kind"); err != nil {
		fallback := filepath.Join(repoRoot, ".tools", "kind")
		if info, statErr := os.Stat(fallback); statErr == nil && info.Mode()&0o111 != 0 {
			kindBin = fallback
		} else {
			t.Skip("kind not found in PATH (and .tools/kind not usable)")
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	clusterName := fmt.Sprintf("plugindeps-e2e-%d", time.Now().UnixNano())
	t.Logf("cluster=%s", clusterName)

	// Always attempt cleanup.
	t.Cleanup(func() {
		_ = runAllow(ctx, repoRoot, nil, kindBin, "delete", "cluster", "--name", clusterName)
	})

	runOrFail(t, ctx, repoRoot, nil, kindBin, "create", "cluster", "--name", clusterName, "--wait", "60s")

	// Write an isolated kubeconfig for this test.
	kubeconfigPath := filepath.Join(t.TempDir(), "kubeconfig")
	kubeconfig := runOrFail(t, ctx, repoRoot, nil, kindBin, "get", "kubeconfig", "--name", clusterName)
	if err := os.WriteFile(kubeconfigPath, []byte(kubeconfig), 0o600); err != nil {
		t.Fatalf("write kubeconfig: %v", err)
	}
	kubeEnv := append(os.Environ(), "KUBECONFIG="+kubeconfigPath)

	runOrFail(t, ctx, repoRoot, kubeEnv, "kubectl", "apply", "-f", "config/crd/bases/")
	runOrFail(t, ctx, repoRoot, kubeEnv, "kubectl", "create", "namespace", e2eNamespace)

	// Start controller manager (out-of-cluster) against the kind cluster.
	managerCtx, managerCancel := context.WithCancel(ctx)
	defer managerCancel()

	managerCmd := exec.CommandContext(managerCtx, "go", "run", ".", "--metrics-bind-address=0", "--health-probe-bind-address=0")
	managerCmd.Dir = repoRoot
	managerCmd.Env = kubeEnv
	var managerOut bytes.Buffer
	managerCmd.Stdout = &managerOut
	managerCmd.Stderr = &managerOut
	if err := managerCmd.Start(); err != nil {
		t.Fatalf("start manager: %v", err)
	}
	t.Cleanup(func() {
		managerCancel()
		_ = managerCmd.Wait()
	})

	runOrFail(t, ctx, repoRoot, kubeEnv,
		"go", "run", "./cmd/plugin-catalog",
		"--kubeconfig", kubeconfigPath,
		"--namespace", e2eNamespace,
		"--catalog", "examples/catalog/plugins.yaml",
	)

	// Poll the site activation until the controller has resolved it.
	deadline := time.Now().Add(3 * time.Minute)
	for {
		if time.Now().After(deadline) {
			t.Logf("manager output:\n%s", managerOut.String())
			_ = runAllow(ctx, repoRoot, kubeEnv, "kubectl", "-n", e2eNamespace, "get", "plugins,pluginactivations", "-o", "yaml")
			t.Fatalf("timeout waiting for pluginactivation/site-1 to be resolved")
		}

		out, err := runOut(ctx, repoRoot, kubeEnv, "kubectl", "-n", e2eNamespace, "get", "pluginactivation", "site-1", "-o", "json")
		if err == nil {
			var pa activationObject
			if err := json.Unmarshal([]byte(out), &pa); err == nil && pa.Status.Phase != "" {
				if !contains(pa.Status.Active, "akismet/akismet.php") || !contains(pa.Status.Active, "stats/stats.php") {
					t.Fatalf("expected akismet and stats to be active, got %v", pa.Status.Active)
				}
				for _, b := range pa.Status.Blocked {
					if b.Plugin == "forms/forms.php" && contains(b.Unsatisfied, "mailer") {
						return
					}
				}
				t.Fatalf("expected forms/forms.php to be blocked on mailer, got %+v", pa.Status.Blocked)
			}
		}

		time.Sleep(3 * time.Second)
	}
}

const e2eNamespace = "plugindeps-e2e"

type activationObject struct {
	Status struct {
		Phase   string   `json:"phase"`
		Active  []string `json:"active"`
		Blocked []struct {
			Plugin      string   `json:"plugin"`
			Unsatisfied []string `json:"unsatisfied"`
		} `json:"blocked"`
	} `json:"status"`
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func findRepoRoot(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// e2e/smoke_test.go -> repo root
	return filepath.Clean(filepath.Join(filepath.Dir(file), ".."))
}

func runOrFail(t *testing.T, ctx context.Context, dir string, env []string, name string, args ...string) string {
	t.Helper()

	out, err := runOut(ctx, dir, env, name, args...)
	if err != nil {
		t.Fatalf("%s %s failed: %v\n%s", name, strings.Join(args, " "), err, out)
	}
	return out
}

func runAllow(ctx context.Context, dir string, env []string, name string, args ...string) error {
	_, err := runOut(ctx, dir, env, name, args...)
	return err
}

func runOut(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.String(), err
}

//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docker/docker/pkg/stdcopy"
	"github.com/encodeous/strand/state"
	"github.com/testcontainers/testcontainers-go"
	tcnetwork "github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	imageRepo   = "strand-debug"
	imageTag    = "latest"
	ImageName   = imageRepo + ":" + imageTag
	DebugAddr   = "127.0.0.1:6060"
	WaitTimeout = 2 * time.Minute
)

type Harness struct {
	t          *testing.T
	mu         sync.Mutex
	ctx        context.Context
	Network    *testcontainers.DockerNetwork
	Nodes      map[string]testcontainers.Container
	LogManager *LogManager
	RootDir    string
}

func projectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root")
		}
		dir = parent
	}
}

// NewHarness creates a bridge network for the test, nodes reach each other by name
func NewHarness(t *testing.T) *Harness {
	ctx := context.Background()
	rootDir, err := projectRoot()
	if err != nil {
		t.Fatal(err)
	}
	newNetwork, err := tcnetwork.New(ctx,
		tcnetwork.WithAttachable(),
		tcnetwork.WithDriver("bridge"))
	if err != nil {
		t.Fatal(err)
	}
	h := &Harness{
		t:          t,
		ctx:        ctx,
		Network:    newNetwork,
		Nodes:      make(map[string]testcontainers.Container),
		LogManager: NewLogManager(),
		RootDir:    rootDir,
	}
	t.Cleanup(h.Cleanup)
	return h
}

func (h *Harness) StartNodes(cfgs map[string]state.NodeCfg) {
	var wg sync.WaitGroup
	for name, cfg := range cfgs {
		wg.Go(func() {
			h.StartNode(name, cfg)
		})
	}
	wg.Wait()
}

// StartNode runs a node in a container named name, with cfg as its node.yaml
func (h *Harness) StartNode(name string, cfg state.NodeCfg) testcontainers.Container {
	h.t.Logf("Starting node %s (%s)", name, cfg.Address)
	cfgPath := h.WriteConfig(h.TestDir(), name+".yaml", cfg)
	req := testcontainers.ContainerRequest{
		Image:    ImageName,
		Networks: []string{h.Network.Name},
		NetworkAliases: map[string][]string{
			h.Network.Name: {name},
		},
		Files: []testcontainers.ContainerFile{
			{
				HostFilePath:      cfgPath,
				ContainerFilePath: "/app/config/node.yaml",
				FileMode:          0644,
			},
		},
		WaitingFor: wait.ForLog("strand has been initialized").WithStartupTimeout(30 * time.Second),
		LogConsumerCfg: &testcontainers.LogConsumerConfig{
			Consumers: []testcontainers.LogConsumer{
				&UnifiedLogConsumer{Node: name, Manager: h.LogManager},
			},
		},
		Name: strings.ReplaceAll(h.t.Name(), "/", "-") + "-" + name,
	}
	cont, err := testcontainers.GenericContainer(h.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		h.t.Fatalf("failed to start container %s: %v", name, err)
	}
	h.mu.Lock()
	h.Nodes[name] = cont
	h.mu.Unlock()
	return cont
}

func (h *Harness) node(name string) testcontainers.Container {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.Nodes[name]
	if !ok {
		h.t.Fatalf("node %s not found", name)
	}
	return c
}

func (h *Harness) WaitForLog(nodeName string, pattern string) {
	h.waitFor(nodeName, regexp.MustCompile(regexp.QuoteMeta(pattern)))
}
func (h *Harness) WaitForMatch(nodeName string, pattern string) {
	h.waitFor(nodeName, regexp.MustCompile(pattern))
}
func (h *Harness) waitFor(nodeName string, pattern *regexp.Regexp) {
	sub := h.LogManager.Subscribe(nodeName, pattern)
	defer h.LogManager.Unsubscribe(sub)

	select {
	case <-sub.matched:
		return
	case <-time.After(WaitTimeout):
		h.t.Fatalf("timed out waiting for pattern %q in node %s", pattern, nodeName)
	case <-h.ctx.Done():
		h.t.Fatal("context canceled")
	}
}

func (h *Harness) Exec(nodeName string, cmd []string) (string, string, error) {
	code, r, err := h.node(nodeName).Exec(h.ctx, cmd)
	if err != nil {
		return "", "", err
	}

	stdoutBuf := new(bytes.Buffer)
	stderrBuf := new(bytes.Buffer)
	_, err = stdcopy.StdCopy(stdoutBuf, stderrBuf, r)
	if err != nil {
		return "", "", fmt.Errorf("failed to copy output: %w", err)
	}

	stdout := StripAnsi(stdoutBuf.String())
	stderr := StripAnsi(stderrBuf.String())
	if code != 0 {
		return stdout, stderr, fmt.Errorf("command exited with code %d: %s\nStderr: %s", code, stdout, stderr)
	}
	return stdout, stderr, nil
}

// Inspect dumps the state of a node through its debug server
func (h *Harness) Inspect(nodeName string) (string, error) {
	out, _, err := h.Exec(nodeName, []string{"strand", "inspect", DebugAddr})
	return out, err
}

// WaitForRoute polls a node until it routes prefix through the account nh, or until nothing routes prefix if nh
// is empty
func (h *Harness) WaitForRoute(nodeName string, prefix string, nh state.AccountId) {
	label := prefix
	if label == "" {
		label = "(default)"
	}
	deadline := time.Now().Add(WaitTimeout)
	var last string
	for time.Now().Before(deadline) {
		out, err := h.Inspect(nodeName)
		if err == nil {
			last = out
			present := strings.Contains(out, "\n"+label+" via ")
			if nh == "" && !present {
				return
			}
			if nh != "" && strings.Contains(out, fmt.Sprintf("\n%s via (nh: %s,", label, nh)) {
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	h.t.Fatalf("timed out waiting for %s to route %q via %q, last state:\n%s", nodeName, prefix, nh, last)
}

func (h *Harness) StopNode(nodeName string) {
	timeout := 5 * time.Second
	if err := h.node(nodeName).Stop(h.ctx, &timeout); err != nil {
		h.t.Fatalf("failed to stop %s: %v", nodeName, err)
	}
}

func (h *Harness) RestartNode(nodeName string) {
	if err := h.node(nodeName).Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start %s: %v", nodeName, err)
	}
}

func (h *Harness) PrintLogs(nodeName string) {
	r, err := h.node(nodeName).Logs(h.ctx)
	if err != nil {
		h.t.Logf("failed to get logs for %s: %v", nodeName, err)
		return
	}
	buf := new(bytes.Buffer)
	io.Copy(buf, r)
	h.t.Logf("Logs for %s:\n%s", nodeName, buf.String())
}

func (h *Harness) Cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for name, c := range h.Nodes {
		if err := c.Terminate(h.ctx); err != nil {
			h.t.Logf("failed to terminate container %s: %v", name, err)
		}
	}
	if err := h.Network.Remove(context.Background()); err != nil {
		h.t.Logf("failed to remove network: %v", err)
	}
}

package controlplane

import (
	"context"

	"syncbench/internal/errdefs"
)

// Phase describes where a workload is in its lifecycle as reported by the
// control plane.
type Phase string

const (
	// PhasePending means the control plane accepted the workload but has
	// not started reconciling it.
	PhasePending Phase = "Pending"
	// PhaseProgressing means the workload is converging toward ready.
	PhaseProgressing Phase = "Progressing"
	// PhaseReady means the workload converged.
	PhaseReady Phase = "Ready"
	// PhaseDegraded means the workload reached a terminal failed state.
	PhaseDegraded Phase = "Degraded"
)

// Terminal reports whether the phase ends the waiting period for a workload.
func (p Phase) Terminal() bool {
	return p == PhaseReady || p == PhaseDegraded
}

// Spec describes a workload to provision.
type Spec struct {
	Name     string
	Image    string
	Replicas int32
	Labels   map[string]string
}

// Status is a point-in-time view of one workload. Incarnation identifies the
// running instance; its value is opaque and only ever compared for change,
// which signals the platform replaced the instance.
type Status struct {
	Name        string
	Phase       Phase
	Healthy     bool
	Incarnation string
	Message     string
}

// Interface is the control-plane surface the benchmark drives. Create must
// be idempotent: creating a name that already exists succeeds against the
// existing workload instead of failing.
type Interface interface {
	// Ping verifies the control plane is reachable.
	Ping(ctx context.Context) error
	// Create provisions a workload.
	Create(ctx context.Context, spec Spec) error
	// Get reports the current status of a named workload.
	Get(ctx context.Context, name string) (Status, error)
	// Delete removes a workload. Deleting an unknown name is not an error.
	Delete(ctx context.Context, name string) error
	// ForceRefresh asks the platform to re-synchronize the workload's
	// configuration immediately.
	ForceRefresh(ctx context.Context, name string) error
	// List reports all workloads matching the label selector.
	List(ctx context.Context, selector map[string]string) ([]Status, error)
	Close() error
}

const (
	managedByKey   = "app.kubernetes.io/managed-by"
	managedByValue = "syncbench"
	benchLabelKey  = "syncbench.dev/label"
)

// ManagedLabels returns the labels stamped on every workload provisioned
// for a benchmark label.
func ManagedLabels(benchLabel string) map[string]string {
	return map[string]string{
		managedByKey:  managedByValue,
		benchLabelKey: benchLabel,
	}
}

// Selector matches workloads provisioned for benchLabel. An empty label
// matches every syncbench-managed workload.
func Selector(benchLabel string) map[string]string {
	sel := map[string]string{managedByKey: managedByValue}
	if benchLabel != "" {
		sel[benchLabelKey] = benchLabel
	}
	return sel
}

// Config selects and configures a control-plane backend.
type Config struct {
	// Type is "kubernetes", "docker" or "fake". Empty defaults to kubernetes.
	Type string
	// Namespace scopes the kubernetes backend. Ignored by the others.
	Namespace string
}

// New creates a control plane from the provided configuration.
func New(cfg Config) (Interface, error) {
	switch cfg.Type {
	case "kubernetes", "":
		return NewKube(cfg.Namespace)
	case "docker":
		return NewDocker()
	case "fake":
		return NewFake(), nil
	default:
		return nil, errdefs.Newf(errdefs.InvalidConfig, "controlplane.new", "unknown control plane type %q", cfg.Type)
	}
}

package probe

import (
	"context"
	"fmt"

	"syncbench/internal/controlplane"
)

// Built-in metric names for probes of kind "controlplane".
const (
	BuiltinWorkloadsTotal       = "workloads_total"
	BuiltinWorkloadsReady       = "workloads_ready"
	BuiltinWorkloadsProgressing = "workloads_progressing"
	BuiltinWorkloadsDegraded    = "workloads_degraded"
)

// sampleControlPlane derives a value from orchestrator state instead of a
// metrics endpoint. The count is scoped to workloads provisioned for the
// sampler's bench label.
func (s *Sampler) sampleControlPlane(ctx context.Context, spec Spec) (float64, error) {
	if s.ControlPlane == nil {
		return 0, fmt.Errorf("no control plane configured for probe %q", spec.Name)
	}

	statuses, err := s.ControlPlane.List(ctx, controlplane.Selector(s.BenchLabel))
	if err != nil {
		return 0, fmt.Errorf("list workloads: %w", err)
	}

	var ready, progressing, degraded int
	for _, st := range statuses {
		switch st.Phase {
		case controlplane.PhaseReady:
			ready++
		case controlplane.PhaseDegraded:
			degraded++
		default:
			progressing++
		}
	}

	switch spec.Metric {
	case BuiltinWorkloadsTotal:
		return float64(len(statuses)), nil
	case BuiltinWorkloadsReady:
		return float64(ready), nil
	case BuiltinWorkloadsProgressing:
		return float64(progressing), nil
	case BuiltinWorkloadsDegraded:
		return float64(degraded), nil
	default:
		return 0, fmt.Errorf("unknown control plane metric %q", spec.Metric)
	}
}

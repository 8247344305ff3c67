package probe

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	v1 "github.com/prometheus/client_golang/api/prometheus/v1"

	"syncbench/internal/controlplane"
	"syncbench/internal/errdefs"
	"syncbench/internal/record"
)

// Spec declares one named metric probe. Kind selects how the value is
// obtained:
//
//   - "promql": Query is evaluated against the Prometheus server at Address.
//   - "scrape": the exposition payload at Address is fetched and the family
//     named Metric is selected, optionally narrowed by Labels.
//   - "controlplane": Metric names a value derived from control-plane state
//     (workloads_total, workloads_ready, workloads_progressing,
//     workloads_degraded).
type Spec struct {
	Name    string            `mapstructure:"name"`
	Kind    string            `mapstructure:"kind"`
	Address string            `mapstructure:"address"`
	Query   string            `mapstructure:"query"`
	Metric  string            `mapstructure:"metric"`
	Labels  map[string]string `mapstructure:"labels"`
	Unit    string            `mapstructure:"unit"`
}

// Sampler takes one consistent snapshot of every configured probe. Probes
// are attempted independently: a failing probe becomes an unavailable
// measurement and never aborts the rest of the sample.
type Sampler struct {
	Specs   []Spec
	Timeout time.Duration

	// ControlPlane backs probes of kind "controlplane" and the selector
	// scoping their workload counts.
	ControlPlane controlplane.Interface
	BenchLabel   string

	// HTTPClient performs scrape fetches. Nil uses a default with the
	// sampler timeout.
	HTTPClient *http.Client

	// newPromAPI builds the query client per probe address, substituted
	// in tests.
	newPromAPI func(address string) (v1.API, error)
}

// NewSampler builds a sampler over the given probe specs.
func NewSampler(specs []Spec, timeout time.Duration, cp controlplane.Interface, benchLabel string) *Sampler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sampler{
		Specs:        specs,
		Timeout:      timeout,
		ControlPlane: cp,
		BenchLabel:   benchLabel,
		HTTPClient:   &http.Client{Timeout: timeout},
		newPromAPI:   newPromAPI,
	}
}

// Sample attempts every probe once and returns one measurement per probe,
// in spec order. Failures are isolated: the affected measurement is marked
// unavailable and sampling continues.
func (s *Sampler) Sample(ctx context.Context) []record.Measurement {
	out := make([]record.Measurement, 0, len(s.Specs))
	for _, spec := range s.Specs {
		m := record.Measurement{Name: spec.Name, Unit: spec.Unit}

		probeCtx, cancel := context.WithTimeout(ctx, s.Timeout)
		value, err := s.sampleOne(probeCtx, spec)
		cancel()

		if err != nil {
			werr := errdefs.New(errdefs.ProbeUnavailable, "probe.sample", err)
			slog.Warn("probe unavailable", "probe", spec.Name, "kind", spec.Kind, "error", werr)
			m.Unavailable = true
		} else {
			m.Value = value
		}
		out = append(out, m)
	}
	return out
}

func (s *Sampler) sampleOne(ctx context.Context, spec Spec) (float64, error) {
	switch spec.Kind {
	case "promql":
		return s.samplePromQL(ctx, spec)
	case "scrape":
		return s.sampleScrape(ctx, spec)
	case "controlplane":
		return s.sampleControlPlane(ctx, spec)
	default:
		return 0, fmt.Errorf("unknown probe kind %q", spec.Kind)
	}
}

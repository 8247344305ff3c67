package controlplane

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"syncbench/internal/errdefs"
)

// Fake is an in-memory control plane for tests and --mock demo runs.
// Workloads converge deterministically after a configurable number of
// status reads, so scenarios involving it are fully reproducible.
type Fake struct {
	mu sync.Mutex

	// ReadyAfter is how many Get calls a workload stays non-terminal.
	ReadyAfter int
	// ReplaceOn marks workload names whose instance gets recreated once
	// just before converging.
	ReplaceOn map[string]bool
	// FailOn marks workload names that converge degraded.
	FailOn map[string]bool
	// RefreshReplaces makes ForceRefresh recreate the instance.
	RefreshReplaces bool
	// PingErr, when set, makes the control plane unreachable.
	PingErr error

	workloads map[string]*fakeWorkload
}

type fakeWorkload struct {
	spec        Spec
	gets        int
	incarnation int
}

// NewFake returns a fake that converges every workload on the third
// status read.
func NewFake() *Fake {
	return &Fake{
		ReadyAfter: 2,
		ReplaceOn:  map[string]bool{},
		FailOn:     map[string]bool{},
		workloads:  map[string]*fakeWorkload{},
	}
}

func (f *Fake) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PingErr != nil {
		return errdefs.New(errdefs.ControlPlaneUnavailable, "controlplane.ping", f.PingErr)
	}
	return nil
}

func (f *Fake) Create(ctx context.Context, spec Spec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.workloads[spec.Name]; ok {
		return nil
	}
	f.workloads[spec.Name] = &fakeWorkload{spec: spec}
	return nil
}

func (f *Fake) Get(ctx context.Context, name string) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wl, ok := f.workloads[name]
	if !ok {
		return Status{}, fmt.Errorf("workload %s not found", name)
	}
	wl.gets++
	if wl.gets > f.ReadyAfter && f.ReplaceOn[name] && wl.incarnation == 0 {
		wl.incarnation++
	}
	return f.statusLocked(wl), nil
}

func (f *Fake) Delete(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.workloads, name)
	return nil
}

func (f *Fake) ForceRefresh(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	wl, ok := f.workloads[name]
	if !ok {
		return fmt.Errorf("workload %s not found", name)
	}
	if f.RefreshReplaces {
		wl.incarnation++
	}
	return nil
}

// List reports matching workloads without advancing their convergence
// counters, so dashboards do not perturb a running scenario.
func (f *Fake) List(ctx context.Context, selector map[string]string) ([]Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Status
	for _, wl := range f.workloads {
		if !labelsMatch(wl.spec.Labels, selector) {
			continue
		}
		out = append(out, f.statusLocked(wl))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *Fake) Close() error {
	return nil
}

// Created reports whether a workload with the given name exists.
func (f *Fake) Created(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.workloads[name]
	return ok
}

func (f *Fake) statusLocked(wl *fakeWorkload) Status {
	st := Status{
		Name:        wl.spec.Name,
		Incarnation: fmt.Sprintf("%s#%d", wl.spec.Name, wl.incarnation),
	}
	switch {
	case wl.gets == 0:
		st.Phase = PhasePending
	case wl.gets <= f.ReadyAfter:
		st.Phase = PhaseProgressing
	case f.FailOn[wl.spec.Name]:
		st.Phase = PhaseDegraded
		st.Message = "simulated failure"
	default:
		st.Phase = PhaseReady
		st.Healthy = true
	}
	return st
}

func labelsMatch(have, want map[string]string) bool {
	for key, value := range want {
		if have[key] != value {
			return false
		}
	}
	return true
}

package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"syncbench/internal/controlplane"
	"syncbench/internal/errdefs"
	"syncbench/internal/probe"
	"syncbench/internal/record"
)

// Phase is the runner's position in its state machine.
type Phase string

const (
	PhaseIdle         Phase = "Idle"
	PhaseProvisioning Phase = "Provisioning"
	PhaseLoading      Phase = "Loading"
	PhaseWaiting      Phase = "Waiting"
	PhaseSampling     Phase = "Sampling"
	PhaseDone         Phase = "Done"
	PhaseFailed       Phase = "Failed"
)

// Options are the explicit inputs of one benchmark invocation. Nothing in
// the runner reads ambient configuration.
type Options struct {
	Label        string
	Count        int
	Timeout      time.Duration
	PollInterval time.Duration
	Parallelism  int
	Image        string
	Prefix       string

	// Burst force-refreshes every workload after provisioning to stress
	// the platform's re-sync path.
	Burst bool
	// Cleanup deletes the provisioned workloads after sampling.
	Cleanup bool
}

// Runner executes one benchmark scenario end-to-end and produces a
// RunRecord. A runner is single-use; re-running a scenario means building
// a new one.
type Runner struct {
	cp      controlplane.Interface
	sampler *probe.Sampler
	opts    Options
	phase   Phase

	now func() time.Time
}

// NewRunner builds a runner over the given control plane and sampler. The
// sampler may be nil when no probes are configured.
func NewRunner(cp controlplane.Interface, sampler *probe.Sampler, opts Options) *Runner {
	return &Runner{cp: cp, sampler: sampler, opts: opts, phase: PhaseIdle, now: time.Now}
}

// Phase reports the runner's current state-machine position.
func (r *Runner) Phase() Phase {
	return r.phase
}

// WorkloadName returns the name of the index-th workload for the run.
func (r *Runner) WorkloadName(index int) string {
	return fmt.Sprintf("%s-%s-%d", r.opts.Prefix, r.opts.Label, index)
}

type workloadState struct {
	name     string
	baseline string // incarnation observed after provisioning
	outcome  record.Outcome
	elapsed  float64
	terminal bool
}

// Run drives Provisioning, Loading, Waiting and Sampling in order and
// returns the resulting record. Only a provisioning failure returns an
// error; hitting the waiting deadline yields a partial record, not a
// failure.
func (r *Runner) Run(ctx context.Context) (*record.RunRecord, error) {
	start := r.now()

	r.phase = PhaseProvisioning
	if err := r.cp.Ping(ctx); err != nil {
		r.phase = PhaseFailed
		if errdefs.KindOf(err) == errdefs.ControlPlaneUnavailable {
			return nil, err
		}
		return nil, errdefs.New(errdefs.ControlPlaneUnavailable, "scenario.run", err)
	}

	rec := record.New(r.opts.Label, start)
	rec.Total = r.opts.Count
	rec.Scenario = map[string]string{
		"count":         strconv.Itoa(r.opts.Count),
		"timeout":       r.opts.Timeout.String(),
		"poll_interval": r.opts.PollInterval.String(),
		"parallelism":   strconv.Itoa(r.opts.Parallelism),
		"image":         r.opts.Image,
		"prefix":        r.opts.Prefix,
		"burst":         strconv.FormatBool(r.opts.Burst),
	}

	states, err := r.provision(ctx)
	if err != nil {
		r.phase = PhaseFailed
		return nil, err
	}
	provisionSeconds := r.now().Sub(start).Seconds()

	if r.opts.Burst {
		r.phase = PhaseLoading
		r.burst(ctx, states)
	}

	r.phase = PhaseWaiting
	waitStart := r.now()
	timedOut := r.waitForConvergence(ctx, states)
	convergeSeconds := r.now().Sub(waitStart).Seconds()

	r.phase = PhaseSampling
	rec.Measurements = []record.Measurement{
		{Name: record.MeasureProvisionSeconds, Value: provisionSeconds, Unit: "s"},
		{Name: record.MeasureConvergeSeconds, Value: convergeSeconds, Unit: "s"},
		{Name: record.MeasureTotalSeconds, Value: r.now().Sub(start).Seconds(), Unit: "s"},
	}
	if r.sampler != nil {
		rec.Measurements = append(rec.Measurements, r.sampler.Sample(ctx)...)
	}

	for _, st := range states {
		rec.Workloads = append(rec.Workloads, record.WorkloadResult{
			Name:           st.name,
			Outcome:        st.outcome,
			ElapsedSeconds: st.elapsed,
		})
		if st.outcome.Completed() {
			rec.Completed++
		}
	}
	rec.SortWorkloads()
	rec.TimedOut = timedOut
	if timedOut {
		slog.Warn("waiting deadline hit with workloads still pending",
			"label", r.opts.Label, "completed", rec.Completed, "total", rec.Total)
	}

	if r.opts.Cleanup {
		r.cleanup(ctx, states)
	}

	r.phase = PhaseDone
	return rec, nil
}

// provision creates the scenario workloads through the worker pool and
// joins on the barrier before returning. Creation is idempotent, so a
// partially provisioned earlier run is picked up rather than duplicated.
func (r *Runner) provision(ctx context.Context) ([]*workloadState, error) {
	pool := NewWorkerPool(r.opts.Parallelism)
	pool.Start()

	states := make([]*workloadState, r.opts.Count)
	for i := 0; i < r.opts.Count; i++ {
		name := r.WorkloadName(i)
		states[i] = &workloadState{name: name, outcome: record.OutcomePending}
		spec := controlplane.Spec{
			Name:   name,
			Image:  r.opts.Image,
			Labels: controlplane.ManagedLabels(r.opts.Label),
		}
		pool.Submit(func(workerID int) error {
			return r.cp.Create(ctx, spec)
		})
	}
	pool.Wait()
	pool.Stop()

	if err := pool.FirstErr(); err != nil {
		if errdefs.KindOf(err) == errdefs.ControlPlaneUnavailable {
			return nil, err
		}
		return nil, errdefs.New(errdefs.ControlPlaneUnavailable, "scenario.provision", err)
	}

	// Baseline instance identities, so a later change marks the workload
	// replaced. Empty values stay empty; replacement then goes undetected
	// rather than guessed.
	statuses, err := r.cp.List(ctx, controlplane.Selector(r.opts.Label))
	if err == nil {
		byName := map[string]string{}
		for _, st := range statuses {
			byName[st.Name] = st.Incarnation
		}
		for _, st := range states {
			st.baseline = byName[st.name]
		}
	} else {
		slog.Warn("could not capture baseline incarnations", "error", err)
	}
	return states, nil
}

// burst force-refreshes every workload. Refresh failures degrade the burst,
// not the run.
func (r *Runner) burst(ctx context.Context, states []*workloadState) {
	pool := NewWorkerPool(r.opts.Parallelism)
	pool.Start()
	for _, st := range states {
		name := st.name
		pool.Submit(func(workerID int) error {
			return r.cp.ForceRefresh(ctx, name)
		})
	}
	pool.Wait()
	pool.Stop()
	if err := pool.FirstErr(); err != nil {
		slog.Warn("refresh burst partially failed", "error", err)
	}
}

// waitForConvergence polls workload status until every workload is terminal
// or the deadline elapses. It reports whether the deadline was hit; pending
// workloads keep their pending outcome and are counted as incomplete.
func (r *Runner) waitForConvergence(ctx context.Context, states []*workloadState) bool {
	waitStart := r.now()

	condition := func(ctx context.Context) (bool, error) {
		allTerminal := true
		for _, st := range states {
			if st.terminal {
				continue
			}
			status, err := r.cp.Get(ctx, st.name)
			if err != nil {
				slog.Debug("status poll failed", "workload", st.name, "error", err)
				allTerminal = false
				continue
			}
			if !status.Phase.Terminal() {
				allTerminal = false
				continue
			}
			st.terminal = true
			st.elapsed = r.now().Sub(waitStart).Seconds()
			st.outcome = classify(status, st.baseline)
		}
		return allTerminal, nil
	}

	err := wait.PollUntilContextTimeout(ctx, r.opts.PollInterval, r.opts.Timeout, true, condition)
	return err != nil
}

// classify maps a terminal status to an outcome. An instance recreated by
// the platform before converging is as valid a completion as one that
// survived; the two are distinct outcomes, not an error.
func classify(status controlplane.Status, baseline string) record.Outcome {
	if status.Phase == controlplane.PhaseDegraded {
		return record.OutcomeFailed
	}
	if baseline != "" && status.Incarnation != "" && status.Incarnation != baseline {
		return record.OutcomeReplaced
	}
	return record.OutcomeReady
}

func (r *Runner) cleanup(ctx context.Context, states []*workloadState) {
	for _, st := range states {
		if err := r.cp.Delete(ctx, st.name); err != nil {
			slog.Warn("cleanup failed", "workload", st.name, "error", err)
		}
	}
}

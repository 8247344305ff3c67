package record

import (
	"sort"
	"time"

	"syncbench/internal/errdefs"
)

// SchemaVersion is the record schema generation this build writes. Readers
// reject records carrying any other version instead of guessing at field
// meanings.
const SchemaVersion = 1

// Names of the measurements every run emits regardless of probe
// configuration. Probe names must not collide with these.
const (
	MeasureProvisionSeconds = "provision_seconds"
	MeasureConvergeSeconds  = "converge_seconds"
	MeasureTotalSeconds     = "total_seconds"
)

// ReservedMeasurements lists the built-in measurement names.
func ReservedMeasurements() []string {
	return []string{
		MeasureProvisionSeconds,
		MeasureConvergeSeconds,
		MeasureTotalSeconds,
	}
}

// Outcome classifies a workload's terminal state at the end of the
// waiting phase.
type Outcome string

const (
	// OutcomeReady means the workload converged and the same instance
	// survived the run.
	OutcomeReady Outcome = "ready"
	// OutcomeReplaced means the workload converged but the platform
	// recreated its instance along the way. Still a completion.
	OutcomeReplaced Outcome = "replaced"
	// OutcomeFailed means the workload reached a terminal degraded state.
	OutcomeFailed Outcome = "failed"
	// OutcomePending means the workload never reached a terminal state
	// before the deadline.
	OutcomePending Outcome = "pending"
)

// Completed reports whether the outcome counts toward scenario completion.
// A replaced instance converged like any other.
func (o Outcome) Completed() bool {
	return o == OutcomeReady || o == OutcomeReplaced
}

// Measurement is one named sample captured during the sampling phase.
// Unavailable marks a probe that produced no value; Value is meaningless
// for such entries and must never default to zero silently.
type Measurement struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit,omitempty"`
	Unavailable bool    `json:"unavailable,omitempty"`
}

// WorkloadResult records the terminal classification of one provisioned
// workload. ElapsedSeconds counts from the start of the waiting phase to
// the first terminal observation, zero if the workload never got there.
type WorkloadResult struct {
	Name           string  `json:"name"`
	Outcome        Outcome `json:"outcome"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// RunRecord is the immutable artifact of a single benchmark run. Re-running
// a scenario produces a new record; existing ones are never updated.
type RunRecord struct {
	SchemaVersion int               `json:"schema_version"`
	Label         string            `json:"label"`
	StartedAt     time.Time         `json:"started_at"`
	Scenario      map[string]string `json:"scenario"`
	Measurements  []Measurement     `json:"measurements"`
	Workloads     []WorkloadResult  `json:"workloads,omitempty"`
	Completed     int               `json:"completed"`
	Total         int               `json:"total"`
	TimedOut      bool              `json:"timed_out,omitempty"`
}

// New returns an empty record for label, stamped with the current schema
// version and a UTC start time.
func New(label string, startedAt time.Time) *RunRecord {
	return &RunRecord{
		SchemaVersion: SchemaVersion,
		Label:         label,
		StartedAt:     startedAt.UTC(),
		Scenario:      map[string]string{},
	}
}

// Measurement returns the named measurement and whether it exists.
func (r *RunRecord) Measurement(name string) (Measurement, bool) {
	for _, m := range r.Measurements {
		if m.Name == name {
			return m, true
		}
	}
	return Measurement{}, false
}

// SortWorkloads orders workload results by name so serialized records are
// stable across runs with identical outcomes.
func (r *RunRecord) SortWorkloads() {
	sort.Slice(r.Workloads, func(i, j int) bool {
		return r.Workloads[i].Name < r.Workloads[j].Name
	})
}

// CheckSchema rejects records written by an incompatible schema generation.
func CheckSchema(r *RunRecord) error {
	if r.SchemaVersion != SchemaVersion {
		return errdefs.Newf(errdefs.IncompatibleSchema, "record.check",
			"record for %q carries schema version %d, this build reads version %d",
			r.Label, r.SchemaVersion, SchemaVersion)
	}
	return nil
}

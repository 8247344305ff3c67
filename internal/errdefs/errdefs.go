package errdefs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch on what went wrong
// without matching message strings.
type Kind string

const (
	// ControlPlaneUnavailable means the workload control plane could not be
	// reached or refused a provisioning request. Fatal for a run.
	ControlPlaneUnavailable Kind = "control_plane_unavailable"
	// ProbeUnavailable means a single metric probe could not produce a value.
	// Never fatal; the sample is recorded as unavailable.
	ProbeUnavailable Kind = "probe_unavailable"
	// TimeoutPartialCompletion means the waiting phase hit its deadline with
	// some workloads still pending. The run still completes.
	TimeoutPartialCompletion Kind = "timeout_partial_completion"
	// StoreWriteFailure means a run record could not be persisted.
	StoreWriteFailure Kind = "store_write_failure"
	// IncompatibleSchema means a stored record was written by a schema
	// generation this build does not read.
	IncompatibleSchema Kind = "incompatible_schema"
	// RecordNotFound means no stored record matched the requested label.
	RecordNotFound Kind = "record_not_found"
	// InvalidConfig means the effective configuration failed validation.
	InvalidConfig Kind = "invalid_config"
	// Unknown is reported for errors that carry no classification.
	Unknown Kind = "unknown"
)

// Error couples a failure kind with the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a kind and the operation that produced it.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf is New with a formatted message instead of a wrapped error.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first classified error in err's chain,
// or Unknown if the chain carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// IsKind reports whether the first classified error in err's chain has
// the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

package types

import "errors"

// OutcomeKind tags which variant of an Outcome is populated.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeFailure
	// OutcomeCancelled never leaves the task: a cancelled task delivers nothing.
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of a fetch task. Exactly one of Value or Err
// is meaningful, selected by Kind.
type Outcome struct {
	Kind  OutcomeKind
	Value string
	Err   error
}

// Success builds a successful outcome carrying value.
func Success(value string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Value: value}
}

// Failure builds a failed outcome. A nil err is replaced with ErrTransport so
// the variant is never empty.
func Failure(err error) Outcome {
	if err == nil {
		err = ErrTransport
	}
	return Outcome{Kind: OutcomeFailure, Err: err}
}

// Cancelled is the marker returned by a task that observed cancellation.
func Cancelled() Outcome {
	return Outcome{Kind: OutcomeCancelled}
}

func (o Outcome) IsSuccess() bool   { return o.Kind == OutcomeSuccess }
func (o Outcome) IsFailure() bool   { return o.Kind == OutcomeFailure }
func (o Outcome) IsCancelled() bool { return o.Kind == OutcomeCancelled }

// Reason returns the human-readable failure message. Connectivity failures
// have no message: they are reported as an absent result.
func (o Outcome) Reason() string {
	if o.Kind != OutcomeFailure || o.Err == nil {
		return ""
	}
	if errors.Is(o.Err, ErrConnectivity) {
		return ""
	}
	return o.Err.Error()
}

// HasPayload reports whether the outcome carries something to show the user.
func (o Outcome) HasPayload() bool {
	switch o.Kind {
	case OutcomeSuccess:
		return true
	case OutcomeFailure:
		return o.Reason() != ""
	default:
		return false
	}
}

// Text returns the value for a success and the reason for a failure; this is
// the collapsed form shown in a single display slot.
func (o Outcome) Text() string {
	if o.Kind == OutcomeSuccess {
		return o.Value
	}
	return o.Reason()
}

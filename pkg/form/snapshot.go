package form

import "context"

// Phase is the coarse UI state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSettled    Phase = "settled"
)

// Submit control labels.
const (
	LabelSubmit     = "Predict UCS"
	LabelSubmitting = "Predicting..."
)

// ResultUnit is appended to displayed predictions.
const ResultUnit = "MPa"

// Snapshot is an immutable view of a Controller.
type Snapshot struct {
	State      State
	Result     string
	HasResult  bool
	Submitting bool
	Notice     string
}

// Phase derives the UI state from the snapshot.
func (s Snapshot) Phase() Phase {
	switch {
	case s.Submitting:
		return PhaseSubmitting
	case s.HasResult || s.Notice != "":
		return PhaseSettled
	default:
		return PhaseIdle
	}
}

// SubmitLabel is the text for the submit control.
func (s Snapshot) SubmitLabel() string {
	if s.Submitting {
		return LabelSubmitting
	}
	return LabelSubmit
}

// DisplayResult renders the result with its unit, or "" when absent.
func (s Snapshot) DisplayResult() string {
	if !s.HasResult {
		return ""
	}
	return s.Result + " " + ResultUnit
}

type requestIDKey struct{}

// WithRequestID stores a correlation id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id stored on ctx, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

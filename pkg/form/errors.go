package form

import "errors"

var (
	// ErrUnknownField is returned when a field name is outside the record.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrReadOnlyField is returned when an edit targets the derived PI field.
	ErrReadOnlyField = errors.New("form: field is derived and cannot be edited")
	// ErrSubmitInFlight rejects a submit while a prior request is pending.
	ErrSubmitInFlight = errors.New("form: submission already in flight")
	// ErrStaleResponse marks a response that arrived after Reset; it is
	// discarded.
	ErrStaleResponse = errors.New("form: response discarded after reset")

	// ErrBackendUnreachable classifies transport failures, non-2xx statuses
	// and bodies that are not JSON. Predictor implementations wrap it.
	ErrBackendUnreachable = errors.New("backend not reachable")
	// ErrInvalidResponse classifies JSON responses lacking a numeric ucs.
	ErrInvalidResponse = errors.New("invalid response from backend")
)

// User-facing notification texts.
const (
	MessageClaySilt        = "Clay + Silt must be ≥ 50%"
	MessageInvalidResponse = "Invalid response from backend"
	MessageUnreachable     = "Backend not reachable"
)

// ValidationError reports a local validation failure. Field is empty for the
// compound Clay + Silt check.
type ValidationError struct {
	Field   Field
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func requiredError(f Field) *ValidationError {
	return &ValidationError{Field: f, Message: string(f) + " is required"}
}

// NoticeFor maps a submit error to the notification shown to the user.
// ErrSubmitInFlight and ErrStaleResponse produce no notification.
func NoticeFor(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, ErrSubmitInFlight), errors.Is(err, ErrStaleResponse):
		return ""
	case errors.Is(err, ErrInvalidResponse):
		return MessageInvalidResponse
	default:
		return MessageUnreachable
	}
}

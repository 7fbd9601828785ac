package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Predictor performs the single outbound prediction call. Implementations
// wrap ErrBackendUnreachable or ErrInvalidResponse so the controller can pick
// the right notification.
type Predictor interface {
	Predict(ctx context.Context, payload Payload) (float64, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, payload Payload) (float64, error)

// Predict implements Predictor.
func (fn PredictorFunc) Predict(ctx context.Context, payload Payload) (float64, error) {
	return fn(ctx, payload)
}

// Notifier receives user-facing notifications (validation failures and
// backend errors).
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

// Notify implements Notifier.
func (fn NotifierFunc) Notify(ctx context.Context, message string) {
	fn(ctx, message)
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier routes notifications to n in addition to the snapshot.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger attaches a zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithState seeds the controller with an existing record.
func WithState(st State) Option {
	return func(c *Controller) {
		c.state = st
	}
}

// WithRequestIDs overrides the generator used when ctx carries no request id.
func WithRequestIDs(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newRequestID = fn
		}
	}
}

// Controller owns the form state, the optional prediction result and the
// submitting flag. It is safe for concurrent use; the outbound call runs
// without holding the lock.
type Controller struct {
	mu         sync.Mutex
	state      State
	result     string
	hasResult  bool
	submitting bool
	notice     string
	generation uint64

	predictor    Predictor
	notifier     Notifier
	logger       *zap.Logger
	newRequestID func() string
}

// NewController builds a controller in the idle state.
func NewController(predictor Predictor, options ...Option) *Controller {
	c := &Controller{
		state:        Initial(),
		predictor:    predictor,
		logger:       zap.NewNop(),
		newRequestID: uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// UpdateField applies a keystroke-level edit. It has no network or
// validation side effects.
func (c *Controller) UpdateField(f Field, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.state.Update(f, raw)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// Submit validates the record and, when valid, issues exactly one prediction
// request. A call made while another is in flight returns ErrSubmitInFlight
// without side effects. Every other failure is also delivered as a
// notification; see NoticeFor.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.notice = ""

	if err := c.state.Validate(); err != nil {
		message := c.setNoticeLocked(err)
		c.mu.Unlock()
		c.deliver(ctx, message)
		return err
	}

	c.submitting = true
	c.result, c.hasResult = "", false
	payload := c.state.Payload()
	generation := c.generation
	c.mu.Unlock()

	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = c.newRequestID()
	}
	logger := c.logger.With(zap.String("request_id", requestID))
	logger.Debug("submitting prediction request")

	var (
		ucs float64
		err error
	)
	if c.predictor == nil {
		err = fmt.Errorf("%w: no predictor configured", ErrBackendUnreachable)
	} else {
		ucs, err = c.predictor.Predict(WithRequestID(ctx, requestID), payload)
	}

	c.mu.Lock()
	c.submitting = false
	if generation != c.generation {
		c.mu.Unlock()
		logger.Info("discarding prediction that completed after reset")
		return ErrStaleResponse
	}
	if err == nil {
		c.result, c.hasResult = FormatResult(ucs), true
		c.mu.Unlock()
		logger.Info("prediction received", zap.Float64("ucs", ucs))
		return nil
	}
	message := c.setNoticeLocked(err)
	c.mu.Unlock()

	if errors.Is(err, ErrInvalidResponse) {
		logger.Warn("prediction response rejected", zap.Error(err))
	} else {
		logger.Warn("prediction backend failed", zap.Error(err))
	}
	c.deliver(ctx, message)
	return err
}

// Reset restores the all-empty record and clears the result and any notice.
// An in-flight request is not cancelled; its response is discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Initial()
	c.result, c.hasResult = "", false
	c.notice = ""
	c.generation++
}

// DismissNotice clears the last notification.
func (c *Controller) DismissNotice() {
	c.mu.Lock()
	c.notice = ""
	c.mu.Unlock()
}

// State returns the current record.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the formatted prediction, if any.
func (c *Controller) Result() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.hasResult
}

// Submitting reports whether a request is in flight.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Snapshot captures everything a renderer needs.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:      c.state,
		Result:     c.result,
		HasResult:  c.hasResult,
		Submitting: c.submitting,
		Notice:     c.notice,
	}
}

// setNoticeLocked records the notice for err. c.mu must be held so a
// concurrent Reset cannot be overwritten.
func (c *Controller) setNoticeLocked(err error) string {
	message := NoticeFor(err)
	if message != "" {
		c.notice = message
	}
	return message
}

// deliver hands message to the Notifier. It runs without c.mu held.
func (c *Controller) deliver(ctx context.Context, message string) {
	if message == "" || c.notifier == nil {
		return
	}
	c.notifier.Notify(ctx, message)
}

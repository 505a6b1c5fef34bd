// Package form implements the headless registration form state machine. It
// holds field values, touched flags and per-field messages, and transitions
// between the four form states on change/blur/submit events. Rendering is a
// collaborator's concern; the engine never touches I/O.
package form

import (
	"enroll/internal/register/validate"
)

// State is the overall form state. Exactly one value at a time.
type State int

const (
	// StateIdle shows no messages and no banner.
	StateIdle State = iota
	// StateWarning shows at least one inline field message, no banner.
	StateWarning
	// StateFailure shows the form-wide banner; see FailureKind.
	StateFailure
	// StateSuccess replaces the form with the confirmation view.
	StateSuccess
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWarning:
		return "warning"
	case StateFailure:
		return "failure"
	case StateSuccess:
		return "success"
	}
	return "unknown"
}

// FailureKind distinguishes the two banner texts.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureValidation: submit was blocked by local validation.
	FailureValidation
	// FailureServer: the server rejected without a field scope, or the
	// call itself failed.
	FailureServer
)

// Engine is the form state machine. Not safe for concurrent use; a form
// instance belongs to one user interaction at a time.
type Engine struct {
	values     validate.Values
	touched    map[validate.Field]bool
	messages   map[validate.Field]*validate.Message
	state      State
	failure    FailureKind
	submitting bool
}

// NewEngine returns an engine in the idle state with all fields empty.
func NewEngine() *Engine {
	return &Engine{
		touched:  make(map[validate.Field]bool),
		messages: make(map[validate.Field]*validate.Message),
	}
}

// State returns the current overall state.
func (e *Engine) State() State {
	return e.state
}

// FailureKind returns which banner is showing, or FailureNone.
func (e *Engine) FailureKind() FailureKind {
	return e.failure
}

// Submitting reports whether a submission is in flight. The submit control
// is disabled while true.
func (e *Engine) Submitting() bool {
	return e.submitting
}

// Values returns the current raw field values.
func (e *Engine) Values() validate.Values {
	return e.values
}

// Message returns the inline message for a field, or nil. Messages are
// suppressed until the field is touched.
func (e *Engine) Message(f validate.Field) *validate.Message {
	if !e.touched[f] {
		return nil
	}
	return e.messages[f]
}

// Touched reports whether the field has been interacted with.
func (e *Engine) Touched(f validate.Field) bool {
	return e.touched[f]
}

// Change records a keystroke in a field. Any edit clears the failure
// banner; inline messages for touched fields stay live.
func (e *Engine) Change(f validate.Field, value string) {
	if e.state == StateSuccess || e.submitting {
		return
	}

	e.setValue(f, value)
	e.revalidateTouched()

	// Typing always clears the failure banner; the resulting state follows
	// the current message set.
	e.failure = FailureNone
	e.state = e.stateFromMessages()
}

// Blur marks a field touched and validates it in place.
func (e *Engine) Blur(f validate.Field) {
	if e.state == StateSuccess || e.submitting {
		return
	}

	e.touched[f] = true
	e.setMessage(f, validate.Check(f, e.values.Get(f), e.values.Password))

	// Blur never raises or clears the banner.
	if e.state != StateFailure {
		e.state = e.stateFromMessages()
	}
}

// BeginSubmit forces every field touched and runs full validation. It
// returns true when the gateway should issue the network call; false when
// validation blocked the submit (failure/validation) or a submission is
// already in flight.
func (e *Engine) BeginSubmit() bool {
	if e.submitting || e.state == StateSuccess {
		return false
	}

	for _, f := range validate.Fields {
		e.touched[f] = true
	}
	e.messages = validate.CheckAll(e.values, validate.Fields)

	if len(e.messages) > 0 {
		e.state = StateFailure
		e.failure = FailureValidation
		return false
	}

	e.submitting = true
	return true
}

// SubmitSucceeded applies the success transition: all client state resets
// and the confirmation view shows.
func (e *Engine) SubmitSucceeded() {
	e.reset()
	e.state = StateSuccess
}

// SubmitFieldError applies a server rejection scoped to one field: a single
// inline message, no banner.
func (e *Engine) SubmitFieldError(f validate.Field, text string) {
	e.submitting = false
	e.messages = map[validate.Field]*validate.Message{
		f: {Text: text, IsWarning: true},
	}
	e.state = StateWarning
	e.failure = FailureNone
}

// SubmitFailed applies an unscoped server rejection or transport failure.
func (e *Engine) SubmitFailed() {
	e.submitting = false
	e.state = StateFailure
	e.failure = FailureServer
}

// Acknowledge dismisses the confirmation view, returning to an empty idle
// form.
func (e *Engine) Acknowledge() {
	if e.state != StateSuccess {
		return
	}
	e.reset()
	e.state = StateIdle
}

func (e *Engine) reset() {
	e.values = validate.Values{}
	e.touched = make(map[validate.Field]bool)
	e.messages = make(map[validate.Field]*validate.Message)
	e.failure = FailureNone
	e.submitting = false
}

func (e *Engine) setValue(f validate.Field, value string) {
	switch f {
	case validate.FieldFirstName:
		e.values.FirstName = value
	case validate.FieldLastName:
		e.values.LastName = value
	case validate.FieldEmail:
		e.values.Email = value
	case validate.FieldPassword:
		e.values.Password = value
	case validate.FieldConfirmPassword:
		e.values.ConfirmPassword = value
	}
}

// revalidateTouched recomputes messages for every touched field. Sibling
// dependency: editing password re-checks confirmPassword too, so the pair
// is never stale.
func (e *Engine) revalidateTouched() {
	for _, f := range validate.Fields {
		if !e.touched[f] {
			continue
		}
		e.setMessage(f, validate.Check(f, e.values.Get(f), e.values.Password))
	}
}

func (e *Engine) setMessage(f validate.Field, msg *validate.Message) {
	if msg == nil {
		delete(e.messages, f)
		return
	}
	e.messages[f] = msg
}

// stateFromMessages maps the touched message set to idle or warning. Only
// called outside failure/success.
func (e *Engine) stateFromMessages() State {
	for f := range e.messages {
		if e.touched[f] {
			return StateWarning
		}
	}
	return StateIdle
}

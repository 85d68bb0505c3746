// Package session models the form as an immutable state snapshot and a total
// transition function over user and completion events.
package session

import (
	"errors"

	"github.com/jonathan/bio-generator/internal/bios"
	"github.com/jonathan/bio-generator/internal/types"
)

// Phase is the visible phase of the form.
type Phase string

// Phase constants
const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseResults    Phase = "results"
	PhaseFailed     Phase = "failed"
)

// State is one snapshot of the form. Values are never mutated by Reduce.
type State struct {
	Phase    Phase
	Form     types.FormState
	Bios     []types.Bio
	Degraded bool
	Warning  string
	Error    string
}

// New returns the initial state.
func New() State {
	return State{Phase: PhaseIdle, Form: types.DefaultFormState()}
}

// Busy reports whether the submit action is disabled.
func (s State) Busy() bool {
	return s.Phase == PhaseSubmitting
}

// HasResults reports whether bios should be displayed.
func (s State) HasResults() bool {
	return len(s.Bios) > 0
}

// Event is a user or completion event.
type Event interface {
	event()
}

// TextEdited replaces the free-text.
type TextEdited struct{ Text string }

// VibeSelected replaces the vibe.
type VibeSelected struct{ Vibe types.Vibe }

// LocationSelected replaces the location.
type LocationSelected struct{ Location string }

// Submitted starts a generation.
type Submitted struct{}

// SubmitRejected reports that a submit was refused before any request was
// made, e.g. because the input failed validation.
type SubmitRejected struct{ Reason string }

// CompletionSucceeded delivers the completion text for the outstanding request.
type CompletionSucceeded struct{ Text string }

// CompletionFailed reports that the outstanding request failed.
type CompletionFailed struct{ Err error }

// Dismissed clears results and errors.
type Dismissed struct{}

func (TextEdited) event()          {}
func (VibeSelected) event()        {}
func (LocationSelected) event()    {}
func (Submitted) event()           {}
func (SubmitRejected) event()      {}
func (CompletionSucceeded) event() {}
func (CompletionFailed) event()    {}
func (Dismissed) event()           {}

// Reduce returns the state that follows s after ev. Every phase accepts every
// event; events that do not apply in the current phase leave s unchanged.
func Reduce(s State, ev Event) State {
	next := s
	next.Bios = cloneBios(s.Bios)

	switch e := ev.(type) {
	case TextEdited:
		if s.Busy() {
			return s
		}
		next.Form.FreeText = e.Text
	case VibeSelected:
		if s.Busy() {
			return s
		}
		next.Form.Vibe = e.Vibe
	case LocationSelected:
		if s.Busy() {
			return s
		}
		next.Form.Location = e.Location
	case Submitted:
		if s.Busy() {
			return s
		}
		next.Phase = PhaseSubmitting
		next.Error = ""
	case SubmitRejected:
		if s.Busy() {
			return s
		}
		next.Phase = PhaseFailed
		next.Error = e.Reason
	case CompletionSucceeded:
		if !s.Busy() {
			return s
		}
		return completed(next, e.Text)
	case CompletionFailed:
		if !s.Busy() {
			return s
		}
		next.Phase = PhaseFailed
		next.Error = failureMessage(e.Err)
	case Dismissed:
		if s.Busy() {
			return s
		}
		next = State{Phase: PhaseIdle, Form: s.Form}
	default:
		return s
	}
	return next
}

func completed(s State, text string) State {
	parsed, err := bios.ParseBios(text)
	s.Warning = ""
	s.Degraded = false
	if len(parsed) == 0 {
		s.Phase = PhaseFailed
		s.Bios = nil
		s.Error = failureMessage(err)
		return s
	}

	s.Phase = PhaseResults
	s.Bios = parsed
	s.Error = ""
	if err != nil {
		s.Degraded = true
		s.Warning = "Only some of your bios could be generated. Try again for a full set."
	}
	return s
}

func failureMessage(err error) string {
	var parseErr *bios.ParseError
	switch {
	case err == nil:
		return "Something went wrong. Please try again."
	case errors.As(err, &parseErr):
		return "The AI response could not be read. Please try again."
	default:
		return "Could not reach the bio generator. Please try again."
	}
}

func cloneBios(in []types.Bio) []types.Bio {
	if in == nil {
		return nil
	}
	out := make([]types.Bio, len(in))
	copy(out, in)
	return out
}

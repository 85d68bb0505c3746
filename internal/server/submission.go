package server

import (
	"context"

	"github.com/jonathan/bio-generator/internal/bios"
	"github.com/jonathan/bio-generator/internal/session"
	"github.com/jonathan/bio-generator/internal/types"
	"go.uber.org/zap"
)

// submission is the outcome of one submit of the form.
type submission struct {
	State      session.State
	Generation *types.Generation // set when the state reached Results
	Violations []types.Violation
	Completion string
	Err        error // completion request error
}

// editedState replays the edits a user makes to reach form.
func editedState(form types.FormState) session.State {
	state := session.New()
	state = session.Reduce(state, session.TextEdited{Text: form.FreeText})
	state = session.Reduce(state, session.VibeSelected{Vibe: form.Vibe})
	return session.Reduce(state, session.LocationSelected{Location: form.Location})
}

// submit reduces Submitted on state, requests the completion and reduces its
// outcome. Results are recorded and content checked. onSubmitting, when not
// nil, sees the busy state before the request is made; an error from it
// abandons the submission.
func (s *Server) submit(ctx context.Context, state session.State, onSubmitting func(session.State) error) (submission, error) {
	state = session.Reduce(state, session.Submitted{})
	if onSubmitting != nil {
		if err := onSubmitting(state); err != nil {
			return submission{State: state}, err
		}
	}

	prompt := bios.BuildPrompt(state.Form)
	text, err := s.generator.RequestCompletion(ctx, prompt)
	if err != nil {
		return submission{State: session.Reduce(state, session.CompletionFailed{Err: err}), Err: err}, nil
	}

	sub := submission{
		State:      session.Reduce(state, session.CompletionSucceeded{Text: text}),
		Completion: text,
	}
	if sub.State.Phase == session.PhaseResults {
		gen := s.generator.Record(ctx, sub.State.Form, prompt, sub.State.Bios, sub.State.Degraded)
		sub.Generation = &gen
		sub.Violations = bios.CheckContent(sub.State.Form, sub.State.Bios)
	}
	return sub, nil
}

// logSubmission logs the outcome of sub.
func logSubmission(log *zap.Logger, sub submission) {
	switch {
	case sub.Err != nil:
		log.Warn("Generation failed", zap.Error(sub.Err))
	case sub.Generation != nil:
		log.Info("Bios generated",
			zap.String("generation_id", sub.Generation.ID.String()),
			zap.Int("bios", len(sub.Generation.Bios)),
			zap.Bool("degraded", sub.Generation.Degraded),
			zap.Int("violations", len(sub.Violations)))
	default:
		log.Warn("Completion could not be parsed", zap.String("completion", sub.Completion))
	}
}

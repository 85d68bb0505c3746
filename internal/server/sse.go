package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/bio-generator/internal/session"
	"github.com/jonathan/bio-generator/internal/types"
)

var errStreamingUnsupported = errors.New("response writer cannot stream")

// eventStream writes the generation progress of one request as
// Server-Sent Events. Every event is flushed immediately.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newEventStream sets the event-stream headers on w. Nothing is written
// until the first event.
func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// keeps reverse proxies from holding the busy state back
	w.Header().Set("X-Accel-Buffering", "no")

	return &eventStream{w: w, flusher: flusher}, nil
}

// State sends a "state" event for state.
func (es *eventStream) State(state session.State, violations []types.Violation) error {
	return es.write("state", newStateEvent(state, violations))
}

// Complete sends the final "complete" event. id is empty when nothing was
// recorded.
func (es *eventStream) Complete(id string, phase session.Phase) error {
	return es.write("complete", map[string]string{"id": id, "phase": string(phase)})
}

func (es *eventStream) write(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(es.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	es.flusher.Flush()
	return nil
}

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/jonathan/bio-generator/internal/bios"
	"github.com/jonathan/bio-generator/internal/catalog"
	"github.com/jonathan/bio-generator/internal/schemas"
	"github.com/jonathan/bio-generator/internal/session"
	"github.com/jonathan/bio-generator/internal/types"
	"go.uber.org/zap"
)

const (
	// maxBodyBytes bounds JSON request bodies.
	maxBodyBytes = 64 << 10

	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// stateEvent is the payload of a "state" event on the generation stream.
type stateEvent struct {
	Phase    session.Phase `json:"phase"`
	Busy     bool          `json:"busy"`
	Bios     []types.Bio   `json:"bios,omitempty"`
	Degraded bool          `json:"degraded,omitempty"`
	Warning  string        `json:"warning,omitempty"`
	Error    string        `json:"error,omitempty"`

	Violations []types.Violation `json:"violations,omitempty"`
}

func newStateEvent(s session.State, violations []types.Violation) stateEvent {
	return stateEvent{
		Phase:      s.Phase,
		Busy:       s.Busy(),
		Bios:       s.Bios,
		Degraded:   s.Degraded,
		Warning:    s.Warning,
		Error:      s.Error,
		Violations: violations,
	}
}

// decodeGenerateRequest reads, schema-checks and validates a JSON body.
func decodeGenerateRequest(w http.ResponseWriter, r *http.Request) (*types.GenerateRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &ErrBodyTooLarge{Limit: maxErr.Limit}
		}
		return nil, &bios.ValidationError{Message: "unreadable request body"}
	}

	if err := schemas.Validate(schemas.GenerateRequest, body); err != nil {
		return nil, err
	}

	var req types.GenerateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &bios.ValidationError{Message: "invalid request body: " + err.Error()}
	}
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	return &req, nil
}

// handleGenerate generates bios for a JSON request
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	req, err := decodeGenerateRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), publicMessage(err))
		return
	}

	res, err := s.generator.Generate(r.Context(), req.FormState())
	if err != nil {
		log.Warn("Generation failed", zap.Error(err))
		s.errorResponse(w, HTTPStatus(err), publicMessage(err))
		return
	}

	log.Info("Bios generated",
		zap.String("generation_id", res.Generation.ID.String()),
		zap.Int("bios", len(res.Generation.Bios)),
		zap.Bool("degraded", res.Generation.Degraded))

	s.jsonResponse(w, http.StatusOK, types.GenerateResponse{
		ID:         res.Generation.ID.String(),
		Bios:       res.Generation.Bios,
		Prompt:     res.Generation.Prompt,
		Degraded:   res.Generation.Degraded,
		Warning:    res.Warning,
		Violations: res.Violations,
	})
}

// handleGenerateStream streams each form state as a "state" event while
// the generation runs, ending with "complete".
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	req, err := decodeGenerateRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), publicMessage(err))
		return
	}

	stream, err := newEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	sub, err := s.submit(r.Context(), editedState(req.FormState()), func(state session.State) error {
		return stream.State(state, nil)
	})
	if err != nil {
		log.Warn("Client went away", zap.Error(err))
		return
	}
	logSubmission(log, sub)

	if err := stream.State(sub.State, sub.Violations); err != nil {
		log.Warn("Client went away", zap.Error(err))
		return
	}

	var id string
	if sub.Generation != nil {
		id = sub.Generation.ID.String()
	}
	_ = stream.Complete(id, sub.State.Phase)
}

// handleRecent lists recent generations
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRecentLimit)
	}

	gens, err := s.store.RecentGenerations(r.Context(), limit)
	if err != nil {
		s.requestLogger(r).Error("Failed to list generations", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list generations")
		return
	}
	if gens == nil {
		gens = []types.Generation{}
	}
	s.jsonResponse(w, http.StatusOK, gens)
}

// handleOptions lists the selectable countries and vibes
func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, catalog.Options())
}

// handleStats reports how many bios have been generated
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	generated, err := s.store.CountBios(r.Context())
	if err != nil {
		s.requestLogger(r).Error("Failed to count bios", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to count bios")
		return
	}
	s.jsonResponse(w, http.StatusOK, types.StatsResponse{Generated: generated})
}

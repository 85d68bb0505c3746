package server

import (
	"bytes"
	"net/http"

	"github.com/jonathan/bio-generator/internal/session"
	"github.com/jonathan/bio-generator/internal/types"
	"go.uber.org/zap"
)

// maxFormBytes bounds urlencoded form submissions.
const maxFormBytes = 16 << 10

// handlePage renders the empty form
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, session.New(), nil)
}

// handleSubmit runs one generation for the submitted form and renders the result.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid form body: "+err.Error())
		return
	}

	req := types.GenerateRequest{
		Text:     r.PostForm.Get("text"),
		Vibe:     r.PostForm.Get("vibe"),
		Location: r.PostForm.Get("location"),
	}
	state := editedState(req.FormState())
	if err := req.Validate(); err != nil {
		state = session.Reduce(state, session.SubmitRejected{Reason: validationError(err).Error()})
		s.renderPage(w, r, http.StatusBadRequest, state, nil)
		return
	}

	// a nil callback never abandons the submission
	sub, _ := s.submit(r.Context(), state, nil)
	logSubmission(log, sub)

	status := http.StatusOK
	switch {
	case sub.Err != nil:
		status = HTTPStatus(sub.Err)
	case sub.Generation == nil:
		status = http.StatusBadGateway
	}
	s.renderPage(w, r, status, sub.State, sub.Violations)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, state session.State, violations []types.Violation) {
	generated, err := s.store.CountBios(r.Context())
	if err != nil {
		s.requestLogger(r).Warn("Failed to count bios", zap.Error(err))
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, newPageData(state, generated, violations)); err != nil {
		s.requestLogger(r).Error("Failed to render page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

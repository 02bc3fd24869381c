package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/jd-refiner/internal/ingestion"
	"github.com/jonathan/jd-refiner/internal/session"
)

// CreateSessionResponse is the response for POST /sessions
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Round     string `json:"round"`
}

// DescriptionRequest is the request body for POST /sessions/{id}/description.
// Either the raw posting text or a URL to fetch it from must be provided.
type DescriptionRequest struct {
	Text       string `json:"text" validate:"required_without=JobURL"`
	JobURL     string `json:"job_url" validate:"required_without=Text,omitempty,url"`
	UseBrowser bool   `json:"use_browser"`
}

// AnswerRequest is the request body for POST /sessions/{id}/answers. Round
// and index must match the machine's active question; this guards against
// stale presentation-layer state.
type AnswerRequest struct {
	Round string `json:"round" validate:"required,oneof=gap generalized follow_up"`
	Index *int   `json:"index" validate:"required,gte=0"`
	Text  string `json:"text"`
}

// handleCreateSession creates an empty refinement session
func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	id := uuid.New()

	s.mu.Lock()
	s.sessions[id] = &sessionEntry{sess: session.New(s.client)}
	s.mu.Unlock()

	s.jsonResponse(w, http.StatusCreated, CreateSessionResponse{
		SessionID: id.String(),
		Round:     "none",
	})
}

// handleGetSession returns the session snapshot for rendering
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	entry, err := s.lookup(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	entry.mu.Lock()
	snap := entry.sess.Snapshot()
	entry.mu.Unlock()

	s.jsonResponse(w, http.StatusOK, snap)
}

// handleSubmitDescription runs extraction and opens the gap round
func (s *Server) handleSubmitDescription(w http.ResponseWriter, r *http.Request) {
	entry, err := s.lookup(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	var req DescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		verr := &ErrValidation{Message: err.Error()}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	text := req.Text
	if text == "" {
		text, err = ingestion.FromURL(r.Context(), req.JobURL, req.UseBrowser, false)
		if err != nil {
			s.errorResponse(w, http.StatusBadGateway, "Failed to ingest job posting: "+err.Error())
			return
		}
	}

	entry.mu.Lock()
	err = entry.sess.SubmitDescription(r.Context(), text)
	snap := entry.sess.Snapshot()
	entry.mu.Unlock()

	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

// handleSubmitAnswer stores one answer for the active question
func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	entry, err := s.lookup(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		verr := &ErrValidation{Message: err.Error()}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if tag := entry.sess.Round().Tag(); tag != req.Round {
		s.errorResponse(w, http.StatusConflict,
			"round mismatch: session is in round "+tag)
		return
	}
	if _, active, ok := entry.sess.ActiveQuestion(); !ok || active != *req.Index {
		s.errorResponse(w, http.StatusConflict, "index does not match the active question")
		return
	}

	if err := entry.sess.SubmitAnswer(req.Text); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, entry.sess.Snapshot())
}

// handleAdvanceRound moves the session into its next question round
func (s *Server) handleAdvanceRound(w http.ResponseWriter, r *http.Request) {
	entry, err := s.lookup(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	entry.mu.Lock()
	err = entry.sess.AdvanceRound(r.Context())
	snap := entry.sess.Snapshot()
	entry.mu.Unlock()

	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

// handleFinalize synthesizes the final document
func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	entry, err := s.lookup(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	entry.mu.Lock()
	err = entry.sess.Finalize(r.Context())
	snap := entry.sess.Snapshot()
	entry.mu.Unlock()

	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

// handleHealth is a liveness probe
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

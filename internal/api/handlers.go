package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/testdrill/internal/assessment"
	"github.com/abhisek/testdrill/internal/logging"
)

// AnswerRequest is the body of POST /sessions/{id}/answer.
type AnswerRequest struct {
	QuestionID int64  `json:"question_id" validate:"required,gt=0"`
	Answer     string `json:"answer"`
}

// ListTests returns the published tests with the caller's session for each.
func (h *Handler) ListTests(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	list, err := h.engine.Available(r.Context(), claims.Subject)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetTest returns a published test without answer masks.
func (h *Handler) GetTest(w http.ResponseWriter, r *http.Request) {
	id, ok := testID(w, r)
	if !ok {
		return
	}
	t, err := h.engine.Test(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Start begins or resumes the caller's attempt at a test.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := testID(w, r)
	if !ok {
		return
	}
	claims, _ := ClaimsFromContext(r.Context())

	s, err := h.engine.Start(r.Context(), id, claims.Subject)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Answer submits one answer. A submission that ends the session is still a
// 200 response; its status field carries the terminal status.
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.ownSession(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "question_id is required")
		return
	}

	sub, err := h.engine.SubmitAnswer(r.Context(), sessionID, req.QuestionID, req.Answer)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	if sub.Terminal != "" {
		logging.WithContext(r.Context()).WithFields(logrus.Fields{
			"session_id": sessionID,
			"status":     sub.Terminal,
		}).Info("session ended by policy")
	}
	writeJSON(w, http.StatusOK, sub)
}

// Finish completes the caller's session.
func (h *Handler) Finish(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.ownSession(w, r)
	if !ok {
		return
	}
	s, err := h.engine.Finish(r.Context(), sessionID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Result returns a session with its answers. Staff may read any session.
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.ownSession(w, r)
	if !ok {
		return
	}
	res, err := h.engine.Result(r.Context(), sessionID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Stats reports how students did on a test.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := testID(w, r)
	if !ok {
		return
	}
	st, err := h.engine.TestStats(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ownSession resolves the {id} session and checks that it belongs to the
// caller. Sessions of other students are reported as not found, except to
// staff reading results.
func (h *Handler) ownSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := chi.URLParam(r, "id")
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return "", false
	}

	s, err := h.engine.Session(r.Context(), sessionID)
	if err != nil {
		writeEngineError(w, r, err)
		return "", false
	}
	staffRead := r.Method == http.MethodGet && claims.isStaff()
	if s.StudentID != claims.Subject && !staffRead {
		writeEngineError(w, r, assessment.ErrSessionNotFound)
		return "", false
	}
	return sessionID, true
}

func testID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid test id")
		return 0, false
	}
	return id, true
}

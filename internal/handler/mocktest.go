package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/auth"
	"github.com/sakif/prep-tracker/internal/model"
	"github.com/sakif/prep-tracker/internal/service"
)

// MockTestHandler manages AI-generated mock test endpoints.
type MockTestHandler struct {
	service *service.MockTestService
	logger  *slog.Logger
}

// NewMockTestHandler creates a new MockTestHandler.
func NewMockTestHandler(svc *service.MockTestService, logger *slog.Logger) *MockTestHandler {
	return &MockTestHandler{service: svc, logger: logger}
}

// HandleStart generates a question set and opens a test session.
// The response carries questions WITHOUT answer keys.
//
// HTTP: POST /api/mock-tests
// BODY: {"category":"DSA","subcategory":"graphs","difficulty":"medium",
//        "questionCount":10,"durationMinutes":15}
func (h *MockTestHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	var req struct {
		Category        string           `json:"category"`
		Subcategory     string           `json:"subcategory"`
		Difficulty      model.Difficulty `json:"difficulty"`
		QuestionCount   int              `json:"questionCount"`
		DurationMinutes int              `json:"durationMinutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	test, err := h.service.Start(r.Context(), userID, service.MockTestInput{
		Category:        req.Category,
		Subcategory:     req.Subcategory,
		Difficulty:      req.Difficulty,
		QuestionCount:   req.QuestionCount,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, test)
}

// HandleList lists the caller's test history.
//
// HTTP: GET /api/mock-tests?limit=20&offset=0
func (h *MockTestHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	tests, err := h.service.List(r.Context(), userID,
		queryInt(r, "limit", 0),
		queryInt(r, "offset", 0),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tests)
}

// HandleGetByID returns one test (sanitized while in progress).
//
// HTTP: GET /api/mock-tests/{id}
func (h *MockTestHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	test, err := h.service.GetByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, test)
}

// HandleSubmit grades a test. Repeat submission → 409.
//
// HTTP: POST /api/mock-tests/{id}/submit
// BODY: {"answers":[0,-1,2,...],"elapsedSeconds":540}
func (h *MockTestHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	var req struct {
		Answers        []int `json:"answers"`
		ElapsedSeconds int   `json:"elapsedSeconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	test, err := h.service.Submit(r.Context(), userID, r.PathValue("id"), req.Answers, req.ElapsedSeconds)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, test)
}

// HandleDelete removes a test.
//
// HTTP: DELETE /api/mock-tests/{id}
func (h *MockTestHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	if err := h.service.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/auth"
	"github.com/sakif/prep-tracker/internal/model"
	"github.com/sakif/prep-tracker/internal/repository"
	"github.com/sakif/prep-tracker/internal/service"
)

// ProblemHandler manages the coding-practice log and its stats endpoint.
type ProblemHandler struct {
	service *service.ProblemService
	logger  *slog.Logger
}

// NewProblemHandler creates a new ProblemHandler.
func NewProblemHandler(svc *service.ProblemService, logger *slog.Logger) *ProblemHandler {
	return &ProblemHandler{service: svc, logger: logger}
}

type problemRequest struct {
	Platform     string              `json:"platform"`
	Name         string              `json:"name"`
	Difficulty   model.Difficulty    `json:"difficulty"`
	Status       model.ProblemStatus `json:"status"`
	PracticeDate string              `json:"practiceDate"`
	Notes        string              `json:"notes"`
}

func (req problemRequest) toInput() service.ProblemInput {
	return service.ProblemInput{
		Platform:     req.Platform,
		Name:         req.Name,
		Difficulty:   req.Difficulty,
		Status:       req.Status,
		PracticeDate: req.PracticeDate,
		Notes:        req.Notes,
	}
}

// HandleCreate logs a practice entry.
//
// HTTP: POST /api/problems
func (h *ProblemHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	var req problemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	problem, err := h.service.Create(r.Context(), userID, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, problem)
}

// HandleList lists practice entries, filterable by status and difficulty.
//
// HTTP: GET /api/problems?status=solved&difficulty=hard&limit=20&offset=0
func (h *ProblemHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	filter := repository.ProblemFilter{
		Status:     model.ProblemStatus(r.URL.Query().Get("status")),
		Difficulty: model.Difficulty(r.URL.Query().Get("difficulty")),
	}

	problems, err := h.service.List(r.Context(), userID, filter,
		queryInt(r, "limit", 0),
		queryInt(r, "offset", 0),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, problems)
}

// HandleGetByID returns one practice entry.
//
// HTTP: GET /api/problems/{id}
func (h *ProblemHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	problem, err := h.service.GetByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, problem)
}

// HandleUpdate replaces a practice entry.
//
// HTTP: PUT /api/problems/{id}
func (h *ProblemHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	var req problemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	problem, err := h.service.Update(r.Context(), userID, r.PathValue("id"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, problem)
}

// HandleDelete removes a practice entry.
//
// HTTP: DELETE /api/problems/{id}
func (h *ProblemHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

// HandleStats returns the dashboard aggregates, streak included.
//
// HTTP: GET /api/problems/stats
func (h *ProblemHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

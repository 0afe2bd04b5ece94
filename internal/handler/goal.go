// Package handler contains the HTTP layer: request parsing, response
// writing, and nothing else. Business rules live in the service layer.
//
// EVERY HANDLER FOLLOWS THE SAME SHAPE:
//  1. Pull the authenticated userID out of the request context
//     (RequireAuth put it there; an empty ID means the route was mounted
//     outside the middleware — fail closed with 401)
//  2. Decode and lightly parse the request (JSON body, path params, query)
//  3. Call the service
//  4. writeJSON on success, writeError on failure
//
// Request structs here mirror the model's JSON field names so the frontend
// sees one consistent naming scheme end to end.
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

// GoalHandler manages CRUD endpoints for learning goals.
type GoalHandler struct {
	service *service.GoalService
	logger  *slog.Logger
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(svc *service.GoalService, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{service: svc, logger: logger}
}

// goalRequest is the JSON body for create and update.
type goalRequest struct {
	SkillName     string           `json:"skillName"`
	Topic         string           `json:"topic"`
	Status        model.GoalStatus `json:"status"`
	StartDate     string           `json:"startDate"`
	TargetDate    string           `json:"targetDate"`
	ResourceLinks []string         `json:"resourceLinks"`
	Notes         string           `json:"notes"`
}

func (req goalRequest) toInput() service.GoalInput {
	return service.GoalInput{
		SkillName:     req.SkillName,
		Topic:         req.Topic,
		Status:        req.Status,
		StartDate:     req.StartDate,
		TargetDate:    req.TargetDate,
		ResourceLinks: req.ResourceLinks,
		Notes:         req.Notes,
	}
}

// HandleCreate creates a goal.
//
// HTTP: POST /api/goals
func (h *GoalHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	goal, err := h.service.Create(r.Context(), userID, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

// HandleList lists the caller's goals.
//
// HTTP: GET /api/goals?status=in_progress&limit=20&offset=0
func (h *GoalHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	goals, err := h.service.List(r.Context(), userID,
		model.GoalStatus(r.URL.Query().Get("status")),
		queryInt(r, "limit", 0),
		queryInt(r, "offset", 0),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

// HandleGetByID returns one goal.
//
// HTTP: GET /api/goals/{id}
func (h *GoalHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	goal, err := h.service.GetByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

// HandleUpdate replaces a goal.
//
// HTTP: PUT /api/goals/{id}
func (h *GoalHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	goal, err := h.service.Update(r.Context(), userID, r.PathValue("id"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

// HandleDelete removes a goal.
//
// HTTP: DELETE /api/goals/{id}
func (h *GoalHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

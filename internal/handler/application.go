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

// ApplicationHandler manages job-application tracking endpoints.
type ApplicationHandler struct {
	service *service.ApplicationService
	logger  *slog.Logger
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(svc *service.ApplicationService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{service: svc, logger: logger}
}

type applicationRequest struct {
	Company       string                  `json:"company"`
	Role          string                  `json:"role"`
	JobType       model.JobType           `json:"jobType"`
	Status        model.ApplicationStatus `json:"status"`
	ApplyDate     string                  `json:"applyDate"`
	InterviewDate string                  `json:"interviewDate"`
	Link          string                  `json:"link"`
	Notes         string                  `json:"notes"`
}

func (req applicationRequest) toInput() service.ApplicationInput {
	return service.ApplicationInput{
		Company:       req.Company,
		Role:          req.Role,
		JobType:       req.JobType,
		Status:        req.Status,
		ApplyDate:     req.ApplyDate,
		InterviewDate: req.InterviewDate,
		Link:          req.Link,
		Notes:         req.Notes,
	}
}

// HandleCreate records an application.
//
// HTTP: POST /api/applications
func (h *ApplicationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	app, err := h.service.Create(r.Context(), userID, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, app)
}

// HandleList lists applications, filterable by status and job type.
//
// HTTP: GET /api/applications?status=oa&jobType=internship&limit=20&offset=0
func (h *ApplicationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	filter := repository.ApplicationFilter{
		Status:  model.ApplicationStatus(r.URL.Query().Get("status")),
		JobType: model.JobType(r.URL.Query().Get("jobType")),
	}

	apps, err := h.service.List(r.Context(), userID, filter,
		queryInt(r, "limit", 0),
		queryInt(r, "offset", 0),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apps)
}

// HandleGetByID returns one application.
//
// HTTP: GET /api/applications/{id}
func (h *ApplicationHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	app, err := h.service.GetByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, app)
}

// HandleUpdate replaces an application.
//
// HTTP: PUT /api/applications/{id}
func (h *ApplicationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	app, err := h.service.Update(r.Context(), userID, r.PathValue("id"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, app)
}

// HandleDelete removes an application.
//
// HTTP: DELETE /api/applications/{id}
func (h *ApplicationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

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

// RoadmapHandler manages the single-per-user preparation roadmap.
type RoadmapHandler struct {
	service *service.RoadmapService
	logger  *slog.Logger
}

// NewRoadmapHandler creates a new RoadmapHandler.
func NewRoadmapHandler(svc *service.RoadmapService, logger *slog.Logger) *RoadmapHandler {
	return &RoadmapHandler{service: svc, logger: logger}
}

type roadmapRequest struct {
	TargetRole  string                `json:"targetRole"`
	CompanyType string                `json:"companyType"`
	Months      []model.MonthPlan     `json:"months"`
	Skills      []model.SkillPriority `json:"skills"`
	Weaknesses  string                `json:"weaknesses"`
}

// HandleGet returns the caller's roadmap, 404 before the first save.
//
// HTTP: GET /api/roadmap
func (h *RoadmapHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	roadmap, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, roadmap)
}

// HandleSave upserts the caller's roadmap. PUT rather than POST+PUT — the
// resource is singular and the operation is idempotent.
//
// HTTP: PUT /api/roadmap
func (h *RoadmapHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	var req roadmapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	roadmap, err := h.service.Save(r.Context(), userID, service.RoadmapInput{
		TargetRole:  req.TargetRole,
		CompanyType: req.CompanyType,
		Months:      req.Months,
		Skills:      req.Skills,
		Weaknesses:  req.Weaknesses,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, roadmap)
}

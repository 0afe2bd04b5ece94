package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/auth"
	"github.com/sakif/prep-tracker/internal/model"
	"github.com/sakif/prep-tracker/internal/service"
)

// maxUploadBytes caps resume uploads. 10 MB fits any sane resume PDF with
// room to spare.
const maxUploadBytes = 10 << 20

// ResumeHandler manages resume versions, including file upload/download.
type ResumeHandler struct {
	service *service.ResumeService
	logger  *slog.Logger
}

// NewResumeHandler creates a new ResumeHandler.
func NewResumeHandler(svc *service.ResumeService, logger *slog.Logger) *ResumeHandler {
	return &ResumeHandler{service: svc, logger: logger}
}

type resumeRequest struct {
	Name          string                `json:"name"`
	VersionNumber int                   `json:"versionNumber"`
	TargetRole    string                `json:"targetRole"`
	Checklist     model.ResumeChecklist `json:"checklist"`
	Notes         string                `json:"notes"`
}

func (req resumeRequest) toInput() service.ResumeInput {
	return service.ResumeInput{
		Name:          req.Name,
		VersionNumber: req.VersionNumber,
		TargetRole:    req.TargetRole,
		Checklist:     req.Checklist,
		Notes:         req.Notes,
	}
}

// HandleCreate creates a resume version (metadata only; the file comes via
// HandleUpload).
//
// HTTP: POST /api/resumes
func (h *ResumeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	resume, err := h.service.Create(r.Context(), userID, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resume)
}

// HandleList lists resume versions.
//
// HTTP: GET /api/resumes?limit=20&offset=0
func (h *ResumeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	resumes, err := h.service.List(r.Context(), userID,
		queryInt(r, "limit", 0),
		queryInt(r, "offset", 0),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resumes)
}

// HandleGetByID returns one resume version.
//
// HTTP: GET /api/resumes/{id}
func (h *ResumeHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	resume, err := h.service.GetByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resume)
}

// HandleUpdate replaces a resume version's metadata.
//
// HTTP: PUT /api/resumes/{id}
func (h *ResumeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	resume, err := h.service.Update(r.Context(), userID, r.PathValue("id"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resume)
}

// HandleDelete removes a resume version and its file.
//
// HTTP: DELETE /api/resumes/{id}
func (h *ResumeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

// HandleUpload attaches a file to a resume version.
//
// HTTP: POST /api/resumes/{id}/file (multipart/form-data, field "file")
//
// MaxBytesReader hard-caps the request body: a client that streams past the
// limit gets cut off at the transport level, not buffered into memory first.
func (h *ResumeHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, apperror.ValidationFailed("file",
			fmt.Sprintf("upload must be multipart/form-data and %d MB or less", maxUploadBytes>>20)))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperror.ValidationFailed("file", `multipart field "file" is required`))
		return
	}
	defer file.Close()

	resume, err := h.service.AttachFile(r.Context(), userID, r.PathValue("id"), header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resume)
}

// HandleDownload streams a resume's stored file back.
//
// HTTP: GET /api/resumes/{id}/file
func (h *ResumeHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	f, fileName, err := h.service.OpenFile(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()

	// mime.FormatMediaType handles quoting for filenames with spaces or
	// unicode; the browser saves under the original upload name.
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))

	if _, err := io.Copy(w, f); err != nil {
		// Headers are gone; just log the broken transfer.
		h.logger.Warn("resume download interrupted",
			slog.String("id", r.PathValue("id")),
			slog.String("error", err.Error()),
		)
	}
}

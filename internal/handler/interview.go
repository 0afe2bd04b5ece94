package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/auth"
	"github.com/sakif/prep-tracker/internal/model"
	"github.com/sakif/prep-tracker/internal/service"
)

// InterviewHandler manages AI-driven mock interview endpoints, including
// the SSE message stream.
type InterviewHandler struct {
	service *service.InterviewService
	logger  *slog.Logger
}

// NewInterviewHandler creates a new InterviewHandler.
func NewInterviewHandler(svc *service.InterviewService, logger *slog.Logger) *InterviewHandler {
	return &InterviewHandler{service: svc, logger: logger}
}

// HandleStart opens an interview session. The response includes the
// transcript seeded with the interviewer's opening question.
//
// HTTP: POST /api/mock-interviews
// BODY: {"type":"technical","targetRole":"Backend Engineer","difficulty":"medium"}
func (h *InterviewHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	var req struct {
		Type       model.InterviewType `json:"type"`
		TargetRole string              `json:"targetRole"`
		Difficulty model.Difficulty    `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	interview, err := h.service.Start(r.Context(), userID, service.InterviewInput{
		Type:       req.Type,
		TargetRole: req.TargetRole,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, interview)
}

// HandleList lists the caller's interview history.
//
// HTTP: GET /api/mock-interviews?limit=20&offset=0
func (h *InterviewHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	interviews, err := h.service.List(r.Context(), userID,
		queryInt(r, "limit", 0),
		queryInt(r, "offset", 0),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interviews)
}

// HandleGetByID returns one interview session.
//
// HTTP: GET /api/mock-interviews/{id}
func (h *InterviewHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	interview, err := h.service.GetByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interview)
}

// HandleMessage sends a candidate message and streams the interviewer's
// reply back as Server-Sent Events.
//
// HTTP: POST /api/mock-interviews/{id}/messages
// BODY: {"content":"I would use a hash map here because ..."}
//
// SSE PROTOCOL:
//
//	data: {"delta":"token fragment"}     ← repeated while the model talks
//	data: {"done":true}                  ← the reply is complete
//	data: {"error":"..."}                ← the upstream stream broke
//
// Errors BEFORE the first token (validation, 404, 409, gateway down) are
// ordinary JSON error responses — the SSE headers only go out once there is
// something to stream. After the first token the status line is already on
// the wire, so failures become an in-stream error event instead.
func (h *InterviewHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, fmt.Errorf("response writer does not support streaming"))
		return
	}

	streaming := false
	startStream := func() {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		// Stop nginx-style proxies from buffering the stream.
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		streaming = true
	}

	onDelta := func(delta string) error {
		if !streaming {
			startStream()
		}
		return writeSSE(w, flusher, map[string]any{"delta": delta})
	}

	_, err := h.service.Message(r.Context(), userID, r.PathValue("id"), req.Content, onDelta)

	if !streaming {
		// Nothing was streamed; fall back to ordinary JSON handling.
		if err != nil {
			writeError(w, err)
			return
		}
		// A complete but empty reply — still report it over SSE so the
		// client has one code path.
		startStream()
	}

	if err != nil {
		_ = writeSSE(w, flusher, map[string]any{"error": "interviewer reply was interrupted"})
		return
	}
	_ = writeSSE(w, flusher, map[string]any{"done": true})
}

// HandleFinish requests feedback and completes the session.
//
// HTTP: POST /api/mock-interviews/{id}/finish
func (h *InterviewHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	interview, err := h.service.Finish(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interview)
}

// HandleDelete removes an interview session.
//
// HTTP: DELETE /api/mock-interviews/{id}
func (h *InterviewHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

// writeSSE sends one SSE data event and flushes it to the client.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding SSE payload: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("writing SSE event: %w", err)
	}
	flusher.Flush()
	return nil
}

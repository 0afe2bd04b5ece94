package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/auth"
	"github.com/sakif/prep-tracker/internal/sandbox"
)

// maxSnippetBytes caps one practice run's code. Practice solutions are
// small; anything bigger is a paste mistake.
const maxSnippetBytes = 64 * 1024

// PracticeHandler exposes the sandboxed scratchpad next to the practice log.
type PracticeHandler struct {
	runner sandbox.Runner // nil when the sandbox is disabled or Docker is down
	logger *slog.Logger
}

// NewPracticeHandler creates a new PracticeHandler. runner may be nil.
func NewPracticeHandler(runner sandbox.Runner, logger *slog.Logger) *PracticeHandler {
	return &PracticeHandler{runner: runner, logger: logger}
}

// HandleRun executes a snippet in the sandbox.
//
// HTTP: POST /api/practice/run
// BODY: {"code":"print('hi')"}
//
// Returns 503 when the sandbox is unavailable — the rest of the app works
// without Docker, and the frontend greys the run button out on that status.
func (h *PracticeHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserID(r.Context())
	if userID == "" {
		writeError(w, apperror.Unauthorized("not logged in"))
		return
	}

	if h.runner == nil {
		writeError(w, apperror.Unavailable("sandbox", "code execution is not available"))
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, apperror.ValidationFailed("code", "code is required"))
		return
	}
	if len(req.Code) > maxSnippetBytes {
		writeError(w, apperror.ValidationFailed("code", "code is too large"))
		return
	}

	result, err := h.runner.Run(r.Context(), sandbox.RunRequest{Code: req.Code})
	if err != nil {
		h.logger.Error("sandbox run failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, apperror.Unavailable("sandbox", "code execution failed"))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

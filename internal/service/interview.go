package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/prep-tracker/internal/ai"
	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/model"
	"github.com/sakif/prep-tracker/internal/repository"
)

// MaxInterviewMessageLength bounds one candidate turn. Long enough for a
// full STAR answer, short enough that nobody pastes a novel into the prompt.
const MaxInterviewMessageLength = 8000

// InterviewInput carries the parameters for starting a mock interview.
type InterviewInput struct {
	Type       model.InterviewType
	TargetRole string
	Difficulty model.Difficulty
}

// InterviewService orchestrates AI-driven mock interview sessions.
//
// TRANSCRIPT OWNERSHIP:
// The transcript in the database is the single source of truth. Every AI
// call rebuilds its message list from the stored transcript plus a
// regenerated system message — the model has no memory between calls, and
// we keep none outside the database either.
type InterviewService struct {
	repo   repository.InterviewRepository
	ai     ai.Completer
	logger *slog.Logger
}

// NewInterviewService creates a new InterviewService.
func NewInterviewService(repo repository.InterviewRepository, completer ai.Completer, logger *slog.Logger) *InterviewService {
	return &InterviewService{
		repo:   repo,
		ai:     completer,
		logger: logger,
	}
}

// Start creates a session and seeds the transcript with the interviewer's
// opening question (one non-streaming AI call). Like test generation, a
// failed opening call creates nothing.
func (s *InterviewService) Start(ctx context.Context, userID string, in InterviewInput) (*model.MockInterview, error) {
	in.TargetRole = strings.TrimSpace(in.TargetRole)

	if !in.Type.Valid() {
		return nil, apperror.ValidationFailed("type",
			fmt.Sprintf("interview type must be one of: %s, %s, %s",
				model.InterviewTechnical, model.InterviewHR, model.InterviewBehavioral))
	}
	if in.TargetRole == "" {
		return nil, apperror.ValidationFailed("targetRole", "target role is required")
	}
	if !in.Difficulty.Valid() {
		return nil, apperror.ValidationFailed("difficulty",
			fmt.Sprintf("difficulty must be one of: %s, %s, %s",
				model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard))
	}

	opening, err := s.ai.Complete(ctx, []ai.Message{
		ai.InterviewSystemMessage(in.Type, in.TargetRole, in.Difficulty),
		ai.OpeningPrompt(),
	})
	if err != nil {
		s.logger.Error("interview opening failed",
			slog.String("type", string(in.Type)),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable("ai gateway", "could not start the interview")
	}

	interview := &model.MockInterview{
		UserID:     userID,
		Type:       in.Type,
		TargetRole: in.TargetRole,
		Difficulty: in.Difficulty,
		Status:     model.SessionInProgress,
		Transcript: []model.ChatMessage{
			{Role: model.RoleInterviewer, Content: strings.TrimSpace(opening)},
		},
	}

	if err := s.repo.Create(ctx, interview); err != nil {
		s.logger.Error("failed to create interview",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating interview: %w", err)
	}

	s.logger.Info("interview started",
		slog.String("id", interview.ID),
		slog.String("type", string(interview.Type)),
	)

	return interview, nil
}

// GetByID retrieves one of userID's interview sessions.
func (s *InterviewService) GetByID(ctx context.Context, userID, id string) (*model.MockInterview, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "interview ID is required")
	}
	return s.repo.GetByID(ctx, userID, id)
}

// List retrieves userID's interview history, newest first.
func (s *InterviewService) List(ctx context.Context, userID string, limit, offset int) ([]model.MockInterview, error) {
	interviews, err := s.repo.List(ctx, userID, clampList(limit, offset))
	if err != nil {
		s.logger.Error("failed to list interviews",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing interviews: %w", err)
	}
	return interviews, nil
}

// Message appends a candidate turn and streams the interviewer's reply.
//
// onDelta receives each token fragment as it arrives — the handler relays
// them to the client as SSE. When the upstream stream ends (normally or
// not), whatever accumulated is appended to the transcript and persisted.
// There is no resumption: a dropped stream simply leaves a truncated
// interviewer turn, and the next candidate message carries on from there.
//
// Returns the full interviewer reply.
func (s *InterviewService) Message(ctx context.Context, userID, id, content string, onDelta func(string) error) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperror.ValidationFailed("id", "interview ID is required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperror.ValidationFailed("content", "message content is required")
	}
	if len(content) > MaxInterviewMessageLength {
		return "", apperror.ValidationFailed("content",
			fmt.Sprintf("message must be %d characters or less", MaxInterviewMessageLength))
	}

	interview, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if interview.Status == model.SessionCompleted {
		return "", apperror.Conflict("mock interview", "interview has already finished")
	}

	interview.Transcript = append(interview.Transcript, model.ChatMessage{
		Role:    model.RoleCandidate,
		Content: content,
	})

	messages := make([]ai.Message, 0, len(interview.Transcript)+1)
	messages = append(messages, ai.InterviewSystemMessage(interview.Type, interview.TargetRole, interview.Difficulty))
	messages = append(messages, ai.TranscriptMessages(interview.Transcript)...)

	reply, streamErr := s.ai.Stream(ctx, messages, onDelta)
	reply = strings.TrimSpace(reply)

	if reply != "" {
		interview.Transcript = append(interview.Transcript, model.ChatMessage{
			Role:    model.RoleInterviewer,
			Content: reply,
		})
	}

	// Persist even on stream failure — the candidate's turn (and any
	// truncated reply) should survive the hiccup.
	if err := s.repo.Update(ctx, interview); err != nil {
		s.logger.Error("failed to persist interview turn",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return reply, fmt.Errorf("persisting interview turn: %w", err)
	}

	if streamErr != nil {
		s.logger.Warn("interview stream ended early",
			slog.String("id", id),
			slog.String("error", streamErr.Error()),
		)
		return reply, apperror.Unavailable("ai gateway", "interviewer reply was interrupted")
	}

	return reply, nil
}

// Finish requests structured feedback and completes the session.
//
// Two failure modes, handled differently:
//   - the gateway is down → error, session stays in_progress (retryable)
//   - the gateway answered but the JSON is garbage → placeholder feedback,
//     session completes anyway; the transcript is the valuable part
func (s *InterviewService) Finish(ctx context.Context, userID, id string) (*model.MockInterview, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "interview ID is required")
	}

	interview, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if interview.Status == model.SessionCompleted {
		return nil, apperror.Conflict("mock interview", "interview has already finished")
	}

	messages := make([]ai.Message, 0, len(interview.Transcript)+2)
	messages = append(messages, ai.InterviewSystemMessage(interview.Type, interview.TargetRole, interview.Difficulty))
	messages = append(messages, ai.TranscriptMessages(interview.Transcript)...)
	messages = append(messages, ai.FeedbackPrompt())

	raw, err := s.ai.Complete(ctx, messages)
	if err != nil {
		s.logger.Error("feedback generation failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable("ai gateway", "could not generate feedback")
	}

	feedback, err := ai.ParseFeedback(raw)
	if err != nil {
		s.logger.Warn("feedback response unparsable, storing placeholder",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		feedback = ai.PlaceholderFeedback()
	}

	interview.Feedback = feedback
	interview.Status = model.SessionCompleted

	if err := s.repo.Update(ctx, interview); err != nil {
		s.logger.Error("failed to complete interview",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("completing interview: %w", err)
	}

	s.logger.Info("interview finished", slog.String("id", interview.ID))

	return interview, nil
}

// Delete removes one of userID's interview sessions.
func (s *InterviewService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "interview ID is required")
	}
	return s.repo.Delete(ctx, userID, id)
}

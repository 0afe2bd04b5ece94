package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sakif/prep-tracker/internal/ai"
	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/model"
	"github.com/sakif/prep-tracker/internal/repository"
)

// Mock test limits. The counts keep one AI call affordable; the durations
// are sanity bounds, since the countdown itself runs on the client.
const (
	DefaultQuestionCount = 10
	MaxQuestionCount     = 30
	DefaultTestMinutes   = 15
	MaxTestMinutes       = 180
)

// MockTestInput carries the parameters for starting a new test.
type MockTestInput struct {
	Category        string
	Subcategory     string
	Difficulty      model.Difficulty
	QuestionCount   int
	DurationMinutes int
}

// MockTestService orchestrates AI-generated multiple-choice tests.
//
// LIFECYCLE RULES ENFORCED HERE:
//   - questions are generated exactly once, at start; a failed generation
//     creates nothing (no partially-initialised tests in the database)
//   - the answer key never leaves the server while status is in_progress
//   - a test is graded exactly once; re-submission is a conflict
type MockTestService struct {
	repo   repository.MockTestRepository
	ai     ai.Completer
	logger *slog.Logger
}

// NewMockTestService creates a new MockTestService.
func NewMockTestService(repo repository.MockTestRepository, completer ai.Completer, logger *slog.Logger) *MockTestService {
	return &MockTestService{
		repo:   repo,
		ai:     completer,
		logger: logger,
	}
}

// Start generates a fresh question set and persists the test.
//
// The returned MockTest has its questions SANITIZED — text and options only.
// The full set, answer key included, exists only in the database until the
// test is submitted.
func (s *MockTestService) Start(ctx context.Context, userID string, in MockTestInput) (*model.MockTest, error) {
	in.Category = strings.TrimSpace(in.Category)
	in.Subcategory = strings.TrimSpace(in.Subcategory)

	if in.Category == "" {
		return nil, apperror.ValidationFailed("category", "category is required")
	}
	if !in.Difficulty.Valid() {
		return nil, apperror.ValidationFailed("difficulty",
			fmt.Sprintf("difficulty must be one of: %s, %s, %s",
				model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard))
	}
	if in.QuestionCount <= 0 {
		in.QuestionCount = DefaultQuestionCount
	}
	if in.QuestionCount > MaxQuestionCount {
		return nil, apperror.ValidationFailed("questionCount",
			fmt.Sprintf("question count must be %d or less", MaxQuestionCount))
	}
	if in.DurationMinutes <= 0 {
		in.DurationMinutes = DefaultTestMinutes
	}
	if in.DurationMinutes > MaxTestMinutes {
		return nil, apperror.ValidationFailed("durationMinutes",
			fmt.Sprintf("duration must be %d minutes or less", MaxTestMinutes))
	}

	raw, err := s.ai.Complete(ctx, ai.QuestionPrompt(in.Category, in.Subcategory, in.Difficulty, in.QuestionCount))
	if err != nil {
		s.logger.Error("question generation failed",
			slog.String("category", in.Category),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable("ai gateway", "question generation failed")
	}

	questions, err := ai.ParseQuestions(raw, in.QuestionCount)
	if err != nil {
		s.logger.Error("question response unparsable",
			slog.String("category", in.Category),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable("ai gateway", "question generation returned malformed data")
	}

	test := &model.MockTest{
		UserID:          userID,
		Category:        in.Category,
		Subcategory:     in.Subcategory,
		Difficulty:      in.Difficulty,
		Status:          model.SessionInProgress,
		Questions:       questions,
		Answers:         []int{},
		DurationMinutes: in.DurationMinutes,
		StartedAt:       time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, test); err != nil {
		s.logger.Error("failed to create mock test",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating mock test: %w", err)
	}

	s.logger.Info("mock test started",
		slog.String("id", test.ID),
		slog.String("category", test.Category),
		slog.Int("questions", len(test.Questions)),
	)

	// Hand the caller a sanitized copy; the stored record keeps the key.
	out := *test
	out.Questions = test.SanitizedQuestions()
	return &out, nil
}

// GetByID retrieves one of userID's tests. While the test is in progress
// the answer key is stripped; once completed the full graded set returns.
func (s *MockTestService) GetByID(ctx context.Context, userID, id string) (*model.MockTest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "test ID is required")
	}

	test, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if test.Status == model.SessionInProgress {
		test.Questions = test.SanitizedQuestions()
	}
	return test, nil
}

// List retrieves userID's test history, newest first. Question payloads are
// sanitized for in-progress tests, same as GetByID.
func (s *MockTestService) List(ctx context.Context, userID string, limit, offset int) ([]model.MockTest, error) {
	tests, err := s.repo.List(ctx, userID, clampList(limit, offset))
	if err != nil {
		s.logger.Error("failed to list mock tests",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing mock tests: %w", err)
	}
	for i := range tests {
		if tests[i].Status == model.SessionInProgress {
			tests[i].Questions = tests[i].SanitizedQuestions()
		}
	}
	return tests, nil
}

// Submit grades the test and completes it.
//
// answers[i] is the selected option for question i, -1 for unanswered.
// elapsedSeconds is whatever the client's countdown reports, clamped to the
// test's duration — the server never trusted the client's clock enough to
// reject, only enough to bound.
func (s *MockTestService) Submit(ctx context.Context, userID, id string, answers []int, elapsedSeconds int) (*model.MockTest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "test ID is required")
	}

	test, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if test.Status == model.SessionCompleted {
		return nil, apperror.Conflict("mock test", "test has already been submitted")
	}

	if len(answers) != len(test.Questions) {
		return nil, apperror.ValidationFailed("answers",
			fmt.Sprintf("expected %d answers, got %d", len(test.Questions), len(answers)))
	}
	for i, a := range answers {
		if a < -1 || a > 3 {
			return nil, apperror.ValidationFailed("answers",
				fmt.Sprintf("answer %d is out of range", i))
		}
	}

	correct := 0
	for i, q := range test.Questions {
		if answers[i] == q.CorrectIndex {
			correct++
		}
	}

	maxSeconds := test.DurationMinutes * 60
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	if elapsedSeconds > maxSeconds {
		elapsedSeconds = maxSeconds
	}

	test.Answers = answers
	test.Score = score(correct, len(test.Questions))
	test.TimeTakenSeconds = elapsedSeconds
	test.Status = model.SessionCompleted

	if err := s.repo.Update(ctx, test); err != nil {
		s.logger.Error("failed to save test submission",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving test submission: %w", err)
	}

	s.logger.Info("mock test submitted",
		slog.String("id", test.ID),
		slog.Int("score", test.Score),
	)

	return test, nil
}

// Delete removes one of userID's tests.
func (s *MockTestService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "test ID is required")
	}
	return s.repo.Delete(ctx, userID, id)
}

// score converts correct/total into a 0–100 percentage, rounded to the
// nearest integer. 7/9 correct → 77.77… → 78.
func score(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

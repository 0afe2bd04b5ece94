package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/model"
	"github.com/sakif/prep-tracker/internal/repository"
)

// ProblemInput carries the caller-supplied fields for a coding-practice
// log entry.
type ProblemInput struct {
	Platform     string
	Name         string
	Difficulty   model.Difficulty
	Status       model.ProblemStatus
	PracticeDate string
	Notes        string
}

// ProblemService handles business logic for the coding-practice log and its
// dashboard statistics.
type ProblemService struct {
	repo   repository.ProblemRepository
	logger *slog.Logger

	// now is swappable in tests — streak computation depends on "today".
	now func() time.Time
}

// NewProblemService creates a new ProblemService.
func NewProblemService(repo repository.ProblemRepository, logger *slog.Logger) *ProblemService {
	return &ProblemService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (in *ProblemInput) validate() error {
	in.Platform = strings.TrimSpace(in.Platform)
	in.Name = strings.TrimSpace(in.Name)
	in.Notes = strings.TrimSpace(in.Notes)

	if in.Platform == "" {
		return apperror.ValidationFailed("platform", "platform is required")
	}
	if in.Name == "" {
		return apperror.ValidationFailed("name", "problem name is required")
	}
	if len(in.Name) > MaxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("problem name must be %d characters or less", MaxNameLength))
	}
	if !in.Difficulty.Valid() {
		return apperror.ValidationFailed("difficulty",
			fmt.Sprintf("difficulty must be one of: %s, %s, %s",
				model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard))
	}
	if in.Status == "" {
		in.Status = model.ProblemNotSolved
	}
	if !in.Status.Valid() {
		return apperror.ValidationFailed("status",
			fmt.Sprintf("status must be one of: %s, %s, %s",
				model.ProblemSolved, model.ProblemNeedsRevision, model.ProblemNotSolved))
	}
	if in.PracticeDate == "" {
		return apperror.ValidationFailed("practiceDate", "practice date is required")
	}
	return validateDate("practiceDate", in.PracticeDate)
}

// Create validates and saves a new practice log entry for userID.
func (s *ProblemService) Create(ctx context.Context, userID string, in ProblemInput) (*model.Problem, error) {
	if err := (&in).validate(); err != nil {
		return nil, err
	}

	problem := &model.Problem{
		UserID:       userID,
		Platform:     in.Platform,
		Name:         in.Name,
		Difficulty:   in.Difficulty,
		Status:       in.Status,
		PracticeDate: in.PracticeDate,
		Notes:        in.Notes,
	}

	if err := s.repo.Create(ctx, problem); err != nil {
		s.logger.Error("failed to create problem entry",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating problem entry: %w", err)
	}

	s.logger.Info("problem logged",
		slog.String("id", problem.ID),
		slog.String("name", problem.Name),
		slog.String("status", string(problem.Status)),
	)

	return problem, nil
}

// GetByID retrieves one of userID's practice entries.
func (s *ProblemService) GetByID(ctx context.Context, userID, id string) (*model.Problem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "problem ID is required")
	}
	return s.repo.GetByID(ctx, userID, id)
}

// List retrieves userID's practice entries, most recent practice date first.
// Status and difficulty filters combine as a conjunction when both are set.
func (s *ProblemService) List(ctx context.Context, userID string, filter repository.ProblemFilter, limit, offset int) ([]model.Problem, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.ValidationFailed("status", "unknown problem status: "+string(filter.Status))
	}
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		return nil, apperror.ValidationFailed("difficulty", "unknown difficulty: "+string(filter.Difficulty))
	}

	problems, err := s.repo.List(ctx, userID, filter, clampList(limit, offset))
	if err != nil {
		s.logger.Error("failed to list problems",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing problems: %w", err)
	}
	return problems, nil
}

// Update replaces an existing entry's fields with the input.
func (s *ProblemService) Update(ctx context.Context, userID, id string, in ProblemInput) (*model.Problem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "problem ID is required")
	}
	if err := (&in).validate(); err != nil {
		return nil, err
	}

	problem, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	problem.Platform = in.Platform
	problem.Name = in.Name
	problem.Difficulty = in.Difficulty
	problem.Status = in.Status
	problem.PracticeDate = in.PracticeDate
	problem.Notes = in.Notes

	if err := s.repo.Update(ctx, problem); err != nil {
		s.logger.Error("failed to update problem entry",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating problem entry: %w", err)
	}

	return problem, nil
}

// Delete removes one of userID's practice entries.
func (s *ProblemService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "problem ID is required")
	}
	return s.repo.Delete(ctx, userID, id)
}

// Stats returns the practice dashboard aggregates, including the current
// daily streak.
//
// The counts come straight from SQL; the streak needs calendar arithmetic,
// so the repository hands us the distinct practice dates and we walk them
// here.
func (s *ProblemService) Stats(ctx context.Context, userID string) (*model.ProblemStats, error) {
	stats, err := s.repo.Stats(ctx, userID)
	if err != nil {
		s.logger.Error("failed to compute problem stats",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("computing problem stats: %w", err)
	}

	dates, err := s.repo.PracticeDates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading practice dates: %w", err)
	}
	stats.Streak = computeStreak(dates, s.now())

	return stats, nil
}

// computeStreak counts consecutive practice days ending today or yesterday.
//
// "Or yesterday" is the grace rule: someone who practises every evening
// still has an unbroken streak the next morning, before today's session.
// Only a full missed calendar day resets the counter.
//
// dates is the distinct practice dates in descending order (the repository
// guarantees both). Unparsable dates end the walk — they can only come from
// a manually edited database, and a conservative streak beats a crash.
func computeStreak(dates []string, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	// The streak is alive only if the most recent practice day is today
	// or yesterday.
	if dates[0] != today && dates[0] != yesterday {
		return 0
	}

	streak := 1
	prev, err := time.Parse(dateLayout, dates[0])
	if err != nil {
		return 0
	}

	for _, d := range dates[1:] {
		day, err := time.Parse(dateLayout, d)
		if err != nil {
			break
		}
		if !day.Equal(prev.AddDate(0, 0, -1)) {
			break
		}
		streak++
		prev = day
	}

	return streak
}

// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
// In a well-structured Go web app, code is organised into three layers:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// WHY A SEPARATE SERVICE LAYER?
// Without a service layer, handlers do everything: parse HTTP, validate data,
// call the database, format responses. That makes business rules untestable
// without spinning up HTTP, and unusable from anywhere but HTTP.
//
// THE DEPENDENCY CHAIN:
//
//	main.go creates:  DB → Repository → Service → Handler
//	At runtime:       Handler calls Service calls Repository calls DB
//
// OWNERSHIP:
// Every method here takes the authenticated userID as its first data
// argument and passes it straight through to the repository, which scopes
// the query. The service layer never has to ask "does this record belong to
// the caller?" — a foreign record simply doesn't exist as far as the
// repository is concerned.
//
// INPUT STRUCTS:
// The usual rule "accept primitives, not HTTP types" still applies, but
// our entities carry eight-plus fields; spelling each out as a parameter
// would be unreadable. So mutating operations accept plain input structs
// (GoalInput, ProblemInput, ...) that contain only domain values — no
// http.Request, no JSON decoding, nothing that ties the service to a
// transport.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/model"
	"github.com/sakif/prep-tracker/internal/repository"
)

// GoalInput carries the caller-supplied fields for creating or replacing a
// learning goal. Updates are full replacements: the client sends the whole
// object back, and what it sends is what gets stored.
type GoalInput struct {
	SkillName     string
	Topic         string
	Status        model.GoalStatus
	StartDate     string
	TargetDate    string
	ResourceLinks []string
	Notes         string
}

// GoalService handles business logic for learning goals.
type GoalService struct {
	repo   repository.GoalRepository
	logger *slog.Logger
}

// NewGoalService creates a new GoalService.
func NewGoalService(repo repository.GoalRepository, logger *slog.Logger) *GoalService {
	return &GoalService{
		repo:   repo,
		logger: logger,
	}
}

// validate normalizes the input in place and returns the first rule
// violation. Shared by Create and Update — the rules are identical.
func (in *GoalInput) validate() error {
	in.SkillName = strings.TrimSpace(in.SkillName)
	in.Topic = strings.TrimSpace(in.Topic)
	in.Notes = strings.TrimSpace(in.Notes)

	if in.SkillName == "" {
		return apperror.ValidationFailed("skillName", "skill name is required")
	}
	if len(in.SkillName) > MaxNameLength {
		return apperror.ValidationFailed("skillName",
			fmt.Sprintf("skill name must be %d characters or less", MaxNameLength))
	}
	if in.Topic == "" {
		return apperror.ValidationFailed("topic", "topic is required")
	}

	// Status defaults rather than errors: a bare "add goal" form starts
	// every goal at not_started.
	if in.Status == "" {
		in.Status = model.GoalNotStarted
	}
	if !in.Status.Valid() {
		return apperror.ValidationFailed("status",
			fmt.Sprintf("status must be one of: %s, %s, %s",
				model.GoalNotStarted, model.GoalInProgress, model.GoalCompleted))
	}

	if err := validateDate("startDate", in.StartDate); err != nil {
		return err
	}
	if err := validateDate("targetDate", in.TargetDate); err != nil {
		return err
	}

	if in.ResourceLinks == nil {
		in.ResourceLinks = []string{}
	}
	return nil
}

// Create validates and saves a new learning goal for userID.
func (s *GoalService) Create(ctx context.Context, userID string, in GoalInput) (*model.Goal, error) {
	if err := (&in).validate(); err != nil {
		return nil, err
	}

	goal := &model.Goal{
		UserID:        userID,
		SkillName:     in.SkillName,
		Topic:         in.Topic,
		Status:        in.Status,
		StartDate:     in.StartDate,
		TargetDate:    in.TargetDate,
		ResourceLinks: in.ResourceLinks,
		Notes:         in.Notes,
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		s.logger.Error("failed to create goal",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating goal: %w", err)
	}

	s.logger.Info("goal created",
		slog.String("id", goal.ID),
		slog.String("skill", goal.SkillName),
	)

	return goal, nil
}

// GetByID retrieves one of userID's goals.
// A goal belonging to another user returns NotFound, same as a missing one.
func (s *GoalService) GetByID(ctx context.Context, userID, id string) (*model.Goal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "goal ID is required")
	}
	return s.repo.GetByID(ctx, userID, id)
}

// List retrieves userID's goals, newest first, optionally filtered by status.
func (s *GoalService) List(ctx context.Context, userID string, status model.GoalStatus, limit, offset int) ([]model.Goal, error) {
	if status != "" && !status.Valid() {
		return nil, apperror.ValidationFailed("status", "unknown goal status: "+string(status))
	}

	goals, err := s.repo.List(ctx, userID,
		repository.GoalFilter{Status: status},
		clampList(limit, offset),
	)
	if err != nil {
		s.logger.Error("failed to list goals",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	return goals, nil
}

// Update replaces an existing goal's fields with the input.
//
// STRATEGY: "Fetch then update"
//  1. Fetch the existing goal (confirms existence AND ownership)
//  2. Apply the replacement fields to the fetched copy
//  3. Save the updated version
//
// The fetch isn't wasted work: it's what turns "update someone else's goal"
// into a clean NotFound instead of a silent no-op with a 200.
func (s *GoalService) Update(ctx context.Context, userID, id string, in GoalInput) (*model.Goal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "goal ID is required")
	}
	if err := (&in).validate(); err != nil {
		return nil, err
	}

	goal, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	goal.SkillName = in.SkillName
	goal.Topic = in.Topic
	goal.Status = in.Status
	goal.StartDate = in.StartDate
	goal.TargetDate = in.TargetDate
	goal.ResourceLinks = in.ResourceLinks
	goal.Notes = in.Notes

	if err := s.repo.Update(ctx, goal); err != nil {
		s.logger.Error("failed to update goal",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating goal: %w", err)
	}

	return goal, nil
}

// Delete removes one of userID's goals.
func (s *GoalService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "goal ID is required")
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("goal deleted", slog.String("id", id))
	return nil
}

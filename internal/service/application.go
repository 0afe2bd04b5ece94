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

// ApplicationInput carries the caller-supplied fields for a job application.
type ApplicationInput struct {
	Company       string
	Role          string
	JobType       model.JobType
	Status        model.ApplicationStatus
	ApplyDate     string
	InterviewDate string
	Link          string
	Notes         string
}

// ApplicationService handles business logic for job application tracking.
type ApplicationService struct {
	repo   repository.ApplicationRepository
	logger *slog.Logger
}

// NewApplicationService creates a new ApplicationService.
func NewApplicationService(repo repository.ApplicationRepository, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{
		repo:   repo,
		logger: logger,
	}
}

func (in *ApplicationInput) validate() error {
	in.Company = strings.TrimSpace(in.Company)
	in.Role = strings.TrimSpace(in.Role)
	in.Link = strings.TrimSpace(in.Link)
	in.Notes = strings.TrimSpace(in.Notes)

	if in.Company == "" {
		return apperror.ValidationFailed("company", "company is required")
	}
	if len(in.Company) > MaxNameLength {
		return apperror.ValidationFailed("company",
			fmt.Sprintf("company must be %d characters or less", MaxNameLength))
	}
	if in.Role == "" {
		return apperror.ValidationFailed("role", "role is required")
	}
	if !in.JobType.Valid() {
		return apperror.ValidationFailed("jobType",
			fmt.Sprintf("job type must be %s or %s", model.JobInternship, model.JobFullTime))
	}
	if in.Status == "" {
		in.Status = model.ApplicationApplied
	}
	if !in.Status.Valid() {
		return apperror.ValidationFailed("status",
			fmt.Sprintf("status must be one of: %s, %s, %s, %s, %s",
				model.ApplicationApplied, model.ApplicationOA, model.ApplicationInterview,
				model.ApplicationRejected, model.ApplicationSelected))
	}
	if err := validateDate("applyDate", in.ApplyDate); err != nil {
		return err
	}
	// An interview date without interview status is fine — users log
	// scheduled interviews before updating the stage, and the two fields
	// are deliberately independent.
	return validateDate("interviewDate", in.InterviewDate)
}

// Create validates and saves a new application for userID.
func (s *ApplicationService) Create(ctx context.Context, userID string, in ApplicationInput) (*model.Application, error) {
	if err := (&in).validate(); err != nil {
		return nil, err
	}

	app := &model.Application{
		UserID:        userID,
		Company:       in.Company,
		Role:          in.Role,
		JobType:       in.JobType,
		Status:        in.Status,
		ApplyDate:     in.ApplyDate,
		InterviewDate: in.InterviewDate,
		Link:          in.Link,
		Notes:         in.Notes,
	}

	if err := s.repo.Create(ctx, app); err != nil {
		s.logger.Error("failed to create application",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating application: %w", err)
	}

	s.logger.Info("application created",
		slog.String("id", app.ID),
		slog.String("company", app.Company),
	)

	return app, nil
}

// GetByID retrieves one of userID's applications.
func (s *ApplicationService) GetByID(ctx context.Context, userID, id string) (*model.Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "application ID is required")
	}
	return s.repo.GetByID(ctx, userID, id)
}

// List retrieves userID's applications, most recent apply date first.
// Status and job type filters combine as a conjunction when both are set.
func (s *ApplicationService) List(ctx context.Context, userID string, filter repository.ApplicationFilter, limit, offset int) ([]model.Application, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.ValidationFailed("status", "unknown application status: "+string(filter.Status))
	}
	if filter.JobType != "" && !filter.JobType.Valid() {
		return nil, apperror.ValidationFailed("jobType", "unknown job type: "+string(filter.JobType))
	}

	apps, err := s.repo.List(ctx, userID, filter, clampList(limit, offset))
	if err != nil {
		s.logger.Error("failed to list applications",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	return apps, nil
}

// Update replaces an existing application's fields with the input.
func (s *ApplicationService) Update(ctx context.Context, userID, id string, in ApplicationInput) (*model.Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "application ID is required")
	}
	if err := (&in).validate(); err != nil {
		return nil, err
	}

	app, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	app.Company = in.Company
	app.Role = in.Role
	app.JobType = in.JobType
	app.Status = in.Status
	app.ApplyDate = in.ApplyDate
	app.InterviewDate = in.InterviewDate
	app.Link = in.Link
	app.Notes = in.Notes

	if err := s.repo.Update(ctx, app); err != nil {
		s.logger.Error("failed to update application",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating application: %w", err)
	}

	return app, nil
}

// Delete removes one of userID's applications.
func (s *ApplicationService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "application ID is required")
	}
	return s.repo.Delete(ctx, userID, id)
}

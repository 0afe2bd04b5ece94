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

// RoadmapInput carries the caller-supplied fields for the user's
// preparation roadmap. A save always replaces the whole plan.
type RoadmapInput struct {
	TargetRole  string
	CompanyType string
	Months      []model.MonthPlan
	Skills      []model.SkillPriority
	Weaknesses  string
}

// RoadmapService handles the single-per-user preparation roadmap.
// There is no Create/Update split: Save upserts, so the client never has to
// track whether a roadmap exists yet.
type RoadmapService struct {
	repo   repository.RoadmapRepository
	logger *slog.Logger
}

// NewRoadmapService creates a new RoadmapService.
func NewRoadmapService(repo repository.RoadmapRepository, logger *slog.Logger) *RoadmapService {
	return &RoadmapService{
		repo:   repo,
		logger: logger,
	}
}

// Save validates and upserts userID's roadmap, returning the stored copy.
func (s *RoadmapService) Save(ctx context.Context, userID string, in RoadmapInput) (*model.Roadmap, error) {
	in.TargetRole = strings.TrimSpace(in.TargetRole)
	in.CompanyType = strings.TrimSpace(in.CompanyType)
	in.Weaknesses = strings.TrimSpace(in.Weaknesses)

	if in.TargetRole == "" {
		return nil, apperror.ValidationFailed("targetRole", "target role is required")
	}
	for i, m := range in.Months {
		if strings.TrimSpace(m.Month) == "" {
			return nil, apperror.ValidationFailed("months",
				fmt.Sprintf("month %d has no label", i))
		}
	}
	for i, sk := range in.Skills {
		if strings.TrimSpace(sk.Skill) == "" {
			return nil, apperror.ValidationFailed("skills",
				fmt.Sprintf("skill %d has no name", i))
		}
		switch sk.Priority {
		case "high", "medium", "low":
		default:
			return nil, apperror.ValidationFailed("skills",
				fmt.Sprintf("skill %q priority must be high, medium, or low", sk.Skill))
		}
	}

	if in.Months == nil {
		in.Months = []model.MonthPlan{}
	}
	if in.Skills == nil {
		in.Skills = []model.SkillPriority{}
	}

	roadmap := &model.Roadmap{
		UserID:      userID,
		TargetRole:  in.TargetRole,
		CompanyType: in.CompanyType,
		Months:      in.Months,
		Skills:      in.Skills,
		Weaknesses:  in.Weaknesses,
	}

	if err := s.repo.Upsert(ctx, roadmap); err != nil {
		s.logger.Error("failed to save roadmap",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving roadmap: %w", err)
	}

	s.logger.Info("roadmap saved",
		slog.String("id", roadmap.ID),
		slog.String("targetRole", roadmap.TargetRole),
	)

	return roadmap, nil
}

// Get retrieves userID's roadmap. Returns NotFound before the first save.
func (s *RoadmapService) Get(ctx context.Context, userID string) (*model.Roadmap, error) {
	return s.repo.GetByUser(ctx, userID)
}

// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage provides the real implementation;
// tests substitute in-memory mocks.
//
// OWNERSHIP SCOPING:
// Every method that touches user data takes the owning userID and the
// implementation must scope the query to it (WHERE user_id = ?). This is
// the application-level replacement for hosted row-level security: a row
// belonging to another user is indistinguishable from a missing row —
// lookups return NotFound, never Forbidden, so record IDs leak nothing.
package repository

import (
	"context"

	"github.com/sakif/prep-tracker/internal/model"
)

// ListOptions carries pagination for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// ProblemFilter narrows a coding-problem list. Zero values mean "no filter";
// status and difficulty combine as a conjunction when both are set.
type ProblemFilter struct {
	Status     model.ProblemStatus
	Difficulty model.Difficulty
}

// ApplicationFilter narrows an application list. Zero values mean "no
// filter"; status and job type combine as a conjunction when both are set.
type ApplicationFilter struct {
	Status  model.ApplicationStatus
	JobType model.JobType
}

// GoalFilter narrows a learning-goal list by status.
type GoalFilter struct {
	Status model.GoalStatus
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHub inserts or updates a user keyed on github_id.
	UpsertGitHub(ctx context.Context, user *model.User) error
}

type GoalRepository interface {
	Create(ctx context.Context, goal *model.Goal) error
	GetByID(ctx context.Context, userID, id string) (*model.Goal, error)
	List(ctx context.Context, userID string, filter GoalFilter, opts ListOptions) ([]model.Goal, error)
	Update(ctx context.Context, goal *model.Goal) error
	Delete(ctx context.Context, userID, id string) error
}

type ProblemRepository interface {
	Create(ctx context.Context, problem *model.Problem) error
	GetByID(ctx context.Context, userID, id string) (*model.Problem, error)
	List(ctx context.Context, userID string, filter ProblemFilter, opts ListOptions) ([]model.Problem, error)
	Update(ctx context.Context, problem *model.Problem) error
	Delete(ctx context.Context, userID, id string) error
	// PracticeDates returns the distinct practice dates ("2006-01-02") the
	// user has at least one entry for. Used for streak computation.
	PracticeDates(ctx context.Context, userID string) ([]string, error)
	Stats(ctx context.Context, userID string) (*model.ProblemStats, error)
}

type ResumeRepository interface {
	Create(ctx context.Context, resume *model.Resume) error
	GetByID(ctx context.Context, userID, id string) (*model.Resume, error)
	List(ctx context.Context, userID string, opts ListOptions) ([]model.Resume, error)
	Update(ctx context.Context, resume *model.Resume) error
	Delete(ctx context.Context, userID, id string) error
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, userID, id string) (*model.Application, error)
	List(ctx context.Context, userID string, filter ApplicationFilter, opts ListOptions) ([]model.Application, error)
	Update(ctx context.Context, app *model.Application) error
	Delete(ctx context.Context, userID, id string) error
}

type RoadmapRepository interface {
	// Upsert inserts the user's roadmap or replaces the existing one —
	// the table has a UNIQUE constraint on user_id.
	Upsert(ctx context.Context, roadmap *model.Roadmap) error
	GetByUser(ctx context.Context, userID string) (*model.Roadmap, error)
}

type MockTestRepository interface {
	Create(ctx context.Context, test *model.MockTest) error
	GetByID(ctx context.Context, userID, id string) (*model.MockTest, error)
	List(ctx context.Context, userID string, opts ListOptions) ([]model.MockTest, error)
	Update(ctx context.Context, test *model.MockTest) error
	Delete(ctx context.Context, userID, id string) error
}

type InterviewRepository interface {
	Create(ctx context.Context, interview *model.MockInterview) error
	GetByID(ctx context.Context, userID, id string) (*model.MockInterview, error)
	List(ctx context.Context, userID string, opts ListOptions) ([]model.MockInterview, error)
	Update(ctx context.Context, interview *model.MockInterview) error
	Delete(ctx context.Context, userID, id string) error
}

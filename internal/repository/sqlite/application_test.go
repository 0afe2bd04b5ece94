package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/model"
	"github.com/sakif/prep-tracker/internal/repository"
)

func createTestApplication(t *testing.T, db *DB, userID string, fn func(*model.Application)) *model.Application {
	t.Helper()
	app := &model.Application{
		UserID:    userID,
		Company:   "Initech",
		Role:      "SDE Intern",
		JobType:   model.JobInternship,
		Status:    model.ApplicationApplied,
		ApplyDate: "2026-08-01",
	}
	if fn != nil {
		fn(app)
	}
	if err := db.Applications().Create(context.Background(), app); err != nil {
		t.Fatalf("failed to create test application: %v", err)
	}
	return app
}

// =========================================================================
// APPLICATION TESTS
// =========================================================================

func TestApplicationCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "apps@example.com")

	app := createTestApplication(t, db, user.ID, nil)
	if app.ID == "" {
		t.Fatal("Create() did not set application.ID")
	}

	stored, err := db.Applications().GetByID(context.Background(), user.ID, app.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Company != "Initech" || stored.ApplyDate != "2026-08-01" {
		t.Errorf("GetByID() = %+v", stored)
	}
}

func TestApplicationList_StatusAndJobTypeFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "funnel@example.com")

	createTestApplication(t, db, user.ID, func(a *model.Application) {
		a.Status, a.JobType = model.ApplicationInterview, model.JobFullTime
	})
	createTestApplication(t, db, user.ID, func(a *model.Application) {
		a.Status, a.JobType = model.ApplicationInterview, model.JobInternship
	})
	createTestApplication(t, db, user.ID, func(a *model.Application) {
		a.Status, a.JobType = model.ApplicationRejected, model.JobFullTime
	})

	got, err := db.Applications().List(ctx, user.ID, repository.ApplicationFilter{
		Status:  model.ApplicationInterview,
		JobType: model.JobFullTime,
	}, repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("List(interview+full_time) = %d applications, want 1", len(got))
	}
	if got[0].Status != model.ApplicationInterview || got[0].JobType != model.JobFullTime {
		t.Errorf("List(interview+full_time) returned %+v", got[0])
	}
}

func TestApplicationUpdate_StatusProgression(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "progress@example.com")
	app := createTestApplication(t, db, user.ID, nil)

	app.Status = model.ApplicationOA
	app.InterviewDate = "2026-09-15"
	if err := db.Applications().Update(ctx, app); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stored, err := db.Applications().GetByID(ctx, user.ID, app.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Status != model.ApplicationOA || stored.InterviewDate != "2026-09-15" {
		t.Errorf("Update() not persisted: %+v", stored)
	}
}

func TestApplicationDelete_ForeignRowIsNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	intruder := createTestUser(t, db, "intruder@example.com")
	app := createTestApplication(t, db, owner.ID, nil)

	if err := db.Applications().Delete(ctx, intruder.ID, app.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() as another user should be ErrNotFound, got %v", err)
	}
	if err := db.Applications().Delete(ctx, owner.ID, app.ID); err != nil {
		t.Errorf("Delete() as owner error = %v", err)
	}
}

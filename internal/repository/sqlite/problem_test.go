package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/model"
	"github.com/sakif/prep-tracker/internal/repository"
)

func createTestProblem(t *testing.T, db *DB, userID string, fn func(*model.Problem)) *model.Problem {
	t.Helper()
	p := &model.Problem{
		UserID:       userID,
		Platform:     "leetcode",
		Name:         "Two Sum",
		Difficulty:   model.DifficultyEasy,
		Status:       model.ProblemSolved,
		PracticeDate: "2026-08-20",
	}
	if fn != nil {
		fn(p)
	}
	if err := db.Problems().Create(context.Background(), p); err != nil {
		t.Fatalf("failed to create test problem: %v", err)
	}
	return p
}

// =========================================================================
// CRUD TESTS
// =========================================================================

func TestProblemCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "problems@example.com")

	p := createTestProblem(t, db, user.ID, nil)
	if p.ID == "" {
		t.Fatal("Create() did not set problem.ID")
	}

	stored, err := db.Problems().GetByID(context.Background(), user.ID, p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Name != "Two Sum" || stored.PracticeDate != "2026-08-20" {
		t.Errorf("GetByID() = %+v", stored)
	}
}

func TestProblemUpdate_MissingRowIsNotFound(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "missing@example.com")

	ghost := &model.Problem{ID: "no-such-id", UserID: user.ID, Name: "Ghost"}
	if err := db.Problems().Update(context.Background(), ghost); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() on missing row should be ErrNotFound, got %v", err)
	}
}

// =========================================================================
// FILTER TESTS
// =========================================================================

// Both filters set must behave as the intersection, not either-or.
func TestProblemList_FilterConjunction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "conjunction@example.com")

	createTestProblem(t, db, user.ID, func(p *model.Problem) {
		p.Status, p.Difficulty = model.ProblemSolved, model.DifficultyEasy
	})
	createTestProblem(t, db, user.ID, func(p *model.Problem) {
		p.Status, p.Difficulty = model.ProblemSolved, model.DifficultyHard
	})
	createTestProblem(t, db, user.ID, func(p *model.Problem) {
		p.Status, p.Difficulty = model.ProblemNotSolved, model.DifficultyHard
	})

	got, err := db.Problems().List(ctx, user.ID, repository.ProblemFilter{
		Status:     model.ProblemSolved,
		Difficulty: model.DifficultyHard,
	}, repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("List(solved+hard) = %d problems, want 1", len(got))
	}
	if got[0].Status != model.ProblemSolved || got[0].Difficulty != model.DifficultyHard {
		t.Errorf("List(solved+hard) returned %+v", got[0])
	}
}

// =========================================================================
// PRACTICE DATE TESTS
// =========================================================================

func TestProblemPracticeDates_DistinctDescendingNonEmpty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "dates@example.com")

	for _, d := range []string{"2026-08-18", "2026-08-20", "2026-08-20", "2026-08-19", ""} {
		date := d
		createTestProblem(t, db, user.ID, func(p *model.Problem) { p.PracticeDate = date })
	}

	dates, err := db.Problems().PracticeDates(ctx, user.ID)
	if err != nil {
		t.Fatalf("PracticeDates() error = %v", err)
	}

	want := []string{"2026-08-20", "2026-08-19", "2026-08-18"}
	if len(dates) != len(want) {
		t.Fatalf("PracticeDates() = %v, want %v", dates, want)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("PracticeDates()[%d] = %q, want %q", i, dates[i], want[i])
		}
	}
}

// =========================================================================
// STATS TESTS
// =========================================================================

func TestProblemStats_Counts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "stats@example.com")
	other := createTestUser(t, db, "other-stats@example.com")

	createTestProblem(t, db, user.ID, func(p *model.Problem) {
		p.Status, p.Difficulty = model.ProblemSolved, model.DifficultyEasy
	})
	createTestProblem(t, db, user.ID, func(p *model.Problem) {
		p.Status, p.Difficulty = model.ProblemSolved, model.DifficultyMedium
	})
	createTestProblem(t, db, user.ID, func(p *model.Problem) {
		p.Status, p.Difficulty = model.ProblemNeedsRevision, model.DifficultyHard
	})
	// Someone else's entry must not leak into the aggregate.
	createTestProblem(t, db, other.ID, nil)

	stats, err := db.Problems().Stats(ctx, user.ID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.Total != 3 {
		t.Errorf("Stats().Total = %d, want 3", stats.Total)
	}
	if stats.Solved != 2 || stats.NeedsRevision != 1 || stats.NotSolved != 0 {
		t.Errorf("Stats() status counts = %+v", stats)
	}
	if stats.Easy != 1 || stats.Medium != 1 || stats.Hard != 1 {
		t.Errorf("Stats() difficulty counts = %+v", stats)
	}
}

func TestProblemStats_EmptyTable(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "empty-stats@example.com")

	stats, err := db.Problems().Stats(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 0 || stats.Solved != 0 {
		t.Errorf("Stats() on empty table = %+v, want zeros", stats)
	}
}

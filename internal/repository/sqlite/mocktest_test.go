package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/prep-tracker/internal/model"
	"github.com/sakif/prep-tracker/internal/repository"
)

func createTestMockTest(t *testing.T, db *DB, userID string) *model.MockTest {
	t.Helper()
	test := &model.MockTest{
		UserID:     userID,
		Category:   "dsa",
		Difficulty: model.DifficultyMedium,
		Status:     model.SessionInProgress,
		Questions: []model.Question{
			{
				Text:         "Worst-case lookup in a hash table?",
				Options:      []string{"O(1)", "O(log n)", "O(n)", "O(n log n)"},
				CorrectIndex: 2,
				Explanation:  "All keys can collide into one bucket.",
			},
			{
				Text:         "Which structure gives O(log n) ordered lookup?",
				Options:      []string{"array", "BST", "queue", "stack"},
				CorrectIndex: 1,
				Explanation:  "A balanced binary search tree.",
			},
		},
		Answers:         []int{},
		DurationMinutes: 15,
	}
	if err := db.MockTests().Create(context.Background(), test); err != nil {
		t.Fatalf("failed to create test mock test: %v", err)
	}
	return test
}

// =========================================================================
// MOCK TEST TESTS
// =========================================================================

func TestMockTestCreate_QuestionsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "mocktest@example.com")

	test := createTestMockTest(t, db, user.ID)
	if test.ID == "" {
		t.Fatal("Create() did not set test.ID")
	}
	if test.StartedAt.IsZero() {
		t.Error("Create() did not default StartedAt")
	}

	stored, err := db.MockTests().GetByID(context.Background(), user.ID, test.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	// The full question payload — answer key included — must survive the
	// JSON column round trip. Sanitization is the service layer's job.
	if len(stored.Questions) != 2 {
		t.Fatalf("GetByID() questions = %d, want 2", len(stored.Questions))
	}
	q := stored.Questions[0]
	if q.CorrectIndex != 2 || q.Explanation == "" || len(q.Options) != 4 {
		t.Errorf("GetByID() question lost fields: %+v", q)
	}
	if len(stored.Answers) != 0 {
		t.Errorf("GetByID() answers = %v, want empty before submission", stored.Answers)
	}
}

func TestMockTestUpdate_PersistsOnlyGradingState(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "grading@example.com")
	test := createTestMockTest(t, db, user.ID)

	test.Status = model.SessionCompleted
	test.Answers = []int{2, -1}
	test.Score = 50
	test.TimeTakenSeconds = 421
	// These must NOT be persisted by Update — questions are immutable after
	// generation.
	test.Category = "hacked"
	test.Questions = nil

	if err := db.MockTests().Update(ctx, test); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stored, err := db.MockTests().GetByID(ctx, user.ID, test.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Status != model.SessionCompleted || stored.Score != 50 || stored.TimeTakenSeconds != 421 {
		t.Errorf("Update() grading state not persisted: %+v", stored)
	}
	if len(stored.Answers) != 2 || stored.Answers[0] != 2 || stored.Answers[1] != -1 {
		t.Errorf("Update() answers = %v, want [2 -1]", stored.Answers)
	}
	if stored.Category != "dsa" {
		t.Errorf("Update() persisted category change: %q", stored.Category)
	}
	if len(stored.Questions) != 2 {
		t.Errorf("Update() wiped questions: %d left", len(stored.Questions))
	}
}

func TestMockTestList_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "history@example.com")

	createTestMockTest(t, db, user.ID)
	createTestMockTest(t, db, user.ID)

	tests, err := db.MockTests().List(ctx, user.ID, repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tests) != 2 {
		t.Fatalf("List() = %d tests, want 2", len(tests))
	}
	if tests[0].CreatedAt.Before(tests[1].CreatedAt) {
		t.Error("List() should return newest first")
	}
}

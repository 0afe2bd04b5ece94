package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/model"
)

// questionsJSON is a valid two-question generation reply, wrapped in a
// markdown fence the way models often return it.
const questionsJSON = "```json\n" + `[
  {"text": "Worst-case lookup in a hash table?",
   "options": ["O(1)", "O(log n)", "O(n)", "O(n log n)"],
   "correctIndex": 2, "explanation": "All keys can collide."},
  {"text": "Which structure gives O(log n) ordered lookup?",
   "options": ["array", "BST", "queue", "stack"],
   "correctIndex": 1, "explanation": "A balanced BST."}
]` + "\n```"

func startTestSession(t *testing.T, repo *mockMockTestRepo, completer *fakeCompleter) (*MockTestService, *model.MockTest) {
	t.Helper()
	svc := NewMockTestService(repo, completer, testLogger())
	test, err := svc.Start(context.Background(), "user-1", MockTestInput{
		Category:      "dsa",
		Difficulty:    model.DifficultyMedium,
		QuestionCount: 2,
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return svc, test
}

// =========================================================================
// START TESTS
// =========================================================================

func TestMockTestStart_SanitizesReturnedQuestions(t *testing.T) {
	repo := newMockMockTestRepo()
	completer := &fakeCompleter{replies: []string{questionsJSON}}

	_, test := startTestSession(t, repo, completer)

	if len(test.Questions) != 2 {
		t.Fatalf("Start() returned %d questions, want 2", len(test.Questions))
	}
	for i, q := range test.Questions {
		if q.CorrectIndex != -1 || q.Explanation != "" {
			t.Errorf("Start() leaked the answer key in question %d: %+v", i, q)
		}
	}

	// The stored record must still carry the full key for grading.
	stored := repo.tests[test.ID]
	if stored.Questions[0].CorrectIndex != 2 {
		t.Errorf("stored question lost its answer key: %+v", stored.Questions[0])
	}
}

func TestMockTestStart_GatewayDownCreatesNothing(t *testing.T) {
	repo := newMockMockTestRepo()
	completer := &fakeCompleter{completeErr: errors.New("connection refused")}
	svc := NewMockTestService(repo, completer, testLogger())

	_, err := svc.Start(context.Background(), "user-1", MockTestInput{
		Category:   "dsa",
		Difficulty: model.DifficultyEasy,
	})
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("Start() with dead gateway should be ErrUnavailable, got %v", err)
	}
	if len(repo.tests) != 0 {
		t.Error("Start() persisted a test despite generation failure")
	}
}

func TestMockTestStart_MalformedReplyCreatesNothing(t *testing.T) {
	repo := newMockMockTestRepo()
	completer := &fakeCompleter{replies: []string{"Sorry, I can't help with that."}}
	svc := NewMockTestService(repo, completer, testLogger())

	_, err := svc.Start(context.Background(), "user-1", MockTestInput{
		Category:   "dsa",
		Difficulty: model.DifficultyEasy,
	})
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("Start() with unparsable reply should be ErrUnavailable, got %v", err)
	}
	if len(repo.tests) != 0 {
		t.Error("Start() persisted a test despite unparsable questions")
	}
}

func TestMockTestStart_Validation(t *testing.T) {
	svc := NewMockTestService(newMockMockTestRepo(), &fakeCompleter{}, testLogger())
	ctx := context.Background()

	if _, err := svc.Start(ctx, "user-1", MockTestInput{Difficulty: model.DifficultyEasy}); err == nil {
		t.Error("Start() should reject a missing category")
	}
	if _, err := svc.Start(ctx, "user-1", MockTestInput{Category: "dsa", Difficulty: "extreme"}); err == nil {
		t.Error("Start() should reject an unknown difficulty")
	}
	_, err := svc.Start(ctx, "user-1", MockTestInput{
		Category: "dsa", Difficulty: model.DifficultyEasy, QuestionCount: MaxQuestionCount + 1,
	})
	requireValidation(t, err, "Start() over question cap")
}

// =========================================================================
// SUBMIT TESTS
// =========================================================================

func TestMockTestSubmit_GradesAndCompletes(t *testing.T) {
	repo := newMockMockTestRepo()
	svc, test := startTestSession(t, repo, &fakeCompleter{replies: []string{questionsJSON}})

	// First answer right (index 2), second wrong.
	graded, err := svc.Submit(context.Background(), "user-1", test.ID, []int{2, 0}, 300)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if graded.Status != model.SessionCompleted {
		t.Errorf("Submit() status = %q, want completed", graded.Status)
	}
	if graded.Score != 50 {
		t.Errorf("Submit() score = %d, want 50", graded.Score)
	}
	if graded.TimeTakenSeconds != 300 {
		t.Errorf("Submit() timeTaken = %d, want 300", graded.TimeTakenSeconds)
	}
	// The graded result includes the answer key for review.
	if graded.Questions[0].CorrectIndex != 2 {
		t.Errorf("Submit() should return the full questions, got %+v", graded.Questions[0])
	}
}

func TestMockTestSubmit_ResubmissionConflicts(t *testing.T) {
	repo := newMockMockTestRepo()
	svc, test := startTestSession(t, repo, &fakeCompleter{replies: []string{questionsJSON}})
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "user-1", test.ID, []int{2, 1}, 100); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	_, err := svc.Submit(ctx, "user-1", test.ID, []int{0, 0}, 100)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Submit() should be ErrConflict, got %v", err)
	}

	// The first grading must stand.
	stored := repo.tests[test.ID]
	if stored.Score != 100 {
		t.Errorf("resubmission changed the stored score: %d", stored.Score)
	}
}

func TestMockTestSubmit_AnswerValidation(t *testing.T) {
	svc, test := startTestSession(t, newMockMockTestRepo(), &fakeCompleter{replies: []string{questionsJSON}})
	ctx := context.Background()

	_, err := svc.Submit(ctx, "user-1", test.ID, []int{2}, 100)
	requireValidation(t, err, "Submit() with wrong answer count")

	_, err = svc.Submit(ctx, "user-1", test.ID, []int{2, 4}, 100)
	requireValidation(t, err, "Submit() with out-of-range answer")

	// -1 marks an unanswered question and is legal.
	if _, err := svc.Submit(ctx, "user-1", test.ID, []int{-1, -1}, 100); err != nil {
		t.Errorf("Submit() with -1 answers should succeed, got %v", err)
	}
}

func TestMockTestSubmit_ClampsElapsedTime(t *testing.T) {
	repo := newMockMockTestRepo()
	svc, test := startTestSession(t, repo, &fakeCompleter{replies: []string{questionsJSON}})
	ctx := context.Background()

	// Default duration is 15 minutes; the client claims 2 hours.
	graded, err := svc.Submit(ctx, "user-1", test.ID, []int{-1, -1}, 7200)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if graded.TimeTakenSeconds != DefaultTestMinutes*60 {
		t.Errorf("Submit() timeTaken = %d, want clamped to %d", graded.TimeTakenSeconds, DefaultTestMinutes*60)
	}
}

func TestMockTestGetByID_SanitizesWhileInProgress(t *testing.T) {
	repo := newMockMockTestRepo()
	svc, test := startTestSession(t, repo, &fakeCompleter{replies: []string{questionsJSON}})
	ctx := context.Background()

	got, err := svc.GetByID(ctx, "user-1", test.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Questions[0].CorrectIndex != -1 {
		t.Error("GetByID() leaked the answer key while in progress")
	}

	if _, err := svc.Submit(ctx, "user-1", test.ID, []int{2, 1}, 60); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	got, err = svc.GetByID(ctx, "user-1", test.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Questions[0].CorrectIndex != 2 {
		t.Error("GetByID() should return the full key once completed")
	}
}

// =========================================================================
// SCORE TESTS
// =========================================================================

func TestScore_Rounding(t *testing.T) {
	cases := []struct {
		correct, total, want int
	}{
		{0, 10, 0},
		{10, 10, 100},
		{5, 10, 50},
		{7, 9, 78}, // 77.77… rounds up
		{1, 3, 33}, // 33.33… rounds down
		{2, 3, 67}, // 66.66… rounds up
		{0, 0, 0},  // degenerate, no division by zero
	}
	for _, tc := range cases {
		if got := score(tc.correct, tc.total); got != tc.want {
			t.Errorf("score(%d, %d) = %d, want %d", tc.correct, tc.total, got, tc.want)
		}
	}
}

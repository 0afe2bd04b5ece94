package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/prep-tracker/internal/model"
)

func createTestInterview(t *testing.T, db *DB, userID string) *model.MockInterview {
	t.Helper()
	iv := &model.MockInterview{
		UserID:     userID,
		Type:       model.InterviewTechnical,
		TargetRole: "Backend Engineer",
		Difficulty: model.DifficultyMedium,
		Status:     model.SessionInProgress,
		Transcript: []model.ChatMessage{
			{Role: model.RoleInterviewer, Content: "Tell me about a project you're proud of."},
		},
	}
	if err := db.Interviews().Create(context.Background(), iv); err != nil {
		t.Fatalf("failed to create test interview: %v", err)
	}
	return iv
}

// =========================================================================
// MOCK INTERVIEW TESTS
// =========================================================================

func TestInterviewCreate_NilFeedbackRoundTrips(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "interview@example.com")

	iv := createTestInterview(t, db, user.ID)

	stored, err := db.Interviews().GetByID(context.Background(), user.ID, iv.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	// "no feedback yet" must come back as nil, not as a zeroed struct.
	if stored.Feedback != nil {
		t.Errorf("GetByID() feedback = %+v, want nil before finish", stored.Feedback)
	}
	if len(stored.Transcript) != 1 || stored.Transcript[0].Role != model.RoleInterviewer {
		t.Errorf("GetByID() transcript = %+v", stored.Transcript)
	}
}

func TestInterviewUpdate_TranscriptGrowth(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "transcript@example.com")
	iv := createTestInterview(t, db, user.ID)

	iv.Transcript = append(iv.Transcript,
		model.ChatMessage{Role: model.RoleCandidate, Content: "I built a URL shortener in Go."},
		model.ChatMessage{Role: model.RoleInterviewer, Content: "How did you handle collisions?"},
	)
	if err := db.Interviews().Update(ctx, iv); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stored, err := db.Interviews().GetByID(ctx, user.ID, iv.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(stored.Transcript) != 3 {
		t.Fatalf("Update() transcript = %d turns, want 3", len(stored.Transcript))
	}
	if stored.Transcript[1].Role != model.RoleCandidate {
		t.Errorf("Update() turn order lost: %+v", stored.Transcript)
	}
}

func TestInterviewUpdate_FeedbackAndCompletion(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "feedback@example.com")
	iv := createTestInterview(t, db, user.ID)

	iv.Status = model.SessionCompleted
	iv.Feedback = &model.InterviewFeedback{
		OverallRating:       7,
		CommunicationRating: 8,
		TechnicalRating:     6,
		Strengths:           []string{"clear explanations"},
		Improvements:        []string{"edge-case analysis"},
		Verdict:             "Hire with reservations.",
	}
	if err := db.Interviews().Update(ctx, iv); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stored, err := db.Interviews().GetByID(ctx, user.ID, iv.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Status != model.SessionCompleted {
		t.Errorf("Update() status = %q, want completed", stored.Status)
	}
	if stored.Feedback == nil {
		t.Fatal("Update() feedback not persisted")
	}
	if stored.Feedback.OverallRating != 7 || len(stored.Feedback.Strengths) != 1 {
		t.Errorf("Update() feedback = %+v", stored.Feedback)
	}
}

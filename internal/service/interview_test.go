package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/model"
)

const feedbackJSON = `{
  "overallRating": 7, "communicationRating": 8, "technicalRating": 6,
  "strengths": ["clear explanations"],
  "improvements": ["edge-case analysis"],
  "verdict": "Hire with reservations."
}`

func startTestInterview(t *testing.T, repo *mockInterviewRepo, completer *fakeCompleter) (*InterviewService, *model.MockInterview) {
	t.Helper()
	svc := NewInterviewService(repo, completer, testLogger())
	iv, err := svc.Start(context.Background(), "user-1", InterviewInput{
		Type:       model.InterviewTechnical,
		TargetRole: "Backend Engineer",
		Difficulty: model.DifficultyMedium,
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return svc, iv
}

// =========================================================================
// START TESTS
// =========================================================================

func TestInterviewStart_SeedsOpeningQuestion(t *testing.T) {
	repo := newMockInterviewRepo()
	completer := &fakeCompleter{replies: []string{"Tell me about yourself.\n"}}

	_, iv := startTestInterview(t, repo, completer)

	if iv.Status != model.SessionInProgress {
		t.Errorf("Start() status = %q, want in_progress", iv.Status)
	}
	if len(iv.Transcript) != 1 {
		t.Fatalf("Start() transcript = %d turns, want 1", len(iv.Transcript))
	}
	opening := iv.Transcript[0]
	if opening.Role != model.RoleInterviewer || opening.Content != "Tell me about yourself." {
		t.Errorf("Start() opening turn = %+v", opening)
	}
}

func TestInterviewStart_GatewayDownCreatesNothing(t *testing.T) {
	repo := newMockInterviewRepo()
	completer := &fakeCompleter{completeErr: errors.New("connection refused")}
	svc := NewInterviewService(repo, completer, testLogger())

	_, err := svc.Start(context.Background(), "user-1", InterviewInput{
		Type:       model.InterviewHR,
		TargetRole: "SDE",
		Difficulty: model.DifficultyEasy,
	})
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("Start() with dead gateway should be ErrUnavailable, got %v", err)
	}
	if len(repo.interviews) != 0 {
		t.Error("Start() persisted a session despite the failed opening call")
	}
}

// =========================================================================
// MESSAGE TESTS
// =========================================================================

func TestInterviewMessage_AppendsBothTurns(t *testing.T) {
	repo := newMockInterviewRepo()
	completer := &fakeCompleter{
		replies:      []string{"Tell me about yourself."},
		streamDeltas: []string{"How did ", "you handle ", "collisions?"},
	}
	svc, iv := startTestInterview(t, repo, completer)

	var streamed strings.Builder
	reply, err := svc.Message(context.Background(), "user-1", iv.ID,
		"I built a URL shortener.", func(d string) error {
			streamed.WriteString(d)
			return nil
		})
	if err != nil {
		t.Fatalf("Message() error = %v", err)
	}

	if reply != "How did you handle collisions?" {
		t.Errorf("Message() reply = %q", reply)
	}
	if streamed.String() != reply {
		t.Errorf("onDelta saw %q, reply was %q", streamed.String(), reply)
	}

	stored := repo.interviews[iv.ID]
	if len(stored.Transcript) != 3 {
		t.Fatalf("transcript = %d turns, want 3", len(stored.Transcript))
	}
	if stored.Transcript[1].Role != model.RoleCandidate || stored.Transcript[2].Role != model.RoleInterviewer {
		t.Errorf("transcript roles wrong: %+v", stored.Transcript)
	}
}

func TestInterviewMessage_PersistsTruncatedReplyOnStreamFailure(t *testing.T) {
	repo := newMockInterviewRepo()
	completer := &fakeCompleter{
		replies:      []string{"Opening question."},
		streamDeltas: []string{"That's an inter"},
		streamErr:    errors.New("upstream reset"),
	}
	svc, iv := startTestInterview(t, repo, completer)

	reply, err := svc.Message(context.Background(), "user-1", iv.ID, "My answer.",
		func(string) error { return nil })
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("Message() after dropped stream should be ErrUnavailable, got %v", err)
	}
	if reply != "That's an inter" {
		t.Errorf("Message() should return the truncated accumulation, got %q", reply)
	}

	// Candidate turn and the partial interviewer turn both survive.
	stored := repo.interviews[iv.ID]
	if len(stored.Transcript) != 3 {
		t.Fatalf("transcript = %d turns, want 3 (truncated turn kept)", len(stored.Transcript))
	}
	if stored.Transcript[2].Content != "That's an inter" {
		t.Errorf("truncated turn = %q", stored.Transcript[2].Content)
	}
	if stored.Status != model.SessionInProgress {
		t.Errorf("stream failure must not complete the session, status = %q", stored.Status)
	}
}

func TestInterviewMessage_CompletedSessionConflicts(t *testing.T) {
	repo := newMockInterviewRepo()
	completer := &fakeCompleter{replies: []string{"Opening.", feedbackJSON}}
	svc, iv := startTestInterview(t, repo, completer)
	ctx := context.Background()

	if _, err := svc.Finish(ctx, "user-1", iv.ID); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	_, err := svc.Message(ctx, "user-1", iv.ID, "One more thing...", func(string) error { return nil })
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Message() on a finished interview should be ErrConflict, got %v", err)
	}
}

func TestInterviewMessage_Validation(t *testing.T) {
	repo := newMockInterviewRepo()
	completer := &fakeCompleter{replies: []string{"Opening."}}
	svc, iv := startTestInterview(t, repo, completer)
	ctx := context.Background()

	noop := func(string) error { return nil }

	_, err := svc.Message(ctx, "user-1", iv.ID, "   ", noop)
	requireValidation(t, err, "Message() with blank content")

	_, err = svc.Message(ctx, "user-1", iv.ID, strings.Repeat("a", MaxInterviewMessageLength+1), noop)
	requireValidation(t, err, "Message() over length cap")

	// Neither attempt may have touched the transcript.
	if repo.updates != 0 {
		t.Errorf("invalid messages caused %d repo updates", repo.updates)
	}
}

// =========================================================================
// FINISH TESTS
// =========================================================================

func TestInterviewFinish_StoresFeedbackAndCompletes(t *testing.T) {
	repo := newMockInterviewRepo()
	completer := &fakeCompleter{replies: []string{"Opening.", feedbackJSON}}
	svc, iv := startTestInterview(t, repo, completer)

	finished, err := svc.Finish(context.Background(), "user-1", iv.ID)
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	if finished.Status != model.SessionCompleted {
		t.Errorf("Finish() status = %q, want completed", finished.Status)
	}
	if finished.Feedback == nil {
		t.Fatal("Finish() did not store feedback")
	}
	if finished.Feedback.OverallRating != 7 || finished.Feedback.Verdict != "Hire with reservations." {
		t.Errorf("Finish() feedback = %+v", finished.Feedback)
	}
}

func TestInterviewFinish_GatewayDownStaysInProgress(t *testing.T) {
	repo := newMockInterviewRepo()
	completer := &fakeCompleter{replies: []string{"Opening."}}
	svc, iv := startTestInterview(t, repo, completer)

	// Gateway dies between start and finish.
	completer.completeErr = errors.New("connection refused")

	_, err := svc.Finish(context.Background(), "user-1", iv.ID)
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("Finish() with dead gateway should be ErrUnavailable, got %v", err)
	}

	// Retryable: the session must still be open.
	stored := repo.interviews[iv.ID]
	if stored.Status != model.SessionInProgress {
		t.Errorf("failed Finish() changed status to %q", stored.Status)
	}
	if stored.Feedback != nil {
		t.Error("failed Finish() stored feedback")
	}
}

func TestInterviewFinish_UnparsableFeedbackGetsPlaceholder(t *testing.T) {
	repo := newMockInterviewRepo()
	completer := &fakeCompleter{replies: []string{"Opening.", "You did great, best of luck!"}}
	svc, iv := startTestInterview(t, repo, completer)

	finished, err := svc.Finish(context.Background(), "user-1", iv.ID)
	if err != nil {
		t.Fatalf("Finish() with unparsable feedback should still succeed, got %v", err)
	}

	if finished.Status != model.SessionCompleted {
		t.Errorf("Finish() status = %q, want completed despite placeholder", finished.Status)
	}
	if finished.Feedback == nil {
		t.Fatal("Finish() stored no feedback at all")
	}
	if !strings.Contains(finished.Feedback.Verdict, "could not be generated") {
		t.Errorf("Finish() feedback = %+v, want placeholder", finished.Feedback)
	}
}

func TestInterviewFinish_DoubleFinishConflicts(t *testing.T) {
	repo := newMockInterviewRepo()
	completer := &fakeCompleter{replies: []string{"Opening.", feedbackJSON, feedbackJSON}}
	svc, iv := startTestInterview(t, repo, completer)
	ctx := context.Background()

	if _, err := svc.Finish(ctx, "user-1", iv.ID); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if _, err := svc.Finish(ctx, "user-1", iv.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Finish() should be ErrConflict, got %v", err)
	}
}

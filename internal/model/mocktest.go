package model

import "time"

// SessionStatus is shared by mock tests and mock interviews: both are
// created directly into in_progress and move to completed exactly once.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// Question is one AI-generated multiple-choice question.
//
// CorrectIndex is the 0-based index into Options. The API never sends
// CorrectIndex or Explanation to the client while the test is running —
// see Question.Sanitized() — they only appear in the graded result.
type Question struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"` // always exactly 4
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// Sanitized returns a copy safe to show during an in-progress test:
// same text and options, but with the answer key stripped.
func (q Question) Sanitized() Question {
	q.CorrectIndex = -1
	q.Explanation = ""
	return q
}

// MockTest is one timed multiple-choice test session.
//
// LIFECYCLE:
//
//	start  → questions generated and persisted, status=in_progress
//	submit → answers stored, score computed, status=completed
//
// Answers[i] is the selected option index for Questions[i]; -1 means the
// question was left unanswered. Answers is empty until submission — the
// countdown and per-question selection live entirely on the client, and the
// server only sees the final array.
type MockTest struct {
	ID               string        `json:"id"               db:"id"`
	UserID           string        `json:"userId"           db:"user_id"`
	Category         string        `json:"category"         db:"category"`
	Subcategory      string        `json:"subcategory"      db:"subcategory"`
	Difficulty       Difficulty    `json:"difficulty"       db:"difficulty"`
	Status           SessionStatus `json:"status"           db:"status"`
	Questions        []Question    `json:"questions"        db:"questions"` // JSON text column
	Answers          []int         `json:"answers"          db:"answers"`   // JSON text column
	Score            int           `json:"score"            db:"score"`     // 0–100, valid once completed
	DurationMinutes  int           `json:"durationMinutes"  db:"duration_minutes"`
	TimeTakenSeconds int           `json:"timeTakenSeconds" db:"time_taken_seconds"`
	StartedAt        time.Time     `json:"startedAt"        db:"started_at"`
	CreatedAt        time.Time     `json:"createdAt"        db:"created_at"`
	UpdatedAt        time.Time     `json:"updatedAt"        db:"updated_at"`
}

// SanitizedQuestions returns the question set with answer keys stripped,
// for returning to the client while the test is still in progress.
func (t *MockTest) SanitizedQuestions() []Question {
	out := make([]Question, len(t.Questions))
	for i, q := range t.Questions {
		out[i] = q.Sanitized()
	}
	return out
}

package model

import "time"

// InterviewType selects the interviewer persona for a mock interview.
type InterviewType string

const (
	InterviewTechnical  InterviewType = "technical"
	InterviewHR         InterviewType = "hr"
	InterviewBehavioral InterviewType = "behavioral"
)

// Valid reports whether t is one of the known interview types.
func (t InterviewType) Valid() bool {
	switch t {
	case InterviewTechnical, InterviewHR, InterviewBehavioral:
		return true
	}
	return false
}

// ChatMessage is one turn of the interview transcript.
// Role is "interviewer" or "candidate" in our API; the AI client maps these
// to the gateway's "assistant"/"user" wire roles.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleInterviewer = "interviewer"
	RoleCandidate   = "candidate"
)

// InterviewFeedback is the structured evaluation produced when the user ends
// the interview. Ratings are 1–10. If the AI returns unparsable JSON we store
// a placeholder (see service layer) rather than failing the whole session —
// the transcript is the valuable part and is already persisted.
type InterviewFeedback struct {
	OverallRating       int      `json:"overallRating"`
	CommunicationRating int      `json:"communicationRating"`
	TechnicalRating     int      `json:"technicalRating"`
	Strengths           []string `json:"strengths"`
	Improvements        []string `json:"improvements"`
	Verdict             string   `json:"verdict"`
}

// MockInterview is one AI-driven interview session.
//
// LIFECYCLE:
//
//	start   → record created, transcript seeded with the opening question,
//	          status=in_progress
//	message → candidate turn + streamed interviewer reply appended
//	finish  → feedback generated and stored, status=completed
//
// Feedback is a pointer so "no feedback yet" is representable as nil —
// unlike our usual zero-value preference, an all-zeros feedback struct would
// be indistinguishable from a genuinely terrible review.
type MockInterview struct {
	ID         string             `json:"id"         db:"id"`
	UserID     string             `json:"userId"     db:"user_id"`
	Type       InterviewType      `json:"type"       db:"type"`
	TargetRole string             `json:"targetRole" db:"target_role"`
	Difficulty Difficulty         `json:"difficulty" db:"difficulty"`
	Status     SessionStatus      `json:"status"     db:"status"`
	Transcript []ChatMessage      `json:"transcript" db:"transcript"` // JSON text column
	Feedback   *InterviewFeedback `json:"feedback,omitempty" db:"feedback"`
	CreatedAt  time.Time          `json:"createdAt"  db:"created_at"`
	UpdatedAt  time.Time          `json:"updatedAt"  db:"updated_at"`
}

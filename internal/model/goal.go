package model

import "time"

// GoalStatus is the lifecycle state of a learning goal.
//
// TYPED STRING CONSTANTS:
// Go has no enum keyword. The idiomatic substitute is a named string type
// plus a set of constants. The type gives us a place to hang a Valid()
// method, and the JSON representation stays human-readable.
type GoalStatus string

const (
	GoalNotStarted GoalStatus = "not_started"
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
)

// Valid reports whether s is one of the known goal statuses.
func (s GoalStatus) Valid() bool {
	switch s {
	case GoalNotStarted, GoalInProgress, GoalCompleted:
		return true
	}
	return false
}

// Goal represents a learning goal — a skill the user wants to acquire before
// placements, broken down by topic.
//
// DATE FIELDS AS STRINGS:
// StartDate and TargetDate are calendar dates ("2006-01-02"), not instants.
// We store them as plain strings rather than time.Time because:
//   - they're optional (empty string = unset, no nullable pointer needed)
//   - a date has no timezone; round-tripping through time.Time invites
//     off-by-one-day bugs when the server and user disagree on zones
type Goal struct {
	ID            string     `json:"id"            db:"id"`
	UserID        string     `json:"userId"        db:"user_id"`
	SkillName     string     `json:"skillName"     db:"skill_name"`
	Topic         string     `json:"topic"         db:"topic"`
	Status        GoalStatus `json:"status"        db:"status"`
	StartDate     string     `json:"startDate"     db:"start_date"`     // "2006-01-02" or ""
	TargetDate    string     `json:"targetDate"    db:"target_date"`    // "2006-01-02" or ""
	ResourceLinks []string   `json:"resourceLinks" db:"resource_links"` // stored as JSON text
	Notes         string     `json:"notes"         db:"notes"`
	CreatedAt     time.Time  `json:"createdAt"     db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt"     db:"updated_at"`
}

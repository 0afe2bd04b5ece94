package model

import "time"

// JobType distinguishes internships from full-time openings.
type JobType string

const (
	JobInternship JobType = "internship"
	JobFullTime   JobType = "full_time"
)

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	return t == JobInternship || t == JobFullTime
}

// ApplicationStatus follows the typical campus-placement funnel:
// applied → online assessment → interview → rejected/selected.
type ApplicationStatus string

const (
	ApplicationApplied   ApplicationStatus = "applied"
	ApplicationOA        ApplicationStatus = "oa"
	ApplicationInterview ApplicationStatus = "interview"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationSelected  ApplicationStatus = "selected"
)

// Valid reports whether s is one of the known application statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationApplied, ApplicationOA, ApplicationInterview,
		ApplicationRejected, ApplicationSelected:
		return true
	}
	return false
}

// Application represents one job application the user is tracking.
// There is deliberately no cross-record consistency here — an application in
// "interview" status does not require a mock interview record or anything
// else; the entities are independent and only joined visually in the UI.
type Application struct {
	ID            string            `json:"id"            db:"id"`
	UserID        string            `json:"userId"        db:"user_id"`
	Company       string            `json:"company"       db:"company"`
	Role          string            `json:"role"          db:"role"`
	JobType       JobType           `json:"jobType"       db:"job_type"`
	Status        ApplicationStatus `json:"status"        db:"status"`
	ApplyDate     string            `json:"applyDate"     db:"apply_date"`     // "2006-01-02" or ""
	InterviewDate string            `json:"interviewDate" db:"interview_date"` // "2006-01-02" or ""
	Link          string            `json:"link"          db:"link"`
	Notes         string            `json:"notes"         db:"notes"`
	CreatedAt     time.Time         `json:"createdAt"     db:"created_at"`
	UpdatedAt     time.Time         `json:"updatedAt"     db:"updated_at"`
}

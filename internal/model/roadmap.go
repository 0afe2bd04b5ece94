package model

import "time"

// MonthPlan is one month's slice of the preparation roadmap.
type MonthPlan struct {
	Month string   `json:"month"` // e.g. "January 2027" — display label, not parsed
	Goals []string `json:"goals"`
}

// SkillPriority ranks one skill on the roadmap.
type SkillPriority struct {
	Skill    string `json:"skill"`
	Priority string `json:"priority"` // "high" | "medium" | "low"
}

// Roadmap is the user's overall preparation plan. Exactly one per user —
// the users.id → roadmaps.user_id relation is UNIQUE and writes are upserts,
// so "save roadmap" is idempotent from the client's point of view.
//
// Months and Skills are ordered lists serialized as JSON text columns.
// They're only ever read and written whole, never queried by element,
// so a join table would buy nothing but schema churn.
type Roadmap struct {
	ID          string          `json:"id"          db:"id"`
	UserID      string          `json:"userId"      db:"user_id"`
	TargetRole  string          `json:"targetRole"  db:"target_role"`
	CompanyType string          `json:"companyType" db:"company_type"`
	Months      []MonthPlan     `json:"months"      db:"months"`
	Skills      []SkillPriority `json:"skills"      db:"skills"`
	Weaknesses  string          `json:"weaknesses"  db:"weaknesses"`
	CreatedAt   time.Time       `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt"   db:"updated_at"`
}

package model

import "time"

// Difficulty of a coding problem or generated question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ProblemStatus tracks how far the user got with a practice problem.
type ProblemStatus string

const (
	ProblemSolved        ProblemStatus = "solved"
	ProblemNeedsRevision ProblemStatus = "needs_revision"
	ProblemNotSolved     ProblemStatus = "not_solved"
)

// Valid reports whether s is one of the known problem statuses.
func (s ProblemStatus) Valid() bool {
	switch s {
	case ProblemSolved, ProblemNeedsRevision, ProblemNotSolved:
		return true
	}
	return false
}

// Problem represents one coding-practice log entry: a problem the user
// attempted on some platform (LeetCode, Codeforces, ...) on a given day.
type Problem struct {
	ID           string        `json:"id"           db:"id"`
	UserID       string        `json:"userId"       db:"user_id"`
	Platform     string        `json:"platform"     db:"platform"`
	Name         string        `json:"name"         db:"name"`
	Difficulty   Difficulty    `json:"difficulty"   db:"difficulty"`
	Status       ProblemStatus `json:"status"       db:"status"`
	PracticeDate string        `json:"practiceDate" db:"practice_date"` // "2006-01-02"
	Notes        string        `json:"notes"        db:"notes"`
	CreatedAt    time.Time     `json:"createdAt"    db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt"    db:"updated_at"`
}

// ProblemStats is the aggregate view shown on the practice dashboard.
//
// Streak is the number of consecutive calendar days, ending today or
// yesterday, on which the user logged at least one problem. "Or yesterday"
// means a streak isn't considered broken until a full day has been missed —
// practising every evening keeps the counter alive through the next morning.
type ProblemStats struct {
	Total         int `json:"total"`
	Solved        int `json:"solved"`
	NeedsRevision int `json:"needsRevision"`
	NotSolved     int `json:"notSolved"`
	Easy          int `json:"easy"`
	Medium        int `json:"medium"`
	Hard          int `json:"hard"`
	Streak        int `json:"streak"`
}

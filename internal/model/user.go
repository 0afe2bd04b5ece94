// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// Two login paths lead here: email/password registration (PasswordHash is set)
// and GitHub OAuth (GitHubID is set). A single account can have both — a user
// who registered with email can later link GitHub, since both flows upsert
// into the same row.
//
// WHY PasswordHash json:"-"?
// The `json:"-"` tag tells encoding/json to NEVER serialize this field.
// Even if a handler accidentally returns the full User struct, the bcrypt
// hash stays out of the response body.
//
// WHY GitHubID int64 (not *int64)?
// Zero means "not linked". We prefer zero values over nullable pointers —
// simpler to work with, and GitHub never issues user ID 0.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"`
	Name         string    `json:"name"      db:"name"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	GitHubID     int64     `json:"githubId"  db:"github_id"`
	AvatarURL    string    `json:"avatarUrl" db:"avatar_url"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

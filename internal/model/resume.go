package model

import "time"

// ResumeChecklist is the four-point review checklist attached to every
// resume version. Stored as a JSON text column — the four booleans always
// travel together and are never queried individually.
type ResumeChecklist struct {
	Tailored    bool `json:"tailored"`    // tailored to the target role
	Keywords    bool `json:"keywords"`    // keywords from the job description included
	ATSFriendly bool `json:"atsFriendly"` // parses cleanly through tracking systems
	Proofread   bool `json:"proofread"`
}

// Resume represents one version of the user's resume.
//
// FileKey is the storage key of the uploaded PDF (per-user prefixed,
// e.g. "cv37rs.../cv38aa....pdf"), empty until a file has been uploaded.
// FileName is the original client-side name, kept for the download header.
// Version numbering is entirely user-supplied — there is no automatic
// versioning or history beyond separate rows.
type Resume struct {
	ID            string          `json:"id"            db:"id"`
	UserID        string          `json:"userId"        db:"user_id"`
	Name          string          `json:"name"          db:"name"`
	VersionNumber int             `json:"versionNumber" db:"version_number"`
	TargetRole    string          `json:"targetRole"    db:"target_role"`
	FileKey       string          `json:"fileKey"       db:"file_key"`
	FileName      string          `json:"fileName"      db:"file_name"`
	Checklist     ResumeChecklist `json:"checklist"     db:"checklist"` // stored as JSON text
	Notes         string          `json:"notes"         db:"notes"`
	CreatedAt     time.Time       `json:"createdAt"     db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt"     db:"updated_at"`
}

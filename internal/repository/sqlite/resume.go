package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/model"
	"github.com/sakif/prep-tracker/internal/repository"
)

// ResumeRepo implements repository.ResumeRepository on the shared pool.
type ResumeRepo struct {
	conn *sql.DB
}

var _ repository.ResumeRepository = (*ResumeRepo)(nil)

func (r *ResumeRepo) Create(ctx context.Context, resume *model.Resume) error {
	resume.ID = xid.New().String()

	now := time.Now()
	resume.CreatedAt = now
	resume.UpdatedAt = now

	checklist, err := toJSON(resume.Checklist)
	if err != nil {
		return fmt.Errorf("sqlite: creating resume: %w", err)
	}

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO resumes (id, user_id, name, version_number, target_role,
		                      file_key, file_name, checklist, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		resume.ID, resume.UserID, resume.Name, resume.VersionNumber,
		resume.TargetRole, resume.FileKey, resume.FileName, checklist,
		resume.Notes, resume.CreatedAt, resume.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating resume: %w", err)
	}

	return nil
}

func (r *ResumeRepo) GetByID(ctx context.Context, userID, id string) (*model.Resume, error) {
	var res model.Resume
	var checklist string

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, version_number, target_role, file_key,
		        file_name, checklist, notes, created_at, updated_at
		 FROM resumes WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&res.ID, &res.UserID, &res.Name, &res.VersionNumber, &res.TargetRole,
		&res.FileKey, &res.FileName, &checklist, &res.Notes,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("resume", id)
		}
		return nil, fmt.Errorf("sqlite: getting resume %s: %w", id, err)
	}

	if err := fromJSON(checklist, &res.Checklist); err != nil {
		return nil, fmt.Errorf("sqlite: getting resume %s: %w", id, err)
	}

	return &res, nil
}

// List returns the user's resumes, highest version first so the current
// iteration is always at the top.
func (r *ResumeRepo) List(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Resume, error) {
	limit, offset := clampListOptions(opts)

	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, user_id, name, version_number, target_role, file_key,
		        file_name, checklist, notes, created_at, updated_at
		 FROM resumes WHERE user_id = ?
		 ORDER BY version_number DESC, created_at DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing resumes: %w", err)
	}
	defer rows.Close()

	resumes := make([]model.Resume, 0, limit)
	for rows.Next() {
		var res model.Resume
		var checklist string
		if err := rows.Scan(
			&res.ID, &res.UserID, &res.Name, &res.VersionNumber, &res.TargetRole,
			&res.FileKey, &res.FileName, &checklist, &res.Notes,
			&res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning resume row: %w", err)
		}
		if err := fromJSON(checklist, &res.Checklist); err != nil {
			return nil, fmt.Errorf("sqlite: scanning resume row: %w", err)
		}
		resumes = append(resumes, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating resumes: %w", err)
	}

	return resumes, nil
}

func (r *ResumeRepo) Update(ctx context.Context, resume *model.Resume) error {
	resume.UpdatedAt = time.Now()

	checklist, err := toJSON(resume.Checklist)
	if err != nil {
		return fmt.Errorf("sqlite: updating resume %s: %w", resume.ID, err)
	}

	result, err := r.conn.ExecContext(ctx,
		`UPDATE resumes
		 SET name = ?, version_number = ?, target_role = ?, file_key = ?,
		     file_name = ?, checklist = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		resume.Name, resume.VersionNumber, resume.TargetRole, resume.FileKey,
		resume.FileName, checklist, resume.Notes, resume.UpdatedAt,
		resume.ID, resume.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating resume %s: %w", resume.ID, err)
	}

	return checkAffected(result, "resume", resume.ID)
}

func (r *ResumeRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM resumes WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting resume %s: %w", id, err)
	}

	return checkAffected(result, "resume", id)
}

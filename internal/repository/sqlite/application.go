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

// ApplicationRepo implements repository.ApplicationRepository on the shared pool.
type ApplicationRepo struct {
	conn *sql.DB
}

var _ repository.ApplicationRepository = (*ApplicationRepo)(nil)

const applicationColumns = `id, user_id, company, role, job_type, status,
                            apply_date, interview_date, link, notes, created_at, updated_at`

func scanApplication(scan func(...any) error) (model.Application, error) {
	var a model.Application
	err := scan(
		&a.ID, &a.UserID, &a.Company, &a.Role, &a.JobType, &a.Status,
		&a.ApplyDate, &a.InterviewDate, &a.Link, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func (r *ApplicationRepo) Create(ctx context.Context, app *model.Application) error {
	app.ID = xid.New().String()

	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO applications (`+applicationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.UserID, app.Company, app.Role, app.JobType, app.Status,
		app.ApplyDate, app.InterviewDate, app.Link, app.Notes,
		app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating application: %w", err)
	}

	return nil
}

func (r *ApplicationRepo) GetByID(ctx context.Context, userID, id string) (*model.Application, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	a, err := scanApplication(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("application", id)
		}
		return nil, fmt.Errorf("sqlite: getting application %s: %w", id, err)
	}

	return &a, nil
}

// List retrieves the user's applications, newest apply date first. Status
// and job-type filters are independent AND clauses — same conjunction
// semantics as ProblemRepo.List.
func (r *ApplicationRepo) List(ctx context.Context, userID string, filter repository.ApplicationFilter, opts repository.ListOptions) ([]model.Application, error) {
	limit, offset := clampListOptions(opts)

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = ?`
	args := []any{userID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.JobType != "" {
		query += ` AND job_type = ?`
		args = append(args, filter.JobType)
	}

	query += ` ORDER BY apply_date DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing applications: %w", err)
	}
	defer rows.Close()

	apps := make([]model.Application, 0, limit)
	for rows.Next() {
		a, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning application row: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating applications: %w", err)
	}

	return apps, nil
}

func (r *ApplicationRepo) Update(ctx context.Context, app *model.Application) error {
	app.UpdatedAt = time.Now()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE applications
		 SET company = ?, role = ?, job_type = ?, status = ?, apply_date = ?,
		     interview_date = ?, link = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		app.Company, app.Role, app.JobType, app.Status, app.ApplyDate,
		app.InterviewDate, app.Link, app.Notes, app.UpdatedAt,
		app.ID, app.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating application %s: %w", app.ID, err)
	}

	return checkAffected(result, "application", app.ID)
}

func (r *ApplicationRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM applications WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting application %s: %w", id, err)
	}

	return checkAffected(result, "application", id)
}

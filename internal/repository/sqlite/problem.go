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

// ProblemRepo implements repository.ProblemRepository on the shared pool.
type ProblemRepo struct {
	conn *sql.DB
}

var _ repository.ProblemRepository = (*ProblemRepo)(nil)

const problemColumns = `id, user_id, platform, name, difficulty, status,
                        practice_date, notes, created_at, updated_at`

func scanProblem(scan func(...any) error) (model.Problem, error) {
	var p model.Problem
	err := scan(
		&p.ID, &p.UserID, &p.Platform, &p.Name, &p.Difficulty, &p.Status,
		&p.PracticeDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Create inserts a new practice entry.
func (r *ProblemRepo) Create(ctx context.Context, problem *model.Problem) error {
	problem.ID = xid.New().String()

	now := time.Now()
	problem.CreatedAt = now
	problem.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO problems (`+problemColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		problem.ID, problem.UserID, problem.Platform, problem.Name,
		problem.Difficulty, problem.Status, problem.PracticeDate,
		problem.Notes, problem.CreatedAt, problem.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating problem: %w", err)
	}

	return nil
}

// GetByID retrieves a single practice entry owned by userID.
func (r *ProblemRepo) GetByID(ctx context.Context, userID, id string) (*model.Problem, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+problemColumns+` FROM problems WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	p, err := scanProblem(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("problem", id)
		}
		return nil, fmt.Errorf("sqlite: getting problem %s: %w", id, err)
	}

	return &p, nil
}

// List retrieves the user's practice entries, most recent practice first.
//
// FILTER CONJUNCTION:
// Status and difficulty filters are independent — each appends its own AND
// clause when set, so setting both gives the intersection, exactly matching
// a naive two-predicate filter over the unfiltered list.
func (r *ProblemRepo) List(ctx context.Context, userID string, filter repository.ProblemFilter, opts repository.ListOptions) ([]model.Problem, error) {
	limit, offset := clampListOptions(opts)

	query := `SELECT ` + problemColumns + ` FROM problems WHERE user_id = ?`
	args := []any{userID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Difficulty != "" {
		query += ` AND difficulty = ?`
		args = append(args, filter.Difficulty)
	}

	query += ` ORDER BY practice_date DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing problems: %w", err)
	}
	defer rows.Close()

	problems := make([]model.Problem, 0, limit)
	for rows.Next() {
		p, err := scanProblem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning problem row: %w", err)
		}
		problems = append(problems, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating problems: %w", err)
	}

	return problems, nil
}

// Update modifies an existing practice entry owned by the problem's UserID.
func (r *ProblemRepo) Update(ctx context.Context, problem *model.Problem) error {
	problem.UpdatedAt = time.Now()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE problems
		 SET platform = ?, name = ?, difficulty = ?, status = ?,
		     practice_date = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		problem.Platform, problem.Name, problem.Difficulty, problem.Status,
		problem.PracticeDate, problem.Notes, problem.UpdatedAt,
		problem.ID, problem.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating problem %s: %w", problem.ID, err)
	}

	return checkAffected(result, "problem", problem.ID)
}

// Delete removes a practice entry owned by userID.
func (r *ProblemRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM problems WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting problem %s: %w", id, err)
	}

	return checkAffected(result, "problem", id)
}

// PracticeDates returns the user's distinct non-empty practice dates,
// newest first. The streak computation in the service layer only needs the
// set of days, so DISTINCT keeps the result small no matter how many
// problems were logged per day.
func (r *ProblemRepo) PracticeDates(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT DISTINCT practice_date FROM problems
		 WHERE user_id = ? AND practice_date != ''
		 ORDER BY practice_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing practice dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("sqlite: scanning practice date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating practice dates: %w", err)
	}

	return dates, nil
}

// Stats aggregates the user's practice counters in a single pass.
//
// CONDITIONAL AGGREGATION:
// `SUM(status = 'solved')` works because SQLite evaluates the comparison to
// 0 or 1 — one table scan instead of six COUNT queries. Streak is NOT
// computed here: it needs calendar arithmetic that's clearer in Go
// (see service.ProblemService.computeStreak).
func (r *ProblemRepo) Stats(ctx context.Context, userID string) (*model.ProblemStats, error) {
	var s model.ProblemStats
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(status = 'solved'), 0),
		        COALESCE(SUM(status = 'needs_revision'), 0),
		        COALESCE(SUM(status = 'not_solved'), 0),
		        COALESCE(SUM(difficulty = 'easy'), 0),
		        COALESCE(SUM(difficulty = 'medium'), 0),
		        COALESCE(SUM(difficulty = 'hard'), 0)
		 FROM problems WHERE user_id = ?`,
		userID,
	).Scan(&s.Total, &s.Solved, &s.NeedsRevision, &s.NotSolved,
		&s.Easy, &s.Medium, &s.Hard)
	if err != nil {
		return nil, fmt.Errorf("sqlite: computing problem stats: %w", err)
	}

	return &s, nil
}

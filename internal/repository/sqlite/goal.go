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

// GoalRepo implements repository.GoalRepository on the shared pool.
type GoalRepo struct {
	conn *sql.DB
}

var _ repository.GoalRepository = (*GoalRepo)(nil)

// Create inserts a new learning goal.
//
// KEY CONCEPTS (the same pattern repeats across every repo in this package):
//
// 1. ID GENERATION WITH xid:
//    xid generates globally unique IDs that are 20 chars, URL-safe, and
//    sortable by creation time. Example: "cv37rs3pp9olc6atsptg".
//
// 2. POINTER RECEIVER (*model.Goal):
//    We take a pointer so we can MODIFY the original struct. After Create(),
//    the caller's goal has the generated ID and timestamps.
//
// 3. PARAMETERIZED QUERIES (the ? placeholders):
//    NEVER build SQL strings with fmt.Sprintf on user input — that's SQL
//    injection. The ? placeholders let the driver escape values safely.
//
// 4. JSON TEXT COLUMN:
//    ResourceLinks is a []string; it goes through toJSON on the way in and
//    fromJSON on the way out.
func (r *GoalRepo) Create(ctx context.Context, goal *model.Goal) error {
	goal.ID = xid.New().String()

	now := time.Now()
	goal.CreatedAt = now
	goal.UpdatedAt = now

	links, err := toJSON(goal.ResourceLinks)
	if err != nil {
		return fmt.Errorf("sqlite: creating goal: %w", err)
	}

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, skill_name, topic, status, start_date,
		                    target_date, resource_links, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.UserID, goal.SkillName, goal.Topic, goal.Status,
		goal.StartDate, goal.TargetDate, links, goal.Notes,
		goal.CreatedAt, goal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating goal: %w", err)
	}

	return nil
}

// GetByID retrieves a single goal owned by userID.
//
// OWNERSHIP IN THE WHERE CLAUSE:
// `WHERE id = ? AND user_id = ?` is the whole row-level security story.
// A goal that exists but belongs to someone else matches zero rows, which we
// translate to NotFound — callers can't distinguish "not yours" from
// "doesn't exist", so IDs leak nothing.
func (r *GoalRepo) GetByID(ctx context.Context, userID, id string) (*model.Goal, error) {
	var g model.Goal
	var links string

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, skill_name, topic, status, start_date, target_date,
		        resource_links, notes, created_at, updated_at
		 FROM goals
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&g.ID, &g.UserID, &g.SkillName, &g.Topic, &g.Status,
		&g.StartDate, &g.TargetDate, &links, &g.Notes,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		// sql.ErrNoRows is a sentinel, not a real failure — translate it to
		// our domain's NotFound so the handler can return 404.
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("goal", id)
		}
		return nil, fmt.Errorf("sqlite: getting goal %s: %w", id, err)
	}

	if err := fromJSON(links, &g.ResourceLinks); err != nil {
		return nil, fmt.Errorf("sqlite: getting goal %s: %w", id, err)
	}

	return &g, nil
}

// List retrieves the user's goals, optionally filtered by status,
// newest first.
//
// DYNAMIC WHERE CLAUSE:
// We build the query from fixed fragments and append placeholders for each
// active filter. Only the placeholder VALUES come from the caller — the SQL
// text itself is entirely ours, so this is still injection-safe.
func (r *GoalRepo) List(ctx context.Context, userID string, filter repository.GoalFilter, opts repository.ListOptions) ([]model.Goal, error) {
	limit, offset := clampListOptions(opts)

	query := `SELECT id, user_id, skill_name, topic, status, start_date, target_date,
	                 resource_links, notes, created_at, updated_at
	          FROM goals
	          WHERE user_id = ?`
	args := []any{userID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}

	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing goals: %w", err)
	}
	// CRITICAL: always close rows — they hold a pool connection.
	defer rows.Close()

	goals := make([]model.Goal, 0, limit)
	for rows.Next() {
		var g model.Goal
		var links string
		if err := rows.Scan(
			&g.ID, &g.UserID, &g.SkillName, &g.Topic, &g.Status,
			&g.StartDate, &g.TargetDate, &links, &g.Notes,
			&g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning goal row: %w", err)
		}
		if err := fromJSON(links, &g.ResourceLinks); err != nil {
			return nil, fmt.Errorf("sqlite: scanning goal row: %w", err)
		}
		goals = append(goals, g)
	}

	// rows.Err() catches errors that happened DURING iteration.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating goals: %w", err)
	}

	return goals, nil
}

// Update modifies an existing goal. The WHERE clause carries both id and
// user_id, so updating someone else's goal affects zero rows → NotFound.
func (r *GoalRepo) Update(ctx context.Context, goal *model.Goal) error {
	goal.UpdatedAt = time.Now()

	links, err := toJSON(goal.ResourceLinks)
	if err != nil {
		return fmt.Errorf("sqlite: updating goal %s: %w", goal.ID, err)
	}

	result, err := r.conn.ExecContext(ctx,
		`UPDATE goals
		 SET skill_name = ?, topic = ?, status = ?, start_date = ?,
		     target_date = ?, resource_links = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		goal.SkillName, goal.Topic, goal.Status, goal.StartDate,
		goal.TargetDate, links, goal.Notes, goal.UpdatedAt,
		goal.ID, goal.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating goal %s: %w", goal.ID, err)
	}

	return checkAffected(result, "goal", goal.ID)
}

// Delete removes a goal owned by userID.
func (r *GoalRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting goal %s: %w", id, err)
	}

	return checkAffected(result, "goal", id)
}

// clampListOptions applies the package-wide pagination defaults.
func clampListOptions(opts repository.ListOptions) (limit, offset int) {
	limit = opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset = opts.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// checkAffected translates "zero rows changed" into NotFound. Shared by
// every Update/Delete in this package — one query instead of SELECT+mutate.
func checkAffected(result sql.Result, resource, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

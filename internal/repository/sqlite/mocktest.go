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

// MockTestRepo implements repository.MockTestRepository on the shared pool.
type MockTestRepo struct {
	conn *sql.DB
}

var _ repository.MockTestRepository = (*MockTestRepo)(nil)

func (r *MockTestRepo) Create(ctx context.Context, test *model.MockTest) error {
	test.ID = xid.New().String()

	now := time.Now()
	test.CreatedAt = now
	test.UpdatedAt = now
	if test.StartedAt.IsZero() {
		test.StartedAt = now
	}

	questions, err := toJSON(test.Questions)
	if err != nil {
		return fmt.Errorf("sqlite: creating mock test: %w", err)
	}
	answers, err := toJSON(test.Answers)
	if err != nil {
		return fmt.Errorf("sqlite: creating mock test: %w", err)
	}

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO mock_tests (id, user_id, category, subcategory, difficulty,
		                         status, questions, answers, score, duration_minutes,
		                         time_taken_seconds, started_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		test.ID, test.UserID, test.Category, test.Subcategory, test.Difficulty,
		test.Status, questions, answers, test.Score, test.DurationMinutes,
		test.TimeTakenSeconds, test.StartedAt, test.CreatedAt, test.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating mock test: %w", err)
	}

	return nil
}

func (r *MockTestRepo) GetByID(ctx context.Context, userID, id string) (*model.MockTest, error) {
	var t model.MockTest
	var questions, answers string

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, category, subcategory, difficulty, status,
		        questions, answers, score, duration_minutes, time_taken_seconds,
		        started_at, created_at, updated_at
		 FROM mock_tests WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&t.ID, &t.UserID, &t.Category, &t.Subcategory, &t.Difficulty, &t.Status,
		&questions, &answers, &t.Score, &t.DurationMinutes, &t.TimeTakenSeconds,
		&t.StartedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("mock test", id)
		}
		return nil, fmt.Errorf("sqlite: getting mock test %s: %w", id, err)
	}

	if err := fromJSON(questions, &t.Questions); err != nil {
		return nil, fmt.Errorf("sqlite: getting mock test %s: %w", id, err)
	}
	if err := fromJSON(answers, &t.Answers); err != nil {
		return nil, fmt.Errorf("sqlite: getting mock test %s: %w", id, err)
	}

	return &t, nil
}

// List returns the user's test history, newest first. The question and
// answer payloads come back too — test history screens show per-question
// review, so there's no benefit in a slim projection.
func (r *MockTestRepo) List(ctx context.Context, userID string, opts repository.ListOptions) ([]model.MockTest, error) {
	limit, offset := clampListOptions(opts)

	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, user_id, category, subcategory, difficulty, status,
		        questions, answers, score, duration_minutes, time_taken_seconds,
		        started_at, created_at, updated_at
		 FROM mock_tests WHERE user_id = ?
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing mock tests: %w", err)
	}
	defer rows.Close()

	tests := make([]model.MockTest, 0, limit)
	for rows.Next() {
		var t model.MockTest
		var questions, answers string
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Category, &t.Subcategory, &t.Difficulty, &t.Status,
			&questions, &answers, &t.Score, &t.DurationMinutes, &t.TimeTakenSeconds,
			&t.StartedAt, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning mock test row: %w", err)
		}
		if err := fromJSON(questions, &t.Questions); err != nil {
			return nil, fmt.Errorf("sqlite: scanning mock test row: %w", err)
		}
		if err := fromJSON(answers, &t.Answers); err != nil {
			return nil, fmt.Errorf("sqlite: scanning mock test row: %w", err)
		}
		tests = append(tests, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating mock tests: %w", err)
	}

	return tests, nil
}

func (r *MockTestRepo) Update(ctx context.Context, test *model.MockTest) error {
	test.UpdatedAt = time.Now()

	answers, err := toJSON(test.Answers)
	if err != nil {
		return fmt.Errorf("sqlite: updating mock test %s: %w", test.ID, err)
	}

	// Questions are immutable after generation — only grading state changes.
	result, err := r.conn.ExecContext(ctx,
		`UPDATE mock_tests
		 SET status = ?, answers = ?, score = ?, time_taken_seconds = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		test.Status, answers, test.Score, test.TimeTakenSeconds, test.UpdatedAt,
		test.ID, test.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating mock test %s: %w", test.ID, err)
	}

	return checkAffected(result, "mock test", test.ID)
}

func (r *MockTestRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM mock_tests WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting mock test %s: %w", id, err)
	}

	return checkAffected(result, "mock test", id)
}

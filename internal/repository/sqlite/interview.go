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

// InterviewRepo implements repository.InterviewRepository on the shared pool.
type InterviewRepo struct {
	conn *sql.DB
}

var _ repository.InterviewRepository = (*InterviewRepo)(nil)

// feedbackToJSON handles the nullable feedback column: nil feedback is
// stored as the empty string, which fromJSON skips on the way out.
func feedbackToJSON(f *model.InterviewFeedback) (string, error) {
	if f == nil {
		return "", nil
	}
	return toJSON(f)
}

func (r *InterviewRepo) Create(ctx context.Context, interview *model.MockInterview) error {
	interview.ID = xid.New().String()

	now := time.Now()
	interview.CreatedAt = now
	interview.UpdatedAt = now

	transcript, err := toJSON(interview.Transcript)
	if err != nil {
		return fmt.Errorf("sqlite: creating interview: %w", err)
	}
	feedback, err := feedbackToJSON(interview.Feedback)
	if err != nil {
		return fmt.Errorf("sqlite: creating interview: %w", err)
	}

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO mock_interviews (id, user_id, type, target_role, difficulty,
		                              status, transcript, feedback, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		interview.ID, interview.UserID, interview.Type, interview.TargetRole,
		interview.Difficulty, interview.Status, transcript, feedback,
		interview.CreatedAt, interview.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating interview: %w", err)
	}

	return nil
}

func (r *InterviewRepo) GetByID(ctx context.Context, userID, id string) (*model.MockInterview, error) {
	var iv model.MockInterview
	var transcript, feedback string

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, type, target_role, difficulty, status,
		        transcript, feedback, created_at, updated_at
		 FROM mock_interviews WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&iv.ID, &iv.UserID, &iv.Type, &iv.TargetRole, &iv.Difficulty, &iv.Status,
		&transcript, &feedback, &iv.CreatedAt, &iv.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("mock interview", id)
		}
		return nil, fmt.Errorf("sqlite: getting interview %s: %w", id, err)
	}

	if err := fromJSON(transcript, &iv.Transcript); err != nil {
		return nil, fmt.Errorf("sqlite: getting interview %s: %w", id, err)
	}
	if feedback != "" {
		iv.Feedback = &model.InterviewFeedback{}
		if err := fromJSON(feedback, iv.Feedback); err != nil {
			return nil, fmt.Errorf("sqlite: getting interview %s: %w", id, err)
		}
	}

	return &iv, nil
}

func (r *InterviewRepo) List(ctx context.Context, userID string, opts repository.ListOptions) ([]model.MockInterview, error) {
	limit, offset := clampListOptions(opts)

	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, user_id, type, target_role, difficulty, status,
		        transcript, feedback, created_at, updated_at
		 FROM mock_interviews WHERE user_id = ?
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing interviews: %w", err)
	}
	defer rows.Close()

	interviews := make([]model.MockInterview, 0, limit)
	for rows.Next() {
		var iv model.MockInterview
		var transcript, feedback string
		if err := rows.Scan(
			&iv.ID, &iv.UserID, &iv.Type, &iv.TargetRole, &iv.Difficulty, &iv.Status,
			&transcript, &feedback, &iv.CreatedAt, &iv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning interview row: %w", err)
		}
		if err := fromJSON(transcript, &iv.Transcript); err != nil {
			return nil, fmt.Errorf("sqlite: scanning interview row: %w", err)
		}
		if feedback != "" {
			iv.Feedback = &model.InterviewFeedback{}
			if err := fromJSON(feedback, iv.Feedback); err != nil {
				return nil, fmt.Errorf("sqlite: scanning interview row: %w", err)
			}
		}
		interviews = append(interviews, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating interviews: %w", err)
	}

	return interviews, nil
}

// Update persists transcript growth, feedback, and status transitions.
// Type/role/difficulty are immutable once the session starts.
func (r *InterviewRepo) Update(ctx context.Context, interview *model.MockInterview) error {
	interview.UpdatedAt = time.Now()

	transcript, err := toJSON(interview.Transcript)
	if err != nil {
		return fmt.Errorf("sqlite: updating interview %s: %w", interview.ID, err)
	}
	feedback, err := feedbackToJSON(interview.Feedback)
	if err != nil {
		return fmt.Errorf("sqlite: updating interview %s: %w", interview.ID, err)
	}

	result, err := r.conn.ExecContext(ctx,
		`UPDATE mock_interviews
		 SET status = ?, transcript = ?, feedback = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		interview.Status, transcript, feedback, interview.UpdatedAt,
		interview.ID, interview.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating interview %s: %w", interview.ID, err)
	}

	return checkAffected(result, "mock interview", interview.ID)
}

func (r *InterviewRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM mock_interviews WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting interview %s: %w", id, err)
	}

	return checkAffected(result, "mock interview", id)
}

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

// RoadmapRepo implements repository.RoadmapRepository on the shared pool.
type RoadmapRepo struct {
	conn *sql.DB
}

var _ repository.RoadmapRepository = (*RoadmapRepo)(nil)

// Upsert inserts the user's roadmap or replaces the existing one.
//
// ON CONFLICT DO UPDATE:
// roadmaps.user_id is UNIQUE, so SQLite's upsert clause gives us
// "one roadmap per user" in a single statement with no read-first race.
// The original row keeps its id and created_at; everything else is replaced.
func (r *RoadmapRepo) Upsert(ctx context.Context, roadmap *model.Roadmap) error {
	now := time.Now()

	months, err := toJSON(roadmap.Months)
	if err != nil {
		return fmt.Errorf("sqlite: upserting roadmap: %w", err)
	}
	skills, err := toJSON(roadmap.Skills)
	if err != nil {
		return fmt.Errorf("sqlite: upserting roadmap: %w", err)
	}

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO roadmaps (id, user_id, target_role, company_type, months,
		                       skills, weaknesses, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     target_role  = excluded.target_role,
		     company_type = excluded.company_type,
		     months       = excluded.months,
		     skills       = excluded.skills,
		     weaknesses   = excluded.weaknesses,
		     updated_at   = excluded.updated_at`,
		xid.New().String(), roadmap.UserID, roadmap.TargetRole,
		roadmap.CompanyType, months, skills, roadmap.Weaknesses, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting roadmap: %w", err)
	}

	// Read the canonical row back so the caller sees the stable id and
	// created_at regardless of whether this was an insert or an update.
	saved, err := r.GetByUser(ctx, roadmap.UserID)
	if err != nil {
		return fmt.Errorf("sqlite: upserting roadmap: %w", err)
	}
	*roadmap = *saved

	return nil
}

// GetByUser retrieves the user's roadmap, or NotFound before the first save.
func (r *RoadmapRepo) GetByUser(ctx context.Context, userID string) (*model.Roadmap, error) {
	var rm model.Roadmap
	var months, skills string

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, target_role, company_type, months, skills,
		        weaknesses, created_at, updated_at
		 FROM roadmaps WHERE user_id = ?`,
		userID,
	).Scan(
		&rm.ID, &rm.UserID, &rm.TargetRole, &rm.CompanyType,
		&months, &skills, &rm.Weaknesses, &rm.CreatedAt, &rm.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("roadmap", userID)
		}
		return nil, fmt.Errorf("sqlite: getting roadmap for user %s: %w", userID, err)
	}

	if err := fromJSON(months, &rm.Months); err != nil {
		return nil, fmt.Errorf("sqlite: getting roadmap: %w", err)
	}
	if err := fromJSON(skills, &rm.Skills); err != nil {
		return nil, fmt.Errorf("sqlite: getting roadmap: %w", err)
	}

	return &rm, nil
}

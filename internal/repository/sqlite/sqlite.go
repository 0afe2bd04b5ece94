// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. Perfect for:
// - A self-hosted tracker like this one
// - Single-server deployments (which is most apps, honestly)
// - Development and testing (use ":memory:" for an in-memory DB)
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
//
// JSON TEXT COLUMNS:
// Several entities carry list- or struct-shaped fields (question sets,
// transcripts, roadmap months, the resume checklist). These are stored as
// TEXT columns holding JSON, marshalled by the helpers at the bottom of this
// file. We never query inside them — they are read and written whole — so
// the relational schema stays flat and the Go structs stay expressive.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	// BLANK IMPORT:
	// The underscore import `_ "modernc.org/sqlite"` is a "side-effect only" import.
	// The sqlite package's init() function registers itself with database/sql as a
	// driver named "sqlite". After this import, sql.Open("sqlite", ...) works.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. It is the composition root for the
// per-entity repositories: each accessor (Users, Goals, ...) returns a small
// repo struct sharing this pool. One file per entity keeps the SQL readable.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/preptracker.db" → file-based database (persistent)
//   - ":memory:"            → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection, always. SQLite serializes writes anyway, and with
	// ":memory:" every pool connection would otherwise open its OWN empty
	// database — migrations on one, queries on another.
	conn.SetMaxOpenConns(1)

	// Ping verifies the connection actually works. Without this, a bad path
	// or permissions issue would only surface on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL (Write-Ahead Logging) mode:
	// Default SQLite locks the entire database during writes. WAL allows
	// concurrent reads WHILE a write is happening — important for a web server.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (backwards compatibility).
	// We rely on users → owned-rows referential integrity, so turn them on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Repository accessors. Cheap to call — the returned structs are stateless
// wrappers around the shared pool.

func (db *DB) Users() *UserRepo               { return &UserRepo{conn: db.conn} }
func (db *DB) Goals() *GoalRepo               { return &GoalRepo{conn: db.conn} }
func (db *DB) Problems() *ProblemRepo         { return &ProblemRepo{conn: db.conn} }
func (db *DB) Resumes() *ResumeRepo           { return &ResumeRepo{conn: db.conn} }
func (db *DB) Applications() *ApplicationRepo { return &ApplicationRepo{conn: db.conn} }
func (db *DB) Roadmaps() *RoadmapRepo         { return &RoadmapRepo{conn: db.conn} }
func (db *DB) MockTests() *MockTestRepo       { return &MockTestRepo{conn: db.conn} }
func (db *DB) Interviews() *InterviewRepo     { return &InterviewRepo{conn: db.conn} }

// migrate runs all database migrations.
//
// For this project, embedding SQL as string constants is fine — CREATE TABLE
// IF NOT EXISTS makes every statement idempotent, so migrate is safe to run
// on every startup. A schema-versioning tool (golang-migrate) only pays off
// once destructive migrations appear.
func (db *DB) migrate() error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id            TEXT PRIMARY KEY,
				email         TEXT NOT NULL UNIQUE,
				name          TEXT NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL DEFAULT '',
				github_id     INTEGER NOT NULL DEFAULT 0,
				avatar_url    TEXT NOT NULL DEFAULT '',
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_users_github_id ON users(github_id);
		`},
		{"goals", `
			CREATE TABLE IF NOT EXISTS goals (
				id             TEXT PRIMARY KEY,
				user_id        TEXT NOT NULL REFERENCES users(id),
				skill_name     TEXT NOT NULL,
				topic          TEXT NOT NULL,
				status         TEXT NOT NULL DEFAULT 'not_started',
				start_date     TEXT NOT NULL DEFAULT '',
				target_date    TEXT NOT NULL DEFAULT '',
				resource_links TEXT NOT NULL DEFAULT '[]',
				notes          TEXT NOT NULL DEFAULT '',
				created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals(user_id);
		`},
		{"problems", `
			CREATE TABLE IF NOT EXISTS problems (
				id            TEXT PRIMARY KEY,
				user_id       TEXT NOT NULL REFERENCES users(id),
				platform      TEXT NOT NULL DEFAULT '',
				name          TEXT NOT NULL,
				difficulty    TEXT NOT NULL DEFAULT 'medium',
				status        TEXT NOT NULL DEFAULT 'not_solved',
				practice_date TEXT NOT NULL DEFAULT '',
				notes         TEXT NOT NULL DEFAULT '',
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_problems_user_id ON problems(user_id);
			CREATE INDEX IF NOT EXISTS idx_problems_practice_date ON problems(user_id, practice_date);
		`},
		{"resumes", `
			CREATE TABLE IF NOT EXISTS resumes (
				id             TEXT PRIMARY KEY,
				user_id        TEXT NOT NULL REFERENCES users(id),
				name           TEXT NOT NULL,
				version_number INTEGER NOT NULL DEFAULT 1,
				target_role    TEXT NOT NULL DEFAULT '',
				file_key       TEXT NOT NULL DEFAULT '',
				file_name      TEXT NOT NULL DEFAULT '',
				checklist      TEXT NOT NULL DEFAULT '{}',
				notes          TEXT NOT NULL DEFAULT '',
				created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_resumes_user_id ON resumes(user_id);
		`},
		{"applications", `
			CREATE TABLE IF NOT EXISTS applications (
				id             TEXT PRIMARY KEY,
				user_id        TEXT NOT NULL REFERENCES users(id),
				company        TEXT NOT NULL,
				role           TEXT NOT NULL,
				job_type       TEXT NOT NULL DEFAULT 'full_time',
				status         TEXT NOT NULL DEFAULT 'applied',
				apply_date     TEXT NOT NULL DEFAULT '',
				interview_date TEXT NOT NULL DEFAULT '',
				link           TEXT NOT NULL DEFAULT '',
				notes          TEXT NOT NULL DEFAULT '',
				created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_applications_user_id ON applications(user_id);
		`},
		{"roadmaps", `
			CREATE TABLE IF NOT EXISTS roadmaps (
				id           TEXT PRIMARY KEY,
				user_id      TEXT NOT NULL UNIQUE REFERENCES users(id),
				target_role  TEXT NOT NULL DEFAULT '',
				company_type TEXT NOT NULL DEFAULT '',
				months       TEXT NOT NULL DEFAULT '[]',
				skills       TEXT NOT NULL DEFAULT '[]',
				weaknesses   TEXT NOT NULL DEFAULT '',
				created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
		`},
		{"mock_tests", `
			CREATE TABLE IF NOT EXISTS mock_tests (
				id                 TEXT PRIMARY KEY,
				user_id            TEXT NOT NULL REFERENCES users(id),
				category           TEXT NOT NULL,
				subcategory        TEXT NOT NULL DEFAULT '',
				difficulty         TEXT NOT NULL DEFAULT 'medium',
				status             TEXT NOT NULL DEFAULT 'in_progress',
				questions          TEXT NOT NULL DEFAULT '[]',
				answers            TEXT NOT NULL DEFAULT '[]',
				score              INTEGER NOT NULL DEFAULT 0,
				duration_minutes   INTEGER NOT NULL DEFAULT 0,
				time_taken_seconds INTEGER NOT NULL DEFAULT 0,
				started_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_mock_tests_user_id ON mock_tests(user_id);
		`},
		{"mock_interviews", `
			CREATE TABLE IF NOT EXISTS mock_interviews (
				id          TEXT PRIMARY KEY,
				user_id     TEXT NOT NULL REFERENCES users(id),
				type        TEXT NOT NULL,
				target_role TEXT NOT NULL DEFAULT '',
				difficulty  TEXT NOT NULL DEFAULT 'medium',
				status      TEXT NOT NULL DEFAULT 'in_progress',
				transcript  TEXT NOT NULL DEFAULT '[]',
				feedback    TEXT NOT NULL DEFAULT '',
				created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_mock_interviews_user_id ON mock_interviews(user_id);
		`},
	}

	for _, s := range stmts {
		if _, err := db.conn.Exec(s.sql); err != nil {
			return fmt.Errorf("creating %s table: %w", s.name, err)
		}
	}

	return nil
}

// toJSON marshals v for storage in a TEXT column. Marshalling our own model
// types cannot realistically fail (no channels, no cycles), but we propagate
// the error anyway rather than silently storing garbage.
func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding json column: %w", err)
	}
	return string(b), nil
}

// fromJSON unmarshals a TEXT column into out. An empty string is treated as
// "no value" and leaves out untouched — that's what the nullable feedback
// column relies on.
func fromJSON(s string, out any) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), out); err != nil {
		return fmt.Errorf("decoding json column: %w", err)
	}
	return nil
}

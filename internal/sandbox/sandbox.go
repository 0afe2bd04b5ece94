// Package sandbox runs small practice snippets in isolated Docker
// containers.
//
// The practice log tracks WHICH problems were attempted; the sandbox lets
// the user actually try a quick solution without leaving the app. It is an
// optional dependency — the server runs fine without a Docker daemon, and
// the run endpoint reports 503 until one is available.
package sandbox

import (
	"context"
	"time"
)

// RunRequest is one snippet to execute.
type RunRequest struct {
	Code string
}

// RunResult is the outcome of a sandboxed run.
type RunResult struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"durationNs"`
}

// Runner executes snippets. The Docker implementation is the only real one;
// tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, req RunRequest) (*RunResult, error)
	Close() error
}

// ExitTimeout is the exit code reported when a run hits the wall-clock
// limit, matching the unix timeout(1) convention.
const ExitTimeout = 124

// Config holds the sandbox tuning knobs.
type Config struct {
	// Image is the container image snippets run in.
	Image string
	// MemoryLimit caps container memory, in bytes.
	MemoryLimit int64
	// CPULimit is the fraction of a CPU the container may use.
	CPULimit float64
	// Timeout is the wall-clock limit for one run.
	Timeout time.Duration
	// PoolSize is how many pre-warmed containers to keep ready.
	PoolSize int
}

// DefaultConfig is a Python scratchpad: small, slow-capped, and offline.
func DefaultConfig() Config {
	return Config{
		Image:       "python:3.12-alpine",
		MemoryLimit: 128 * 1024 * 1024,
		CPULimit:    0.5,
		Timeout:     5 * time.Second,
		PoolSize:    3,
	}
}

package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// DockerRunner implements Runner on a local Docker daemon, drawing
// containers from a pre-warmed pool so a run doesn't pay container
// startup latency.
type DockerRunner struct {
	cli    *client.Client
	config Config
	logger *slog.Logger
	pool   *pool
}

var _ Runner = (*DockerRunner)(nil)

// NewDockerRunner connects to the daemon, pulls the sandbox image, and
// starts the container pool. Fails fast if Docker is unreachable — the
// caller decides whether that's fatal or just means "sandbox disabled".
func NewDockerRunner(cfg Config, logger *slog.Logger) (*DockerRunner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("sandbox: creating docker client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger.Info("ensuring sandbox image is available", slog.String("image", cfg.Image))
	reader, err := cli.ImagePull(ctx, cfg.Image, image.PullOptions{})
	if err != nil {
		return nil, fmt.Errorf("sandbox: pulling image %s: %w", cfg.Image, err)
	}
	defer reader.Close()
	// Drain to block until the pull finishes.
	io.Copy(io.Discard, reader)
	logger.Info("sandbox image ready")

	r := &DockerRunner{
		cli:    cli,
		config: cfg,
		logger: logger,
	}

	r.pool = newPool(cli, cfg, logger)
	r.pool.start()

	return r, nil
}

// Close shuts down the pool and the docker client.
func (r *DockerRunner) Close() error {
	r.pool.stop()
	return r.cli.Close()
}

// Run executes the snippet in a pooled container.
//
// Containers are single-use: each run takes one from the pool and removes
// it afterwards, so state never leaks between runs. The pool refills in the
// background.
func (r *DockerRunner) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	start := time.Now()

	containerID, err := r.pool.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("sandbox: acquiring container: %w", err)
	}

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := r.cli.ContainerRemove(cleanupCtx, containerID, container.RemoveOptions{Force: true}); err != nil {
			r.logger.Error("failed to remove sandbox container",
				slog.String("id", containerID),
				slog.String("error", err.Error()),
			)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	// The pooled container idles on `sleep infinity`; the snippet runs as
	// a docker exec, so there's no image start cost on the hot path.
	execResp, err := r.cli.ContainerExecCreate(runCtx, containerID, container.ExecOptions{
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          []string{"python", "-c", req.Code},
	})
	if err != nil {
		return nil, fmt.Errorf("sandbox: creating exec: %w", err)
	}

	attachResp, err := r.cli.ContainerExecAttach(runCtx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("sandbox: attaching to exec: %w", err)
	}
	defer attachResp.Close()

	var stdout, stderr bytes.Buffer

	done := make(chan struct{})
	go func() {
		// stdcopy demultiplexes the combined stream into stdout/stderr.
		_, _ = stdcopy.StdCopy(&stdout, &stderr, attachResp.Reader)
		close(done)
	}()

	var exitCode int

	select {
	case <-done:
		inspectResp, err := r.cli.ContainerExecInspect(ctx, execResp.ID)
		if err == nil {
			exitCode = inspectResp.ExitCode
		}
	case <-runCtx.Done():
		exitCode = ExitTimeout
		stderr.WriteString("\nExecution timed out.\n")
	}

	return &RunResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		Duration: time.Since(start),
	}, nil
}

package sandbox_test

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sakif/prep-tracker/internal/sandbox"
	"github.com/stretchr/testify/assert"
)

func TestDockerRunner(t *testing.T) {
	// Needs a local Docker daemon; skip in CI environments.
	if os.Getenv("CI") != "" {
		t.Skip("Skipping docker test in CI environment")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := sandbox.DefaultConfig()
	cfg.PoolSize = 1 // keep local test startup fast

	runner, err := sandbox.NewDockerRunner(cfg, logger)
	assert.NoError(t, err, "Should initialize docker runner without error")
	defer runner.Close()

	// Give the pool manager a moment to warm up a container.
	time.Sleep(2 * time.Second)

	t.Run("successful run", func(t *testing.T) {
		res, err := runner.Run(context.Background(), sandbox.RunRequest{
			Code: `print("Hello from the practice sandbox!")`,
		})
		assert.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Contains(t, res.Stdout, "Hello from the practice sandbox!")
		assert.Empty(t, res.Stderr)
		assert.Greater(t, res.Duration, time.Duration(0))
	})

	t.Run("syntax error", func(t *testing.T) {
		res, err := runner.Run(context.Background(), sandbox.RunRequest{
			Code: `print("Missing parenthesis"`,
		})
		assert.NoError(t, err)
		assert.NotEqual(t, 0, res.ExitCode)
		assert.Contains(t, res.Stderr, "SyntaxError")
		assert.Empty(t, res.Stdout)
	})

	t.Run("infinite loop hits the timeout", func(t *testing.T) {
		fastCfg := cfg
		fastCfg.Timeout = 2 * time.Second
		fastRunner, err := sandbox.NewDockerRunner(fastCfg, logger)
		assert.NoError(t, err)
		defer fastRunner.Close()
		time.Sleep(1 * time.Second) // wait for the pool

		res, err := fastRunner.Run(context.Background(), sandbox.RunRequest{
			Code: `while True: pass`,
		})
		assert.NoError(t, err)
		assert.Equal(t, sandbox.ExitTimeout, res.ExitCode)
		assert.Contains(t, res.Stderr, "timed out")
	})

	t.Run("multiline solution", func(t *testing.T) {
		res, err := runner.Run(context.Background(), sandbox.RunRequest{
			Code: strings.Join([]string{
				"def fib(n):",
				"    if n <= 1: return n",
				"    return fib(n-1) + fib(n-2)",
				"print(fib(5))",
			}, "\n"),
		})
		assert.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Contains(t, res.Stdout, "5")
	})
}

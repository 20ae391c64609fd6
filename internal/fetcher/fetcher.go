// Package fetcher runs the external media-fetcher tool (yt-dlp) as a child
// process. The tool is treated as a black box: arguments in, stdout/stderr
// and an exit code out. Everything that can go wrong is translated into a
// domain error kind here, at the boundary; callers never see raw tool output.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"

	"github.com/medba/medba/internal/config"
	"github.com/medba/medba/internal/domain"
)

// Result holds the captured output of one successful tool run.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Runner invokes the external fetcher with a discrete argument vector.
// Implementations must guarantee the child process has terminated before
// returning, in every outcome.
type Runner interface {
	Invoke(ctx context.Context, args []string) (*Result, error)
}

// YtDlp is the production Runner. It enforces a wall-clock timeout and never
// goes through a shell.
type YtDlp struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewYtDlp creates a runner for the configured binary.
func NewYtDlp(cfg config.FetcherConfig, logger *slog.Logger) *YtDlp {
	return &YtDlp{
		binary:  cfg.Binary,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Invoke runs the tool with exactly the given arguments. On timeout the
// process is killed and the error maps to the upstream-timeout kind; a launch
// failure maps to service-unavailable; a nonzero exit is classified from the
// tool's own error text.
func (y *YtDlp) Invoke(ctx context.Context, args []string) (*Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, y.binary, args...)
	// Without a wait delay, a surviving grandchild holding the output pipes
	// would block Wait long after the tool itself was killed.
	cmd.WaitDelay = 10 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err == nil {
		return &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
	}

	// Run only returns after Wait, so the child is gone in every branch
	// below; CommandContext kills it when the deadline fires.
	if runCtx.Err() != nil {
		y.logger.Warn("fetcher timed out",
			"binary", y.binary,
			"elapsed", elapsed,
			"timeout", y.timeout,
		)
		return nil, domain.E(domain.KindUpstreamTimeout, runCtx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		output := stderr.Bytes()
		if len(bytes.TrimSpace(output)) == 0 {
			output = stdout.Bytes()
		}
		kind, detail := Classify(output)
		y.logger.Warn("fetcher exited with error",
			"binary", y.binary,
			"exit_code", exitErr.ExitCode(),
			"elapsed", elapsed,
			"detail", detail,
		)
		return nil, domain.E(kind, errors.New(detail))
	}

	// Could not launch at all (not installed, not executable).
	y.logger.Error("fetcher failed to launch", "binary", y.binary, "error", err)
	return nil, domain.E(domain.KindServiceUnavailable, err)
}

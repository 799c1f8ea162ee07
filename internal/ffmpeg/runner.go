package ffmpeg

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"slidecast/internal/pkg/logger"
)

var commandContext = exec.CommandContext

const stderrTailBytes = 8 << 10

// Runner executes one encoder process. args excludes the binary name.
type Runner interface {
	Run(ctx context.Context, args []string) error
}

// ExecRunner runs a local binary as a child process. The process is killed
// when ctx is canceled; Run returns once it has exited.
type ExecRunner struct {
	Binary string
	// Log, when set, receives the process stderr line by line. Each run gets
	// its own writer so concurrent encodes do not interleave.
	Log *logger.Logger
	// WaitDelay bounds how long Run waits for pipes after the process is killed.
	WaitDelay time.Duration
}

// Run starts the binary and waits for it. A non-zero exit becomes an
// *EncodeError carrying the exit code and the tail of stderr.
func (r *ExecRunner) Run(ctx context.Context, args []string) error {
	binary := r.Binary
	if binary == "" {
		binary = "ffmpeg"
	}

	cmd := commandContext(ctx, binary, args...) //nolint:gosec
	stderr := &tailBuffer{max: stderrTailBytes}
	cmd.Stderr = stderr
	if r.Log != nil {
		lw := r.Log.FromContext(ctx).LineWriter(slog.LevelInfo, "ffmpeg")
		defer lw.Flush()
		cmd.Stderr = io.MultiWriter(stderr, lw)
	}
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = 5 * time.Second
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &EncodeError{
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return &EncodeError{ExitCode: -1, Stderr: stderr.String(), Err: err}
}

var _ Runner = (*ExecRunner)(nil)

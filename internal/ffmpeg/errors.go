package ffmpeg

import (
	"fmt"
	"strings"
)

// EncodeError describes a failed encoder invocation: either a non-zero exit
// (ExitCode, Stderr tail) or a clean exit without the expected output file.
type EncodeError struct {
	ExitCode int
	Stderr   string
	Missing  bool
	Output   string
	Err      error
}

func (e *EncodeError) Error() string {
	if e.Missing {
		return fmt.Sprintf("encoder produced no output at %s", e.Output)
	}
	msg := fmt.Sprintf("encoder exited with code %d", e.ExitCode)
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *EncodeError) Unwrap() error { return e.Err }

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

// tailBuffer keeps the last max bytes written to it. ffmpeg can be chatty at
// higher log levels and only the end of stderr explains a failure.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) >= t.max {
		t.buf = append(t.buf[:0], p[len(p)-t.max:]...)
		return n, nil
	}
	if over := len(t.buf) + len(p) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	t.buf = append(t.buf, p...)
	return n, nil
}

func (t *tailBuffer) String() string { return string(t.buf) }

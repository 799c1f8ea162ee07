package logger

import (
	"bytes"
	"context"
	"log/slog"
)

const maxLineBytes = 16 << 10

// LineWriter logs every line written to it as one record with the text under
// the "line" key. It is meant for a single child process stream and is not
// safe for concurrent use.
type LineWriter struct {
	log   *Logger
	level slog.Level
	msg   string
	buf   []byte
}

// LineWriter returns a writer that logs each line at level with message msg.
// Call Flush once the stream ends to emit a trailing partial line.
func (l *Logger) LineWriter(level slog.Level, msg string) *LineWriter {
	return &LineWriter{log: l, level: level, msg: msg}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	if len(w.buf) > maxLineBytes {
		w.emit(w.buf)
		w.buf = w.buf[:0]
	}
	return len(p), nil
}

// Flush logs whatever is left without a trailing newline.
func (w *LineWriter) Flush() {
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = w.buf[:0]
	}
}

func (w *LineWriter) emit(line []byte) {
	line = bytes.TrimRight(line, "\r")
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}
	w.log.Log(context.Background(), w.level, w.msg, slog.String("line", string(line)))
}

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB   = 50
	maxAgeDays  = 14
	maxBackups  = 10
	compressOld = true
)

// Options controls where and how verbosely the service logs.
type Options struct {
	Level string // debug, info, warn, error (case-insensitive)
	File  string // optional path; rotated with lumberjack when set
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a JSON logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Init installs the process-wide default logger. The returned closer flushes
// the rotating file, if any.
func Init(opts Options) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSizeMB,
			MaxAge:     maxAgeDays,
			MaxBackups: maxBackups,
			Compress:   compressOld,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closer = rotator
	}

	log := New(out, ParseLevel(opts.Level))
	slog.SetDefault(log)
	return log, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

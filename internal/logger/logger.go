package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	slogmulti "github.com/samber/slog-multi"
)

// Level is a logging severity.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

const slogLevelTrace = slog.LevelDebug - 4

var (
	level   = new(slog.LevelVar)
	mu      sync.Mutex
	current = newLogger(os.Stderr, nil)
	logFile *os.File
)

// ParseLevel converts a level name to a Level.
// "fatal" and "panic" are accepted and treated as error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "fatal", "panic":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %q", s)
	}
}

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelTrace:
		return slogLevelTrace
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel sets the minimum level that gets written.
func SetLevel(l Level) {
	level.Set(l.slogLevel())
}

// SetOutput replaces the terminal writer. An empty file disables file logging.
func SetOutput(w io.Writer, file string) error {
	mu.Lock()
	defer mu.Unlock()

	var fileWriter io.Writer
	var f *os.File
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		var err error
		f, err = os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		fileWriter = f
	}

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	current = newLogger(w, fileWriter)
	return nil
}

func newLogger(terminal io.Writer, file io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lv, ok := a.Value.Any().(slog.Level); ok && lv == slogLevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	handlers := []slog.Handler{slog.NewTextHandler(terminal, opts)}
	if file != nil {
		handlers = append(handlers, slog.NewJSONHandler(file, opts))
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

func logf(l slog.Level, format string, args ...any) {
	mu.Lock()
	lg := current
	mu.Unlock()
	ctx := context.Background()
	if !lg.Enabled(ctx, l) {
		return
	}
	lg.Log(ctx, l, fmt.Sprintf(format, args...))
}

func Trace(format string, args ...any) { logf(slogLevelTrace, format, args...) }
func Debug(format string, args ...any) { logf(slog.LevelDebug, format, args...) }
func Info(format string, args ...any)  { logf(slog.LevelInfo, format, args...) }
func Warn(format string, args ...any)  { logf(slog.LevelWarn, format, args...) }
func Error(format string, args ...any) { logf(slog.LevelError, format, args...) }

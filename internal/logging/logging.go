package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// maxLogSize is the size past which the log file is rotated to <path>.1 on
// the next Setup.
const maxLogSize = 1 << 20

var panicDir = os.TempDir()

// Setup points the default slog logger at a charmbracelet/log logger writing
// logfmt records to path. On failure the default logger discards everything,
// since stdout and stderr belong to the host. The returned closer is never nil.
func Setup(path, level string) (io.Closer, error) {
	discard := func(err error) (io.Closer, error) {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return io.NopCloser(nil), err
	}

	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		lvl = charmlog.WarnLevel
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return discard(fmt.Errorf("failed to create log dir: %w", err))
	}
	rotate(path)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return discard(fmt.Errorf("failed to open log file: %w", err))
	}
	panicDir = dir

	logger := charmlog.NewWithOptions(file, charmlog.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Formatter:       charmlog.LogfmtFormatter,
	})
	slog.SetDefault(slog.New(logger))
	return file, nil
}

func rotate(path string) {
	info, err := os.Stat(path)
	if err != nil || info.Size() < maxLogSize {
		return
	}
	_ = os.Rename(path, path+".1")
}

// RecoverPanic is a common function to handle panics gracefully.
// It logs the error, creates a panic log file with stack trace,
// and executes an optional cleanup function.
func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		errorMsg := fmt.Sprintf("Panic in %s: %v", name, r)
		// Use slog directly here, as our logger setup might be the one panicking.
		slog.Error(errorMsg)

		timestamp := time.Now().Format("20060102-150405")
		filename := filepath.Join(panicDir, fmt.Sprintf("context-reminder-panic-%s-%s.log", name, timestamp))

		file, err := os.Create(filename)
		if err != nil {
			slog.Error("Failed to create panic log file", "path", filename, "error", err)
		} else {
			defer file.Close()
			fmt.Fprintf(file, "Panic in %s: %v\n\n", name, r)
			fmt.Fprintf(file, "Time: %s\n\n", time.Now().Format(time.RFC3339))
			fmt.Fprintf(file, "Stack Trace:\n%s\n", string(debug.Stack()))
			slog.Info("Panic details written", "path", filename)
		}

		if cleanup != nil {
			cleanup()
		}
	}
}

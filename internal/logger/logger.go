// Package logger configures the process-wide zerolog logger: human-readable
// console output plus a size-rotated log file.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the root logger. Console output goes to stdout; structured
// JSON lines go to the rotating file. If the file cannot be opened the
// logger degrades to console only.
func Setup(filename string, level string, maxSizeMB int64, maxBackups int) zerolog.Logger {
	console := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	writers := []io.Writer{console}

	rotator := &Rotator{
		Filename:   filename,
		MaxSize:    maxSizeMB * 1024 * 1024,
		MaxBackups: maxBackups,
	}
	if err := rotator.openExistingOrNew(); err == nil {
		writers = append(writers, rotator)
	}

	return zerolog.New(io.MultiWriter(writers...)).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// Nop returns a logger that discards everything, for tests.
func Nop() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

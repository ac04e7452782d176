// package shared defines shared helpers
package shared

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Layouts for generated directory names and report headers.
const (
	DirTimestamp    = "2006-01-02_150405"
	ReportTimestamp = "2006-01-02 15:04:05"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger creates a logger that appends to the file at path, creating parent folders.
// The caller closes the returned file.
func NewFileLogger(path string) (*log.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewLogger(f), f, nil
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel parses name and applies it to l. Unknown names leave the level unchanged.
func SetLogLevel(l *log.Logger, name string) {
	if name == "" {
		return
	}
	if lvl, err := log.ParseLevel(name); err == nil {
		l.SetLevel(lvl)
	}
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// TimestampedName returns prefix joined with t formatted as [DirTimestamp],
// e.g. "fixed_playlists_2024-03-01_142500".
func TimestampedName(prefix string, t time.Time) string {
	return prefix + "_" + t.Format(DirTimestamp)
}

var unsafeFilenameChars = strings.NewReplacer(
	`\`, "", "/", "", "*", "", "?", "", ":", "",
	`"`, "", "<", "", ">", "", "|", "",
)

// SanitizeFilename removes characters that are not allowed in file names on common filesystems.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.Replace(name)
}

package eraconsole

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LogEntry is the logger handle the console and its collaborators write to.
type LogEntry = logrus.Entry

var rootLogger = newRootLogger()

func newRootLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(PlainFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Logger returns the package logger.
func Logger() *logrus.Logger {
	return rootLogger
}

// SetLogOutput redirects the package logger. A nil writer discards output.
func SetLogOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	rootLogger.SetOutput(w)
}

// SetDebug toggles debug level logging.
func SetDebug(on bool) {
	if on {
		rootLogger.SetLevel(logrus.DebugLevel)
	} else {
		rootLogger.SetLevel(logrus.InfoLevel)
	}
}

// OpenLogFile appends package log output to path, creating parent
// directories. The returned closer restores stderr output.
func OpenLogFile(path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("eraconsole: log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("eraconsole: open log: %w", err)
	}
	rootLogger.SetOutput(f)
	return closerFunc(func() error {
		rootLogger.SetOutput(os.Stderr)
		return f.Close()
	}), nil
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

// Named returns an entry tagged with a component field.
func Named(component string) *LogEntry {
	entry := logrus.NewEntry(rootLogger)
	if component != "" {
		entry = entry.WithField("component", component)
	}
	return entry
}

// PlainFormatter writes [timestamp] [LEVEL] [component] message k=v.
type PlainFormatter struct{}

// Format implements logrus.Formatter.
func (PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry == nil {
		return []byte{}, nil
	}
	parts := make([]string, 0, 5)
	parts = append(parts, "["+entry.Time.UTC().Format(time.RFC3339)+"]")
	parts = append(parts, "["+strings.ToUpper(entry.Level.String())+"]")
	if c, ok := entry.Data["component"].(string); ok && c != "" {
		parts = append(parts, "["+c+"]")
	}
	parts = append(parts, entry.Message)
	if f := formatFields(entry.Data); f != "" {
		parts = append(parts, f)
	}
	return []byte(strings.Join(parts, " ") + "\n"), nil
}

func formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "component" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}

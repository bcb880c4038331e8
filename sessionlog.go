package eraconsole

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionLog writes a timestamped plain-text transcript of every appended
// entry. Writes are synchronous. The first write failure is returned once
// and disables the log for the rest of the session.
type SessionLog struct {
	w        io.Writer
	closer   io.Closer
	id       uuid.UUID
	now      func() time.Time
	disabled bool
}

// OpenSessionLog truncates path, creating parent directories, and writes
// the session banner.
func OpenSessionLog(path string) (*SessionLog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: session log dir: %v", ErrIO, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: session log: %v", ErrIO, err)
	}
	l := newSessionLog(f, time.Now)
	l.closer = f
	if err := l.writeBanner(); err != nil {
		f.Close()
		return nil, err
	}
	return l, nil
}

// NewSessionLog writes the transcript to w. The banner is written
// immediately.
func NewSessionLog(w io.Writer) (*SessionLog, error) {
	l := newSessionLog(w, time.Now)
	if err := l.writeBanner(); err != nil {
		return nil, err
	}
	return l, nil
}

func newSessionLog(w io.Writer, now func() time.Time) *SessionLog {
	return &SessionLog{w: w, id: uuid.New(), now: now}
}

// ID returns the session id written into the banner.
func (l *SessionLog) ID() uuid.UUID {
	return l.id
}

// Disabled reports whether a write failure has switched the log off.
func (l *SessionLog) Disabled() bool {
	return l.disabled
}

func (l *SessionLog) writeBanner() error {
	rule := strings.Repeat("=", 60)
	_, err := fmt.Fprintf(l.w, "\n%s\nsession start: %s\nsession id: %s\n%s\n\n",
		rule, l.now().Format("2006-01-02 15:04:05"), l.id, rule)
	if err != nil {
		return fmt.Errorf("%w: session log banner: %v", ErrIO, err)
	}
	return nil
}

// Write appends "[HH:MM:SS] line". It returns an error only for the first
// failure; afterwards the log is disabled and writes are dropped silently.
func (l *SessionLog) Write(line string) error {
	if l == nil || l.disabled {
		return nil
	}
	_, err := fmt.Fprintf(l.w, "[%s] %s\n", l.now().Format("15:04:05"), line)
	if err != nil {
		l.disabled = true
		return fmt.Errorf("%w: session log: %v", ErrIO, err)
	}
	return nil
}

// Close closes the underlying file when the log owns one.
func (l *SessionLog) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	c := l.closer
	l.closer = nil
	l.disabled = true
	return c.Close()
}

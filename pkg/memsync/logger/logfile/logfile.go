// Package logfile provides a plain-text file sink implementation of the
// memsync.Logger interface. One line per entry:
//
//	[2006-01-02 15:04:05] [LEVEL] message key=value ...
//
// There is no rotation and writes are best effort: a failed write is
// swallowed, never escalated to the pipeline.
package logfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Kashif-509/Ulitmatemember-to-Acess/pkg/memsync"
)

const timestampLayout = "2006-01-02 15:04:05"

// Logger implements memsync.Logger by appending lines to a local file.
// Safe for concurrent use.
type Logger struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// New creates a file sink at path, creating the parent directory if absent.
func New(path string) (*Logger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("log file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	return &Logger{path: path, now: time.Now}, nil
}

func (l *Logger) Debug(msg string, fields ...memsync.Field) { l.write("DEBUG", msg, fields) }

func (l *Logger) Info(msg string, fields ...memsync.Field) { l.write("INFO", msg, fields) }

func (l *Logger) Warn(msg string, fields ...memsync.Field) { l.write("WARNING", msg, fields) }

func (l *Logger) Error(msg string, fields ...memsync.Field) { l.write("ERROR", msg, fields) }

func (l *Logger) Success(msg string, fields ...memsync.Field) { l.write("SUCCESS", msg, fields) }

func (l *Logger) write(level, msg string, fields []memsync.Field) {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(l.now().Format(timestampLayout))
	b.WriteString("] [")
	b.WriteString(level)
	b.WriteString("] ")
	b.WriteString(msg)
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	b.WriteString("\n")

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(b.String())
}

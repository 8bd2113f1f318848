// Package trace records protocol traffic to a rotating log file.
package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level defines the trace verbosity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Direction marks which way a line travelled.
type Direction string

const (
	Inbound  Direction = "->"
	Outbound Direction = "<-"
)

// lineLevel returns the level a line is recorded at: commands and events
// are debug, replies are info, errors are warnings.
func lineLevel(dir Direction, line string) Level {
	if dir == Inbound || strings.HasPrefix(line, "event:") {
		return LevelDebug
	}
	if strings.HasPrefix(line, "error:") {
		return LevelWarn
	}
	return LevelInfo
}

// Config holds configuration for the trace.
type Config struct {
	Enabled   bool
	Level     Level
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
	// PreviewLength truncates long lines; 0 keeps them whole.
	PreviewLength int
}

// Logger writes protocol lines with file rotation. It implements
// protocol.Tracer. A nil or disabled Logger records nothing.
type Logger struct {
	mu          sync.Mutex
	file        *os.File
	config      Config
	currentSize int64
}

// New opens the trace file described by cfg.
func New(cfg Config) (*Logger, error) {
	l := &Logger{config: cfg}
	if !cfg.Enabled {
		return l, nil
	}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Logger) open() error {
	dir := filepath.Dir(l.config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create trace directory %s: %w", dir, err)
	}
	f, err := os.OpenFile(l.config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open trace file %s: %w", l.config.FilePath, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat trace file: %w", err)
	}
	l.file = f
	l.currentSize = stat.Size()
	return nil
}

// Reconfigure swaps in a new configuration, reopening the file. It is used
// on SIGHUP.
func (l *Logger) Reconfigure(cfg Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	l.config = cfg
	if !cfg.Enabled {
		return nil
	}
	return l.open()
}

// Inbound records a command read from the client.
func (l *Logger) Inbound(line string) { l.Log(Inbound, line) }

// Outbound records a reply or event written to the client.
func (l *Logger) Outbound(line string) { l.Log(Outbound, line) }

// Log records one protocol line.
func (l *Logger) Log(dir Direction, line string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.config.Enabled || l.file == nil || lineLevel(dir, line) < l.config.Level {
		return
	}

	maxBytes := int64(l.config.MaxSizeMB) * 1024 * 1024
	if maxBytes > 0 && l.currentSize >= maxBytes {
		if err := l.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "trace rotation failed: %v\n", err)
		}
		if l.file == nil {
			return
		}
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	sb.WriteByte(' ')
	sb.WriteString(string(dir))
	sb.WriteByte(' ')
	sb.WriteString(Truncate(line, l.config.PreviewLength))
	sb.WriteByte('\n')

	n, err := l.file.WriteString(sb.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write trace entry: %v\n", err)
		return
	}
	l.currentSize += int64(n)
}

// Close closes the trace file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// rotate shifts protocol.log to protocol.log.1, .1 to .2 and so on,
// keeping MaxFiles rotated files.
func (l *Logger) rotate() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	basePath := l.config.FilePath
	for i := l.config.MaxFiles; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", basePath, i)
		if i == l.config.MaxFiles {
			os.Remove(oldPath)
			continue
		}
		os.Rename(oldPath, fmt.Sprintf("%s.%d", basePath, i+1))
	}
	if l.config.MaxFiles > 0 {
		if err := os.Rename(basePath, basePath+".1"); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to rotate trace file: %w", err)
		}
	} else {
		os.Remove(basePath)
	}

	f, err := os.OpenFile(basePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open new trace file: %w", err)
	}
	l.file = f
	l.currentSize = 0
	return nil
}

// ParseLevel converts a string to a Level. Unknown names mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Truncate returns a preview of a string, truncating if necessary.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

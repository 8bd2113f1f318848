package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/splbe/internal/runtimepath"
	"github.com/1broseidon/splbe/internal/trace"
)

// Transports.
const (
	TransportStdio = "stdio"
	TransportUnix  = "unix"
)

// Event delivery modes.
const (
	EventsPush = "push"
	EventsPoll = "poll"
)

// ProtocolConfig controls how the interpreter reacts to bad input.
type ProtocolConfig struct {
	// StrictErrors reports failures of fire-and-forget commands as error: lines.
	StrictErrors bool `yaml:"strict_errors"`
	// DuplicateIDs is "detach" or "reject".
	DuplicateIDs string `yaml:"duplicate_ids"`
}

type SoundConfig struct {
	// Player is the audio command line; empty picks the first one installed.
	Player string `yaml:"player"`
}

type UIConfig struct {
	LockOSThread      bool `yaml:"lock_os_thread"`
	RepaintIntervalMS int  `yaml:"repaint_interval_ms"`
}

// LoggingConfig is the process log. Stdout is never used.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// TraceConfig is the protocol trace log.
type TraceConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Level     string `yaml:"level"`
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

// Config is the effective configuration.
type Config struct {
	Transport  string         `yaml:"transport"`
	SocketPath string         `yaml:"socket_path"`
	Platform   string         `yaml:"platform"`
	Display    string         `yaml:"display"`
	Console    string         `yaml:"console"`
	Dialog     string         `yaml:"dialog"`
	Events     string         `yaml:"events"`
	ImagePaths []string       `yaml:"image_paths"`
	Font       string         `yaml:"font"`
	Protocol   ProtocolConfig `yaml:"protocol"`
	Sound      SoundConfig    `yaml:"sound"`
	UI         UIConfig       `yaml:"ui"`
	Logging    LoggingConfig  `yaml:"logging"`
	Trace      TraceConfig    `yaml:"trace"`
}

func DefaultConfig() *Config {
	return &Config{
		Transport:  TransportStdio,
		Platform:   "auto",
		Console:    "stream",
		Dialog:     "native",
		Events:     EventsPush,
		ImagePaths: []string{".", "images"},
		Font:       "SansSerif-12",
		Protocol: ProtocolConfig{
			DuplicateIDs: "detach",
		},
		UI: UIConfig{
			LockOSThread:      true,
			RepaintIntervalMS: 16,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Trace: TraceConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
	}
}

// GetSocketPath returns socket_path or the runtime default.
func (c *Config) GetSocketPath() (string, error) {
	if c != nil && c.SocketPath != "" {
		return expandHome(c.SocketPath)
	}
	return runtimepath.SocketPath()
}

func (c *Config) RepaintInterval() time.Duration {
	return time.Duration(c.UI.RepaintIntervalMS) * time.Millisecond
}

func (c *Config) PollEvents() bool { return c.Events == EventsPoll }

// LogLevel maps logging.level onto slog.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
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

// GetTraceConfig fills the trace defaults the runtime decides.
func (c *Config) GetTraceConfig() (trace.Config, error) {
	out := trace.Config{
		Enabled:   c.Trace.Enabled,
		Level:     trace.ParseLevel(c.Trace.Level),
		FilePath:  c.Trace.File,
		MaxSizeMB: c.Trace.MaxSizeMB,
		MaxFiles:  c.Trace.MaxFiles,
	}
	if out.FilePath == "" {
		path, err := runtimepath.TracePath()
		if err != nil {
			return trace.Config{}, err
		}
		out.FilePath = path
	} else {
		path, err := expandHome(out.FilePath)
		if err != nil {
			return trace.Config{}, err
		}
		out.FilePath = path
	}
	if out.MaxSizeMB == 0 {
		out.MaxSizeMB = 10
	}
	if out.MaxFiles == 0 {
		out.MaxFiles = 3
	}
	return out, nil
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func (c *Config) Validate() error {
	oneOf := func(path, value string, allowed ...string) error {
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return &ValidationError{
			Path: path,
			Err:  fmt.Errorf("must be one of %s, got %q", strings.Join(allowed, ", "), value),
		}
	}
	checks := []error{
		oneOf("transport", c.Transport, TransportStdio, TransportUnix),
		oneOf("platform", c.Platform, "auto", "x11", "headless"),
		oneOf("console", c.Console, "stream", "tui", "none"),
		oneOf("dialog", c.Dialog, "native", "terminal", "none"),
		oneOf("events", c.Events, EventsPush, EventsPoll),
		oneOf("protocol.duplicate_ids", c.Protocol.DuplicateIDs, "detach", "reject"),
		oneOf("logging.level", strings.ToLower(c.Logging.Level), "debug", "info", "warn", "warning", "error"),
		oneOf("trace.level", strings.ToLower(c.Trace.Level), "debug", "info", "warn", "warning", "error"),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.Font) == "" {
		return &ValidationError{Path: "font", Err: fmt.Errorf("must not be empty")}
	}
	if c.UI.RepaintIntervalMS < 1 || c.UI.RepaintIntervalMS > 1000 {
		return &ValidationError{Path: "ui.repaint_interval_ms", Err: fmt.Errorf("must be between 1 and 1000, got %d", c.UI.RepaintIntervalMS)}
	}
	if c.Trace.MaxSizeMB < 0 {
		return &ValidationError{Path: "trace.max_size_mb", Err: fmt.Errorf("must be >= 0")}
	}
	if c.Trace.MaxFiles < 0 {
		return &ValidationError{Path: "trace.max_files", Err: fmt.Errorf("must be >= 0")}
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.RepaintInterval() != 16*time.Millisecond {
		t.Fatalf("expected 16ms repaint interval, got %v", cfg.RepaintInterval())
	}
	if cfg.PollEvents() {
		t.Fatalf("expected push events by default")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Transport != TransportStdio {
		t.Fatalf("expected stdio transport, got %q", res.Config.Transport)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Font != "SansSerif-12" {
		t.Fatalf("expected default font, got %q", res.Config.Font)
	}
}

func TestLoadFromPath_NestedOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"events: poll",
		"image_paths: [assets]",
		"protocol:",
		"  strict_errors: true",
		"ui:",
		"  repaint_interval_ms: 40",
		"trace:",
		"  enabled: true",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if !cfg.PollEvents() {
		t.Fatalf("expected poll events")
	}
	if len(cfg.ImagePaths) != 1 || cfg.ImagePaths[0] != "assets" {
		t.Fatalf("expected image_paths [assets], got %v", cfg.ImagePaths)
	}
	if !cfg.Protocol.StrictErrors {
		t.Fatalf("expected strict errors")
	}
	if cfg.Protocol.DuplicateIDs != "detach" {
		t.Fatalf("expected untouched duplicate_ids, got %q", cfg.Protocol.DuplicateIDs)
	}
	if !cfg.UI.LockOSThread {
		t.Fatalf("expected lock_os_thread to keep its default")
	}
	if cfg.RepaintInterval() != 40*time.Millisecond {
		t.Fatalf("expected 40ms, got %v", cfg.RepaintInterval())
	}
	if !cfg.Trace.Enabled || cfg.Trace.MaxFiles != 3 {
		t.Fatalf("expected trace enabled with default rotation, got %+v", cfg.Trace)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.d", "10-base.yaml"), "font: Serif-10\nconsole: tui\n")
	writeFile(t, filepath.Join(dir, "config.d", "20-override.yaml"), "font: Monospaced-11\n")
	writeFile(t, filepath.Join(dir, "config.d", "notes.txt"), "ignored\n")

	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include:\n  - config.d\nconsole: none\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Font != "Monospaced-11" {
		t.Fatalf("expected later include to win, got %q", res.Config.Font)
	}
	if res.Config.Console != "none" {
		t.Fatalf("expected main file to override includes, got %q", res.Config.Console)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 loaded files, got %v", res.Files)
	}
	if filepath.Base(res.Files[2]) != "config.yaml" {
		t.Fatalf("expected main file last, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("expected file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "transport: stdio\nevents: sometimes\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "events" {
		t.Fatalf("expected path events, got %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("expected line 2, got %d", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), "sometimes") {
		t.Fatalf("expected offending value in message, got %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
		path string
	}{
		{"transport", func(c *Config) { c.Transport = "tcp" }, "transport"},
		{"platform", func(c *Config) { c.Platform = "wayland" }, "platform"},
		{"duplicates", func(c *Config) { c.Protocol.DuplicateIDs = "replace" }, "protocol.duplicate_ids"},
		{"repaint", func(c *Config) { c.UI.RepaintIntervalMS = 0 }, "ui.repaint_interval_ms"},
		{"font", func(c *Config) { c.Font = " " }, "font"},
		{"trace files", func(c *Config) { c.Trace.MaxFiles = -1 }, "trace.max_files"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestExplain_SourceAndDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "trace:\n  max_files: 7\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	value, src, err := Explain(res, "trace.max_files")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != 7 {
		t.Fatalf("expected 7, got %v", value)
	}
	if src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("expected file source at line 2, got %+v", src)
	}

	value, src, err = Explain(res, "events")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != EventsPush || src.Kind != SourceDefault {
		t.Fatalf("expected default push, got %v from %v", value, src)
	}

	if _, _, err := Explain(res, "layouts.grid"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestGetTraceConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	cfg := DefaultConfig()
	tc, err := cfg.GetTraceConfig()
	if err != nil {
		t.Fatalf("trace config: %v", err)
	}
	if !strings.HasPrefix(tc.FilePath, dir) {
		t.Fatalf("expected trace file under %s, got %s", dir, tc.FilePath)
	}
	if tc.MaxSizeMB != 10 || tc.MaxFiles != 3 {
		t.Fatalf("expected 10MB x3, got %dMB x%d", tc.MaxSizeMB, tc.MaxFiles)
	}
}

func TestDefaultConfigPath_Env(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.yaml")
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "/tmp/custom.yaml" {
		t.Fatalf("expected env override, got %s", path)
	}
}

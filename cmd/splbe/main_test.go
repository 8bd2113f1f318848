package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/splbe/internal/config"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestRun_HelpAndUnknown(t *testing.T) {
	code, out, _ := runCLI(t, "help")
	if code != 0 || !strings.Contains(out, "Usage: splbe") {
		t.Fatalf("expected usage with code 0, got %d %q", code, out)
	}

	code, _, errOut := runCLI(t, "paint")
	if code != 2 || !strings.Contains(errOut, "Unknown command: paint") {
		t.Fatalf("expected code 2 with unknown command, got %d %q", code, errOut)
	}
}

func TestRun_FlagErrors(t *testing.T) {
	tests := []struct {
		args []string
		want int
	}{
		{[]string{"serve", "-h"}, 0},
		{[]string{"serve", "--bogus"}, 2},
		{[]string{"listen", "extra"}, 2},
		{[]string{"send", "-h"}, 0},
		{[]string{"config"}, 2},
		{[]string{"config", "validate", "--nope"}, 2},
		{[]string{"config", "explain"}, 2},
		{[]string{"mcp"}, 2},
		{[]string{"mcp", "serve", "-h"}, 0},
		{[]string{"mcp", "stop"}, 2},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			code, _, _ := runCLI(t, tt.args...)
			if code != tt.want {
				t.Fatalf("expected exit code %d, got %d", tt.want, code)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	good := writeConfig(t, "events: poll\n")
	code, out, errOut := runCLI(t, "config", "validate", "--path", good)
	if code != 0 || strings.TrimSpace(out) != "config: ok" {
		t.Fatalf("expected config: ok, got %d %q %q", code, out, errOut)
	}

	bad := writeConfig(t, "console: gui\n")
	code, _, errOut = runCLI(t, "config", "validate", "--path", bad)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(errOut, "console") || !strings.Contains(errOut, ":1:") {
		t.Fatalf("expected located console error, got %q", errOut)
	}
}

func TestConfigPrint(t *testing.T) {
	path := writeConfig(t, "font: Monospaced-14\n")
	code, out, _ := runCLI(t, "config", "print", "--path", path)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out, "# loaded: ") || !strings.Contains(out, "font: Monospaced-14") {
		t.Fatalf("expected loaded file and font, got %q", out)
	}

	code, out, _ = runCLI(t, "config", "print", "--defaults")
	if code != 0 || !strings.Contains(out, "font: SansSerif-12") || strings.Contains(out, "# loaded") {
		t.Fatalf("expected defaults only, got %d %q", code, out)
	}
}

func TestConfigExplain(t *testing.T) {
	path := writeConfig(t, "protocol:\n  duplicate_ids: reject\n")
	code, out, errOut := runCLI(t, "config", "explain", "--path", path, "protocol.duplicate_ids")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, errOut)
	}
	if !strings.Contains(out, "value:\nreject") {
		t.Fatalf("expected value reject, got %q", out)
	}
	if !strings.Contains(out, ":2:") {
		t.Fatalf("expected file source line 2, got %q", out)
	}

	code, out, _ = runCLI(t, "config", "explain", "--path", path, "events")
	if code != 0 || !strings.Contains(out, "source: default") {
		t.Fatalf("expected default source, got %d %q", code, out)
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestSend_NoListener(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "none.sock")
	code, _, errOut := runCLI(t, "send", "--socket", socket, "--timeout", "100ms", "GWindow.getScreenWidth()")
	if code != 1 || !strings.Contains(errOut, "failed to connect") {
		t.Fatalf("expected connect failure, got %d %q", code, errOut)
	}
}

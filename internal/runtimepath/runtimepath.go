package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const app = "splbe"

// Dir is where the listening socket lives: $XDG_RUNTIME_DIR, then
// /run/user/<uid>, then a private directory under /tmp that is created on
// first use.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	uid := strconv.Itoa(os.Getuid())
	if info, err := os.Stat(filepath.Join("/run/user", uid)); err == nil && info.IsDir() {
		return filepath.Join("/run/user", uid), nil
	}

	fallback := filepath.Join(os.TempDir(), app+"-runtime-"+uid)
	if err := os.MkdirAll(fallback, 0o700); err != nil {
		return "", fmt.Errorf("create runtime dir: %w", err)
	}
	return fallback, nil
}

// SocketPath is the default socket of `splbe listen`.
func SocketPath() (string, error) {
	return within(Dir, app+".sock")
}

// DataDir returns $XDG_DATA_HOME/splbe, defaulting to ~/.local/share/splbe.
func DataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, app), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", app), nil
}

// TracePath is the default protocol trace file.
func TracePath() (string, error) {
	return within(DataDir, "protocol.log")
}

func within(dir func() (string, error), name string) (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, name), nil
}

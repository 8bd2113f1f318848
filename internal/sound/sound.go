// Package sound loads sound clips and plays them through an external
// player program.
package sound

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNoPlayer is returned by Play when no player program is available.
var ErrNoPlayer = errors.New("no sound player available")

// DefaultPlayers are tried in order when no player is configured.
var DefaultPlayers = []string{"paplay", "aplay", "afplay"}

// Player plays a sound file.
type Player interface {
	Play(path string) error
}

// Sound is a loaded clip.
type Sound struct {
	ID   string
	Path string
}

// Load resolves name against the search directories and returns a Sound for
// it. The file must exist; its contents are read by the player.
func Load(id, name string, paths []string) (*Sound, error) {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		for _, dir := range paths {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	for _, p := range candidates {
		st, err := os.Stat(p)
		if err == nil && !st.IsDir() {
			return &Sound{ID: id, Path: p}, nil
		}
	}
	return nil, fmt.Errorf("sound file %q not found", name)
}

// ExecPlayer runs a player program once per clip. Playback is
// asynchronous; a clip that fails to play is logged.
type ExecPlayer struct {
	command []string
	logger  *slog.Logger

	wg sync.WaitGroup
}

// NewExecPlayer returns a player running command, which may carry
// arguments ("paplay --volume 40000"). An empty command picks the first of
// DefaultPlayers found on PATH.
func NewExecPlayer(command string, logger *slog.Logger) (*ExecPlayer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		for _, name := range DefaultPlayers {
			if _, err := exec.LookPath(name); err == nil {
				fields = []string{name}
				break
			}
		}
	}
	if len(fields) == 0 {
		return nil, ErrNoPlayer
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, fmt.Errorf("sound player %q: %w", fields[0], err)
	}
	return &ExecPlayer{command: fields, logger: logger}, nil
}

// Command returns the player program and its arguments.
func (p *ExecPlayer) Command() []string { return append([]string(nil), p.command...) }

// Play starts playing path and returns once the player has started.
func (p *ExecPlayer) Play(path string) error {
	args := append(append([]string(nil), p.command[1:]...), path)
	cmd := exec.Command(p.command[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.command[0], err)
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := cmd.Wait(); err != nil {
			p.logger.Warn("sound playback failed", "player", p.command[0], "file", path, "error", err)
		}
	}()
	return nil
}

// Wait blocks until every started clip has finished.
func (p *ExecPlayer) Wait() { p.wg.Wait() }

// Silent is a Player that discards every clip. It stands in when no player
// program exists so that Sound.play still succeeds.
type Silent struct {
	Logger *slog.Logger
}

// Play logs the clip at debug level.
func (s Silent) Play(path string) error {
	if s.Logger != nil {
		s.Logger.Debug("sound discarded", "file", path)
	}
	return nil
}

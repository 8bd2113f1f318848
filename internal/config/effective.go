package config

import (
	"fmt"
	"strings"
)

// ValidationError names the offending key and, once the loader attaches it,
// the file position that set it.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies a merged raw config over the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&cfg.Transport, raw.Transport)
	set(&cfg.SocketPath, raw.SocketPath)
	set(&cfg.Platform, raw.Platform)
	set(&cfg.Display, raw.Display)
	set(&cfg.Console, raw.Console)
	set(&cfg.Dialog, raw.Dialog)
	set(&cfg.Events, raw.Events)
	set(&cfg.Font, raw.Font)
	if raw.ImagePaths != nil {
		cfg.ImagePaths = nil
		for i, p := range *raw.ImagePaths {
			if strings.TrimSpace(p) == "" {
				return nil, &ValidationError{
					Path: "image_paths",
					Err:  fmt.Errorf("entry %d is empty", i),
				}
			}
			cfg.ImagePaths = append(cfg.ImagePaths, p)
		}
	}

	if p := raw.Protocol; p != nil {
		if p.StrictErrors != nil {
			cfg.Protocol.StrictErrors = *p.StrictErrors
		}
		set(&cfg.Protocol.DuplicateIDs, p.DuplicateIDs)
	}
	if s := raw.Sound; s != nil {
		set(&cfg.Sound.Player, s.Player)
	}
	if u := raw.UI; u != nil {
		if u.LockOSThread != nil {
			cfg.UI.LockOSThread = *u.LockOSThread
		}
		if u.RepaintIntervalMS != nil {
			cfg.UI.RepaintIntervalMS = *u.RepaintIntervalMS
		}
	}
	if l := raw.Logging; l != nil {
		set(&cfg.Logging.Level, l.Level)
		set(&cfg.Logging.File, l.File)
	}
	if t := raw.Trace; t != nil {
		if t.Enabled != nil {
			cfg.Trace.Enabled = *t.Enabled
		}
		set(&cfg.Trace.Level, t.Level)
		set(&cfg.Trace.File, t.File)
		if t.MaxSizeMB != nil {
			cfg.Trace.MaxSizeMB = *t.MaxSizeMB
		}
		if t.MaxFiles != nil {
			cfg.Trace.MaxFiles = *t.MaxFiles
		}
	}
	return cfg, nil
}

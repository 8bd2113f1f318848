package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawProtocol struct {
	StrictErrors *bool   `yaml:"strict_errors"`
	DuplicateIDs *string `yaml:"duplicate_ids"`
}

type RawSound struct {
	Player *string `yaml:"player"`
}

type RawUI struct {
	LockOSThread      *bool `yaml:"lock_os_thread"`
	RepaintIntervalMS *int  `yaml:"repaint_interval_ms"`
}

type RawLogging struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

type RawTrace struct {
	Enabled   *bool   `yaml:"enabled"`
	Level     *string `yaml:"level"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

// RawConfig is one YAML file as written. Nil fields were not set and leave
// the value from earlier files (or the defaults) alone.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	Transport  *string   `yaml:"transport"`
	SocketPath *string   `yaml:"socket_path"`
	Platform   *string   `yaml:"platform"`
	Display    *string   `yaml:"display"`
	Console    *string   `yaml:"console"`
	Dialog     *string   `yaml:"dialog"`
	Events     *string   `yaml:"events"`
	ImagePaths *[]string `yaml:"image_paths"`
	Font       *string   `yaml:"font"`

	Protocol *RawProtocol `yaml:"protocol"`
	Sound    *RawSound    `yaml:"sound"`
	UI       *RawUI       `yaml:"ui"`
	Logging  *RawLogging  `yaml:"logging"`
	Trace    *RawTrace    `yaml:"trace"`
}

func pick[T any](base, overlay *T) *T {
	if overlay != nil {
		return overlay
	}
	return base
}

func (r RawConfig) merge(overlay RawConfig) RawConfig {
	out := r
	out.Include = nil
	out.Transport = pick(r.Transport, overlay.Transport)
	out.SocketPath = pick(r.SocketPath, overlay.SocketPath)
	out.Platform = pick(r.Platform, overlay.Platform)
	out.Display = pick(r.Display, overlay.Display)
	out.Console = pick(r.Console, overlay.Console)
	out.Dialog = pick(r.Dialog, overlay.Dialog)
	out.Events = pick(r.Events, overlay.Events)
	out.ImagePaths = pick(r.ImagePaths, overlay.ImagePaths)
	out.Font = pick(r.Font, overlay.Font)

	if overlay.Protocol != nil {
		p := RawProtocol{}
		if r.Protocol != nil {
			p = *r.Protocol
		}
		p.StrictErrors = pick(p.StrictErrors, overlay.Protocol.StrictErrors)
		p.DuplicateIDs = pick(p.DuplicateIDs, overlay.Protocol.DuplicateIDs)
		out.Protocol = &p
	}
	if overlay.Sound != nil {
		s := RawSound{}
		if r.Sound != nil {
			s = *r.Sound
		}
		s.Player = pick(s.Player, overlay.Sound.Player)
		out.Sound = &s
	}
	if overlay.UI != nil {
		u := RawUI{}
		if r.UI != nil {
			u = *r.UI
		}
		u.LockOSThread = pick(u.LockOSThread, overlay.UI.LockOSThread)
		u.RepaintIntervalMS = pick(u.RepaintIntervalMS, overlay.UI.RepaintIntervalMS)
		out.UI = &u
	}
	if overlay.Logging != nil {
		l := RawLogging{}
		if r.Logging != nil {
			l = *r.Logging
		}
		l.Level = pick(l.Level, overlay.Logging.Level)
		l.File = pick(l.File, overlay.Logging.File)
		out.Logging = &l
	}
	if overlay.Trace != nil {
		t := RawTrace{}
		if r.Trace != nil {
			t = *r.Trace
		}
		t.Enabled = pick(t.Enabled, overlay.Trace.Enabled)
		t.Level = pick(t.Level, overlay.Trace.Level)
		t.File = pick(t.File, overlay.Trace.File)
		t.MaxSizeMB = pick(t.MaxSizeMB, overlay.Trace.MaxSizeMB)
		t.MaxFiles = pick(t.MaxFiles, overlay.Trace.MaxFiles)
		out.Trace = &t
	}
	return out
}

package config

import (
	"fmt"
	"sort"
	"strings"
)

var lookups = map[string]func(*Config) any{
	"transport":              func(c *Config) any { return c.Transport },
	"socket_path":            func(c *Config) any { return c.SocketPath },
	"platform":               func(c *Config) any { return c.Platform },
	"display":                func(c *Config) any { return c.Display },
	"console":                func(c *Config) any { return c.Console },
	"dialog":                 func(c *Config) any { return c.Dialog },
	"events":                 func(c *Config) any { return c.Events },
	"image_paths":            func(c *Config) any { return c.ImagePaths },
	"font":                   func(c *Config) any { return c.Font },
	"protocol.strict_errors": func(c *Config) any { return c.Protocol.StrictErrors },
	"protocol.duplicate_ids": func(c *Config) any { return c.Protocol.DuplicateIDs },
	"sound.player":           func(c *Config) any { return c.Sound.Player },
	"ui.lock_os_thread":      func(c *Config) any { return c.UI.LockOSThread },
	"ui.repaint_interval_ms": func(c *Config) any { return c.UI.RepaintIntervalMS },
	"logging.level":          func(c *Config) any { return c.Logging.Level },
	"logging.file":           func(c *Config) any { return c.Logging.File },
	"trace.enabled":          func(c *Config) any { return c.Trace.Enabled },
	"trace.level":            func(c *Config) any { return c.Trace.Level },
	"trace.file":             func(c *Config) any { return c.Trace.File },
	"trace.max_size_mb":      func(c *Config) any { return c.Trace.MaxSizeMB },
	"trace.max_files":        func(c *Config) any { return c.Trace.MaxFiles },
}

// Paths lists every key Explain accepts.
func Paths() []string {
	out := make([]string, 0, len(lookups))
	for p := range lookups {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Explain returns the effective value at a dotted YAML path and where it came
// from.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}
	get, ok := lookups[path]
	if !ok {
		return nil, Source{}, fmt.Errorf("unknown config path %q", path)
	}
	if src, ok := res.Sources[path]; ok {
		return get(res.Config), src, nil
	}
	return get(res.Config), Source{Kind: SourceDefault}, nil
}

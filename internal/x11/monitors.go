package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
)

// Monitor is one active RandR output.
type Monitor struct {
	ID      int
	Name    string
	Primary bool
	X       int
	Y       int
	Width   int
	Height  int
}

// GetMonitors lists the connected, enabled outputs. The primary output comes
// first and has ID 0. A server without RandR reports the root screen.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	xc := c.XUtil.Conn()
	if err := randr.Init(xc); err != nil {
		return []Monitor{c.screenMonitor()}, nil
	}

	res, err := randr.GetScreenResourcesCurrent(xc, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}
	var primary randr.Output
	if p, err := randr.GetOutputPrimary(xc, c.Root).Reply(); err == nil {
		primary = p.Output
	}

	var monitors []Monitor
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(xc, output, res.ConfigTimestamp).Reply()
		if err != nil || info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(xc, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil || crtc.Width == 0 || crtc.Height == 0 {
			continue
		}
		m := Monitor{
			Name:    string(info.Name),
			Primary: output == primary,
			X:       int(crtc.X),
			Y:       int(crtc.Y),
			Width:   int(crtc.Width),
			Height:  int(crtc.Height),
		}
		if m.Primary {
			monitors = append([]Monitor{m}, monitors...)
		} else {
			monitors = append(monitors, m)
		}
	}

	if len(monitors) == 0 {
		return []Monitor{c.screenMonitor()}, nil
	}
	for i := range monitors {
		monitors[i].ID = i
	}
	return monitors, nil
}

func (c *Connection) screenMonitor() Monitor {
	s := c.XUtil.Screen()
	return Monitor{
		Name:    "screen",
		Primary: true,
		Width:   int(s.WidthInPixels),
		Height:  int(s.HeightInPixels),
	}
}

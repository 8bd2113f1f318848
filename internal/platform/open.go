package platform

import (
	"fmt"
	"log/slog"
	"os"
)

// Backend kinds accepted by Open.
const (
	KindAuto     = "auto"
	KindX11      = "x11"
	KindHeadless = "headless"
)

// Open returns the backend named by kind. "auto" uses X11 when a display is
// reachable and falls back to headless otherwise.
func Open(kind, display string, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch kind {
	case "", KindAuto:
		if display == "" && os.Getenv("DISPLAY") == "" {
			logger.Info("no display, using headless platform")
			return NewHeadless(0, 0), nil
		}
		b, err := openX11(display, logger)
		if err != nil {
			logger.Warn("x11 unavailable, using headless platform", "error", err)
			return NewHeadless(0, 0), nil
		}
		return b, nil
	case KindX11:
		return openX11(display, logger)
	case KindHeadless:
		return NewHeadless(0, 0), nil
	}
	return nil, fmt.Errorf("unknown platform %q", kind)
}

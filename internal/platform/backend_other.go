//go:build !linux

package platform

import (
	"errors"
	"log/slog"
)

func openX11(string, *slog.Logger) (Backend, error) {
	return nil, errors.New("x11 platform is only available on linux")
}

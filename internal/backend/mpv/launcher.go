package mpv

import (
	"errors"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// ErrNoPlayer is returned when no way of running mpv was found
var ErrNoPlayer = errors.New("mpv not found")

// launcher is one way of running mpv
type launcher struct {
	Name   string
	Binary string
	Args   []string // placed before the mpv options
}

// Ordered list of launchers to try (highest priority first)
var launchers = []launcher{
	{Name: "native", Binary: "mpv"},
	{Name: "flatpak", Binary: "flatpak", Args: []string{"run", "--filesystem=/tmp", "io.mpv.Mpv"}},
}

// lookPath and flatpakInstalled are replaced in tests
var (
	lookPath         = exec.LookPath
	flatpakInstalled = func(app string) bool {
		return exec.Command("flatpak", "info", app).Run() == nil
	}
)

// detectLauncher picks how to run mpv. An explicitly configured binary is
// used as is; the default "mpv" falls back to the flatpak build.
func detectLauncher(binary string, logger *zap.Logger) (launcher, error) {
	if binary != launchers[0].Binary {
		path, err := lookPath(binary)
		if err != nil {
			return launcher{}, fmt.Errorf("%w: %s: %v", ErrNoPlayer, binary, err)
		}
		return launcher{Name: "configured", Binary: path}, nil
	}

	for _, l := range launchers {
		path, err := lookPath(l.Binary)
		if err != nil {
			continue
		}
		if l.Name == "flatpak" && !flatpakInstalled(l.Args[len(l.Args)-1]) {
			continue
		}
		logger.Info("mpv launcher detected", zap.String("name", l.Name), zap.String("binary", path))
		l.Binary = path
		return l, nil
	}
	return launcher{}, ErrNoPlayer
}

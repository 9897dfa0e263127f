// Package detector handles frontend detection.
package detector

import (
	"fmt"
	"os"
	"runtime"

	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// Environment describes the capabilities of the host that the
// frontend selection depends on.
type Environment struct {
	DisplayAvailable bool // a graphical display server is reachable
	Interactive      bool // standard input is a terminal
}

// Detector handles frontend detection from options and the environment.
type Detector struct {
	logger *log.Logger
	env    Environment
}

// New creates a new frontend detector for the current process environment.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
		env:    currentEnvironment(),
	}
}

// Detect determines the frontend to use. An explicitly specified frontend
// is always used, otherwise runs limited to a number of frames are headless
// and interactive runs prefer a window over the terminal.
func (d *Detector) Detect(opts options.Program) (frontend.Kind, error) {
	if opts.Frontend != "" {
		kind, ok := frontend.KindFromString(opts.Frontend)
		if !ok {
			return "", fmt.Errorf("unsupported frontend '%s'", opts.Frontend)
		}
		return kind, nil
	}

	kind := d.detectFromEnvironment(opts)
	d.logger.Debug("Auto-detected frontend",
		log.Stringer("frontend", kind),
		log.String("file", opts.Input))
	return kind, nil
}

func (d *Detector) detectFromEnvironment(opts options.Program) frontend.Kind {
	switch {
	case opts.Frames > 0:
		return frontend.Headless
	case d.env.DisplayAvailable:
		return frontend.SDL
	case d.env.Interactive:
		return frontend.Terminal
	default:
		return frontend.Headless
	}
}

func currentEnvironment() Environment {
	env := Environment{
		DisplayAvailable: os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != "",
	}
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		env.DisplayAvailable = true
	}

	if info, err := os.Stdin.Stat(); err == nil {
		env.Interactive = info.Mode()&os.ModeCharDevice != 0
	}
	return env
}

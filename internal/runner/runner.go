// Package runner implements the host loop that drives a machine at a fixed
// frame rate and connects it to a frontend.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// Runner executes a machine frame by frame.
type Runner struct {
	logger   *log.Logger
	machine  *machine.Machine
	frontend frontend.Frontend
	opts     options.Emulation

	keys    frontend.Keypad // keypad state as reported by the frontend
	applied frontend.Keypad // keypad state as known by the machine
}

// New returns a runner for the given machine and frontend.
func New(logger *log.Logger, m *machine.Machine, fe frontend.Frontend, opts options.Emulation) *Runner {
	return &Runner{
		logger:   logger,
		machine:  m,
		frontend: fe,
		opts:     opts,
	}
}

// Run executes frames until the frontend requests to quit, the configured
// number of frames has been emulated, the context is cancelled or the
// machine faults. Every frame polls the input, executes the configured
// number of instructions, decrements the timers once and presents the
// framebuffer.
func (r *Runner) Run(ctx context.Context) error {
	var pace <-chan time.Time
	if r.opts.FrameRate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(r.opts.FrameRate))
		defer ticker.Stop()
		pace = ticker.C
	}

	for frame := 0; r.opts.Frames == 0 || frame < r.opts.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		quit, err := r.step()
		if err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if quit {
			r.logger.Debug("Quit requested", log.Int("frame", frame))
			return nil
		}

		if pace == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pace:
		}
	}

	r.logger.Debug("Frame limit reached", log.Int("frames", r.opts.Frames))
	return nil
}

// step emulates a single frame.
func (r *Runner) step() (bool, error) {
	quit, err := r.frontend.Poll(&r.keys)
	if err != nil {
		return false, fmt.Errorf("polling input: %w", err)
	}
	if quit {
		return true, nil
	}

	if err := r.applyKeys(); err != nil {
		return false, err
	}

	for range r.opts.InstructionsPerFrame {
		if err := r.machine.Tick(); err != nil {
			return false, err
		}
	}
	r.machine.TickTimers()

	frame := frontend.Frame{
		Pixels: r.machine.Display(),
		Sound:  r.machine.SoundActive(),
	}
	if err := r.frontend.Present(frame); err != nil {
		return false, fmt.Errorf("presenting frame: %w", err)
	}
	return false, nil
}

// applyKeys forwards keypad changes since the last frame to the machine.
func (r *Runner) applyKeys() error {
	for key, pressed := range r.keys {
		if r.applied[key] == pressed {
			continue
		}
		if err := r.machine.KeyPress(uint8(key), pressed); err != nil {
			return fmt.Errorf("applying key state: %w", err)
		}
		r.applied[key] = pressed
	}
	return nil
}

// Package headless implements a frontend without any display or keyboard,
// used for unattended runs and tests.
package headless

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/machine"
)

var _ frontend.Frontend = (*Headless)(nil)

// KeyEvent changes the state of a key before the given frame is emulated.
type KeyEvent struct {
	Frame   int
	Key     uint8
	Pressed bool
}

// Headless records presented frames and replays scripted key events.
type Headless struct {
	output io.Writer
	events []KeyEvent

	polls       int
	presented   int
	soundFrames int
	last        frontend.Frame
}

// New returns a headless frontend. If output is not nil, the last presented
// frame is written to it as text when the frontend is closed.
func New(output io.Writer, events ...KeyEvent) *Headless {
	return &Headless{
		output: output,
		events: events,
	}
}

// Poll applies all key events that are scheduled for the upcoming frame.
func (h *Headless) Poll(keys *frontend.Keypad) (bool, error) {
	for _, event := range h.events {
		if event.Frame != h.polls {
			continue
		}
		if int(event.Key) >= len(keys) {
			return false, fmt.Errorf("%w: $%02X", machine.ErrInvalidKey, event.Key)
		}
		keys[event.Key] = event.Pressed
	}
	h.polls++
	return false, nil
}

// Present records the frame.
func (h *Headless) Present(frame frontend.Frame) error {
	h.last = frame
	h.presented++
	if frame.Sound {
		h.soundFrames++
	}
	return nil
}

// Close writes the last frame to the output.
func (h *Headless) Close() error {
	if h.output == nil {
		return nil
	}
	if _, err := io.WriteString(h.output, Dump(h.last.Pixels)); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// LastFrame returns the most recently presented frame.
func (h *Headless) LastFrame() frontend.Frame {
	return h.last
}

// Frames returns the number of presented frames.
func (h *Headless) Frames() int {
	return h.presented
}

// SoundFrames returns the number of presented frames that had sound enabled.
func (h *Headless) SoundFrames() int {
	return h.soundFrames
}

// Dump returns the framebuffer as text, one line per row, lit pixels
// as '#' and unlit pixels as '.'.
func Dump(pixels [machine.DisplaySize]bool) string {
	var sb strings.Builder
	sb.Grow(machine.DisplaySize + machine.DisplayHeight)

	for y := range machine.DisplayHeight {
		for x := range machine.DisplayWidth {
			if pixels[y*machine.DisplayWidth+x] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

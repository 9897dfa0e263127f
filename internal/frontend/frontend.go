// Package frontend defines the interface between the host loop and the
// presentation layers that display the framebuffer and read the keypad.
package frontend

import "github.com/retroenv/retrochip8/internal/machine"

// Kind identifies a frontend implementation.
type Kind string

// Supported frontends.
const (
	SDL      Kind = "sdl"
	Terminal Kind = "terminal"
	Headless Kind = "headless"
)

// KindFromString returns the frontend kind of the given name.
func KindFromString(name string) (Kind, bool) {
	switch kind := Kind(name); kind {
	case SDL, Terminal, Headless:
		return kind, true
	default:
		return "", false
	}
}

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	return string(k)
}

// Keypad is the pressed state of the 16 hexadecimal keys.
type Keypad [machine.KeyCount]bool

// Frame is the output of a single emulated frame.
type Frame struct {
	Pixels [machine.DisplaySize]bool // row-major framebuffer
	Sound  bool                      // sound timer is active
}

// Frontend presents frames and provides the keypad state.
type Frontend interface {
	// Poll processes pending input events and updates the keypad state.
	// It returns true if the user requested to quit.
	Poll(keys *Keypad) (bool, error)

	// Present displays the frame.
	Present(frame Frame) error

	// Close releases all resources of the frontend.
	Close() error
}

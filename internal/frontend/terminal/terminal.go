// Package terminal implements a frontend that renders the framebuffer with
// unicode block characters and reads keys from a raw mode terminal.
package terminal

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/term"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

var _ frontend.Frontend = (*Terminal)(nil)

// Device is the terminal device that is opened for input and output.
const Device = "/dev/tty"

// holdFrames is the number of frames that a key stays pressed after a
// keystroke was read, terminals do not report key releases.
const holdFrames = 8

const (
	keyEscape = 0x1b
	keyCtrlC  = 0x03
)

// ANSI control sequences.
const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
	clearLine   = "\x1b[K"
)

// Terminal is a frontend for raw mode terminals.
type Terminal struct {
	logger *log.Logger
	tty    *term.Term
	output io.Writer

	mu      sync.Mutex
	pending []byte
	readErr error

	holds    [machine.KeyCount]int
	previous frontend.Frame
	drawn    bool
}

// New opens the terminal device in raw mode and starts reading keys.
func New(logger *log.Logger) (*Terminal, error) {
	tty, err := term.Open(Device, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("opening terminal %s: %w", Device, err)
	}

	t := &Terminal{
		logger: logger,
		tty:    tty,
		output: tty,
	}
	go t.readInput()
	return t, nil
}

// readInput runs until reading from the terminal fails, which happens at
// the latest when the terminal gets closed.
func (t *Terminal) readInput() {
	buf := make([]byte, 32)
	for {
		n, err := t.tty.Read(buf)

		t.mu.Lock()
		t.pending = append(t.pending, buf[:n]...)
		if err != nil {
			t.readErr = err
		}
		t.mu.Unlock()

		if err != nil {
			return
		}
	}
}

// Poll converts all keystrokes read since the last call into keypad state.
func (t *Terminal) Poll(keys *frontend.Keypad) (bool, error) {
	t.mu.Lock()
	input := t.pending
	t.pending = nil
	readErr := t.readErr
	t.mu.Unlock()

	pressed, quit := parseInput(input)
	if quit {
		return true, nil
	}
	if readErr != nil {
		return false, fmt.Errorf("reading terminal input: %w", readErr)
	}

	for _, key := range pressed {
		t.holds[key] = holdFrames
	}
	for key := range t.holds {
		keys[key] = t.holds[key] > 0
		if t.holds[key] > 0 {
			t.holds[key]--
		}
	}
	return false, nil
}

// Present draws the frame if it differs from the previously drawn one.
func (t *Terminal) Present(frame frontend.Frame) error {
	if t.drawn && frame == t.previous {
		return nil
	}

	var buf bytes.Buffer
	if !t.drawn {
		buf.WriteString(clearScreen + hideCursor)
	}
	buf.Write(render(frame))

	if _, err := t.output.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	t.previous = frame
	t.drawn = true
	return nil
}

// Close restores the terminal state.
func (t *Terminal) Close() error {
	_, _ = io.WriteString(t.output, showCursor+"\r\n")

	if err := t.tty.Restore(); err != nil {
		t.logger.Warn("Restoring terminal state failed", log.Err(err))
	}
	if err := t.tty.Close(); err != nil {
		return fmt.Errorf("closing terminal: %w", err)
	}
	return nil
}

// parseInput returns the keypad keys of the input characters and whether
// a quit request was part of the input. Escape sequences like cursor keys
// are skipped, a single escape character requests to quit.
func parseInput(input []byte) ([]uint8, bool) {
	var keys []uint8

	for i := 0; i < len(input); i++ {
		switch c := input[i]; c {
		case keyCtrlC:
			return keys, true

		case keyEscape:
			if i == len(input)-1 {
				return keys, true
			}
			i = skipEscapeSequence(input, i)

		default:
			if key, ok := frontend.KeyForRune(rune(c)); ok {
				keys = append(keys, key)
			}
		}
	}
	return keys, false
}

// skipEscapeSequence returns the index of the last byte of the escape
// sequence that starts at the given index.
func skipEscapeSequence(input []byte, start int) int {
	i := start + 1
	if input[i] != '[' && input[i] != 'O' {
		return i
	}
	for i++; i < len(input); i++ {
		if input[i] >= 0x40 && input[i] <= 0x7e {
			return i
		}
	}
	return len(input) - 1
}

// render converts the frame to terminal output. Two framebuffer rows are
// combined into one line of half block characters.
func render(frame frontend.Frame) []byte {
	var buf bytes.Buffer
	buf.WriteString(cursorHome)

	for y := 0; y < machine.DisplayHeight; y += 2 {
		for x := range machine.DisplayWidth {
			top := frame.Pixels[y*machine.DisplayWidth+x]
			bottom := frame.Pixels[(y+1)*machine.DisplayWidth+x]

			switch {
			case top && bottom:
				buf.WriteString("█")
			case top:
				buf.WriteString("▀")
			case bottom:
				buf.WriteString("▄")
			default:
				buf.WriteByte(' ')
			}
		}
		buf.WriteString("\r\n")
	}

	if frame.Sound {
		buf.WriteString("♪ beep")
	}
	buf.WriteString(clearLine)
	return buf.Bytes()
}

package machine

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CHIP-8 memory layout and hardware dimensions.
//
//	0x000-0x04F: font sprites of the hexadecimal digits
//	0x050-0x1FF: unused interpreter area
//	0x200-0xFFF: program space
const (
	MemorySize    = 4096
	ProgramStart  = 0x200
	RegisterCount = 16
	StackSize     = 16
	KeyCount      = 16

	DisplayWidth  = 64
	DisplayHeight = 32
	DisplaySize   = DisplayWidth * DisplayHeight

	// MaxProgramSize is the largest program that fits into the program space.
	MaxProgramSize = MemorySize - ProgramStart
)

// flagRegister is the index of VF.
const flagRegister = 0xF

// Machine contains the complete state of a CHIP-8 virtual machine.
type Machine struct {
	logger *log.Logger
	opts   options.Machine
	random RandomSource

	memory [MemorySize]byte
	v      [RegisterCount]uint8
	i      uint16
	pc     uint16
	sp     uint8
	stack  [StackSize]uint16

	keys    [KeyCount]bool
	display [DisplaySize]bool

	delayTimer uint8
	soundTimer uint8

	waiting bool // key wait instruction is spinning
}

// New returns a new machine in power-on state with the font loaded.
// If random is nil, a pseudo random source is used.
func New(logger *log.Logger, opts options.Machine, random RandomSource) *Machine {
	if random == nil {
		random = defaultRandom{}
	}

	m := &Machine{
		logger: logger,
		opts:   opts,
		random: random,
	}
	m.Reset()
	return m
}

// Reset restores the power-on state. Memory is cleared and the font is
// reloaded, a previously loaded program has to be loaded again.
func (m *Machine) Reset() {
	m.memory = [MemorySize]byte{}
	copy(m.memory[:], font[:])

	m.v = [RegisterCount]uint8{}
	m.i = 0
	m.pc = ProgramStart
	m.sp = 0
	m.stack = [StackSize]uint16{}
	m.keys = [KeyCount]bool{}
	m.display = [DisplaySize]bool{}
	m.delayTimer = 0
	m.soundTimer = 0
	m.waiting = false
}

// Load copies the program into memory starting at ProgramStart.
func (m *Machine) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: program of %d bytes exceeds the program space of %d bytes",
			ErrOutOfBounds, len(program), MaxProgramSize)
	}

	copy(m.memory[ProgramStart:], program)
	m.logger.Debug("Program loaded",
		log.Hex("address", uint16(ProgramStart)),
		log.Int("size", len(program)))
	return nil
}

// KeyPress sets the pressed state of a keypad key.
func (m *Machine) KeyPress(key uint8, pressed bool) error {
	if key >= KeyCount {
		return fmt.Errorf("%w: $%02X", ErrInvalidKey, key)
	}
	m.keys[key] = pressed
	return nil
}

// TickTimers decrements the delay and sound timers by one, stopping at zero.
func (m *Machine) TickTimers() {
	if m.delayTimer > 0 {
		m.delayTimer--
	}
	if m.soundTimer > 0 {
		m.soundTimer--
	}
}

// PC returns the program counter.
func (m *Machine) PC() uint16 {
	return m.pc
}

// Index returns the index register I.
func (m *Machine) Index() uint16 {
	return m.i
}

// Register returns the value of the register Vx, only the low nibble of x is used.
func (m *Machine) Register(x uint8) uint8 {
	return m.v[x&0xF]
}

// StackDepth returns the number of return addresses on the stack.
func (m *Machine) StackDepth() int {
	return int(m.sp)
}

// DelayTimer returns the delay timer value.
func (m *Machine) DelayTimer() uint8 {
	return m.delayTimer
}

// SoundTimer returns the sound timer value.
func (m *Machine) SoundTimer() uint8 {
	return m.soundTimer
}

// SoundActive returns whether a tone should currently be played.
func (m *Machine) SoundActive() bool {
	return m.soundTimer > 0
}

// Waiting returns whether the machine is spinning on a key wait instruction.
func (m *Machine) Waiting() bool {
	return m.waiting
}

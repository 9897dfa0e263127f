// Package machine implements the CHIP-8 virtual machine.
//
// # Machine State
//
// The machine owns all of its state exclusively:
//   - 4KB of memory, the hexadecimal font is stored at 0x000-0x04F
//   - 16 general-purpose 8-bit registers (V0-VF), VF doubles as flag register
//   - the 16-bit index register I and the program counter, starting at ProgramStart
//   - a 16 entry call stack
//   - a 16 key hexadecimal keypad
//   - a 64x32 monochrome framebuffer
//   - the delay and sound timers
//
// # Execution
//
// Tick executes exactly one instruction: the 2 byte big-endian opcode at the
// program counter is fetched, the program counter is advanced by 2 and the
// decoded instruction is applied. TickTimers decrements both timers and is
// expected to be called once per host frame, independent of the number of
// executed instructions.
//
// The key wait instruction (Fx0A) never blocks. While no key is pressed it
// rewinds the program counter, so that the same instruction is executed again
// on the next Tick. The host has to update the keypad state between ticks
// using KeyPress.
//
// # Errors
//
// Instruction failures are returned as *OpcodeError which wraps one of the
// sentinel errors ErrUnknownOpcode, ErrOutOfBounds, ErrStackOverflow or
// ErrStackUnderflow. A failed instruction leaves the program counter pointing
// at the faulting opcode and does not modify any other state.
//
// # Usage Example
//
//	m := machine.New(logger, options.Machine{}, nil)
//	if err := m.Load(rom); err != nil {
//		return fmt.Errorf("loading program: %w", err)
//	}
//	for {
//		for range instructionsPerFrame {
//			if err := m.Tick(); err != nil {
//				return err
//			}
//		}
//		m.TickTimers()
//		present(m.Display())
//	}
package machine

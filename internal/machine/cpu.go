package machine

import "fmt"

// opcodeSize is the size of CHIP-8 instructions in bytes.
const opcodeSize = 2

// Tick executes a single fetch-decode-execute cycle.
func (m *Machine) Tick() error {
	address := m.pc
	opcode, err := m.fetch()
	if err != nil {
		return err
	}

	if m.opts.Trace {
		m.trace(address, opcode)
	}

	if err := m.execute(opcode); err != nil {
		m.pc = address
		return &OpcodeError{
			Address: address,
			Opcode:  opcode,
			Err:     err,
		}
	}
	return nil
}

// fetch reads the big-endian opcode at the program counter and advances it.
func (m *Machine) fetch() (uint16, error) {
	if err := m.checkRange(m.pc, opcodeSize); err != nil {
		return 0, fmt.Errorf("fetching opcode: %w", err)
	}

	opcode := uint16(m.memory[m.pc])<<8 | uint16(m.memory[m.pc+1])
	m.pc += opcodeSize
	return opcode, nil
}

// checkRange verifies that size bytes starting at address are inside of memory.
func (m *Machine) checkRange(address uint16, size int) error {
	if int(address)+size > MemorySize {
		return fmt.Errorf("%w: %d bytes at address $%04X", ErrOutOfBounds, size, address)
	}
	return nil
}

// extractRegisterX extracts the X register nibble from an opcode.
func extractRegisterX(opcode uint16) uint8 {
	return uint8((opcode & 0x0F00) >> 8)
}

// extractRegisterY extracts the Y register nibble from an opcode.
func extractRegisterY(opcode uint16) uint8 {
	return uint8((opcode & 0x00F0) >> 4)
}

// extractAddress extracts the 12-bit address nnn from an opcode.
func extractAddress(opcode uint16) uint16 {
	return opcode & 0x0FFF
}

// extractByte extracts the 8-bit immediate kk from an opcode.
func extractByte(opcode uint16) uint8 {
	return uint8(opcode & 0x00FF)
}

// extractNibble extracts the lowest nibble n from an opcode.
func extractNibble(opcode uint16) uint8 {
	return uint8(opcode & 0x000F)
}

// execute dispatches the opcode to its instruction handler.
func (m *Machine) execute(opcode uint16) error {
	x := extractRegisterX(opcode)
	y := extractRegisterY(opcode)
	kk := extractByte(opcode)
	nnn := extractAddress(opcode)

	switch opcode >> 12 {
	case 0x0:
		return m.executeSystem(opcode)
	case 0x1:
		m.pc = nnn
	case 0x2:
		return m.call(nnn)
	case 0x3:
		m.skipIf(m.v[x] == kk)
	case 0x4:
		m.skipIf(m.v[x] != kk)
	case 0x5:
		if extractNibble(opcode) != 0 {
			return ErrUnknownOpcode
		}
		m.skipIf(m.v[x] == m.v[y])
	case 0x6:
		m.v[x] = kk
	case 0x7:
		m.v[x] += kk
	case 0x8:
		return m.executeALU(opcode, x, y)
	case 0x9:
		if extractNibble(opcode) != 0 {
			return ErrUnknownOpcode
		}
		m.skipIf(m.v[x] != m.v[y])
	case 0xA:
		m.i = nnn
	case 0xB:
		m.pc = nnn + uint16(m.v[0])
	case 0xC:
		m.v[x] = m.random.RandomByte() & kk
	case 0xD:
		return m.drawSprite(x, y, extractNibble(opcode))
	case 0xE:
		return m.executeKeySkip(x, kk)
	case 0xF:
		return m.executeMisc(x, kk)
	}
	return nil
}

// executeSystem handles the 0x0 instruction family.
func (m *Machine) executeSystem(opcode uint16) error {
	switch opcode {
	case 0x0000:
		return nil
	case 0x00E0:
		m.clearDisplay()
		return nil
	case 0x00EE:
		return m.ret()
	default:
		return ErrUnknownOpcode
	}
}

// executeALU handles the 0x8 register arithmetic and logic family.
func (m *Machine) executeALU(opcode uint16, x, y uint8) error {
	switch extractNibble(opcode) {
	case 0x0:
		m.v[x] = m.v[y]
	case 0x1:
		m.logic(x, m.v[x]|m.v[y])
	case 0x2:
		m.logic(x, m.v[x]&m.v[y])
	case 0x3:
		m.logic(x, m.v[x]^m.v[y])
	case 0x4:
		a, b := m.v[x], m.v[y]
		sum := uint16(a) + uint16(b)
		m.setWithFlag(x, uint8(sum), sum > 0xFF)
	case 0x5:
		a, b := m.v[x], m.v[y]
		m.setWithFlag(x, a-b, a >= b)
	case 0x6:
		value := m.shiftSource(x, y)
		m.setWithFlag(x, value>>1, value&0x01 != 0)
	case 0x7:
		a, b := m.v[x], m.v[y]
		m.setWithFlag(x, b-a, b >= a)
	case 0xE:
		value := m.shiftSource(x, y)
		m.setWithFlag(x, value<<1, value&0x80 != 0)
	default:
		return ErrUnknownOpcode
	}
	return nil
}

// executeKeySkip handles the 0xE keypad skip family.
func (m *Machine) executeKeySkip(x, kk uint8) error {
	switch kk {
	case 0x9E:
		m.skipIf(m.keyPressed(m.v[x]))
	case 0xA1:
		m.skipIf(!m.keyPressed(m.v[x]))
	default:
		return ErrUnknownOpcode
	}
	return nil
}

// executeMisc handles the 0xF timer, keypad and memory family.
func (m *Machine) executeMisc(x, kk uint8) error {
	switch kk {
	case 0x07:
		m.v[x] = m.delayTimer
	case 0x0A:
		m.waitForKey(x)
	case 0x15:
		m.delayTimer = m.v[x]
	case 0x18:
		m.soundTimer = m.v[x]
	case 0x1E:
		m.i += uint16(m.v[x])
	case 0x29:
		m.i = uint16(m.v[x]) * fontGlyphSize
	case 0x33:
		return m.storeBCD(x)
	case 0x55:
		return m.storeRegisters(x)
	case 0x65:
		return m.loadRegisters(x)
	default:
		return ErrUnknownOpcode
	}
	return nil
}

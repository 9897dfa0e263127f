package machine

func (m *Machine) skipIf(condition bool) {
	if condition {
		m.pc += opcodeSize
	}
}

func (m *Machine) call(address uint16) error {
	if int(m.sp) >= StackSize {
		return ErrStackOverflow
	}
	m.stack[m.sp] = m.pc
	m.sp++
	m.pc = address
	return nil
}

func (m *Machine) ret() error {
	if m.sp == 0 {
		return ErrStackUnderflow
	}
	m.sp--
	m.pc = m.stack[m.sp]
	return nil
}

// setWithFlag stores the result in Vx before setting VF, so that the flag
// wins if x is VF.
func (m *Machine) setWithFlag(x, result uint8, flag bool) {
	m.v[x] = result
	if flag {
		m.v[flagRegister] = 1
	} else {
		m.v[flagRegister] = 0
	}
}

func (m *Machine) logic(x, result uint8) {
	m.v[x] = result
	if m.opts.Quirks.LogicResetsVF {
		m.v[flagRegister] = 0
	}
}

func (m *Machine) shiftSource(x, y uint8) uint8 {
	if m.opts.Quirks.ShiftUsesVY {
		return m.v[y]
	}
	return m.v[x]
}

// keyPressed returns the state of the key, values above 0xF never match a key.
func (m *Machine) keyPressed(key uint8) bool {
	if key >= KeyCount {
		return false
	}
	return m.keys[key]
}

// waitForKey latches the lowest pressed key into Vx. Without a pressed key
// the program counter is rewound to repeat the instruction on the next tick.
func (m *Machine) waitForKey(x uint8) {
	for key, pressed := range m.keys {
		if pressed {
			m.v[x] = uint8(key)
			m.waiting = false
			return
		}
	}

	m.pc -= opcodeSize
	m.waiting = true
}

func (m *Machine) storeBCD(x uint8) error {
	if err := m.checkRange(m.i, 3); err != nil {
		return err
	}

	value := m.v[x]
	m.memory[m.i] = value / 100
	m.memory[m.i+1] = (value / 10) % 10
	m.memory[m.i+2] = value % 10
	return nil
}

func (m *Machine) storeRegisters(x uint8) error {
	count := int(x) + 1
	if err := m.checkRange(m.i, count); err != nil {
		return err
	}

	copy(m.memory[m.i:], m.v[:count])
	if m.opts.Quirks.MemoryIncrementsI {
		m.i += uint16(count)
	}
	return nil
}

func (m *Machine) loadRegisters(x uint8) error {
	count := int(x) + 1
	if err := m.checkRange(m.i, count); err != nil {
		return err
	}

	copy(m.v[:count], m.memory[m.i:])
	if m.opts.Quirks.MemoryIncrementsI {
		m.i += uint16(count)
	}
	return nil
}

package machine

import (
	"errors"
	"testing"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestArithmeticFlags(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy uint8
		result uint8
		flag   uint8
	}{
		{name: "add without carry", opcode: 0x8014, vx: 5, vy: 3, result: 8, flag: 0},
		{name: "add with carry", opcode: 0x8014, vx: 0xFF, vy: 0x02, result: 0x01, flag: 1},
		{name: "add exact overflow", opcode: 0x8014, vx: 0x80, vy: 0x80, result: 0x00, flag: 1},
		{name: "sub without borrow", opcode: 0x8015, vx: 10, vy: 3, result: 7, flag: 1},
		{name: "sub equal values", opcode: 0x8015, vx: 3, vy: 3, result: 0, flag: 1},
		{name: "sub with borrow", opcode: 0x8015, vx: 3, vy: 10, result: 0xF9, flag: 0},
		{name: "subn without borrow", opcode: 0x8017, vx: 3, vy: 10, result: 7, flag: 1},
		{name: "subn with borrow", opcode: 0x8017, vx: 10, vy: 3, result: 0xF9, flag: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.v[0] = tt.vx
			m.v[1] = tt.vy

			tickN(t, m, 1)

			assert.Equal(t, tt.result, m.v[0])
			assert.Equal(t, tt.vy, m.v[1])
			assert.Equal(t, tt.flag, m.v[flagRegister])
		})
	}
}

func TestArithmeticFlagsAliasing(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		value  uint8
		result uint8
		flag   uint8
	}{
		{name: "add same register", opcode: 0x8224, value: 0x90, result: 0x20, flag: 1},
		{name: "add same register no carry", opcode: 0x8224, value: 0x10, result: 0x20, flag: 0},
		{name: "sub same register", opcode: 0x8225, value: 0x42, result: 0, flag: 1},
		{name: "subn same register", opcode: 0x8227, value: 0x42, result: 0, flag: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.v[2] = tt.value

			tickN(t, m, 1)

			assert.Equal(t, tt.result, m.v[2])
			assert.Equal(t, tt.flag, m.v[flagRegister])
		})
	}
}

func TestFlagRegisterAsOperand(t *testing.T) {
	// the flag is written after the result, so VF as target ends up holding the flag
	m := newTestMachine(t, 0x8F14)
	m.v[0xF] = 0xFF
	m.v[1] = 0x01

	tickN(t, m, 1)

	assert.Equal(t, uint8(1), m.v[flagRegister])
}

func TestLogicAndLoad(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		want   uint8
	}{
		{name: "ld vx vy", opcode: 0x8010, want: 0x0F},
		{name: "or", opcode: 0x8011, want: 0x3F},
		{name: "and", opcode: 0x8012, want: 0x0C},
		{name: "xor", opcode: 0x8013, want: 0x33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.v[0] = 0x3C
			m.v[1] = 0x0F
			m.v[flagRegister] = 0x07

			tickN(t, m, 1)

			assert.Equal(t, tt.want, m.v[0])
			assert.Equal(t, uint8(0x07), m.v[flagRegister])
		})
	}
}

func TestLogicResetsVFQuirk(t *testing.T) {
	opts := options.Machine{Quirks: options.Quirks{LogicResetsVF: true}}
	m := newTestMachineWithOptions(t, opts, nil, 0x8011)
	m.v[flagRegister] = 0x07

	tickN(t, m, 1)

	assert.Equal(t, uint8(0), m.v[flagRegister])
}

func TestShift(t *testing.T) {
	tests := []struct {
		name   string
		quirks options.Quirks
		opcode uint16
		vx, vy uint8
		result uint8
		flag   uint8
	}{
		{name: "shr uses vx", opcode: 0x8016, vx: 0x05, vy: 0xF0, result: 0x02, flag: 1},
		{name: "shr even", opcode: 0x8016, vx: 0x04, vy: 0xF1, result: 0x02, flag: 0},
		{name: "shl uses vx", opcode: 0x801E, vx: 0x81, vy: 0x01, result: 0x02, flag: 1},
		{name: "shl no carry", opcode: 0x801E, vx: 0x41, vy: 0x81, result: 0x82, flag: 0},
		{
			name:   "shr uses vy with quirk",
			quirks: options.Quirks{ShiftUsesVY: true},
			opcode: 0x8016, vx: 0x04, vy: 0x07, result: 0x03, flag: 1,
		},
		{
			name:   "shl uses vy with quirk",
			quirks: options.Quirks{ShiftUsesVY: true},
			opcode: 0x801E, vx: 0x80, vy: 0x01, result: 0x02, flag: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachineWithOptions(t, options.Machine{Quirks: tt.quirks}, nil, tt.opcode)
			m.v[0] = tt.vx
			m.v[1] = tt.vy

			tickN(t, m, 1)

			assert.Equal(t, tt.result, m.v[0])
			assert.Equal(t, tt.vy, m.v[1])
			assert.Equal(t, tt.flag, m.v[flagRegister])
		})
	}
}

func TestSkipInstructions(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy uint8
		skip   bool
	}{
		{name: "se byte equal", opcode: 0x3042, vx: 0x42, skip: true},
		{name: "se byte different", opcode: 0x3042, vx: 0x41, skip: false},
		{name: "sne byte equal", opcode: 0x4042, vx: 0x42, skip: false},
		{name: "sne byte different", opcode: 0x4042, vx: 0x41, skip: true},
		{name: "se register equal", opcode: 0x5010, vx: 7, vy: 7, skip: true},
		{name: "se register different", opcode: 0x5010, vx: 7, vy: 8, skip: false},
		{name: "sne register equal", opcode: 0x9010, vx: 7, vy: 7, skip: false},
		{name: "sne register different", opcode: 0x9010, vx: 7, vy: 8, skip: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.v[0] = tt.vx
			m.v[1] = tt.vy

			tickN(t, m, 1)

			want := uint16(ProgramStart + 2)
			if tt.skip {
				want = ProgramStart + 4
			}
			assert.Equal(t, want, m.PC())
		})
	}
}

func TestKeySkip(t *testing.T) {
	tests := []struct {
		name    string
		opcode  uint16
		key     uint8
		pressed bool
		skip    bool
	}{
		{name: "skp pressed", opcode: 0xE09E, key: 0xA, pressed: true, skip: true},
		{name: "skp released", opcode: 0xE09E, key: 0xA, pressed: false, skip: false},
		{name: "sknp pressed", opcode: 0xE0A1, key: 0xA, pressed: true, skip: false},
		{name: "sknp released", opcode: 0xE0A1, key: 0xA, pressed: false, skip: true},
		{name: "skp key out of range", opcode: 0xE09E, key: 0x1A, pressed: true, skip: false},
		{name: "sknp key out of range", opcode: 0xE0A1, key: 0x1A, pressed: true, skip: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.v[0] = tt.key
			assert.NoError(t, m.KeyPress(tt.key&0xF, tt.pressed))

			tickN(t, m, 1)

			want := uint16(ProgramStart + 2)
			if tt.skip {
				want = ProgramStart + 4
			}
			assert.Equal(t, want, m.PC())
		})
	}
}

func TestJumpsAndCalls(t *testing.T) {
	t.Run("jp", func(t *testing.T) {
		m := newTestMachine(t, 0x1ABC)
		tickN(t, m, 1)
		assert.Equal(t, uint16(0xABC), m.PC())
	})

	t.Run("jp v0", func(t *testing.T) {
		m := newTestMachine(t, 0xB300)
		m.v[0] = 0x12
		tickN(t, m, 1)
		assert.Equal(t, uint16(0x312), m.PC())
	})

	t.Run("call and ret", func(t *testing.T) {
		m := newTestMachine(t, 0x2206, 0x6101, 0x0000, 0x00EE)
		tickN(t, m, 1)
		assert.Equal(t, uint16(0x206), m.PC())
		assert.Equal(t, 1, m.StackDepth())
		assert.Equal(t, uint16(0x202), m.stack[0])

		tickN(t, m, 1)
		assert.Equal(t, uint16(0x202), m.PC())
		assert.Equal(t, 0, m.StackDepth())

		tickN(t, m, 1)
		assert.Equal(t, uint8(1), m.v[1])
	})
}

func TestStackOverflow(t *testing.T) {
	// a subroutine calling itself
	m := newTestMachine(t, 0x2200)
	tickN(t, m, StackSize)
	assert.Equal(t, StackSize, m.StackDepth())

	err := m.Tick()
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, uint16(ProgramStart), m.PC())
	assert.Equal(t, StackSize, m.StackDepth())

	var opErr *OpcodeError
	assert.True(t, errors.As(err, &opErr))
	assert.Equal(t, uint16(0x2200), opErr.Opcode)
	assert.Equal(t, uint16(ProgramStart), opErr.Address)
}

func TestStackUnderflow(t *testing.T) {
	m := newTestMachine(t, 0x00EE)

	err := m.Tick()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, uint16(ProgramStart), m.PC())
}

func TestUnknownOpcode(t *testing.T) {
	opcodes := []uint16{0x0123, 0x00E1, 0x5011, 0x9012, 0x8018, 0x801F, 0xE09F, 0xF0FF, 0xF001}

	for _, opcode := range opcodes {
		m := newTestMachine(t, 0x6033, opcode)
		tickN(t, m, 1)

		err := m.Tick()
		assert.True(t, errors.Is(err, ErrUnknownOpcode))
		assert.Equal(t, uint16(ProgramStart+2), m.PC())
		assert.Equal(t, uint8(0x33), m.v[0])

		var opErr *OpcodeError
		assert.True(t, errors.As(err, &opErr))
		assert.Equal(t, opcode, opErr.Opcode)
		assert.Equal(t, uint16(ProgramStart+2), opErr.Address)
	}
}

func TestFetchOutOfBounds(t *testing.T) {
	m := newTestMachine(t, 0x1FFF)
	tickN(t, m, 1)
	assert.Equal(t, uint16(0xFFF), m.PC())

	err := m.Tick()
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.Equal(t, uint16(0xFFF), m.PC())
}

func TestLoadImmediateAndAdd(t *testing.T) {
	m := newTestMachine(t, 0x6AFE, 0x7A03, 0x7B01)
	m.v[flagRegister] = 0x55

	tickN(t, m, 3)

	assert.Equal(t, uint8(0x01), m.v[0xA])
	assert.Equal(t, uint8(0x01), m.v[0xB])
	assert.Equal(t, uint8(0x55), m.v[flagRegister])
}

func TestRandom(t *testing.T) {
	values := []byte{0xAB, 0xFF}
	random := RandomFunc(func() byte {
		value := values[0]
		values = values[1:]
		return value
	})

	m := newTestMachineWithOptions(t, options.Machine{}, random, 0xC00F, 0xC1F0)
	tickN(t, m, 2)

	assert.Equal(t, uint8(0x0B), m.v[0])
	assert.Equal(t, uint8(0xF0), m.v[1])
}

func TestIndexRegister(t *testing.T) {
	t.Run("ld i", func(t *testing.T) {
		m := newTestMachine(t, 0xA123)
		tickN(t, m, 1)
		assert.Equal(t, uint16(0x123), m.Index())
	})

	t.Run("add i", func(t *testing.T) {
		m := newTestMachine(t, 0xAFFF, 0x6010, 0xF01E)
		tickN(t, m, 3)
		assert.Equal(t, uint16(0x100F), m.Index())
	})

	t.Run("add i wraps", func(t *testing.T) {
		m := newTestMachine(t, 0xF01E)
		m.i = 0xFFFF
		m.v[0] = 2
		tickN(t, m, 1)
		assert.Equal(t, uint16(0x0001), m.Index())
	})

	t.Run("font glyph", func(t *testing.T) {
		m := newTestMachine(t, 0x600A, 0xF029)
		tickN(t, m, 2)
		assert.Equal(t, uint16(50), m.Index())
		assert.Equal(t, byte(0xF0), m.memory[m.Index()])
	})
}

func TestTimerInstructions(t *testing.T) {
	m := newTestMachine(t, 0x603C, 0xF015, 0xF118, 0xF207)
	m.v[1] = 0x10
	tickN(t, m, 3)
	assert.Equal(t, uint8(0x3C), m.DelayTimer())
	assert.Equal(t, uint8(0x10), m.SoundTimer())

	m.TickTimers()
	tickN(t, m, 1)
	assert.Equal(t, uint8(0x3B), m.v[2])
}

func TestBCD(t *testing.T) {
	tests := []struct {
		value uint8
		want  [3]byte
	}{
		{value: 234, want: [3]byte{2, 3, 4}},
		{value: 0, want: [3]byte{0, 0, 0}},
		{value: 9, want: [3]byte{0, 0, 9}},
		{value: 255, want: [3]byte{2, 5, 5}},
	}

	for _, tt := range tests {
		m := newTestMachine(t, 0xA300, 0xF533)
		m.v[5] = tt.value
		tickN(t, m, 2)
		assert.Equal(t, tt.want, [3]byte(m.memory[0x300:0x303]))
		assert.Equal(t, uint16(0x300), m.Index())
	}
}

func TestBCDOutOfBounds(t *testing.T) {
	m := newTestMachine(t, 0xAFFE, 0xF033)
	tickN(t, m, 1)

	err := m.Tick()
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.Equal(t, byte(0), m.memory[0xFFE])
}

func TestStoreAndLoadRegisters(t *testing.T) {
	t.Run("store", func(t *testing.T) {
		m := newTestMachine(t, 0xA400, 0xF255)
		m.v[0], m.v[1], m.v[2], m.v[3] = 1, 2, 3, 4
		tickN(t, m, 2)

		assert.Equal(t, [4]byte{1, 2, 3, 0}, [4]byte(m.memory[0x400:0x404]))
		assert.Equal(t, uint16(0x400), m.Index())
	})

	t.Run("load", func(t *testing.T) {
		m := newTestMachine(t, 0xA400, 0xF165)
		m.memory[0x400], m.memory[0x401], m.memory[0x402] = 9, 8, 7
		tickN(t, m, 2)

		assert.Equal(t, uint8(9), m.v[0])
		assert.Equal(t, uint8(8), m.v[1])
		assert.Equal(t, uint8(0), m.v[2])
		assert.Equal(t, uint16(0x400), m.Index())
	})

	t.Run("memory increments i quirk", func(t *testing.T) {
		opts := options.Machine{Quirks: options.Quirks{MemoryIncrementsI: true}}
		m := newTestMachineWithOptions(t, opts, nil, 0xA400, 0xF255, 0xF165)
		tickN(t, m, 3)
		assert.Equal(t, uint16(0x405), m.Index())
	})

	t.Run("out of bounds", func(t *testing.T) {
		m := newTestMachine(t, 0xAFFE, 0xF255)
		tickN(t, m, 1)
		err := m.Tick()
		assert.True(t, errors.Is(err, ErrOutOfBounds))
	})
}

func TestWaitForKey(t *testing.T) {
	m := newTestMachine(t, 0xF30A, 0x6101)

	tickN(t, m, 1)
	assert.Equal(t, uint16(ProgramStart), m.PC())
	assert.True(t, m.Waiting())

	tickN(t, m, 1)
	assert.Equal(t, uint16(ProgramStart), m.PC())

	assert.NoError(t, m.KeyPress(0xC, true))
	assert.NoError(t, m.KeyPress(0x7, true))
	tickN(t, m, 1)

	assert.Equal(t, uint8(0x7), m.v[3])
	assert.Equal(t, uint16(ProgramStart+2), m.PC())
	assert.False(t, m.Waiting())

	tickN(t, m, 1)
	assert.Equal(t, uint8(1), m.v[1])
}

func TestTrace(t *testing.T) {
	m := newTestMachineWithOptions(t, options.Machine{Trace: true}, nil, 0x6001, 0x1200)
	tickN(t, m, 4)
	assert.Equal(t, uint8(1), m.v[0])
}

func TestMnemonic(t *testing.T) {
	assert.Equal(t, chip8.Cls.Name, Mnemonic(0x00E0))
	assert.Equal(t, chip8.Ret.Name, Mnemonic(0x00EE))
	assert.Equal(t, chip8.Jp.Name, Mnemonic(0x1234))
	assert.Equal(t, chip8.Call.Name, Mnemonic(0x2345))
	assert.Equal(t, chip8.Drw.Name, Mnemonic(0xD125))
}

func TestOpcodeErrorMessage(t *testing.T) {
	m := New(log.NewTestLogger(t), options.Machine{}, nil)
	assert.NoError(t, m.Load(program(0x00EE)))

	err := m.Tick()
	assert.ErrorContains(t, err, "$00EE")
	assert.ErrorContains(t, err, "$0200")
	assert.ErrorContains(t, err, ErrStackUnderflow.Error())
}

package machine

import (
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/log"
)

// Mnemonic returns the name of the instruction that the opcode encodes,
// or an empty string if the opcode is not part of the instruction set.
func Mnemonic(opcode uint16) string {
	firstNibble := (opcode & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Instruction != nil && op.Info.Mask&opcode == op.Info.Value {
			return op.Instruction.Name
		}
	}
	return ""
}

func (m *Machine) trace(address, opcode uint16) {
	m.logger.Debug("Executing instruction",
		log.Hex("address", address),
		log.Hex("opcode", opcode),
		log.String("instruction", Mnemonic(opcode)),
		log.Hex("i", m.i),
		log.Int("sp", int(m.sp)),
	)
}

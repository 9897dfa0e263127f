// Package listing writes a static instruction listing of a CHIP-8 program.
//
// The program is decoded linearly from the program start address, every
// opcode that does not encode a known instruction and a trailing odd byte
// are listed as data bytes.
package listing

import (
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/machine"
)

const opcodeSize = 2

// Write writes the listing of the program to the writer.
func Write(w io.Writer, program []byte) error {
	for offset := 0; offset < len(program); offset += opcodeSize {
		address := machine.ProgramStart + offset

		if offset+1 >= len(program) {
			if _, err := fmt.Fprintf(w, "$%04X  %02X     %s\n", address, program[offset], formatData(program[offset:])); err != nil {
				return fmt.Errorf("writing line: %w", err)
			}
			break
		}

		b1, b2 := program[offset], program[offset+1]
		opcode := uint16(b1)<<8 | uint16(b2)
		if _, err := fmt.Fprintf(w, "$%04X  %02X %02X  %s\n", address, b1, b2, Format(opcode)); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}
	return nil
}

// Format returns the assembly representation of the opcode. Opcodes that
// do not encode a known instruction are formatted as data bytes.
func Format(opcode uint16) string {
	name := machine.Mnemonic(opcode)
	if name == "" {
		return formatData([]byte{byte(opcode >> 8), byte(opcode)})
	}
	if params := formatParams(opcode); params != "" {
		return name + " " + params
	}
	return name
}

func formatData(data []byte) string {
	s := ".byte"
	for i, b := range data {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf(" $%02X", b)
	}
	return s
}

// formatParams formats the parameters that are encoded in the opcode.
func formatParams(opcode uint16) string {
	x := extractRegisterX(opcode)
	y := extractRegisterY(opcode)

	switch opcode >> 12 {
	case 0x0:
		return ""
	case 0x1, 0x2:
		return fmt.Sprintf("$%03X", opcode&0x0FFF)
	case 0x3, 0x4, 0x6, 0x7, 0xC:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case 0x5, 0x9:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0x8:
		return formatALUParams(opcode, x, y)
	case 0xA:
		return fmt.Sprintf("I, $%03X", opcode&0x0FFF)
	case 0xB:
		return fmt.Sprintf("V0, $%03X", opcode&0x0FFF)
	case 0xD:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, opcode&0x000F)
	case 0xE:
		return fmt.Sprintf("V%X", x)
	default:
		return formatMiscParams(opcode, x)
	}
}

func formatALUParams(opcode uint16, x, y uint16) string {
	switch opcode & 0x000F {
	case 0x6, 0xE:
		return fmt.Sprintf("V%X", x)
	default:
		return fmt.Sprintf("V%X, V%X", x, y)
	}
}

func formatMiscParams(opcode uint16, x uint16) string {
	switch opcode & 0x00FF {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x1E:
		return fmt.Sprintf("I, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	default:
		return ""
	}
}

// extractRegisterX extracts the X register nibble from a CHIP-8 opcode.
func extractRegisterX(opcode uint16) uint16 {
	return (opcode & 0x0F00) >> 8
}

// extractRegisterY extracts the Y register nibble from a CHIP-8 opcode.
func extractRegisterY(opcode uint16) uint16 {
	return (opcode & 0x00F0) >> 4
}

package machine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOpcode is returned for opcodes that do not match any instruction.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrOutOfBounds is returned for memory accesses outside of the 4KB address space.
	ErrOutOfBounds = errors.New("memory access out of bounds")
	// ErrStackOverflow is returned for a call with all 16 stack entries in use.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned for a return with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrInvalidKey is returned for key indexes outside of 0x0-0xF.
	ErrInvalidKey = errors.New("invalid key")
)

// OpcodeError describes an instruction that could not be executed.
type OpcodeError struct {
	Address uint16 // address of the opcode
	Opcode  uint16
	Err     error
}

func (e *OpcodeError) Error() string {
	if name := Mnemonic(e.Opcode); name != "" {
		return fmt.Sprintf("executing %s ($%04X) at address $%04X: %s", name, e.Opcode, e.Address, e.Err)
	}
	return fmt.Sprintf("executing opcode $%04X at address $%04X: %s", e.Opcode, e.Address, e.Err)
}

func (e *OpcodeError) Unwrap() error {
	return e.Err
}

package chip8

import (
	"errors"

	"chip8console/pkg/translate"
)

var f = translate.From

var (
	ErrProgramTooLarge = errors.New(f("program does not fit in memory"))
	ErrStackOverflow   = errors.New(f("stack overflow"))
	ErrStackUnderflow  = errors.New(f("stack underflow"))
	ErrIllegalOpcode   = errors.New(f("illegal opcode"))
)

// ErrFault records the instruction a tick failed on.
type ErrFault struct {
	Addr   uint16
	Opcode uint16
	Err    error
}

func (err *ErrFault) Error() string {
	return f("0x%03X: opcode 0x%04X: %v", err.Addr, err.Opcode, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

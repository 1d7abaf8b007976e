package scheduler

import (
	"errors"

	"chip8console/pkg/translate"
)

var f = translate.From

var (
	ErrROMRead       = errors.New(f("rom could not be read"))
	ErrROMTooLarge   = errors.New(f("rom does not fit in program memory"))
	ErrUnimplemented = errors.New(f("command is not implemented"))
)

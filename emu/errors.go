package emu

import "errors"

var (
	// ErrUnimplemented is returned for instructions whose format classifies
	// correctly but has no execution handler. The step leaves all state
	// untouched.
	ErrUnimplemented = errors.New("unimplemented instruction")

	// ErrInvalidExchange is returned by BX naming R15. The step switches to
	// Undefined mode and leaves the PC unchanged.
	ErrInvalidExchange = errors.New("invalid branch-exchange target")

	// ErrMaxInstructions is returned once the instruction limit is reached.
	ErrMaxInstructions = errors.New("max instructions reached")
)

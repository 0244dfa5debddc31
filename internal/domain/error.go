package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Interpreter verdicts. These are answers about the input, not failures
	// of the interpreter itself.
	ErrNotAReminder   = errors.New("no reminder found in message")
	ErrMessageTooLong = errors.New("message exceeds the prompt token budget")

	// Wiring
	ErrNoInterpreter   = errors.New("no interpreter configured")
	ErrSchedulerClosed = errors.New("scheduler is stopped")
)

package domain

import "github.com/pkg/errors"

// Error is a sentinel error kind. A kind may refine a broader one, so that
// errors.Is(err, ErrCheckpoint) holds for every checkpoint failure.
type Error struct {
	msg    string
	parent error
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.parent }

var (
	// ErrConfiguration: invalid flags, unknown dataset kind, missing dataset root.
	ErrConfiguration = &Error{msg: "configuration error"}

	ErrCheckpoint             = &Error{msg: "checkpoint error"}
	ErrCheckpointNotFound     = &Error{msg: "checkpoint not found", parent: ErrCheckpoint}
	ErrCheckpointCorrupt      = &Error{msg: "checkpoint corrupt", parent: ErrCheckpoint}
	ErrCheckpointIncompatible = &Error{msg: "checkpoint incompatible", parent: ErrCheckpoint}

	// ErrComputation: failures inside forward/backward passes, non-finite losses.
	ErrComputation = &Error{msg: "computation error"}
)

// Configurationf returns an ErrConfiguration with a formatted message.
func Configurationf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}

// Computationf returns an ErrComputation with a formatted message.
func Computationf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrComputation, format, args...)
}

// Kind names the taxonomy entry of err for diagnostics.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "ConfigurationError"
	case errors.Is(err, ErrCheckpoint):
		return "CheckpointError"
	case errors.Is(err, ErrComputation):
		return "RuntimeComputationError"
	default:
		return "Error"
	}
}

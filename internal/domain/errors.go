package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds surfaced by the engine core. Callers should use
// errors.Is against these rather than string-matching messages.
var (
	// ErrIO wraps any underlying disk failure. It is non-recoverable at
	// the engine API and typically poisons the owning WAL writer.
	ErrIO = errors.New("atlaskv: io error")

	// ErrCorruption marks a CRC mismatch or malformed on-disk structure
	// that is not a benign WAL-tail truncation.
	ErrCorruption = errors.New("atlaskv: corruption detected")

	// ErrInvalidArgument marks an oversized or empty key/value.
	ErrInvalidArgument = errors.New("atlaskv: invalid argument")

	// ErrNotFound is a legitimate Get result, not a failure condition;
	// it is exposed as an error so callers that prefer (value, error)
	// over (value, bool) have a stable sentinel to check.
	ErrNotFound = errors.New("atlaskv: key not found")

	// ErrPoisoned is returned by any operation attempted after a prior
	// IO error left the WAL writer unable to guarantee durability.
	ErrPoisoned = errors.New("atlaskv: wal poisoned by prior io error")
)

// WrapIO annotates err with ErrIO and the operation that failed.
func WrapIO(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrIO, err)
}

// WrapCorruption annotates a corruption finding with where it was found.
func WrapCorruption(where, detail string) error {
	return fmt.Errorf("%s: %s: %w", where, detail, ErrCorruption)
}

// InvalidArgument builds an ErrInvalidArgument with context.
func InvalidArgument(detail string) error {
	return fmt.Errorf("%s: %w", detail, ErrInvalidArgument)
}

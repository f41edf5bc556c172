package rangeset

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSuchElement is returned by Span on an empty set.
	ErrNoSuchElement = errors.New("range set is empty")
	// ErrReadOnly is returned by the mutators of a read-only set and of its
	// complement.
	ErrReadOnly = fmt.Errorf("range set is read-only: %w", errors.ErrUnsupported)
	// ErrInvalidArgument is returned when a nil set or order is passed where
	// one is required.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidRange is returned when a mutator receives the zero Range or a
	// range whose lower endpoint exceeds its upper endpoint. It matches
	// ErrInvalidArgument.
	ErrInvalidRange = fmt.Errorf("invalid range: %w", ErrInvalidArgument)
	// ErrConcurrentModification is reported by an Iterator whose set changed
	// while it was being traversed.
	ErrConcurrentModification = errors.New("range set modified during iteration")
)

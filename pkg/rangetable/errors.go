package rangetable

import "errors"

var (
	ErrNotFound       = errors.New("no match found")
	ErrAlreadyClaimed = errors.New("already claimed")
	ErrNotClaimed     = errors.New("not claimed")
	ErrNoFree         = errors.New("no free entry found")
	ErrOutOfPool      = errors.New("does not fit in the pool")
)

package store

import "errors"

var (
	// ErrDuplicateActor is returned when registering an actor id that exists.
	ErrDuplicateActor = errors.New("actor id already exists")
	// ErrUnknownActor is returned when an actor id is not registered.
	ErrUnknownActor = errors.New("actor not found")
	// ErrUnknownObject is returned when an object id is not registered.
	ErrUnknownObject = errors.New("object not found")
	// ErrChainConflict is returned when an append lost the head race: the
	// chain head moved between the caller's read and the write. The caller
	// should re-read the head and retry.
	ErrChainConflict = errors.New("concurrent chain write conflict")
	// ErrInvalidState is returned when anchoring would violate an invariant,
	// such as re-anchoring an event under a different batch.
	ErrInvalidState = errors.New("invalid anchoring state")
)

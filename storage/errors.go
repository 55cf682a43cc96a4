package storage

import "errors"

// ErrNotFound is returned by Engine.Get when a key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// ErrMergeFailed is returned by Engine.Merge when every candidate
// value (existing plus operand) failed to decode, leaving nothing
// valid to store.
var ErrMergeFailed = errors.New("storage: merge operator produced no result")

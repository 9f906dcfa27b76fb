package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable covers connection and I/O failures.
	ErrUnavailable = errors.New("cache unavailable")
	// ErrSerialization means a value could not be encoded or decoded.
	ErrSerialization = errors.New("cache serialization failure")
)

// Error describes a failed cache operation. It matches its Kind and its
// underlying cause with errors.Is.
type Error struct {
	Kind error
	Op   string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cache %s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("cache %s %q: %v: %v", e.Op, e.Key, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// kindName is the metric label of a failure kind.
func kindName(kind error) string {
	if kind == ErrSerialization {
		return "cache_serialization"
	}
	return "cache_unavailable"
}

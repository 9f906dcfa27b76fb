package testutil

import (
	"context"

	"github.com/atelierai/platform/component"
)

// TestComponent is a component.Component with state control for tests.
type TestComponent interface {
	component.Component

	// Reset returns the component to its empty initial state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state for a later Restore.
	Snapshot(ctx context.Context) (interface{}, error)

	// Restore returns the component to a state captured by Snapshot.
	Restore(ctx context.Context, snapshot interface{}) error
}

package state

import (
	"context"

	"SignalSentinel/internal/model"
)

// Backend persists the whole state map. Write must be all-or-nothing.
type Backend interface {
	// Read returns the stored map; exists is false when nothing was persisted yet.
	Read(ctx context.Context) (m model.StateMap, exists bool, err error)
	Write(ctx context.Context, m model.StateMap) error
	Name() string
}

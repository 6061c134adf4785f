// Package guard serializes ledger writes per group.
//
// Each group id maps to an acquisition slot admitting exactly one in-flight
// validate-compute-append sequence. Writers to different groups never
// contend, and balance readers never touch the guard at all.
package guard

import (
	"context"
	"sync"
	"time"

	"github.com/fairsplit/fairsplit/internal/models"
)

// DefaultWait bounds how long a writer blocks on a contended group before
// the submission fails as retryable.
const DefaultWait = 5 * time.Second

// Guard is a keyed mutual-exclusion region over group ids.
// The zero value is not usable; call New.
type Guard struct {
	mu    sync.Mutex
	slots map[int64]chan struct{}
	wait  time.Duration
}

// New creates a Guard with the given maximum wait per acquisition.
// A non-positive wait falls back to DefaultWait.
func New(wait time.Duration) *Guard {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Guard{
		slots: make(map[int64]chan struct{}),
		wait:  wait,
	}
}

// Acquire claims the write slot for groupID, blocking other writers to the
// same group until the returned release func is called. It fails with
// models.ErrLockTimeout after the configured wait, or with ctx.Err() if the
// caller abandons the submission first. Release is safe to call exactly
// once on every exit path; the caller should defer it immediately.
func (g *Guard) Acquire(ctx context.Context, groupID int64) (release func(), err error) {
	slot := g.slot(groupID)

	timer := time.NewTimer(g.wait)
	defer timer.Stop()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-timer.C:
		return nil, models.ErrLockTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *Guard) slot(groupID int64) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	slot, ok := g.slots[groupID]
	if !ok {
		slot = make(chan struct{}, 1)
		g.slots[groupID] = slot
	}
	return slot
}

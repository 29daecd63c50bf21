package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stayora/hotel-booking-backend/internal/status"
)

// ErrStateNotPersisted reports that a nominally successful status write
// was not observable on re-read. It is a correctness-guard failure:
// surfaced as a server error and never retried automatically.
var ErrStateNotPersisted = errors.New("state not persisted")

// maxSettleDelay bounds the optional pause before the verification
// re-read. The pause exists only to tolerate read-after-write latency;
// it must never paper over a genuine transactional failure.
const maxSettleDelay = 500 * time.Millisecond

// ReadStatus re-reads the raw status value of the mutated row by
// primary key, bypassing any visibility filtering.
type ReadStatus func(ctx context.Context) (any, error)

// Reconciler confirms after a status write that the store actually
// persisted the intended value. It guards against drivers and columns
// that silently coerce or default, which the loosely-typed legacy
// status column is known to do.
type Reconciler struct {
	// Delay is an optional settle pause before the re-read, capped at
	// maxSettleDelay. Zero means re-read immediately.
	Delay time.Duration
}

// Confirm re-reads the row, normalizes the observed value and compares
// it to want. A mismatch returns ErrStateNotPersisted; an unreadable or
// unrecognizable observed value returns its own error.
func (r Reconciler) Confirm(ctx context.Context, read ReadStatus, want status.Status) error {
	delay := r.Delay
	if delay > maxSettleDelay {
		delay = maxSettleDelay
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	raw, err := read(ctx)
	if err != nil {
		return err
	}
	observed, err := status.Normalize(raw)
	if err != nil {
		return err
	}
	if observed != want {
		return fmt.Errorf("%w: wrote %s, observed %s", ErrStateNotPersisted, want, observed)
	}
	return nil
}

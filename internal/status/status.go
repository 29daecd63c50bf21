// Package status canonicalizes the loosely-typed account status column.
// Legacy rows carry the flag as an integer, boolean, numeric string or
// NULL depending on which client wrote them; every read of such a column
// must pass through Normalize before the value crosses into business
// logic. This package is the single place that absorbs that storage-layer
// type ambiguity.
package status

import (
	"errors"
	"fmt"
)

// Status is the canonical two-state representation of a persisted flag.
type Status int

const (
	Inactive Status = iota
	Active
)

// ErrInvalidRepresentation reports a raw value outside the recognized
// set. It indicates a data-integrity fault and callers should surface it
// as a server error, never silently coerce.
var ErrInvalidRepresentation = errors.New("invalid status representation")

// String returns "active" or "inactive".
func (s Status) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// Bool reports whether the status is Active.
func (s Status) Bool() bool { return s == Active }

// Normalize maps a raw column value onto the canonical Status.
// nil, 0, false, "0" normalize to Inactive; 1, true, "1" normalize to
// Active. database/sql may surface the column as int64, float64, bool,
// string or []byte depending on driver settings, so all of those are
// accepted. Any other value returns ErrInvalidRepresentation.
// Normalize is stable under re-application: feeding a result's raw form
// back in yields the same Status.
func Normalize(raw any) (Status, error) {
	switch v := raw.(type) {
	case nil:
		return Inactive, nil
	case bool:
		if v {
			return Active, nil
		}
		return Inactive, nil
	case int:
		return fromInt(int64(v))
	case int64:
		return fromInt(v)
	case float64:
		if v == float64(int64(v)) {
			return fromInt(int64(v))
		}
	case string:
		return fromString(v)
	case []byte:
		return fromString(string(v))
	case Status:
		return v, nil
	}
	return Inactive, fmt.Errorf("%w: %T(%v)", ErrInvalidRepresentation, raw, raw)
}

func fromInt(v int64) (Status, error) {
	switch v {
	case 0:
		return Inactive, nil
	case 1:
		return Active, nil
	}
	return Inactive, fmt.Errorf("%w: %d", ErrInvalidRepresentation, v)
}

func fromString(v string) (Status, error) {
	switch v {
	case "0":
		return Inactive, nil
	case "1":
		return Active, nil
	}
	return Inactive, fmt.Errorf("%w: %q", ErrInvalidRepresentation, v)
}

package status_test

import (
	"errors"
	"testing"

	"github.com/stayora/hotel-booking-backend/internal/status"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want status.Status
	}{
		{"nil", nil, status.Inactive},
		{"int zero", 0, status.Inactive},
		{"int one", 1, status.Active},
		{"int64 zero", int64(0), status.Inactive},
		{"int64 one", int64(1), status.Active},
		{"bool false", false, status.Inactive},
		{"bool true", true, status.Active},
		{"string zero", "0", status.Inactive},
		{"string one", "1", status.Active},
		{"bytes zero", []byte("0"), status.Inactive},
		{"bytes one", []byte("1"), status.Active},
		{"float zero", float64(0), status.Inactive},
		{"float one", float64(1), status.Active},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := status.Normalize(tc.raw)
			if err != nil {
				t.Fatalf("Normalize(%v): %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("Normalize(%v) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizeInvalid(t *testing.T) {
	for _, raw := range []any{2, -1, int64(7), "yes", "true", "", []byte("on"), 1.5, struct{}{}} {
		if _, err := status.Normalize(raw); !errors.Is(err, status.ErrInvalidRepresentation) {
			t.Fatalf("Normalize(%#v): want ErrInvalidRepresentation, got %v", raw, err)
		}
	}
}

// Re-applying normalization to an already-normalized value must not change it.
func TestNormalizeIdempotent(t *testing.T) {
	for _, raw := range []any{nil, 0, 1, true, false, "0", "1"} {
		first, err := status.Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize(%v): %v", raw, err)
		}
		second, err := status.Normalize(first)
		if err != nil {
			t.Fatalf("Normalize(Normalize(%v)): %v", raw, err)
		}
		if first != second {
			t.Fatalf("Normalize not stable for %v: %v then %v", raw, first, second)
		}
	}
}

package model_test

import (
	"errors"
	"testing"

	"github.com/stayora/hotel-booking-backend/internal/model"
)

// The allowed transition set is closed: every (current, requested) pair
// outside it must be rejected, including self-transitions and moves out
// of terminal states.
func TestCheckBookingTransition(t *testing.T) {
	all := []string{
		model.BookingPending,
		model.BookingConfirmed,
		model.BookingCancelled,
		model.BookingCompleted,
	}
	allowed := map[[2]string]bool{
		{model.BookingPending, model.BookingConfirmed}:   true,
		{model.BookingPending, model.BookingCancelled}:   true,
		{model.BookingConfirmed, model.BookingCancelled}: true,
		{model.BookingConfirmed, model.BookingCompleted}: true,
	}
	for _, from := range all {
		for _, to := range all {
			err := model.CheckBookingTransition(from, to)
			if allowed[[2]string{from, to}] {
				if err != nil {
					t.Errorf("%s -> %s: unexpected error %v", from, to, err)
				}
				continue
			}
			if !errors.Is(err, model.ErrInvalidTransition) {
				t.Errorf("%s -> %s: want ErrInvalidTransition, got %v", from, to, err)
			}
		}
	}
}

func TestCheckBookingTransitionUnknownStates(t *testing.T) {
	if err := model.CheckBookingTransition("draft", model.BookingConfirmed); !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("unknown current state: want ErrInvalidTransition, got %v", err)
	}
	if err := model.CheckBookingTransition(model.BookingPending, "archived"); !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("unknown requested state: want ErrInvalidTransition, got %v", err)
	}
}

func TestHotelStatusAllowed(t *testing.T) {
	cases := []struct {
		current, requested string
		want               bool
	}{
		{model.HotelPending, model.HotelActive, true},
		{model.HotelPending, model.HotelRejected, true},
		{model.HotelPending, model.HotelPending, false},
		{model.HotelActive, model.HotelRejected, false},
		{model.HotelRejected, model.HotelActive, false},
	}
	for _, tc := range cases {
		if got := model.HotelStatusAllowed(tc.current, tc.requested); got != tc.want {
			t.Errorf("HotelStatusAllowed(%s, %s) = %v, want %v", tc.current, tc.requested, got, tc.want)
		}
	}
}

package model

import (
	"errors"
	"time"
)

// Booking status values stored in bookings.status. pending is the
// initial state; cancelled and completed are terminal.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// ErrInvalidTransition is returned when a requested booking status
// change is not in the allowed transition set. Handlers translate it
// into an HTTP 400 response.
var ErrInvalidTransition = errors.New("invalid status transition")

// bookingTransitions is the closed set of allowed (from, to) pairs.
var bookingTransitions = map[string]map[string]bool{
	BookingPending:   {BookingConfirmed: true, BookingCancelled: true},
	BookingConfirmed: {BookingCancelled: true, BookingCompleted: true},
}

// ValidBookingStatus reports whether s names a booking status at all.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// CheckBookingTransition validates a requested status change against the
// booking state machine. It returns ErrInvalidTransition for any pair
// outside pending→confirmed, pending→cancelled, confirmed→cancelled,
// confirmed→completed.
func CheckBookingTransition(current, requested string) error {
	if bookingTransitions[current][requested] {
		return nil
	}
	return ErrInvalidTransition
}

// Booking represents a row in the `bookings` table.
//
// Fields:
//  ID         – primary key identifier.
//  HotelID    – hotel being booked.
//  CustomerID – customer who placed the booking.
//  CheckIn    – arrival date (before CheckOut).
//  CheckOut   – departure date.
//  RoomCount  – number of rooms booked.
//  GuestCount – number of guests.
//  TotalCents – total price in cents.
//  Status     – booking state (see constants above).
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Booking struct {
	ID         uint64    // bookings.id
	HotelID    uint64    // bookings.hotel_id
	CustomerID uint64    // bookings.customer_id
	CheckIn    time.Time // bookings.check_in
	CheckOut   time.Time // bookings.check_out
	RoomCount  uint32    // bookings.room_count
	GuestCount uint32    // bookings.guest_count
	TotalCents uint64    // bookings.total_cents
	Status     string    // bookings.status
	CreatedAt  time.Time // bookings.created_at
	UpdatedAt  time.Time // bookings.updated_at
}

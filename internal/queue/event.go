// Package queue defines the lifecycle events exchanged over the message
// broker. Every status-changing operation publishes one of these after
// its transaction commits; the notification worker consumes them and
// materializes notification rows. Publishing is best effort and never
// fails the primary mutation.
package queue

// LifecycleQueueName is the durable queue carrying all lifecycle events.
const LifecycleQueueName = "lifecycle.events"

// Event kinds. The kind selects which payload pointer is set and which
// recipients the worker notifies.
const (
	KindHotelRegistered      = "hotel.registered"
	KindHotelStatusChanged   = "hotel.status_changed"
	KindBookingStatusChanged = "booking.status_changed"
	KindUserStatusChanged    = "user.status_changed"
)

// Event is the envelope published to the lifecycle queue. Exactly one
// of the payload pointers is non-nil, matching Kind.
type Event struct {
	Kind       string        `json:"kind"`
	OccurredAt string        `json:"occurred_at"`
	Hotel      *HotelEvent   `json:"hotel,omitempty"`
	Booking    *BookingEvent `json:"booking,omitempty"`
	User       *UserEvent    `json:"user,omitempty"`
}

// HotelEvent describes a hotel registration or listing decision.
type HotelEvent struct {
	HotelID uint64 `json:"hotel_id"`
	OwnerID uint64 `json:"owner_id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
}

// BookingEvent describes a booking status transition.
type BookingEvent struct {
	BookingID  uint64 `json:"booking_id"`
	HotelID    uint64 `json:"hotel_id"`
	HotelName  string `json:"hotel_name"`
	CustomerID uint64 `json:"customer_id"`
	From       string `json:"from"`
	To         string `json:"to"`
}

// UserEvent describes an account status or role change performed by an
// admin.
type UserEvent struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
	Action string `json:"action"` // approve | block | delete | role_change
	Active bool   `json:"active"`
}

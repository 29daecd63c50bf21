package model

import "time"

// Review represents a row in the `reviews` table. A review belongs to
// exactly one booking (one review per booking) and transitively to the
// booked hotel and the reviewing customer. Rating is immutable after
// creation; Reply may be set exactly once by the hotel party.
type Review struct {
	ID         uint64    // reviews.id
	BookingID  uint64    // reviews.booking_id
	CustomerID uint64    // reviews.customer_id
	Rating     uint8     // reviews.rating (1..5)
	Content    string    // reviews.content
	Reply      *string   // reviews.reply (nullable, write-once)
	CreatedAt  time.Time // reviews.created_at
	UpdatedAt  time.Time // reviews.updated_at
}

// Notification represents a row in the `notifications` table. Rows are
// created only by the notification worker as a side effect of a
// lifecycle transition and never mutated afterwards.
type Notification struct {
	ID          uint64    // notifications.id
	RecipientID uint64    // notifications.recipient_id
	Subject     string    // notifications.subject
	Body        string    // notifications.body
	Kind        string    // notifications.kind
	CreatedAt   time.Time // notifications.created_at
}

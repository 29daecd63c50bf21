package model

import "time"

// Hotel listing status values stored in hotels.status. A hotel is
// registered as pending and moved to active or rejected by an admin;
// owner_id never changes after creation.
const (
	HotelPending  = "pending"
	HotelActive   = "active"
	HotelRejected = "rejected"
)

// Hotel represents a row in the `hotels` table.
//
// Fields:
//  ID           – primary key identifier.
//  OwnerID      – manager user who registered the hotel (immutable).
//  Name         – hotel name.
//  Address      – street address.
//  Contact      – phone or email contact string.
//  StarRating   – 1..5.
//  Status       – listing status (pending/active/rejected).
//  MainImageURL – reference of the primary image, nil until images exist.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Hotel struct {
	ID           uint64    // hotels.id
	OwnerID      uint64    // hotels.owner_id
	Name         string    // hotels.name
	Address      string    // hotels.address
	Contact      string    // hotels.contact
	StarRating   uint8     // hotels.star_rating
	Status       string    // hotels.status
	MainImageURL *string   // hotels.main_image_url (nullable)
	CreatedAt    time.Time // hotels.created_at
	UpdatedAt    time.Time // hotels.updated_at
}

// HotelImage represents a row in the `hotel_images` table. At most one
// image per hotel has IsMain set.
type HotelImage struct {
	ID        uint64    // hotel_images.id
	HotelID   uint64    // hotel_images.hotel_id
	URL       string    // hotel_images.url
	IsMain    bool      // hotel_images.is_main
	CreatedAt time.Time // hotel_images.created_at
}

// HotelStatusAllowed reports whether an admin review may move a hotel
// from its current listing status to the requested one. Only pending
// hotels can be decided, and the only decisions are active or rejected.
func HotelStatusAllowed(current, requested string) bool {
	if current != HotelPending {
		return false
	}
	return requested == HotelActive || requested == HotelRejected
}

// This file defines repository methods for reviews. A review hangs off
// a completed booking, so its ownership chain runs review → booking →
// hotel → owner. The reply column is write-once: the conditional UPDATE
// in SetReplyOnce is the only way it is ever written.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stayora/hotel-booking-backend/internal/model"
)

// ReviewRepo provides persistence for reviews and owner replies.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewColumns = "id, booking_id, customer_id, rating, content, reply, created_at, updated_at"

// Create inserts a review for a booking. The unique key on booking_id
// makes a second review for the same booking surface as ErrConflict.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	const q = "INSERT INTO reviews (booking_id, customer_id, rating, content) VALUES (?,?,?,?)"
	res, err := r.db.ExecContext(ctx, q, rv.BookingID, rv.CustomerID, rv.Rating, rv.Content)
	if err != nil {
		if IsDuplicateEntry(err) {
			return ErrConflict
		}
		if IsForeignKeyViolation(err) {
			return ErrBookingNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// GetByID fetches a review by primary key.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	var rv model.Review
	err := r.db.QueryRowContext(ctx, "SELECT "+reviewColumns+" FROM reviews WHERE id=?", id).Scan(
		&rv.ID, &rv.BookingID, &rv.CustomerID, &rv.Rating, &rv.Content, &rv.Reply,
		&rv.CreatedAt, &rv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Review{}, ErrReviewNotFound
	}
	return rv, err
}

// ReviewParties carries the resolved ownership chain of a review.
type ReviewParties struct {
	ReviewID   uint64
	BookingID  uint64
	HotelID    uint64
	HotelOwner uint64
	CustomerID uint64
}

// Parties walks review → booking → hotel in one join and returns the
// root owner and the reviewing customer.
func (r *ReviewRepo) Parties(ctx context.Context, id uint64) (ReviewParties, error) {
	const q = `SELECT rv.id, rv.booking_id, b.hotel_id, h.owner_id, rv.customer_id
		FROM reviews rv
		JOIN bookings b ON b.id = rv.booking_id
		JOIN hotels h ON h.id = b.hotel_id
		WHERE rv.id = ?`
	var p ReviewParties
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ReviewID, &p.BookingID, &p.HotelID, &p.HotelOwner, &p.CustomerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ReviewParties{}, ErrReviewNotFound
	}
	return p, err
}

// SetReplyOnce writes the owner reply only when none exists yet. If the
// update touches no row, the review either does not exist (
// ErrReviewNotFound) or already carries a reply (ErrConflict).
func (r *ReviewRepo) SetReplyOnce(ctx context.Context, id uint64, reply string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE reviews SET reply=? WHERE id=? AND reply IS NULL", reply, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrConflict
}

// ListByHotel returns all reviews written against a hotel's bookings,
// newest first.
func (r *ReviewRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.Review, error) {
	const q = `SELECT rv.id, rv.booking_id, rv.customer_id, rv.rating, rv.content, rv.reply, rv.created_at, rv.updated_at
		FROM reviews rv JOIN bookings b ON b.id = rv.booking_id
		WHERE b.hotel_id = ? ORDER BY rv.id DESC`
	rows, err := r.db.QueryContext(ctx, q, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.BookingID, &rv.CustomerID, &rv.Rating, &rv.Content, &rv.Reply,
			&rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

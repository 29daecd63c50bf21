// This file defines repository methods for bookings. Bookings are the
// unit of the status lifecycle: they are created pending by a customer
// and then driven through the state machine by the hotel party (or the
// customer, for cancellation). All timestamp fields are stored in UTC.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stayora/hotel-booking-backend/internal/model"
)

// BookingRepo provides persistence for bookings.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for the mutation engine.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = "id, hotel_id, customer_id, check_in, check_out, room_count, guest_count, total_cents, status, created_at, updated_at"

// Create inserts a new pending booking and populates the generated ID.
// A foreign-key violation (unknown hotel or customer) surfaces as
// ErrHotelNotFound because the hotel id is the caller-supplied part.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = "INSERT INTO bookings (hotel_id, customer_id, check_in, check_out, room_count, guest_count, total_cents, status) VALUES (?,?,?,?,?,?,?,?)"
	res, err := r.db.ExecContext(ctx, q,
		b.HotelID, b.CustomerID,
		b.CheckIn.Format("2006-01-02"), b.CheckOut.Format("2006-01-02"),
		b.RoomCount, b.GuestCount, b.TotalCents, model.BookingPending)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return ErrHotelNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.BookingPending
	return nil
}

// GetByID fetches a booking by primary key.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	var b model.Booking
	err := r.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id=?", id).Scan(
		&b.ID, &b.HotelID, &b.CustomerID, &b.CheckIn, &b.CheckOut, &b.RoomCount, &b.GuestCount,
		&b.TotalCents, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

// BookingParties carries the resolved ownership chain of a booking: the
// user who owns the booked hotel and the customer who placed it.
type BookingParties struct {
	BookingID  uint64
	HotelID    uint64
	HotelOwner uint64
	CustomerID uint64
}

// Parties walks the booking's ownership chain in one join. Returns
// ErrBookingNotFound when the booking does not exist.
func (r *BookingRepo) Parties(ctx context.Context, id uint64) (BookingParties, error) {
	const q = `SELECT b.id, b.hotel_id, h.owner_id, b.customer_id
		FROM bookings b JOIN hotels h ON h.id = b.hotel_id
		WHERE b.id = ?`
	var p BookingParties
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.BookingID, &p.HotelID, &p.HotelOwner, &p.CustomerID)
	if errors.Is(err, sql.ErrNoRows) {
		return BookingParties{}, ErrBookingNotFound
	}
	return p, err
}

// StatusForUpdateTx reads the current status under a row lock so a
// concurrent transition on the same booking serializes behind it.
func (r *BookingRepo) StatusForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (string, error) {
	var current string
	err := tx.QueryRowContext(ctx, "SELECT status FROM bookings WHERE id=? FOR UPDATE", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrBookingNotFound
	}
	return current, err
}

// UpdateStatusTx writes the new status within the same transaction that
// holds the row lock taken by StatusForUpdateTx.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, to string) error {
	_, err := tx.ExecContext(ctx, "UPDATE bookings SET status=? WHERE id=?", to, id)
	return err
}

// StatusByID re-reads only the status column; used by callers that need
// to confirm an observed state without loading the whole row.
func (r *BookingRepo) StatusByID(ctx context.Context, id uint64) (string, error) {
	var s string
	err := r.db.QueryRowContext(ctx, "SELECT status FROM bookings WHERE id=?", id).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrBookingNotFound
	}
	return s, err
}

// ListByCustomer returns the customer's bookings, newest first.
func (r *BookingRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Booking, error) {
	const q = "SELECT " + bookingColumns + " FROM bookings WHERE customer_id=? ORDER BY id DESC"
	return r.list(ctx, q, customerID)
}

// ListByHotel returns a hotel's bookings, newest first.
func (r *BookingRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.Booking, error) {
	const q = "SELECT " + bookingColumns + " FROM bookings WHERE hotel_id=? ORDER BY id DESC"
	return r.list(ctx, q, hotelID)
}

func (r *BookingRepo) list(ctx context.Context, q string, arg any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.HotelID, &b.CustomerID, &b.CheckIn, &b.CheckOut, &b.RoomCount,
			&b.GuestCount, &b.TotalCents, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CompletedByIDAndCustomer verifies that a booking exists, belongs to
// the customer and has reached the completed state. Used as the
// precondition for writing a review.
func (r *BookingRepo) CompletedByIDAndCustomer(ctx context.Context, id, customerID uint64) (model.Booking, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	if b.CustomerID != customerID {
		return model.Booking{}, ErrForbidden
	}
	if b.Status != model.BookingCompleted {
		return model.Booking{}, ErrConflict
	}
	return b, nil
}

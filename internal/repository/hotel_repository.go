// This file defines repository methods for hotels and their images.
// A hotel belongs to a single owner (manager account) and may carry
// multiple images of which exactly one is the main image. Creation
// happens inside a registration plan, so the insert methods come in
// *Tx variants that operate on a caller-provided transaction.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stayora/hotel-booking-backend/internal/model"
)

// HotelRepo encapsulates all database queries related to hotels.
type HotelRepo struct {
	db *sql.DB
}

func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

// DB exposes the underlying handle so the mutation engine can open a
// transaction spanning multiple repositories.
func (r *HotelRepo) DB() *sql.DB { return r.db }

const hotelColumns = "id, owner_id, name, address, contact, star_rating, status, main_image_url, created_at, updated_at"

// CreateTx inserts a new hotel within the scope of an existing
// transaction and populates the generated ID. New hotels always start
// in the pending status; the caller must commit or roll back.
func (r *HotelRepo) CreateTx(ctx context.Context, tx *sql.Tx, h *model.Hotel) error {
	const q = "INSERT INTO hotels (owner_id, name, address, contact, star_rating, status) VALUES (?,?,?,?,?,?)"
	res, err := tx.ExecContext(ctx, q, h.OwnerID, h.Name, h.Address, h.Contact, h.StarRating, model.HotelPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	h.Status = model.HotelPending
	return nil
}

// AddImageTx records an uploaded image reference for a hotel. The blob
// itself must already be stored before this row is written, so a
// rollback can never leave a row pointing at a file that does not exist.
func (r *HotelRepo) AddImageTx(ctx context.Context, tx *sql.Tx, img *model.HotelImage) error {
	const q = "INSERT INTO hotel_images (hotel_id, url, is_main) VALUES (?,?,?)"
	res, err := tx.ExecContext(ctx, q, img.HotelID, img.URL, img.IsMain)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	img.ID = uint64(id)
	return nil
}

// SetMainImageTx updates the denormalized main image reference on the
// hotel row and flips is_main flags so at most one image keeps it.
func (r *HotelRepo) SetMainImageTx(ctx context.Context, tx *sql.Tx, hotelID uint64, url string) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE hotel_images SET is_main = (url = ?) WHERE hotel_id = ?", url, hotelID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "UPDATE hotels SET main_image_url=? WHERE id=?", url, hotelID)
	return err
}

// GetByID fetches a hotel by primary key regardless of listing status.
// Returns ErrHotelNotFound if no row exists.
func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (model.Hotel, error) {
	var h model.Hotel
	err := r.db.QueryRowContext(ctx, "SELECT "+hotelColumns+" FROM hotels WHERE id=?", id).Scan(
		&h.ID, &h.OwnerID, &h.Name, &h.Address, &h.Contact, &h.StarRating, &h.Status, &h.MainImageURL,
		&h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Hotel{}, ErrHotelNotFound
	}
	return h, err
}

// OwnerOf resolves a hotel id to its owning user id. It is the first
// link of the ownership chain walked by the authorization gate.
func (r *HotelRepo) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	var owner uint64
	err := r.db.QueryRowContext(ctx, "SELECT owner_id FROM hotels WHERE id=?", id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrHotelNotFound
	}
	return owner, err
}

// ListActive returns hotels whose listing status is active, newest
// first. Used by the public browse endpoints.
func (r *HotelRepo) ListActive(ctx context.Context, limit, offset int) ([]model.Hotel, error) {
	const q = "SELECT " + hotelColumns + " FROM hotels WHERE status=? ORDER BY id DESC LIMIT ? OFFSET ?"
	return r.list(ctx, q, model.HotelActive, limit, offset)
}

// ListByStatus returns hotels in the given listing status, oldest
// first so the admin review queue is fair.
func (r *HotelRepo) ListByStatus(ctx context.Context, st string, limit, offset int) ([]model.Hotel, error) {
	const q = "SELECT " + hotelColumns + " FROM hotels WHERE status=? ORDER BY id LIMIT ? OFFSET ?"
	return r.list(ctx, q, st, limit, offset)
}

// ListByOwner returns all hotels registered by the given owner,
// including pending and rejected ones.
func (r *HotelRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Hotel, error) {
	const q = "SELECT " + hotelColumns + " FROM hotels WHERE owner_id=? ORDER BY id DESC"
	return r.list(ctx, q, ownerID)
}

func (r *HotelRepo) list(ctx context.Context, q string, args ...any) ([]model.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Hotel
	for rows.Next() {
		var h model.Hotel
		if err := rows.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Address, &h.Contact, &h.StarRating,
			&h.Status, &h.MainImageURL, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Images returns all image rows of a hotel, main image first.
func (r *HotelRepo) Images(ctx context.Context, hotelID uint64) ([]model.HotelImage, error) {
	const q = "SELECT id, hotel_id, url, is_main, created_at FROM hotel_images WHERE hotel_id=? ORDER BY is_main DESC, id"
	rows, err := r.db.QueryContext(ctx, q, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.HotelImage
	for rows.Next() {
		var img model.HotelImage
		if err := rows.Scan(&img.ID, &img.HotelID, &img.URL, &img.IsMain, &img.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// Update rewrites the owner-editable columns of a hotel. owner_id and
// status are deliberately not touched here.
func (r *HotelRepo) Update(ctx context.Context, h model.Hotel) error {
	const q = "UPDATE hotels SET name=?, address=?, contact=?, star_rating=? WHERE id=?"
	_, err := r.db.ExecContext(ctx, q, h.Name, h.Address, h.Contact, h.StarRating, h.ID)
	return err
}

// SetStatusTx moves a hotel to a new listing status within a
// transaction, returning the status that was current at the time of the
// read. The row is locked so a concurrent admin decision cannot
// interleave between read and write.
func (r *HotelRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, to string) (string, error) {
	var current string
	err := tx.QueryRowContext(ctx, "SELECT status FROM hotels WHERE id=? FOR UPDATE", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrHotelNotFound
	}
	if err != nil {
		return "", err
	}
	if !model.HotelStatusAllowed(current, to) {
		return current, model.ErrInvalidTransition
	}
	_, err = tx.ExecContext(ctx, "UPDATE hotels SET status=? WHERE id=?", to, id)
	return current, err
}

// DeleteImagesTx removes all image rows of a hotel and returns their
// URLs so the caller can reclaim the underlying blobs after commit.
func (r *HotelRepo) DeleteImagesTx(ctx context.Context, tx *sql.Tx, hotelID uint64) ([]string, error) {
	rows, err := tx.QueryContext(ctx, "SELECT url FROM hotel_images WHERE hotel_id=?", hotelID)
	if err != nil {
		return nil, err
	}
	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			rows.Close()
			return nil, err
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	_, err = tx.ExecContext(ctx, "DELETE FROM hotel_images WHERE hotel_id=?", hotelID)
	return urls, err
}

// DeleteTx removes the hotel row itself. A foreign-key violation from
// bookings still referencing the hotel is mapped to ErrConflict.
func (r *HotelRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM hotels WHERE id=?", id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return ErrConflict
		}
		return err
	}
	return oneRowOr(res, ErrHotelNotFound)
}

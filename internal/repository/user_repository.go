package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/stayora/hotel-booking-backend/internal/model"
	"github.com/stayora/hotel-booking-backend/internal/status"
	"github.com/stayora/hotel-booking-backend/internal/utils"
)

// UserRepo persists user accounts. The `active` column is scanned raw
// and normalized through internal/status on every read, because legacy
// rows carry it as 0/1, '0'/'1', true/false or NULL depending on which
// client wrote them. There is deliberately a single GetByID accessor
// that returns the row regardless of its status; callers that only want
// visible accounts check the normalized status themselves. Status
// updates likewise never filter on the current value, so a deactivated
// account can always be re-activated.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, name, email, password_hash, role, active, created_at, updated_at"

// Create inserts a user and returns its ID. Manager accounts start
// inactive and wait for admin approval; customers and admins start
// active.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	active := 1
	if role == model.RoleManager {
		active = 0
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, active) VALUES (?,?,?,?,?)",
		name, email, hash, role, active)
	if err != nil {
		if IsDuplicateEntry(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email. Returns
// ErrUserNotFound when no row exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by primary key with no status filter. Inactive
// and soft-deleted rows are returned too; the caller decides visibility.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) scanOne(ctx context.Context, q string, arg any) (model.User, error) {
	var (
		u         model.User
		rawActive any
	)
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &rawActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	st, err := status.Normalize(rawActive)
	if err != nil {
		return model.User{}, err
	}
	u.Active = st
	return u, nil
}

// ActiveRaw re-reads only the active column by primary key and returns
// it unnormalized. The verify-after-write reconciler uses this to
// observe exactly what the store persisted.
func (r *UserRepo) ActiveRaw(ctx context.Context, id uint64) (any, error) {
	var raw any
	err := r.DB.QueryRowContext(ctx, "SELECT active FROM users WHERE id=? LIMIT 1", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return raw, err
}

// SetActive writes the canonical status by primary key. The WHERE
// clause matches only on id, never on the current status value.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, st status.Status) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET active=? WHERE id=?", int(st), id)
	if err != nil {
		return err
	}
	return oneRowOr(res, ErrUserNotFound)
}

// SetRole changes the role column by primary key.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", role, id)
	if err != nil {
		return err
	}
	return oneRowOr(res, ErrUserNotFound)
}

// PendingManagers returns manager accounts that have not been
// activated yet, oldest first. NULL active counts as not activated.
func (r *UserRepo) PendingManagers(ctx context.Context) ([]model.User, error) {
	const q = "SELECT " + userColumns + " FROM users WHERE role=? AND (active IS NULL OR active=0) ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, q, model.RoleManager)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var (
			u         model.User
			rawActive any
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &rawActive,
			&u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		st, err := status.Normalize(rawActive)
		if err != nil {
			return nil, err
		}
		u.Active = st
		out = append(out, u)
	}
	return out, rows.Err()
}

// AdminIDs returns the ids of all admin accounts, for fan-out of
// marketplace-wide notifications.
func (r *UserRepo) AdminIDs(ctx context.Context) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id FROM users WHERE role=?", model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// oneRowOr maps "zero rows touched" onto the given sentinel. An UPDATE
// that matches the row but leaves values unchanged still counts as
// matched on MySQL only with CLIENT_FOUND_ROWS; the driver default
// reports changed rows, so callers performing idempotent writes must
// check current state first rather than rely on RowsAffected.
func oneRowOr(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel
	}
	return nil
}

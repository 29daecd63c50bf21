// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrConflict signals that an operation
// cannot proceed due to existing dependent records (e.g. deleting
// a hotel that still has bookings, or replying to a review twice).
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as deleting a hotel that still has bookings
// or setting a reply that already exists. Handlers translate this into
// a 400 with a user-facing explanation.
var ErrConflict = errors.New("conflict")

// Per-entity not-found sentinels. Repositories return these instead of
// sql.ErrNoRows so callers do not depend on database/sql details.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrHotelNotFound   = errors.New("hotel not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrEmailExists     = errors.New("email already exists")
)

// MySQL error numbers recognized as user-caused constraint conflicts.
const (
	mysqlErrDupEntry      = 1062
	mysqlErrRowReferenced = 1451
	mysqlErrNoReferenced  = 1452
)

// IsDuplicateEntry reports whether err is a MySQL unique-key violation.
func IsDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDupEntry
}

// IsForeignKeyViolation reports whether err is a MySQL foreign-key
// violation, either direction (row still referenced, or referencing a
// missing parent).
func IsForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlErrRowReferenced || me.Number == mysqlErrNoReferenced
}

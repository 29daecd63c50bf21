// This file defines repository methods for notifications. Rows are
// written by the background notification worker only; request handlers
// never insert them, so a failed or slow write can never block a
// primary mutation.
package repository

import (
	"context"
	"database/sql"

	"github.com/stayora/hotel-booking-backend/internal/model"
)

// NotificationRepo provides persistence for notification rows.
type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts a notification for a single recipient.
func (r *NotificationRepo) Create(ctx context.Context, recipientID uint64, subject, body, kind string) error {
	const q = "INSERT INTO notifications (recipient_id, subject, body, kind) VALUES (?,?,?,?)"
	_, err := r.db.ExecContext(ctx, q, recipientID, subject, body, kind)
	return err
}

// CreateForAdmins fans one notification out to every admin account in a
// single INSERT ... SELECT.
func (r *NotificationRepo) CreateForAdmins(ctx context.Context, subject, body, kind string) error {
	const q = `INSERT INTO notifications (recipient_id, subject, body, kind)
		SELECT id, ?, ?, ? FROM users WHERE role = ?`
	_, err := r.db.ExecContext(ctx, q, subject, body, kind, model.RoleAdmin)
	return err
}

// ListByRecipient returns a user's notifications, newest first.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, recipientID uint64, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const q = "SELECT id, recipient_id, subject, body, kind, created_at FROM notifications WHERE recipient_id=? ORDER BY id DESC LIMIT ?"
	rows, err := r.db.QueryContext(ctx, q, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Subject, &n.Body, &n.Kind, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// CountByKind counts notifications of a given kind. Integration tests
// use this to assert that a rolled-back registration fanned out nothing.
func (r *NotificationRepo) CountByKind(ctx context.Context, kind string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications WHERE kind=?", kind).Scan(&n)
	return n, err
}

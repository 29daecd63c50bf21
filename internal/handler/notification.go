package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/stayora/hotel-booking-backend/internal/repository"
)

// NotificationHandler lets a user read their own notification feed.
// Rows are written only by the lifecycle worker and never change
// afterwards, so the feed is read-only.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}
	limit := 50
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	notes, err := h.Notifications.ListByRecipient(c.Request().Context(), userID, limit)
	if err != nil {
		return respondErr(c, err)
	}
	type noteView struct {
		ID      uint64 `json:"id"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
		Kind    string `json:"kind"`
	}
	views := make([]noteView, 0, len(notes))
	for _, n := range notes {
		views = append(views, noteView{ID: n.ID, Subject: n.Subject, Body: n.Body, Kind: n.Kind})
	}
	return respondOK(c, http.StatusOK, "notifications", views)
}

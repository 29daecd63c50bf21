package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stayora/hotel-booking-backend/internal/engine"
	"github.com/stayora/hotel-booking-backend/internal/model"
	"github.com/stayora/hotel-booking-backend/internal/queue"
	"github.com/stayora/hotel-booking-backend/internal/repository"
	"github.com/stayora/hotel-booking-backend/internal/status"
)

// AdminUserHandler implements the admin account lifecycle: approving
// manager registrations, blocking accounts, soft deletion and role
// changes. Status writes are verified by re-reading the row through the
// reconciler; applying a status the account already has is a no-op
// success.
type AdminUserHandler struct {
	Users     *repository.UserRepo
	Tokens    *repository.TokenRepo
	Reconcile engine.Reconciler
	Dispatch  EventDispatcher
}

func NewAdminUserHandler(users *repository.UserRepo, tokens *repository.TokenRepo, rec engine.Reconciler, d EventDispatcher) *AdminUserHandler {
	return &AdminUserHandler{Users: users, Tokens: tokens, Reconcile: rec, Dispatch: d}
}

// PendingManagers lists manager accounts awaiting approval.
func (h *AdminUserHandler) PendingManagers(c echo.Context) error {
	users, err := h.Users.PendingManagers(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	type userView struct {
		ID    uint64 `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return respondOK(c, http.StatusOK, "pending managers", views)
}

// Approve activates an account.
func (h *AdminUserHandler) Approve(c echo.Context) error {
	return h.setStatus(c, status.Active, "approve")
}

// Block deactivates an account without touching its data.
func (h *AdminUserHandler) Block(c echo.Context) error {
	return h.setStatus(c, status.Inactive, "block")
}

// Delete soft-deletes an account: the row stays, the status flips to
// inactive and every refresh session is revoked.
func (h *AdminUserHandler) Delete(c echo.Context) error {
	return h.setStatus(c, status.Inactive, "delete")
}

// setStatus applies a canonical status to the target account. The write
// is skipped entirely when the normalized current status already equals
// the requested one, then verified by re-reading the raw column.
func (h *AdminUserHandler) setStatus(c echo.Context, want status.Status, action string) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid user id")
	}
	ctx := c.Request().Context()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	if u.Active == want {
		return respondOK(c, http.StatusOK, "account already "+want.String(), echo.Map{"id": id, "active": want.Bool()})
	}

	if err := h.Users.SetActive(ctx, id, want); err != nil {
		return respondErr(c, err)
	}
	read := func(ctx context.Context) (any, error) { return h.Users.ActiveRaw(ctx, id) }
	if err := h.Reconcile.Confirm(ctx, read, want); err != nil {
		return respondErr(c, err)
	}

	if action == "delete" || want == status.Inactive {
		_ = h.Tokens.RevokeAllForUser(ctx, id)
	}

	h.Dispatch.Dispatch(queue.Event{
		Kind: queue.KindUserStatusChanged,
		User: &queue.UserEvent{UserID: id, Email: u.Email, Action: action, Active: want.Bool()},
	})
	return respondOK(c, http.StatusOK, "account "+want.String(), echo.Map{"id": id, "active": want.Bool()})
}

type roleRequest struct {
	Role string `json:"role"`
}

// SetRole changes an account's role.
func (h *AdminUserHandler) SetRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid user id")
	}
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid request body")
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	switch role {
	case model.RoleCustomer, model.RoleManager, model.RoleAdmin:
	default:
		return respondFail(c, http.StatusBadRequest, "unknown role")
	}
	ctx := c.Request().Context()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	if u.Role == role {
		return respondOK(c, http.StatusOK, "role unchanged", echo.Map{"id": id, "role": role})
	}
	if err := h.Users.SetRole(ctx, id, role); err != nil {
		return respondErr(c, err)
	}

	h.Dispatch.Dispatch(queue.Event{
		Kind: queue.KindUserStatusChanged,
		User: &queue.UserEvent{UserID: id, Email: u.Email, Action: "role_change", Active: u.Active.Bool()},
	})
	return respondOK(c, http.StatusOK, "role updated", echo.Map{"id": id, "role": role})
}

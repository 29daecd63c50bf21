package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stayora/hotel-booking-backend/internal/engine"
	"github.com/stayora/hotel-booking-backend/internal/model"
	"github.com/stayora/hotel-booking-backend/internal/queue"
	"github.com/stayora/hotel-booking-backend/internal/repository"
)

// AdminHotelHandler serves the admin review queue. Listing decisions
// are one-shot: a pending hotel becomes active or rejected and then
// never changes status again.
type AdminHotelHandler struct {
	Hotels   *repository.HotelRepo
	Engine   *engine.Engine
	Dispatch EventDispatcher
}

func NewAdminHotelHandler(hotels *repository.HotelRepo, eng *engine.Engine, d EventDispatcher) *AdminHotelHandler {
	return &AdminHotelHandler{Hotels: hotels, Engine: eng, Dispatch: d}
}

// ListPending returns hotels awaiting review, oldest first.
func (h *AdminHotelHandler) ListPending(c echo.Context) error {
	limit, offset := pageParams(c)
	hotels, err := h.Hotels.ListByStatus(c.Request().Context(), model.HotelPending, limit, offset)
	if err != nil {
		return respondErr(c, err)
	}
	views := make([]hotelView, 0, len(hotels))
	for _, ht := range hotels {
		v := publicHotelView(ht)
		v.Status = ht.Status
		views = append(views, v)
	}
	return respondOK(c, http.StatusOK, "pending hotels", views)
}

type decideRequest struct {
	Status string `json:"status"`
}

// Decide moves a pending hotel to active or rejected. The status row is
// locked during the transition, so two concurrent decisions cannot both
// succeed; the loser gets an invalid-transition error.
func (h *AdminHotelHandler) Decide(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid hotel id")
	}
	var req decideRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid request body")
	}
	to := strings.ToLower(strings.TrimSpace(req.Status))
	ctx := c.Request().Context()

	ht, err := h.Hotels.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}

	plan := engine.Plan{Name: "hotel.decide", Steps: []engine.Step{
		{Name: "set-status", Run: func(ctx context.Context, tx *sql.Tx) error {
			_, err := h.Hotels.SetStatusTx(ctx, tx, id, to)
			return err
		}},
	}}
	if err := h.Engine.Execute(ctx, plan); err != nil {
		return respondErr(c, err)
	}

	h.Dispatch.Dispatch(queue.Event{
		Kind:  queue.KindHotelStatusChanged,
		Hotel: &queue.HotelEvent{HotelID: ht.ID, OwnerID: ht.OwnerID, Name: ht.Name, Status: to},
	})
	return respondOK(c, http.StatusOK, "hotel "+to, echo.Map{"id": id, "status": to})
}

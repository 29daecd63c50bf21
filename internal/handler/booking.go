package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stayora/hotel-booking-backend/internal/authz"
	"github.com/stayora/hotel-booking-backend/internal/engine"
	"github.com/stayora/hotel-booking-backend/internal/model"
	"github.com/stayora/hotel-booking-backend/internal/queue"
	"github.com/stayora/hotel-booking-backend/internal/repository"
)

// BookingHandler implements the booking lifecycle. Status transitions
// run through the gate first and then through a locked read-check-write
// plan, so concurrent transitions serialize and every change obeys the
// booking state machine.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Hotels   *repository.HotelRepo
	Engine   *engine.Engine
	Gate     *authz.Gate
	Dispatch EventDispatcher
}

func NewBookingHandler(bookings *repository.BookingRepo, hotels *repository.HotelRepo, eng *engine.Engine, gate *authz.Gate, d EventDispatcher) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Hotels: hotels, Engine: eng, Gate: gate, Dispatch: d}
}

const dateLayout = "2006-01-02"

type createBookingRequest struct {
	HotelID    uint64 `json:"hotel_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	RoomCount  uint32 `json:"room_count"`
	GuestCount uint32 `json:"guest_count"`
	TotalCents uint64 `json:"total_cents"`
}

// Create places a new booking in the pending state. Only active hotels
// can be booked; anything else looks like a missing hotel.
func (h *BookingHandler) Create(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid request body")
	}
	checkIn, err1 := time.Parse(dateLayout, req.CheckIn)
	checkOut, err2 := time.Parse(dateLayout, req.CheckOut)
	if err1 != nil || err2 != nil || !checkIn.Before(checkOut) {
		return respondFail(c, http.StatusBadRequest, "check_in must be a date before check_out")
	}
	if req.RoomCount < 1 || req.GuestCount < 1 {
		return respondFail(c, http.StatusBadRequest, "room_count and guest_count must be at least 1")
	}
	ctx := c.Request().Context()

	ht, err := h.Hotels.GetByID(ctx, req.HotelID)
	if err != nil {
		return respondErr(c, err)
	}
	if ht.Status != model.HotelActive {
		return respondFail(c, http.StatusNotFound, "resource not found")
	}

	b := &model.Booking{
		HotelID:    req.HotelID,
		CustomerID: p.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		RoomCount:  req.RoomCount,
		GuestCount: req.GuestCount,
		TotalCents: req.TotalCents,
	}
	if err := h.Bookings.Create(ctx, b); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, http.StatusCreated, "booking placed", echo.Map{"id": b.ID, "status": b.Status})
}

// Mine lists the caller's bookings.
func (h *BookingHandler) Mine(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}
	bookings, err := h.Bookings.ListByCustomer(c.Request().Context(), p.ID)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, http.StatusOK, "bookings", bookingViews(bookings))
}

// ByHotel lists all bookings of one of the caller's hotels.
func (h *BookingHandler) ByHotel(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}
	hotelID, err := pathID(c, "id")
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid hotel id")
	}
	ctx := c.Request().Context()
	if _, err := h.Gate.AuthorizeHotel(ctx, p, hotelID); err != nil {
		return respondErr(c, err)
	}
	bookings, err := h.Bookings.ListByHotel(ctx, hotelID)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, http.StatusOK, "bookings", bookingViews(bookings))
}

// Get returns one booking visible to any party of its ownership chain.
func (h *BookingHandler) Get(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid booking id")
	}
	ctx := c.Request().Context()
	if _, err := h.Gate.AuthorizeBooking(ctx, p, id); err != nil {
		return respondErr(c, err)
	}
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, http.StatusOK, "booking", bookingViews([]model.Booking{b})[0])
}

type transitionRequest struct {
	Status string `json:"status"`
}

// Transition moves a booking to a new status. The gate decides who may
// act at all; customers are further restricted to cancellation, while
// owners and admins may apply any transition the state machine allows.
func (h *BookingHandler) Transition(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid booking id")
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid request body")
	}
	to := strings.ToLower(strings.TrimSpace(req.Status))
	if !model.ValidBookingStatus(to) {
		return respondFail(c, http.StatusBadRequest, "unknown booking status")
	}
	ctx := c.Request().Context()

	decision, err := h.Gate.AuthorizeBooking(ctx, p, id)
	if err != nil {
		return respondErr(c, err)
	}
	if decision.Scope == authz.ScopeCustomer && to != model.BookingCancelled {
		return respondErr(c, &authz.Denial{Reason: authz.ReasonNotOwner})
	}

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	ht, err := h.Hotels.GetByID(ctx, b.HotelID)
	if err != nil {
		return respondErr(c, err)
	}

	var from string
	plan := engine.Plan{Name: "booking.transition", Steps: []engine.Step{
		{Name: "lock-and-check", Run: func(ctx context.Context, tx *sql.Tx) error {
			var err error
			from, err = h.Bookings.StatusForUpdateTx(ctx, tx, id)
			if err != nil {
				return err
			}
			return model.CheckBookingTransition(from, to)
		}},
		{Name: "update-status", Run: func(ctx context.Context, tx *sql.Tx) error {
			return h.Bookings.UpdateStatusTx(ctx, tx, id, to)
		}},
	}}
	if err := h.Engine.Execute(ctx, plan); err != nil {
		return respondErr(c, err)
	}

	h.Dispatch.Dispatch(queue.Event{
		Kind: queue.KindBookingStatusChanged,
		Booking: &queue.BookingEvent{
			BookingID:  id,
			HotelID:    b.HotelID,
			HotelName:  ht.Name,
			CustomerID: b.CustomerID,
			From:       from,
			To:         to,
		},
	})
	return respondOK(c, http.StatusOK, "booking "+to, echo.Map{"id": id, "status": to})
}

type bookingView struct {
	ID         uint64 `json:"id"`
	HotelID    uint64 `json:"hotel_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	RoomCount  uint32 `json:"room_count"`
	GuestCount uint32 `json:"guest_count"`
	TotalCents uint64 `json:"total_cents"`
	Status     string `json:"status"`
}

func bookingViews(bookings []model.Booking) []bookingView {
	views := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, bookingView{
			ID:         b.ID,
			HotelID:    b.HotelID,
			CheckIn:    b.CheckIn.Format(dateLayout),
			CheckOut:   b.CheckOut.Format(dateLayout),
			RoomCount:  b.RoomCount,
			GuestCount: b.GuestCount,
			TotalCents: b.TotalCents,
			Status:     b.Status,
		})
	}
	return views
}

package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stayora/hotel-booking-backend/internal/authz"
	"github.com/stayora/hotel-booking-backend/internal/model"
	"github.com/stayora/hotel-booking-backend/internal/repository"
)

// ReviewHandler implements customer reviews and owner replies. A
// review requires a completed booking owned by the caller; a reply
// requires ownership of the reviewed hotel and may happen once.
type ReviewHandler struct {
	Reviews  *repository.ReviewRepo
	Bookings *repository.BookingRepo
	Gate     *authz.Gate
}

func NewReviewHandler(reviews *repository.ReviewRepo, bookings *repository.BookingRepo, gate *authz.Gate) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews, Bookings: bookings, Gate: gate}
}

type createReviewRequest struct {
	Rating  uint8  `json:"rating"`
	Content string `json:"content"`
}

// Create writes a review for one of the caller's completed bookings.
// The booking id comes from the path.
func (h *ReviewHandler) Create(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid booking id")
	}
	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return respondFail(c, http.StatusBadRequest, "rating must be between 1 and 5")
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return respondFail(c, http.StatusBadRequest, "content is required")
	}
	ctx := c.Request().Context()

	_, err = h.Bookings.CompletedByIDAndCustomer(ctx, bookingID, p.ID)
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return respondFail(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, repository.ErrConflict):
		return respondFail(c, http.StatusBadRequest, "only completed bookings can be reviewed")
	case err != nil:
		return respondErr(c, err)
	}

	rv := &model.Review{BookingID: bookingID, CustomerID: p.ID, Rating: req.Rating, Content: req.Content}
	if err := h.Reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return respondFail(c, http.StatusConflict, "booking already has a review")
		}
		return respondErr(c, err)
	}
	return respondOK(c, http.StatusCreated, "review created", echo.Map{"id": rv.ID})
}

type replyRequest struct {
	Reply string `json:"reply"`
}

// Reply records the hotel party's one-time answer to a review.
func (h *ReviewHandler) Reply(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid review id")
	}
	var req replyRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid request body")
	}
	req.Reply = strings.TrimSpace(req.Reply)
	if req.Reply == "" {
		return respondFail(c, http.StatusBadRequest, "reply is required")
	}
	ctx := c.Request().Context()

	if _, err := h.Gate.AuthorizeReviewReply(ctx, p, id); err != nil {
		return respondErr(c, err)
	}
	if err := h.Reviews.SetReplyOnce(ctx, id, req.Reply); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return respondFail(c, http.StatusConflict, "review already has a reply")
		}
		return respondErr(c, err)
	}
	return respondOK(c, http.StatusOK, "reply recorded", nil)
}

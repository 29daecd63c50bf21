package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/stayora/hotel-booking-backend/internal/model"
	"github.com/stayora/hotel-booking-backend/internal/repository"
)

// PublicHotelHandler serves the unauthenticated browse endpoints. Only
// hotels with an active listing status are visible here; pending and
// rejected hotels answer 404 exactly like hotels that do not exist.
type PublicHotelHandler struct {
	Hotels  *repository.HotelRepo
	Reviews *repository.ReviewRepo
}

func NewPublicHotelHandler(hotels *repository.HotelRepo, reviews *repository.ReviewRepo) *PublicHotelHandler {
	return &PublicHotelHandler{Hotels: hotels, Reviews: reviews}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func pageParams(c echo.Context) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

type hotelView struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Contact      string  `json:"contact"`
	StarRating   uint8   `json:"star_rating"`
	Status       string  `json:"status,omitempty"`
	MainImageURL *string `json:"main_image_url,omitempty"`
}

func publicHotelView(h model.Hotel) hotelView {
	return hotelView{
		ID:           h.ID,
		Name:         h.Name,
		Address:      h.Address,
		Contact:      h.Contact,
		StarRating:   h.StarRating,
		MainImageURL: h.MainImageURL,
	}
}

// List returns active hotels, newest first, paginated.
func (h *PublicHotelHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)
	hotels, err := h.Hotels.ListActive(c.Request().Context(), limit, offset)
	if err != nil {
		return respondErr(c, err)
	}
	views := make([]hotelView, 0, len(hotels))
	for _, ht := range hotels {
		views = append(views, publicHotelView(ht))
	}
	return respondOK(c, http.StatusOK, "hotels", views)
}

// Get returns one active hotel with its images.
func (h *PublicHotelHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid hotel id")
	}
	ctx := c.Request().Context()

	ht, err := h.Hotels.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	if ht.Status != model.HotelActive {
		return respondFail(c, http.StatusNotFound, "resource not found")
	}
	imgs, err := h.Hotels.Images(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	urls := make([]string, 0, len(imgs))
	for _, img := range imgs {
		urls = append(urls, img.URL)
	}
	view := publicHotelView(ht)
	return respondOK(c, http.StatusOK, "hotel", echo.Map{"hotel": view, "images": urls})
}

// ListReviews returns the reviews of an active hotel.
func (h *PublicHotelHandler) ListReviews(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid hotel id")
	}
	ctx := c.Request().Context()

	ht, err := h.Hotels.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	if ht.Status != model.HotelActive {
		return respondFail(c, http.StatusNotFound, "resource not found")
	}
	reviews, err := h.Reviews.ListByHotel(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	type reviewView struct {
		ID      uint64  `json:"id"`
		Rating  uint8   `json:"rating"`
		Content string  `json:"content"`
		Reply   *string `json:"reply,omitempty"`
		Created string  `json:"created_at"`
	}
	views := make([]reviewView, 0, len(reviews))
	for _, rv := range reviews {
		views = append(views, reviewView{
			ID: rv.ID, Rating: rv.Rating, Content: rv.Content, Reply: rv.Reply,
			Created: rv.CreatedAt.UTC().Format("2006-01-02"),
		})
	}
	return respondOK(c, http.StatusOK, "reviews", views)
}

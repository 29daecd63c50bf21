package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/stayora/hotel-booking-backend/internal/authz"
	"github.com/stayora/hotel-booking-backend/internal/blob"
	"github.com/stayora/hotel-booking-backend/internal/engine"
	"github.com/stayora/hotel-booking-backend/internal/model"
	"github.com/stayora/hotel-booking-backend/internal/queue"
	"github.com/stayora/hotel-booking-backend/internal/repository"
)

const maxHotelImages = 10

// OwnerHotelHandler serves the manager-facing hotel endpoints. Every
// mutation on an existing hotel passes the ownership gate first, and
// the multi-row writes (register, delete) run as engine plans so a
// half-created or half-deleted hotel can never be observed.
type OwnerHotelHandler struct {
	Hotels   *repository.HotelRepo
	Engine   *engine.Engine
	Blobs    blob.Store
	Gate     *authz.Gate
	Dispatch EventDispatcher
}

func NewOwnerHotelHandler(hotels *repository.HotelRepo, eng *engine.Engine, blobs blob.Store, gate *authz.Gate, d EventDispatcher) *OwnerHotelHandler {
	return &OwnerHotelHandler{Hotels: hotels, Engine: eng, Blobs: blobs, Gate: gate, Dispatch: d}
}

// Register creates a hotel from a multipart form. The hotel row, its
// image rows and the main-image pointer commit atomically; each image
// blob is stored before its row is written so a rollback leaves at
// worst orphaned files, never rows pointing at missing files.
func (h *OwnerHotelHandler) Register(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx := c.Request().Context()

	name := strings.TrimSpace(c.FormValue("name"))
	address := strings.TrimSpace(c.FormValue("address"))
	contact := strings.TrimSpace(c.FormValue("contact"))
	stars, err := strconv.Atoi(c.FormValue("star_rating"))
	if name == "" || address == "" || err != nil || stars < 1 || stars > 5 {
		return respondFail(c, http.StatusBadRequest, "name, address and a star_rating between 1 and 5 are required")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "multipart form required")
	}
	files := form.File["images"]
	if len(files) > maxHotelImages {
		return respondFail(c, http.StatusBadRequest, fmt.Sprintf("at most %d images are allowed", maxHotelImages))
	}

	hotel := &model.Hotel{OwnerID: p.ID, Name: name, Address: address, Contact: contact, StarRating: uint8(stars)}

	var uploaded []string // blob refs written so far, reclaimed on rollback
	steps := []engine.Step{{
		Name: "insert-hotel",
		Run: func(ctx context.Context, tx *sql.Tx) error {
			return h.Hotels.CreateTx(ctx, tx, hotel)
		},
	}}
	for i, fh := range files {
		fh := fh
		n := i
		steps = append(steps, engine.Step{
			Name: fmt.Sprintf("store-image-%d", n+1),
			Run: func(ctx context.Context, tx *sql.Tx) error {
				src, err := fh.Open()
				if err != nil {
					return err
				}
				defer src.Close()
				key := fmt.Sprintf("hotels/%d/%d%s", hotel.ID, n+1, safeExt(fh.Filename))
				ref, err := h.Blobs.Put(ctx, key, src, fh.Header.Get("Content-Type"))
				if err != nil {
					return err
				}
				uploaded = append(uploaded, ref)
				return h.Hotels.AddImageTx(ctx, tx, &model.HotelImage{HotelID: hotel.ID, URL: ref, IsMain: n == 0})
			},
		})
	}
	if len(files) > 0 {
		steps = append(steps, engine.Step{
			Name: "set-main-image",
			Run: func(ctx context.Context, tx *sql.Tx) error {
				return h.Hotels.SetMainImageTx(ctx, tx, hotel.ID, uploaded[0])
			},
		})
	}

	if err := h.Engine.Execute(ctx, engine.Plan{Name: "hotel.register", Steps: steps}); err != nil {
		h.reclaim(uploaded)
		return respondErr(c, err)
	}

	h.Dispatch.Dispatch(queue.Event{
		Kind:  queue.KindHotelRegistered,
		Hotel: &queue.HotelEvent{HotelID: hotel.ID, OwnerID: p.ID, Name: hotel.Name, Status: hotel.Status},
	})
	return respondOK(c, http.StatusCreated, "hotel registered, awaiting review", echo.Map{"id": hotel.ID, "status": hotel.Status})
}

// Mine lists the caller's hotels in every listing status.
func (h *OwnerHotelHandler) Mine(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}
	hotels, err := h.Hotels.ListByOwner(c.Request().Context(), p.ID)
	if err != nil {
		return respondErr(c, err)
	}
	views := make([]hotelView, 0, len(hotels))
	for _, ht := range hotels {
		v := publicHotelView(ht)
		v.Status = ht.Status
		views = append(views, v)
	}
	return respondOK(c, http.StatusOK, "hotels", views)
}

type updateHotelRequest struct {
	Name       *string `json:"name"`
	Address    *string `json:"address"`
	Contact    *string `json:"contact"`
	StarRating *uint8  `json:"star_rating"`
}

// Update edits the owner-editable fields of a hotel. Ownership and
// listing status never change here.
func (h *OwnerHotelHandler) Update(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid hotel id")
	}
	ctx := c.Request().Context()

	if _, err := h.Gate.AuthorizeHotel(ctx, p, id); err != nil {
		return respondErr(c, err)
	}

	var req updateHotelRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid request body")
	}
	ht, err := h.Hotels.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	if req.Name != nil {
		ht.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		ht.Address = strings.TrimSpace(*req.Address)
	}
	if req.Contact != nil {
		ht.Contact = strings.TrimSpace(*req.Contact)
	}
	if req.StarRating != nil {
		ht.StarRating = *req.StarRating
	}
	if ht.Name == "" || ht.Address == "" || ht.StarRating < 1 || ht.StarRating > 5 {
		return respondFail(c, http.StatusBadRequest, "name, address and a star_rating between 1 and 5 are required")
	}
	if err := h.Hotels.Update(ctx, ht); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, http.StatusOK, "hotel updated", nil)
}

// Delete removes a hotel and its image rows in one transaction. A
// hotel still referenced by bookings cannot be deleted. Blob files are
// reclaimed only after the commit.
func (h *OwnerHotelHandler) Delete(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid hotel id")
	}
	ctx := c.Request().Context()

	if _, err := h.Gate.AuthorizeHotel(ctx, p, id); err != nil {
		return respondErr(c, err)
	}

	var urls []string
	plan := engine.Plan{Name: "hotel.delete", Steps: []engine.Step{
		{Name: "delete-images", Run: func(ctx context.Context, tx *sql.Tx) error {
			var err error
			urls, err = h.Hotels.DeleteImagesTx(ctx, tx, id)
			return err
		}},
		{Name: "delete-hotel", Run: func(ctx context.Context, tx *sql.Tx) error {
			return h.Hotels.DeleteTx(ctx, tx, id)
		}},
	}}
	if err := h.Engine.Execute(ctx, plan); err != nil {
		return respondErr(c, err)
	}
	h.reclaim(urls)
	return respondOK(c, http.StatusOK, "hotel deleted", nil)
}

// reclaim removes blob files best effort. Failures are logged and
// otherwise ignored; a leaked file never fails the request.
func (h *OwnerHotelHandler) reclaim(refs []string) {
	if len(refs) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, ref := range refs {
			if err := h.Blobs.Remove(ctx, ref); err != nil {
				log.Warn().Err(err).Str("ref", ref).Msg("blob reclaim failed")
			}
		}
	}()
}

// safeExt returns the lowercase file extension when it looks like an
// image extension, empty string otherwise.
func safeExt(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	}
	return ""
}

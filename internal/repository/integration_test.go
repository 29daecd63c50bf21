//go:build integration || !unit

package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/rs/zerolog"

	"github.com/stayora/hotel-booking-backend/internal/engine"
	"github.com/stayora/hotel-booking-backend/internal/handler"
	"github.com/stayora/hotel-booking-backend/internal/model"
	"github.com/stayora/hotel-booking-backend/internal/queue"
	"github.com/stayora/hotel-booking-backend/internal/repository"
	"github.com/stayora/hotel-booking-backend/internal/status"
)

// recordingDispatcher captures lifecycle events so tests can assert a
// mutation path did or did not fire one.
type recordingDispatcher struct {
	events []queue.Event
}

func (d *recordingDispatcher) Dispatch(event queue.Event) { d.events = append(d.events, event) }

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=stayora_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/stayora_test?parseTime=true&multiStatements=true&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_schema.sql"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func seedUser(t *testing.T, users *repository.UserRepo, name, email, role string) uint64 {
	t.Helper()
	id, err := users.Create(context.Background(), name, email, "password1", role, 4)
	if err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
	return id
}

func seedActiveHotel(t *testing.T, db *sql.DB, ownerID uint64) uint64 {
	t.Helper()
	res, err := db.Exec(
		"INSERT INTO hotels (owner_id, name, address, contact, star_rating, status) VALUES (?,?,?,?,?,?)",
		ownerID, "Seaside", "1 Shore Rd", "front@seaside.test", 4, model.HotelActive)
	if err != nil {
		t.Fatalf("seed hotel: %v", err)
	}
	id, _ := res.LastInsertId()
	return uint64(id)
}

func seedBooking(t *testing.T, bookings *repository.BookingRepo, hotelID, customerID uint64) *model.Booking {
	t.Helper()
	b := &model.Booking{
		HotelID:    hotelID,
		CustomerID: customerID,
		CheckIn:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC),
		RoomCount:  1,
		GuestCount: 2,
		TotalCents: 45000,
	}
	if err := bookings.Create(context.Background(), b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

func TestLifecycleAgainstMySQL(t *testing.T) {
	db := startMySQL(t)
	ctx := context.Background()

	users := repository.NewUserRepo(db)
	hotels := repository.NewHotelRepo(db)
	bookings := repository.NewBookingRepo(db)
	reviews := repository.NewReviewRepo(db)
	eng := engine.New(db, zerolog.Nop())

	managerID := seedUser(t, users, "Morgan", "morgan@stayora.test", model.RoleManager)
	customerID := seedUser(t, users, "Casey", "casey@stayora.test", model.RoleCustomer)

	t.Run("manager starts inactive and approval round-trips", func(t *testing.T) {
		u, err := users.GetByID(ctx, managerID)
		if err != nil {
			t.Fatalf("get manager: %v", err)
		}
		if u.Active.Bool() {
			t.Fatal("fresh manager must be inactive")
		}
		if err := users.SetActive(ctx, managerID, status.Active); err != nil {
			t.Fatalf("activate: %v", err)
		}
		read := func(ctx context.Context) (any, error) { return users.ActiveRaw(ctx, managerID) }
		if err := (engine.Reconciler{}).Confirm(ctx, read, status.Active); err != nil {
			t.Fatalf("verify-after-write: %v", err)
		}
	})

	t.Run("approving an already active account skips the write", func(t *testing.T) {
		if err := users.SetActive(ctx, managerID, status.Active); err != nil {
			t.Fatalf("activate: %v", err)
		}
		disp := &recordingDispatcher{}
		admin := handler.NewAdminUserHandler(users, repository.NewTokenRepo(db), engine.Reconciler{}, disp)

		e := echo.New()
		req := httptest.NewRequest(http.MethodPatch, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(managerID))

		if err := admin.Approve(c); err != nil {
			t.Fatalf("approve: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"success":true`) {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
		if len(disp.events) != 0 {
			t.Fatalf("no-op approval dispatched %d events", len(disp.events))
		}
		u, err := users.GetByID(ctx, managerID)
		if err != nil {
			t.Fatalf("get manager: %v", err)
		}
		if u.Active != status.Active {
			t.Fatal("account must stay active")
		}
	})

	t.Run("failed registration plan leaves no rows", func(t *testing.T) {
		hotel := &model.Hotel{OwnerID: managerID, Name: "Ghost Inn", Address: "nowhere", StarRating: 3}
		plan := engine.Plan{Name: "hotel.register", Steps: []engine.Step{
			{Name: "insert-hotel", Run: func(ctx context.Context, tx *sql.Tx) error {
				return hotels.CreateTx(ctx, tx, hotel)
			}},
			{Name: "store-image-1", Run: func(ctx context.Context, tx *sql.Tx) error {
				return errors.New("blob write failed")
			}},
		}}
		err := eng.Execute(ctx, plan)
		var stepErr *engine.StepError
		if !errors.As(err, &stepErr) || stepErr.Step != "store-image-1" {
			t.Fatalf("expected step error from store-image-1, got %v", err)
		}
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM hotels WHERE name='Ghost Inn'").Scan(&n); err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 0 {
			t.Fatalf("rolled-back registration left %d hotel rows", n)
		}
	})

	hotelID := seedActiveHotel(t, db, managerID)

	transition := func(id uint64, to string) error {
		return eng.Execute(ctx, engine.Plan{Name: "booking.transition", Steps: []engine.Step{
			{Name: "lock-and-check", Run: func(ctx context.Context, tx *sql.Tx) error {
				from, err := bookings.StatusForUpdateTx(ctx, tx, id)
				if err != nil {
					return err
				}
				return model.CheckBookingTransition(from, to)
			}},
			{Name: "update-status", Run: func(ctx context.Context, tx *sql.Tx) error {
				return bookings.UpdateStatusTx(ctx, tx, id, to)
			}},
		}})
	}

	var bookingID uint64
	t.Run("booking walks pending to completed", func(t *testing.T) {
		b := seedBooking(t, bookings, hotelID, customerID)
		bookingID = b.ID
		if b.Status != model.BookingPending {
			t.Fatalf("new booking status = %s", b.Status)
		}
		if err := transition(b.ID, model.BookingConfirmed); err != nil {
			t.Fatalf("confirm: %v", err)
		}
		if err := transition(b.ID, model.BookingCompleted); err != nil {
			t.Fatalf("complete: %v", err)
		}
		if err := transition(b.ID, model.BookingConfirmed); !errors.Is(err, model.ErrInvalidTransition) {
			t.Fatalf("terminal state accepted a transition: %v", err)
		}
		st, err := bookings.StatusByID(ctx, b.ID)
		if err != nil || st != model.BookingCompleted {
			t.Fatalf("status after walk = %q, %v", st, err)
		}
	})

	t.Run("review requires completion and replies once", func(t *testing.T) {
		if _, err := bookings.CompletedByIDAndCustomer(ctx, bookingID, managerID); !errors.Is(err, repository.ErrForbidden) {
			t.Fatalf("foreign booking accepted: %v", err)
		}
		if _, err := bookings.CompletedByIDAndCustomer(ctx, bookingID, customerID); err != nil {
			t.Fatalf("completed booking rejected: %v", err)
		}
		rv := &model.Review{BookingID: bookingID, CustomerID: customerID, Rating: 5, Content: "spotless"}
		if err := reviews.Create(ctx, rv); err != nil {
			t.Fatalf("create review: %v", err)
		}
		if err := reviews.Create(ctx, &model.Review{BookingID: bookingID, CustomerID: customerID, Rating: 1, Content: "again"}); !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("second review accepted: %v", err)
		}
		if err := reviews.SetReplyOnce(ctx, rv.ID, "thank you"); err != nil {
			t.Fatalf("first reply: %v", err)
		}
		if err := reviews.SetReplyOnce(ctx, rv.ID, "sneaky edit"); !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("second reply accepted: %v", err)
		}
	})

	t.Run("referenced hotel cannot be deleted", func(t *testing.T) {
		plan := engine.Plan{Name: "hotel.delete", Steps: []engine.Step{
			{Name: "delete-images", Run: func(ctx context.Context, tx *sql.Tx) error {
				_, err := hotels.DeleteImagesTx(ctx, tx, hotelID)
				return err
			}},
			{Name: "delete-hotel", Run: func(ctx context.Context, tx *sql.Tx) error {
				return hotels.DeleteTx(ctx, tx, hotelID)
			}},
		}}
		if err := eng.Execute(ctx, plan); !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("delete of referenced hotel: %v", err)
		}
		if _, err := hotels.GetByID(ctx, hotelID); err != nil {
			t.Fatalf("hotel vanished after failed delete: %v", err)
		}
	})

	t.Run("admin decision locks and rejects repeats", func(t *testing.T) {
		pending := &model.Hotel{OwnerID: managerID, Name: "Hilltop", Address: "2 Ridge Way", StarRating: 5}
		if err := eng.Execute(ctx, engine.Plan{Name: "hotel.register", Steps: []engine.Step{
			{Name: "insert-hotel", Run: func(ctx context.Context, tx *sql.Tx) error {
				return hotels.CreateTx(ctx, tx, pending)
			}},
		}}); err != nil {
			t.Fatalf("register: %v", err)
		}
		decide := func(to string) error {
			return eng.Execute(ctx, engine.Plan{Name: "hotel.decide", Steps: []engine.Step{
				{Name: "set-status", Run: func(ctx context.Context, tx *sql.Tx) error {
					_, err := hotels.SetStatusTx(ctx, tx, pending.ID, to)
					return err
				}},
			}})
		}
		if err := decide(model.HotelActive); err != nil {
			t.Fatalf("approve: %v", err)
		}
		if err := decide(model.HotelRejected); !errors.Is(err, model.ErrInvalidTransition) {
			t.Fatalf("second decision accepted: %v", err)
		}
	})
}

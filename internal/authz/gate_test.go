package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stayora/hotel-booking-backend/internal/authz"
	"github.com/stayora/hotel-booking-backend/internal/model"
	"github.com/stayora/hotel-booking-backend/internal/repository"
)

// fakeResolver serves a fixed ownership chain.
type fakeResolver struct {
	hotelOwner map[uint64]uint64
	bookings   map[uint64]repository.BookingParties
	reviews    map[uint64]repository.ReviewParties
	calls      int
}

func (f *fakeResolver) HotelOwner(_ context.Context, id uint64) (uint64, error) {
	f.calls++
	owner, ok := f.hotelOwner[id]
	if !ok {
		return 0, repository.ErrHotelNotFound
	}
	return owner, nil
}

func (f *fakeResolver) BookingParties(_ context.Context, id uint64) (repository.BookingParties, error) {
	f.calls++
	p, ok := f.bookings[id]
	if !ok {
		return repository.BookingParties{}, repository.ErrBookingNotFound
	}
	return p, nil
}

func (f *fakeResolver) ReviewParties(_ context.Context, id uint64) (repository.ReviewParties, error) {
	f.calls++
	p, ok := f.reviews[id]
	if !ok {
		return repository.ReviewParties{}, repository.ErrReviewNotFound
	}
	return p, nil
}

func reasonOf(t *testing.T, err error) authz.Reason {
	t.Helper()
	var d *authz.Denial
	if !errors.As(err, &d) {
		t.Fatalf("want Denial, got %v", err)
	}
	return d.Reason
}

func TestAuthorizeHotel(t *testing.T) {
	res := &fakeResolver{hotelOwner: map[uint64]uint64{10: 7}}
	gate := authz.NewGate(res)
	ctx := context.Background()

	t.Run("owner allowed", func(t *testing.T) {
		d, err := gate.AuthorizeHotel(ctx, authz.Principal{ID: 7, Role: model.RoleManager}, 10)
		if err != nil {
			t.Fatalf("err: %v", err)
		}
		if d.Scope != authz.ScopeOwner || d.OwnerID != 7 {
			t.Fatalf("unexpected decision: %+v", d)
		}
	})

	t.Run("stranger denied as not owner", func(t *testing.T) {
		_, err := gate.AuthorizeHotel(ctx, authz.Principal{ID: 9, Role: model.RoleManager}, 10)
		if got := reasonOf(t, err); got != authz.ReasonNotOwner {
			t.Fatalf("reason = %v, want not owner", got)
		}
		if !errors.Is(err, authz.ErrDenied) {
			t.Fatalf("denial should unwrap to ErrDenied")
		}
	})

	t.Run("missing hotel denied as not found", func(t *testing.T) {
		_, err := gate.AuthorizeHotel(ctx, authz.Principal{ID: 7, Role: model.RoleManager}, 999)
		if got := reasonOf(t, err); got != authz.ReasonNotFound {
			t.Fatalf("reason = %v, want not found", got)
		}
	})

	t.Run("admin bypasses chain", func(t *testing.T) {
		before := res.calls
		d, err := gate.AuthorizeHotel(ctx, authz.Principal{ID: 1, Role: model.RoleAdmin}, 999)
		if err != nil {
			t.Fatalf("err: %v", err)
		}
		if d.Scope != authz.ScopeAdmin {
			t.Fatalf("scope = %v, want admin", d.Scope)
		}
		if res.calls != before {
			t.Fatalf("admin authorization should not hit the resolver")
		}
	})
}

func TestAuthorizeBookingScopes(t *testing.T) {
	res := &fakeResolver{bookings: map[uint64]repository.BookingParties{
		5: {BookingID: 5, HotelID: 10, HotelOwner: 7, CustomerID: 3},
	}}
	gate := authz.NewGate(res)
	ctx := context.Background()

	d, err := gate.AuthorizeBooking(ctx, authz.Principal{ID: 7, Role: model.RoleManager}, 5)
	if err != nil || d.Scope != authz.ScopeOwner {
		t.Fatalf("owner: decision %+v err %v", d, err)
	}

	d, err = gate.AuthorizeBooking(ctx, authz.Principal{ID: 3, Role: model.RoleCustomer}, 5)
	if err != nil || d.Scope != authz.ScopeCustomer {
		t.Fatalf("customer: decision %+v err %v", d, err)
	}

	_, err = gate.AuthorizeBooking(ctx, authz.Principal{ID: 4, Role: model.RoleCustomer}, 5)
	if got := reasonOf(t, err); got != authz.ReasonNotOwner {
		t.Fatalf("stranger reason = %v, want not owner", got)
	}

	_, err = gate.AuthorizeBooking(ctx, authz.Principal{ID: 3, Role: model.RoleCustomer}, 6)
	if got := reasonOf(t, err); got != authz.ReasonNotFound {
		t.Fatalf("missing reason = %v, want not found", got)
	}
}

func TestAuthorizeReviewReply(t *testing.T) {
	res := &fakeResolver{reviews: map[uint64]repository.ReviewParties{
		2: {ReviewID: 2, BookingID: 5, HotelID: 10, HotelOwner: 7, CustomerID: 3},
	}}
	gate := authz.NewGate(res)
	ctx := context.Background()

	if _, err := gate.AuthorizeReviewReply(ctx, authz.Principal{ID: 7, Role: model.RoleManager}, 2); err != nil {
		t.Fatalf("owner reply: %v", err)
	}
	// The reviewing customer is in the chain but may not reply.
	_, err := gate.AuthorizeReviewReply(ctx, authz.Principal{ID: 3, Role: model.RoleCustomer}, 2)
	if got := reasonOf(t, err); got != authz.ReasonNotOwner {
		t.Fatalf("customer reply reason = %v, want not owner", got)
	}
}

// The gate is read-only: repeated calls with identical inputs must keep
// returning the same decision.
func TestGateIdempotent(t *testing.T) {
	res := &fakeResolver{hotelOwner: map[uint64]uint64{10: 7}}
	gate := authz.NewGate(res)
	ctx := context.Background()
	p := authz.Principal{ID: 7, Role: model.RoleManager}
	for i := 0; i < 3; i++ {
		d, err := gate.AuthorizeHotel(ctx, p, 10)
		if err != nil || d.Scope != authz.ScopeOwner {
			t.Fatalf("call %d: decision %+v err %v", i, d, err)
		}
	}
}

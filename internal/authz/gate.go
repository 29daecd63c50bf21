// Package authz implements the ownership gate that sits in front of
// every lifecycle mutation. Given an acting principal and a target
// entity, the gate resolves the target's ownership chain down to its
// root user id and decides whether the principal may act on it. The
// gate only reads; it is safe to call any number of times per request.
//
// Denials distinguish internally between "the row does not exist" and
// "the row belongs to someone else", but both are presented as 404 at
// the HTTP boundary so that non-owners cannot learn what exists.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/stayora/hotel-booking-backend/internal/model"
	"github.com/stayora/hotel-booking-backend/internal/repository"
)

// Principal is the resolved identity of the caller, supplied by the
// JWT middleware and trusted unconditionally by the gate.
type Principal struct {
	ID   uint64
	Role string
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }

// Reason classifies why a request was denied.
type Reason int

const (
	ReasonNotOwner Reason = iota
	ReasonNotFound
)

func (r Reason) String() string {
	if r == ReasonNotFound {
		return "not found"
	}
	return "not owner"
}

// Denial is the gate's rejection. It unwraps to ErrDenied so callers
// can match with errors.Is while still reading the precise Reason.
type Denial struct {
	Reason Reason
}

// ErrDenied is the common sentinel behind every Denial.
var ErrDenied = errors.New("denied")

func (d *Denial) Error() string { return fmt.Sprintf("denied: %s", d.Reason) }
func (d *Denial) Unwrap() error { return ErrDenied }

// Scope describes which relationship authorized the action, so
// handlers can apply per-party rules (a customer may only cancel).
type Scope int

const (
	ScopeAdmin    Scope = iota // admin override, no ownership needed
	ScopeOwner                 // principal owns the hotel behind the target
	ScopeCustomer              // principal is the customer on the target
)

// Decision is the gate's positive answer.
type Decision struct {
	Scope   Scope
	OwnerID uint64 // root owner of the target's chain (0 for admin scope on missing chains)
}

// ChainResolver supplies the ownership chain lookups the gate needs.
// *repository.HotelRepo, *repository.BookingRepo and
// *repository.ReviewRepo satisfy the individual methods; Resolvers
// bundles them.
type ChainResolver interface {
	HotelOwner(ctx context.Context, hotelID uint64) (uint64, error)
	BookingParties(ctx context.Context, bookingID uint64) (repository.BookingParties, error)
	ReviewParties(ctx context.Context, reviewID uint64) (repository.ReviewParties, error)
}

// Gate evaluates ownership for lifecycle operations.
type Gate struct {
	resolver ChainResolver
}

func NewGate(r ChainResolver) *Gate {
	if r == nil {
		panic("nil resolver passed to NewGate")
	}
	return &Gate{resolver: r}
}

// AuthorizeHotel decides whether the principal may act on the hotel.
func (g *Gate) AuthorizeHotel(ctx context.Context, p Principal, hotelID uint64) (Decision, error) {
	if p.IsAdmin() {
		return Decision{Scope: ScopeAdmin}, nil
	}
	owner, err := g.resolver.HotelOwner(ctx, hotelID)
	if err != nil {
		return Decision{}, denyOnLookup(err, repository.ErrHotelNotFound)
	}
	if owner != p.ID {
		return Decision{}, &Denial{Reason: ReasonNotOwner}
	}
	return Decision{Scope: ScopeOwner, OwnerID: owner}, nil
}

// AuthorizeBooking decides whether the principal may act on the
// booking. Both the hotel's owner and the booking's customer are in
// the chain; the returned scope tells the caller which one matched so
// it can restrict customers to cancellation.
func (g *Gate) AuthorizeBooking(ctx context.Context, p Principal, bookingID uint64) (Decision, error) {
	if p.IsAdmin() {
		return Decision{Scope: ScopeAdmin}, nil
	}
	parties, err := g.resolver.BookingParties(ctx, bookingID)
	if err != nil {
		return Decision{}, denyOnLookup(err, repository.ErrBookingNotFound)
	}
	switch p.ID {
	case parties.HotelOwner:
		return Decision{Scope: ScopeOwner, OwnerID: parties.HotelOwner}, nil
	case parties.CustomerID:
		return Decision{Scope: ScopeCustomer, OwnerID: parties.HotelOwner}, nil
	}
	return Decision{}, &Denial{Reason: ReasonNotOwner}
}

// AuthorizeReviewReply decides whether the principal may reply to the
// review: only the owner of the reviewed hotel (or an admin) may.
func (g *Gate) AuthorizeReviewReply(ctx context.Context, p Principal, reviewID uint64) (Decision, error) {
	if p.IsAdmin() {
		return Decision{Scope: ScopeAdmin}, nil
	}
	parties, err := g.resolver.ReviewParties(ctx, reviewID)
	if err != nil {
		return Decision{}, denyOnLookup(err, repository.ErrReviewNotFound)
	}
	if parties.HotelOwner != p.ID {
		return Decision{}, &Denial{Reason: ReasonNotOwner}
	}
	return Decision{Scope: ScopeOwner, OwnerID: parties.HotelOwner}, nil
}

// denyOnLookup converts a missing chain row into a not-found denial and
// passes infrastructure errors through untouched.
func denyOnLookup(err, notFound error) error {
	if errors.Is(err, notFound) {
		return &Denial{Reason: ReasonNotFound}
	}
	return err
}

// Resolvers adapts the concrete repositories to the ChainResolver
// interface consumed by the gate.
type Resolvers struct {
	Hotels   *repository.HotelRepo
	Bookings *repository.BookingRepo
	Reviews  *repository.ReviewRepo
}

func (r Resolvers) HotelOwner(ctx context.Context, hotelID uint64) (uint64, error) {
	return r.Hotels.OwnerOf(ctx, hotelID)
}

func (r Resolvers) BookingParties(ctx context.Context, bookingID uint64) (repository.BookingParties, error) {
	return r.Bookings.Parties(ctx, bookingID)
}

func (r Resolvers) ReviewParties(ctx context.Context, reviewID uint64) (repository.ReviewParties, error) {
	return r.Reviews.Parties(ctx, reviewID)
}

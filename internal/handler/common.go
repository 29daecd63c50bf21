// Package handler implements the HTTP boundary of the marketplace. All
// lifecycle mutations follow the same sequence: resolve the principal,
// let the ownership gate authorize, run the write plan, dispatch
// best-effort side effects, reconcile where required, and answer with
// the uniform response envelope.
package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/stayora/hotel-booking-backend/internal/authz"
	"github.com/stayora/hotel-booking-backend/internal/queue"
)

// EventDispatcher fires lifecycle events after a successful mutation.
// Implementations must not block and must swallow their own failures;
// a lost notification never fails the primary action.
type EventDispatcher interface {
	Dispatch(event queue.Event)
}

// getUserID extracts the user_id claim from echo.Context. The JWT
// library decodes numeric claims as float64, but other middleware may
// store native integer types, so all are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// principalFrom builds the gate's Principal from the JWT claims placed
// in the context by the auth middleware.
func principalFrom(c echo.Context) (authz.Principal, error) {
	id, err := getUserID(c)
	if err != nil {
		return authz.Principal{}, err
	}
	role, _ := c.Get("role").(string)
	return authz.Principal{ID: id, Role: role}, nil
}

// pathID parses the named path parameter as a positive integer id.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

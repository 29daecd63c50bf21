package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stayora/hotel-booking-backend/internal/authz"
	"github.com/stayora/hotel-booking-backend/internal/engine"
	"github.com/stayora/hotel-booking-backend/internal/model"
	"github.com/stayora/hotel-booking-backend/internal/repository"
	"github.com/stayora/hotel-booking-backend/internal/status"
)

func callRespondErr(t *testing.T, err error) (int, envelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := respondErr(c, err); err != nil {
		t.Fatalf("respondErr returned error: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	return rec.Code, env
}

func TestRespondErrTaxonomy(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"denial not owner", &authz.Denial{Reason: authz.ReasonNotOwner}, http.StatusNotFound},
		{"denial not found", &authz.Denial{Reason: authz.ReasonNotFound}, http.StatusNotFound},
		{"invalid transition", model.ErrInvalidTransition, http.StatusBadRequest},
		{"user missing", repository.ErrUserNotFound, http.StatusNotFound},
		{"hotel missing", repository.ErrHotelNotFound, http.StatusNotFound},
		{"fk conflict", repository.ErrConflict, http.StatusBadRequest},
		{"email taken", repository.ErrEmailExists, http.StatusConflict},
		{"not persisted", engine.ErrStateNotPersisted, http.StatusInternalServerError},
		{"corrupt status", status.ErrInvalidRepresentation, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := callRespondErr(t, tc.err)
			if code != tc.wantCode {
				t.Fatalf("code = %d, want %d", code, tc.wantCode)
			}
			if env.Success {
				t.Fatal("error envelope must have success=false")
			}
			if env.Message == "" {
				t.Fatal("error envelope must carry a message")
			}
		})
	}
}

// The server log must carry the denial reason in words so operators
// can tell probing from broken references.
func TestRespondErrLogsDenialReason(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	callRespondErr(t, &authz.Denial{Reason: authz.ReasonNotOwner})
	if !strings.Contains(buf.String(), `"reason":"not owner"`) {
		t.Fatalf("denial log missing readable reason: %s", buf.String())
	}

	buf.Reset()
	callRespondErr(t, &authz.Denial{Reason: authz.ReasonNotFound})
	if !strings.Contains(buf.String(), `"reason":"not found"`) {
		t.Fatalf("denial log missing readable reason: %s", buf.String())
	}
}

// Both denial reasons and a genuinely missing row must be externally
// indistinguishable, or a stranger could tell what exists.
func TestRespondErrHidesOwnership(t *testing.T) {
	_, notOwner := callRespondErr(t, &authz.Denial{Reason: authz.ReasonNotOwner})
	_, notFound := callRespondErr(t, &authz.Denial{Reason: authz.ReasonNotFound})
	_, missing := callRespondErr(t, repository.ErrHotelNotFound)
	if notOwner.Message != notFound.Message || notFound.Message != missing.Message {
		t.Fatalf("denial messages diverge: %q / %q / %q", notOwner.Message, notFound.Message, missing.Message)
	}
}

// A plan that rolled back on a foreign key conflict is the caller's
// fault; any other rollback is a server fault.
func TestRespondErrPlanFailures(t *testing.T) {
	conflict := &engine.StepError{Plan: "hotel.delete", Step: "delete-hotel", Err: repository.ErrConflict}
	code, _ := callRespondErr(t, conflict)
	if code != http.StatusBadRequest {
		t.Fatalf("fk rollback code = %d, want 400", code)
	}

	infra := &engine.StepError{Plan: "hotel.register", Step: "store-image-1", Err: errors.New("disk full")}
	code, _ = callRespondErr(t, infra)
	if code != http.StatusInternalServerError {
		t.Fatalf("infra rollback code = %d, want 500", code)
	}
}

func TestGetUserIDTypes(t *testing.T) {
	e := echo.New()
	for _, v := range []any{uint64(7), int(7), int64(7), float64(7), "7"} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set("user_id", v)
		id, err := getUserID(c)
		if err != nil || id != 7 {
			t.Fatalf("getUserID(%T) = %d, %v", v, id, err)
		}
	}
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set("user_id", struct{}{})
	if _, err := getUserID(c); err == nil {
		t.Fatal("expected error for unsupported claim type")
	}
}

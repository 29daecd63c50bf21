package queue_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stayora/hotel-booking-backend/internal/queue"
)

type recordedNote struct {
	recipient uint64
	subject   string
	body      string
	kind      string
	admins    bool
}

type fakeWriter struct {
	notes []recordedNote
}

func (f *fakeWriter) Create(_ context.Context, recipientID uint64, subject, body, kind string) error {
	f.notes = append(f.notes, recordedNote{recipient: recipientID, subject: subject, body: body, kind: kind})
	return nil
}

func (f *fakeWriter) CreateForAdmins(_ context.Context, subject, body, kind string) error {
	f.notes = append(f.notes, recordedNote{subject: subject, body: body, kind: kind, admins: true})
	return nil
}

func marshal(t *testing.T, ev queue.Event) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestHandleEventHotelRegistered(t *testing.T) {
	w := &fakeWriter{}
	body := marshal(t, queue.Event{
		Kind:  queue.KindHotelRegistered,
		Hotel: &queue.HotelEvent{HotelID: 10, OwnerID: 7, Name: "Sea View", Status: "pending"},
	})
	if err := queue.HandleEvent(context.Background(), body, w); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(w.notes) != 1 || !w.notes[0].admins {
		t.Fatalf("want one admin fan-out, got %+v", w.notes)
	}
	if !strings.Contains(w.notes[0].body, "Sea View") {
		t.Fatalf("body should name the hotel: %q", w.notes[0].body)
	}
}

func TestHandleEventBookingStatusChanged(t *testing.T) {
	w := &fakeWriter{}
	body := marshal(t, queue.Event{
		Kind: queue.KindBookingStatusChanged,
		Booking: &queue.BookingEvent{
			BookingID: 5, HotelID: 10, HotelName: "Sea View", CustomerID: 3,
			From: "pending", To: "confirmed",
		},
	})
	if err := queue.HandleEvent(context.Background(), body, w); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(w.notes) != 1 || w.notes[0].recipient != 3 {
		t.Fatalf("booking note should target the customer, got %+v", w.notes)
	}
	if w.notes[0].kind != queue.KindBookingStatusChanged {
		t.Fatalf("kind = %q", w.notes[0].kind)
	}
}

func TestHandleEventUserStatusChanged(t *testing.T) {
	w := &fakeWriter{}
	body := marshal(t, queue.Event{
		Kind: queue.KindUserStatusChanged,
		User: &queue.UserEvent{UserID: 9, Email: "m@example.com", Action: "block", Active: false},
	})
	if err := queue.HandleEvent(context.Background(), body, w); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(w.notes) != 1 || w.notes[0].recipient != 9 {
		t.Fatalf("user note should target the user, got %+v", w.notes)
	}
	if !strings.Contains(w.notes[0].body, "deactivated") {
		t.Fatalf("body = %q", w.notes[0].body)
	}
}

func TestHandleEventRejectsMalformed(t *testing.T) {
	w := &fakeWriter{}
	if err := queue.HandleEvent(context.Background(), []byte("{"), w); err == nil {
		t.Fatal("truncated JSON should fail")
	}
	if err := queue.HandleEvent(context.Background(), marshal(t, queue.Event{Kind: "mystery"}), w); err == nil {
		t.Fatal("unknown kind should fail")
	}
	if err := queue.HandleEvent(context.Background(), marshal(t, queue.Event{Kind: queue.KindHotelRegistered}), w); err == nil {
		t.Fatal("missing payload should fail")
	}
	if len(w.notes) != 0 {
		t.Fatalf("no notes expected, got %+v", w.notes)
	}
}

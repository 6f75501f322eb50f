package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"meetbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testCalendar(t *testing.T, handler http.HandlerFunc) (*GoogleCalendar, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cal := NewGoogleCalendar(context.Background(), GoogleCalendarConfig{
		CalendarID:  "primary",
		SendUpdates: "all",
		Timezone:    "Europe/Paris",
		BaseURL:     srv.URL,
		HTTPClient:  srv.Client(),
		Logger:      testLogger(),
	})
	return cal, srv
}

func TestCreateEvent_RequestsConference(t *testing.T) {
	var captured map[string]any
	cal, _ := testCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || !strings.HasPrefix(r.URL.Path, "/calendars/primary/events") {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("conferenceDataVersion"); got != "1" {
			t.Errorf("expected conferenceDataVersion=1, got %q", got)
		}
		if got := r.URL.Query().Get("sendUpdates"); got != "all" {
			t.Errorf("expected sendUpdates=all, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "evt-1",
			"hangoutLink": "https://meet.google.com/abc-defg-hij",
		})
	})

	paris, _ := time.LoadLocation("Europe/Paris")
	start := time.Date(2024, 1, 16, 14, 0, 0, 0, paris)

	created, err := cal.CreateEvent(context.Background(), domain.EventRequest{
		Title:         "First call",
		Start:         start,
		Duration:      45 * time.Minute,
		AttendeeEmail: "john@company.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.EventRef != "evt-1" {
		t.Errorf("unexpected event ref: %q", created.EventRef)
	}
	if created.ConferenceLink != "https://meet.google.com/abc-defg-hij" {
		t.Errorf("unexpected link: %q", created.ConferenceLink)
	}

	if captured["summary"] != "First call" {
		t.Errorf("unexpected summary: %v", captured["summary"])
	}
	startField := captured["start"].(map[string]any)
	if startField["dateTime"] != "2024-01-16T14:00:00+01:00" {
		t.Errorf("unexpected start: %v", startField["dateTime"])
	}
	if startField["timeZone"] != "Europe/Paris" {
		t.Errorf("unexpected timezone: %v", startField["timeZone"])
	}
	endField := captured["end"].(map[string]any)
	if endField["dateTime"] != "2024-01-16T14:45:00+01:00" {
		t.Errorf("unexpected end: %v", endField["dateTime"])
	}

	conf := captured["conferenceData"].(map[string]any)["createRequest"].(map[string]any)
	if conf["requestId"] == "" {
		t.Error("expected a conference request id")
	}
	key := conf["conferenceSolutionKey"].(map[string]any)
	if key["type"] != "hangoutsMeet" {
		t.Errorf("unexpected conference solution: %v", key["type"])
	}

	attendees := captured["attendees"].([]any)
	if len(attendees) != 1 || attendees[0].(map[string]any)["email"] != "john@company.com" {
		t.Errorf("unexpected attendees: %v", attendees)
	}
}

func TestCreateEvent_EntryPointFallback(t *testing.T) {
	cal, _ := testCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id": "evt-2",
			"conferenceData": map[string]any{
				"entryPoints": []map[string]any{
					{"entryPointType": "phone", "uri": "tel:+33123456789"},
					{"entryPointType": "video", "uri": "https://meet.google.com/xyz"},
				},
			},
		})
	})

	created, err := cal.CreateEvent(context.Background(), domain.EventRequest{
		Title: "Call", Start: time.Now().Add(time.Hour), Duration: 30 * time.Minute, AttendeeEmail: "a@b.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ConferenceLink != "https://meet.google.com/xyz" {
		t.Errorf("expected video entry point, got %q", created.ConferenceLink)
	}
}

func TestCreateEvent_MissingConferenceLink(t *testing.T) {
	cal, _ := testCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "evt-3"})
	})

	_, err := cal.CreateEvent(context.Background(), domain.EventRequest{
		Title: "Call", Start: time.Now().Add(time.Hour), Duration: 30 * time.Minute, AttendeeEmail: "a@b.com",
	})
	if err == nil {
		t.Fatal("expected error for event without a conference link")
	}
	if !strings.Contains(err.Error(), "without a conference link") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCreateEvent_APIError(t *testing.T) {
	cal, _ := testCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 403, "message": "forbidden"}}`, http.StatusForbidden)
	})

	_, err := cal.CreateEvent(context.Background(), domain.EventRequest{
		Title: "Call", Start: time.Now().Add(time.Hour), Duration: 30 * time.Minute, AttendeeEmail: "a@b.com",
	})
	if err == nil {
		t.Fatal("expected error on 403")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

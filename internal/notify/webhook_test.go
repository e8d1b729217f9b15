package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/trip-planner/internal/schedule"
)

func TestChatWebhook_Share(t *testing.T) {
	t.Run("posts the message as JSON", func(t *testing.T) {
		var (
			gotMethod      string
			gotContentType string
			gotBody        ShareMessage
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotContentType = r.Header.Get("Content-Type")
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Errorf("decode share body: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		hook := NewChatWebhook(srv.URL)
		err := hook.Share(context.Background(), ShareMessage{
			SessionID:   "session-1",
			SessionName: "Summer Offsite",
			Link:        "https://planner.example.com/join/session-1",
			Text:        `Join the trip planning session "Summer Offsite": https://planner.example.com/join/session-1`,
		})
		if err != nil {
			t.Fatalf("share: %v", err)
		}
		if gotMethod != http.MethodPost {
			t.Fatalf("expected POST, got %s", gotMethod)
		}
		if gotContentType != "application/json" {
			t.Fatalf("expected JSON content type, got %q", gotContentType)
		}
		if gotBody.SessionID != "session-1" || gotBody.SessionName != "Summer Offsite" {
			t.Fatalf("unexpected body %+v", gotBody)
		}
		if !strings.Contains(gotBody.Text, gotBody.Link) {
			t.Fatalf("expected the link inside the text, got %q", gotBody.Text)
		}
	})

	t.Run("reports non-2xx statuses", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		hook := NewChatWebhook(srv.URL)
		err := hook.Share(context.Background(), ShareMessage{SessionID: "session-1"})
		if err == nil {
			t.Fatal("expected an error for a 502 response")
		}
		if !strings.Contains(err.Error(), "status 502") {
			t.Fatalf("expected the status in the error, got %v", err)
		}
		if !strings.Contains(err.Error(), "boom") {
			t.Fatalf("expected the response detail in the error, got %v", err)
		}
	})

	t.Run("rejects an unconfigured webhook", func(t *testing.T) {
		hook := NewChatWebhook("   ")
		if err := hook.Share(context.Background(), ShareMessage{}); err == nil {
			t.Fatal("expected an error without a configured URL")
		}
	})
}

func TestCalendarWebhook_CreateEvents(t *testing.T) {
	events := []schedule.Event{
		{
			Subject:   "Museum",
			Start:     time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC),
			End:       time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC),
			Location:  "Downtown",
			Attendees: []string{"Ann", "Ben"},
		},
		{
			Subject: "Harbor walk",
			Start:   time.Date(2025, time.July, 1, 14, 0, 0, 0, time.UTC),
			End:     time.Date(2025, time.July, 1, 15, 0, 0, 0, time.UTC),
		},
	}

	t.Run("sends the credential as a bearer token only", func(t *testing.T) {
		var (
			gotAuth string
			gotRaw  []byte
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			raw, err := io.ReadAll(r.Body)
			if err != nil {
				t.Errorf("read body: %v", err)
			}
			gotRaw = raw
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		hook := NewCalendarWebhook(srv.URL)
		if err := hook.CreateEvents(context.Background(), "token-abc", events); err != nil {
			t.Fatalf("create events: %v", err)
		}

		if gotAuth != "Bearer token-abc" {
			t.Fatalf("expected bearer credential, got %q", gotAuth)
		}
		if strings.Contains(string(gotRaw), "token-abc") {
			t.Fatalf("credential leaked into the body: %s", gotRaw)
		}

		var payload struct {
			Events []schedule.Event `json:"events"`
		}
		if err := json.Unmarshal(gotRaw, &payload); err != nil {
			t.Fatalf("decode events body: %v", err)
		}
		if len(payload.Events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(payload.Events))
		}
		if payload.Events[0].Subject != "Museum" || payload.Events[0].Location != "Downtown" {
			t.Fatalf("unexpected first event %+v", payload.Events[0])
		}
	})

	t.Run("omits the authorization header without a credential", func(t *testing.T) {
		var sawAuth bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, sawAuth = r.Header["Authorization"]
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		hook := NewCalendarWebhook(srv.URL)
		if err := hook.CreateEvents(context.Background(), "", events); err != nil {
			t.Fatalf("create events: %v", err)
		}
		if sawAuth {
			t.Fatal("expected no authorization header without a credential")
		}
	})

	t.Run("surfaces failure statuses", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "calendar unavailable", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		hook := NewCalendarWebhook(srv.URL)
		err := hook.CreateEvents(context.Background(), "token-abc", events)
		if err == nil {
			t.Fatal("expected an error for a 503 response")
		}
		if !strings.Contains(err.Error(), "status 503") {
			t.Fatalf("expected the status in the error, got %v", err)
		}
		if strings.Contains(err.Error(), "token-abc") {
			t.Fatalf("credential leaked into the error: %v", err)
		}
	})

	t.Run("rejects an unconfigured webhook", func(t *testing.T) {
		hook := NewCalendarWebhook("")
		if err := hook.CreateEvents(context.Background(), "", events); err == nil {
			t.Fatal("expected an error without a configured URL")
		}
	})
}

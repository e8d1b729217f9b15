package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/trip-planner/internal/notify"
	"github.com/example/trip-planner/internal/schedule"
	"github.com/example/trip-planner/internal/session"
	"github.com/example/trip-planner/internal/testfixtures"
)

// testArgonParams keeps operator key hashing fast in tests.
var testArgonParams = Argon2idParams{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

type chatStub struct {
	messages []notify.ShareMessage
	err      error
}

func (c *chatStub) Share(ctx context.Context, msg notify.ShareMessage) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, msg)
	return nil
}

type calendarStub struct {
	credential string
	events     []schedule.Event
	calls      int
	err        error
}

func (c *calendarStub) CreateEvents(ctx context.Context, credential string, events []schedule.Event) error {
	c.calls++
	c.credential = credential
	c.events = events
	return c.err
}

func newStore(t *testing.T) *session.Store {
	t.Helper()
	// Each read advances the clock so created sessions order deterministically.
	now := testfixtures.TickingClock(testfixtures.ReferenceTime(), time.Second)
	ids := testfixtures.SequentialIDs("session")
	store := session.NewStore(nil, nil, "https://planner.example.com", ids, now)
	t.Cleanup(store.Close)
	return store
}

func newAPIServer(t *testing.T) (*httptest.Server, *session.Store) {
	t.Helper()
	store := newStore(t)
	return newAPIServerWith(t, store, nil, nil, "", false), store
}

func newAPIServerWith(t *testing.T, store *session.Store, calendar session.CalendarConnector, chat ChatNotifier, keyHash string, devMode bool) *httptest.Server {
	t.Helper()
	handler := NewRouter(RouterConfig{
		Sessions: NewSessionHandler(store, calendar, chat, nil),
		Middleware: []func(http.Handler) http.Handler{
			WithPrincipal(NewOperatorKeyVerifier(keyHash), devMode),
		},
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, userID string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		if raw, ok := body.([]byte); ok {
			reader = bytes.NewReader(raw)
		} else {
			raw, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("encode request body: %v", err)
			}
			reader = bytes.NewReader(raw)
		}
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	res, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() { _ = res.Body.Close() }()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return res, payload
}

func createSessionViaAPI(t *testing.T, srv *httptest.Server, creatorID, name string) session.SessionState {
	t.Helper()
	res, payload := doRequest(t, srv, http.MethodPost, "/api/sessions", creatorID, map[string]string{
		"name":        name,
		"teamId":      "team-1",
		"creatorName": "Creator " + creatorID,
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.StatusCode, payload)
	}
	var body sessionResponse
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return body.Session
}

func TestSessionAPI_CreateAndFetch(t *testing.T) {
	t.Parallel()
	srv, _ := newAPIServer(t)

	t.Run("requires a caller identity", func(t *testing.T) {
		res, _ := doRequest(t, srv, http.MethodPost, "/api/sessions", "", map[string]string{"name": "Offsite"}, nil)
		if res.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", res.StatusCode)
		}
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		res, _ := doRequest(t, srv, http.MethodPost, "/api/sessions", "user-1", []byte("{not json"), nil)
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", res.StatusCode)
		}
	})

	t.Run("reports field validation errors", func(t *testing.T) {
		res, payload := doRequest(t, srv, http.MethodPost, "/api/sessions", "user-1", map[string]string{
			"name":        "   ",
			"creatorName": "Ann",
		}, nil)
		if res.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", res.StatusCode, payload)
		}
		var body errorResponse
		if err := json.Unmarshal(payload, &body); err != nil {
			t.Fatalf("decode error response: %v", err)
		}
		if body.Errors["name"] == "" {
			t.Fatalf("expected a field error for name, got %+v", body)
		}
	})

	t.Run("creates and reads back a session", func(t *testing.T) {
		created := createSessionViaAPI(t, srv, "user-1", "Summer Offsite")
		if created.ID == "" {
			t.Fatal("expected a generated session id")
		}
		if created.CreatorID != "user-1" {
			t.Fatalf("expected creator from X-User-ID, got %q", created.CreatorID)
		}
		if created.Status != session.StatusActive {
			t.Fatalf("expected an active session, got %q", created.Status)
		}

		res, payload := doRequest(t, srv, http.MethodGet, "/api/sessions/"+created.ID, "", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		var body sessionResponse
		if err := json.Unmarshal(payload, &body); err != nil {
			t.Fatalf("decode get response: %v", err)
		}
		if body.Session.Name != "Summer Offsite" {
			t.Fatalf("expected the stored name, got %q", body.Session.Name)
		}
		if len(body.Session.Participants) != 1 {
			t.Fatalf("expected the creator as sole participant, got %d", len(body.Session.Participants))
		}
	})

	t.Run("missing sessions are 404", func(t *testing.T) {
		res, _ := doRequest(t, srv, http.MethodGet, "/api/sessions/missing", "", nil, nil)
		if res.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", res.StatusCode)
		}
	})

	t.Run("lists sessions", func(t *testing.T) {
		res, payload := doRequest(t, srv, http.MethodGet, "/api/sessions", "", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		var body listSessionsResponse
		if err := json.Unmarshal(payload, &body); err != nil {
			t.Fatalf("decode list response: %v", err)
		}
		if len(body.Sessions) == 0 {
			t.Fatal("expected at least one session in the listing")
		}
	})
}

func TestSessionAPI_End(t *testing.T) {
	t.Parallel()
	srv, _ := newAPIServer(t)
	created := createSessionViaAPI(t, srv, "user-1", "Summer Offsite")

	t.Run("non-creators are forbidden", func(t *testing.T) {
		res, payload := doRequest(t, srv, http.MethodPost, "/api/sessions/"+created.ID+"/end", "user-2", nil, nil)
		if res.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", res.StatusCode, payload)
		}
		var body errorResponse
		if err := json.Unmarshal(payload, &body); err != nil {
			t.Fatalf("decode error response: %v", err)
		}
		if body.ErrorCode != "FORBIDDEN" {
			t.Fatalf("expected FORBIDDEN error code, got %q", body.ErrorCode)
		}
	})

	t.Run("the creator ends the session", func(t *testing.T) {
		res, payload := doRequest(t, srv, http.MethodPost, "/api/sessions/"+created.ID+"/end", "user-1", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", res.StatusCode, payload)
		}
		var body endSessionResponse
		if err := json.Unmarshal(payload, &body); err != nil {
			t.Fatalf("decode end response: %v", err)
		}
		if !body.Ended {
			t.Fatal("expected ended=true")
		}
	})

	t.Run("a second end still reports true", func(t *testing.T) {
		res, payload := doRequest(t, srv, http.MethodPost, "/api/sessions/"+created.ID+"/end", "user-1", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		var body endSessionResponse
		if err := json.Unmarshal(payload, &body); err != nil {
			t.Fatalf("decode end response: %v", err)
		}
		if !body.Ended {
			t.Fatalf("expected ended=true on repeat, got %s", payload)
		}
	})

	t.Run("ending a missing session reports false", func(t *testing.T) {
		res, payload := doRequest(t, srv, http.MethodPost, "/api/sessions/missing/end", "user-1", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		var body endSessionResponse
		if err := json.Unmarshal(payload, &body); err != nil {
			t.Fatalf("decode end response: %v", err)
		}
		if body.Ended {
			t.Fatal("expected ended=false for a missing session")
		}
	})
}

func TestSessionAPI_Settings(t *testing.T) {
	t.Parallel()
	srv, _ := newAPIServer(t)
	created := createSessionViaAPI(t, srv, "user-1", "Summer Offsite")

	t.Run("non-creators are forbidden", func(t *testing.T) {
		res, _ := doRequest(t, srv, http.MethodPut, "/api/sessions/"+created.ID+"/settings", "user-2",
			map[string]bool{"votingEnabled": false}, nil)
		if res.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", res.StatusCode)
		}
	})

	t.Run("patches one flag at a time", func(t *testing.T) {
		res, payload := doRequest(t, srv, http.MethodPut, "/api/sessions/"+created.ID+"/settings", "user-1",
			map[string]bool{"anonymousVoting": true}, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", res.StatusCode, payload)
		}
		var body settingsResponse
		if err := json.Unmarshal(payload, &body); err != nil {
			t.Fatalf("decode settings response: %v", err)
		}
		if !body.Settings.AnonymousVoting {
			t.Fatal("expected anonymousVoting to be enabled")
		}
		if !body.Settings.VotingEnabled {
			t.Fatal("expected votingEnabled untouched by the patch")
		}
	})

	t.Run("ended sessions reject settings changes", func(t *testing.T) {
		ended := createSessionViaAPI(t, srv, "user-1", "Old Offsite")
		if res, _ := doRequest(t, srv, http.MethodPost, "/api/sessions/"+ended.ID+"/end", "user-1", nil, nil); res.StatusCode != http.StatusOK {
			t.Fatalf("end failed with %d", res.StatusCode)
		}
		res, payload := doRequest(t, srv, http.MethodPut, "/api/sessions/"+ended.ID+"/settings", "user-1",
			map[string]bool{"votingEnabled": false}, nil)
		if res.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", res.StatusCode, payload)
		}
		if !strings.Contains(string(payload), "SESSION_ENDED") {
			t.Fatalf("expected SESSION_ENDED code, got %s", payload)
		}
	})
}

func TestSessionAPI_ExportAndVotes(t *testing.T) {
	t.Parallel()
	srv, store := newAPIServer(t)
	created := createSessionViaAPI(t, srv, "user-1", "Summer Offsite")

	vote := session.VoteUp
	if _, err := store.CastVote(context.Background(), session.VoteParams{
		SessionID: created.ID,
		ItemID:    "item-1",
		UserID:    "user-1",
		Value:     &vote,
	}); err != nil {
		t.Fatalf("cast vote: %v", err)
	}

	t.Run("export carries format metadata", func(t *testing.T) {
		res, payload := doRequest(t, srv, http.MethodGet, "/api/sessions/"+created.ID+"/export", "", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		var export session.SessionExport
		if err := json.Unmarshal(payload, &export); err != nil {
			t.Fatalf("decode export: %v", err)
		}
		if export.FormatVersion != session.ExportFormatVersion {
			t.Fatalf("expected format version %d, got %d", session.ExportFormatVersion, export.FormatVersion)
		}
		if export.ExportedAt.IsZero() {
			t.Fatal("expected a non-zero exportedAt")
		}
		if export.ID != created.ID {
			t.Fatalf("expected exported session %q, got %q", created.ID, export.ID)
		}
	})

	t.Run("votes return per-item tallies", func(t *testing.T) {
		res, payload := doRequest(t, srv, http.MethodGet, "/api/sessions/"+created.ID+"/votes", "", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		var body votesResponse
		if err := json.Unmarshal(payload, &body); err != nil {
			t.Fatalf("decode votes response: %v", err)
		}
		tally, ok := body.Votes["item-1"]
		if !ok {
			t.Fatalf("expected a tally for item-1, got %+v", body.Votes)
		}
		if tally.Upvotes != 1 || tally.Total != 1 {
			t.Fatalf("unexpected tally %+v", tally)
		}
	})

	t.Run("votes for a missing session are 404", func(t *testing.T) {
		res, _ := doRequest(t, srv, http.MethodGet, "/api/sessions/missing/votes", "", nil, nil)
		if res.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", res.StatusCode)
		}
	})
}

func TestSessionAPI_Schedule(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	connector := &calendarStub{}
	srv := newAPIServerWith(t, store, connector, nil, "", false)
	created := createSessionViaAPI(t, srv, "user-1", "Summer Offsite")

	if err := store.UpdateItinerary(context.Background(), session.ItineraryParams{
		SessionID: created.ID,
		UserID:    "user-1",
		Itinerary: session.Itinerary{
			Items: []session.Item{
				{"id": "item-1", "title": "Museum", "scheduledTime": "2025-07-01T10:00", "duration": float64(90)},
			},
		},
	}); err != nil {
		t.Fatalf("update itinerary: %v", err)
	}

	t.Run("delivers to the configured connector", func(t *testing.T) {
		res, payload := doRequest(t, srv, http.MethodPost, "/api/sessions/"+created.ID+"/schedule", "",
			map[string]string{"credential": "token-abc"}, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", res.StatusCode, payload)
		}
		var body schedulePlanResponse
		if err := json.Unmarshal(payload, &body); err != nil {
			t.Fatalf("decode plan response: %v", err)
		}
		if !body.Plan.Delivered {
			t.Fatal("expected the plan to be delivered")
		}
		if len(body.Plan.Events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(body.Plan.Events))
		}
		if connector.calls != 1 || connector.credential != "token-abc" {
			t.Fatalf("unexpected connector invocation calls=%d credential=%q", connector.calls, connector.credential)
		}
	})

	t.Run("an absent body means no credential", func(t *testing.T) {
		res, _ := doRequest(t, srv, http.MethodPost, "/api/sessions/"+created.ID+"/schedule", "", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		if connector.credential != "" {
			t.Fatalf("expected an empty credential, got %q", connector.credential)
		}
	})

	t.Run("a malformed body is rejected", func(t *testing.T) {
		res, _ := doRequest(t, srv, http.MethodPost, "/api/sessions/"+created.ID+"/schedule", "", []byte("{oops"), nil)
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", res.StatusCode)
		}
	})

	t.Run("an unscheduled itinerary is unprocessable", func(t *testing.T) {
		empty := createSessionViaAPI(t, srv, "user-1", "Planning Only")
		res, payload := doRequest(t, srv, http.MethodPost, "/api/sessions/"+empty.ID+"/schedule", "", nil, nil)
		if res.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", res.StatusCode, payload)
		}
	})
}

func TestSessionAPI_Share(t *testing.T) {
	t.Parallel()

	t.Run("builds the link and message without a chat webhook", func(t *testing.T) {
		srv, _ := newAPIServer(t)
		created := createSessionViaAPI(t, srv, "user-1", "Summer Offsite")

		res, payload := doRequest(t, srv, http.MethodPost, "/api/sessions/"+created.ID+"/share", "", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		var body shareResponse
		if err := json.Unmarshal(payload, &body); err != nil {
			t.Fatalf("decode share response: %v", err)
		}
		if body.Link != "https://planner.example.com/join/"+created.ID {
			t.Fatalf("unexpected link %q", body.Link)
		}
		if !strings.Contains(body.Message, "Summer Offsite") || !strings.Contains(body.Message, body.Link) {
			t.Fatalf("unexpected message %q", body.Message)
		}
		if body.Delivered {
			t.Fatal("expected delivered=false without a chat webhook")
		}
	})

	t.Run("posts to the chat webhook when configured", func(t *testing.T) {
		store := newStore(t)
		chat := &chatStub{}
		srv := newAPIServerWith(t, store, nil, chat, "", false)
		created := createSessionViaAPI(t, srv, "user-1", "Summer Offsite")

		res, payload := doRequest(t, srv, http.MethodPost, "/api/sessions/"+created.ID+"/share", "", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		var body shareResponse
		if err := json.Unmarshal(payload, &body); err != nil {
			t.Fatalf("decode share response: %v", err)
		}
		if !body.Delivered {
			t.Fatal("expected delivered=true")
		}
		if len(chat.messages) != 1 {
			t.Fatalf("expected 1 chat message, got %d", len(chat.messages))
		}
		if chat.messages[0].SessionID != created.ID || chat.messages[0].Link != body.Link {
			t.Fatalf("unexpected chat message %+v", chat.messages[0])
		}
	})

	t.Run("a chat failure still returns the link", func(t *testing.T) {
		store := newStore(t)
		chat := &chatStub{err: errors.New("chat 500")}
		srv := newAPIServerWith(t, store, nil, chat, "", false)
		created := createSessionViaAPI(t, srv, "user-1", "Summer Offsite")

		res, payload := doRequest(t, srv, http.MethodPost, "/api/sessions/"+created.ID+"/share", "", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		var body shareResponse
		if err := json.Unmarshal(payload, &body); err != nil {
			t.Fatalf("decode share response: %v", err)
		}
		if body.Delivered {
			t.Fatal("expected delivered=false after a webhook failure")
		}
		if body.Link == "" {
			t.Fatal("expected the link despite the failure")
		}
	})

	t.Run("sharing a missing session is 404", func(t *testing.T) {
		srv, _ := newAPIServer(t)
		res, _ := doRequest(t, srv, http.MethodPost, "/api/sessions/missing/share", "", nil, nil)
		if res.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", res.StatusCode)
		}
	})
}

func TestSessionAPI_UserSessions(t *testing.T) {
	t.Parallel()
	srv, _ := newAPIServer(t)
	createSessionViaAPI(t, srv, "user-1", "Offsite A")
	createSessionViaAPI(t, srv, "user-1", "Offsite B")

	res, payload := doRequest(t, srv, http.MethodGet, "/api/users/user-1/sessions", "", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var body listSessionsResponse
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("decode user sessions: %v", err)
	}
	if len(body.Sessions) != 2 {
		t.Fatalf("expected 2 sessions for user-1, got %d", len(body.Sessions))
	}

	res, payload = doRequest(t, srv, http.MethodGet, "/api/users/user-2/sessions", "", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("decode user sessions: %v", err)
	}
	if len(body.Sessions) != 0 {
		t.Fatalf("expected no sessions for user-2, got %d", len(body.Sessions))
	}
}

func TestSessionAPI_OperatorPrivilege(t *testing.T) {
	t.Parallel()

	hash, err := HashOperatorKey("operator-secret", testArgonParams)
	if err != nil {
		t.Fatalf("hash operator key: %v", err)
	}

	t.Run("a valid operator key ends someone else's session", func(t *testing.T) {
		store := newStore(t)
		srv := newAPIServerWith(t, store, nil, nil, hash, false)
		created := createSessionViaAPI(t, srv, "user-1", "Summer Offsite")

		res, payload := doRequest(t, srv, http.MethodPost, "/api/sessions/"+created.ID+"/end", "user-2", nil,
			map[string]string{HeaderOperatorKey: "operator-secret"})
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", res.StatusCode, payload)
		}
		var body endSessionResponse
		if err := json.Unmarshal(payload, &body); err != nil {
			t.Fatalf("decode end response: %v", err)
		}
		if !body.Ended {
			t.Fatal("expected the privileged end to succeed")
		}
	})

	t.Run("a wrong operator key grants nothing", func(t *testing.T) {
		store := newStore(t)
		srv := newAPIServerWith(t, store, nil, nil, hash, false)
		created := createSessionViaAPI(t, srv, "user-1", "Summer Offsite")

		res, _ := doRequest(t, srv, http.MethodPost, "/api/sessions/"+created.ID+"/end", "user-2", nil,
			map[string]string{HeaderOperatorKey: "guessing"})
		if res.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", res.StatusCode)
		}
	})

	t.Run("development mode makes every caller privileged", func(t *testing.T) {
		store := newStore(t)
		srv := newAPIServerWith(t, store, nil, nil, "", true)
		created := createSessionViaAPI(t, srv, "user-1", "Summer Offsite")

		res, payload := doRequest(t, srv, http.MethodPost, "/api/sessions/"+created.ID+"/end", "user-2", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", res.StatusCode, payload)
		}
	})
}

func TestRouterBasics(t *testing.T) {
	t.Parallel()
	srv, _ := newAPIServer(t)

	t.Run("health probe responds", func(t *testing.T) {
		res, payload := doRequest(t, srv, http.MethodGet, "/healthz", "", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		if !strings.Contains(string(payload), `"status":"ok"`) {
			t.Fatalf("unexpected health body %s", payload)
		}
	})

	t.Run("wrong methods are rejected", func(t *testing.T) {
		res, _ := doRequest(t, srv, http.MethodDelete, "/api/sessions", "user-1", nil, nil)
		if res.StatusCode != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", res.StatusCode)
		}
	})

	t.Run("unknown paths are 404", func(t *testing.T) {
		res, _ := doRequest(t, srv, http.MethodGet, "/api/unknown", "", nil, nil)
		if res.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", res.StatusCode)
		}
	})
}

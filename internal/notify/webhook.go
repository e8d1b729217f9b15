// Package notify holds the outbound webhook clients: chat share
// announcements and the webhook-backed calendar connector. Both speak plain
// JSON POST so any bridge (Slack relay, calendar sync daemon) can receive
// them.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/trip-planner/internal/schedule"
)

const webhookTimeout = 10 * time.Second

// ShareMessage is the document posted to the chat webhook when a session is
// shared.
type ShareMessage struct {
	SessionID   string `json:"sessionId"`
	SessionName string `json:"sessionName"`
	Link        string `json:"link"`
	Text        string `json:"text"`
}

// ChatWebhook posts share announcements to an external chat system.
type ChatWebhook struct {
	url    string
	client *http.Client
}

func NewChatWebhook(url string) *ChatWebhook {
	return &ChatWebhook{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: webhookTimeout},
	}
}

func (c *ChatWebhook) Share(ctx context.Context, msg ShareMessage) error {
	if c == nil || c.url == "" {
		return fmt.Errorf("chat webhook is not configured")
	}
	return postJSON(ctx, c.client, c.url, "", msg)
}

// CalendarWebhook forwards built calendar events to an external calendar
// bridge. It satisfies the engine's calendar connector interface.
type CalendarWebhook struct {
	url    string
	client *http.Client
}

func NewCalendarWebhook(url string) *CalendarWebhook {
	return &CalendarWebhook{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: webhookTimeout},
	}
}

type calendarPayload struct {
	Events []schedule.Event `json:"events"`
}

// CreateEvents posts the events in one request. The credential travels as a
// bearer token and never appears in the body or in errors.
func (c *CalendarWebhook) CreateEvents(ctx context.Context, credential string, events []schedule.Event) error {
	if c == nil || c.url == "" {
		return fmt.Errorf("calendar webhook is not configured")
	}
	return postJSON(ctx, c.client, c.url, credential, calendarPayload{Events: events})
}

func postJSON(ctx context.Context, client *http.Client, url, bearer string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("webhook status %d: %s", res.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

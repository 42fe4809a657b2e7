package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/alanmeadows/coabot/internal/config"
)

// EventKind names the outcome that triggered a notification.
type EventKind string

const (
	EventPRCreated       EventKind = "pr_created"
	EventPRExists        EventKind = "pr_exists"
	EventPublishFailed   EventKind = "publish_failed"
	EventWorkspaceFailed EventKind = "workspace_failed"
)

// Event carries one processed notification's result.
type Event struct {
	Kind  EventKind
	Repo  string
	Issue int
	// Title is the subject title of the mentioning issue.
	Title    string
	URL      string
	Attempts int
	Error    string
}

// Teams posts outcome cards to a Microsoft Teams (Power Automate) webhook.
type Teams struct {
	webhookURL string
	events     []string
	client     *http.Client
}

// NewTeams builds a notifier from cfg. It returns nil when no webhook is configured.
func NewTeams(cfg config.NotificationsConfig) *Teams {
	if cfg.TeamsWebhookURL == "" {
		return nil
	}
	return &Teams{
		webhookURL: cfg.TeamsWebhookURL,
		events:     cfg.Events,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether ev passes the configured event filter.
// An empty filter allows every event.
func (t *Teams) Enabled(kind EventKind) bool {
	return len(t.events) == 0 || slices.Contains(t.events, string(kind))
}

// Notify posts ev. Filtered events return nil without a request.
func (t *Teams) Notify(ctx context.Context, ev Event) error {
	if !t.Enabled(ev.Kind) {
		slog.Debug("notification event filtered out", "event", string(ev.Kind))
		return nil
	}

	body, err := json.Marshal(buildMessage(ev))
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, t.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	slog.Debug("notification sent", "event", string(ev.Kind), "repo", ev.Repo)
	return nil
}

type message struct {
	Type        string       `json:"type"`
	Attachments []attachment `json:"attachments"`
}

type attachment struct {
	ContentType string `json:"contentType"`
	Content     card   `json:"content"`
}

type card struct {
	Schema  string   `json:"$schema"`
	Type    string   `json:"type"`
	Version string   `json:"version"`
	Body    []block  `json:"body"`
	Actions []action `json:"actions,omitempty"`
}

type block struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Size   string `json:"size,omitempty"`
	Weight string `json:"weight,omitempty"`
	Color  string `json:"color,omitempty"`
	Wrap   bool   `json:"wrap,omitempty"`
	Facts  []fact `json:"facts,omitempty"`
}

type fact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

type action struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

func headline(kind EventKind) string {
	switch kind {
	case EventPRCreated:
		return "✅ coafile PR opened"
	case EventPRExists:
		return "ℹ️ coafile PR already open"
	case EventPublishFailed:
		return "❌ coafile PR failed"
	case EventWorkspaceFailed:
		return "❌ coafile generation failed"
	}
	return string(kind)
}

// buildMessage wraps an Adaptive Card in the Power Automate envelope.
func buildMessage(ev Event) message {
	body := []block{{Type: "TextBlock", Size: "Medium", Weight: "Bolder", Text: headline(ev.Kind)}}

	var facts []fact
	if ev.Repo != "" {
		repo := ev.Repo
		if ev.Issue > 0 {
			repo += "#" + strconv.Itoa(ev.Issue)
		}
		facts = append(facts, fact{Title: "Repository", Value: repo})
	}
	if ev.Title != "" {
		facts = append(facts, fact{Title: "Issue", Value: ev.Title})
	}
	if ev.Attempts > 0 {
		facts = append(facts, fact{Title: "Attempts", Value: strconv.Itoa(ev.Attempts)})
	}
	if len(facts) > 0 {
		body = append(body, block{Type: "FactSet", Facts: facts})
	}
	if ev.Error != "" {
		body = append(body, block{Type: "TextBlock", Text: "⚠️ " + ev.Error, Color: "Attention", Wrap: true, Weight: "Bolder"})
	}

	c := card{
		Schema:  "http://adaptivecards.io/schemas/adaptive-card.json",
		Type:    "AdaptiveCard",
		Version: "1.4",
		Body:    body,
	}
	if ev.URL != "" {
		c.Actions = []action{{Type: "Action.OpenUrl", Title: "Open", URL: ev.URL}}
	}

	return message{
		Type:        "message",
		Attachments: []attachment{{ContentType: "application/vnd.microsoft.card.adaptive", Content: c}},
	}
}

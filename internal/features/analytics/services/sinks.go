package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"clr-site/internal/core"
	"clr-site/internal/store"
)

// Sink receives tracked events
type Sink interface {
	Name() string
	Send(ctx context.Context, sess Session, event Event) error
}

// TagManager forwards events to a GA4 Measurement Protocol collector
type TagManager struct {
	endpoint      string
	measurementID string
	apiSecret     string
	containerID   string
	client        *http.Client
}

// NewTagManager creates a collector sink. It is disabled when no API
// secret is configured.
func NewTagManager(cfg core.AnalyticsConfig) *TagManager {
	return &TagManager{
		endpoint:      cfg.Endpoint,
		measurementID: cfg.MeasurementID,
		apiSecret:     cfg.APISecret,
		containerID:   cfg.ContainerID,
		client:        &http.Client{Timeout: 5 * time.Second},
	}
}

func (t *TagManager) Name() string { return "tag_manager" }

// Enabled reports whether the collector has credentials
func (t *TagManager) Enabled() bool {
	return t.apiSecret != "" && t.measurementID != "" && t.endpoint != ""
}

type mpPayload struct {
	ClientID string    `json:"client_id"`
	UserID   string    `json:"user_id,omitempty"`
	Events   []mpEvent `json:"events"`
}

type mpEvent struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

func (t *TagManager) Send(ctx context.Context, sess Session, event Event) error {
	if !t.Enabled() {
		return nil
	}

	params := make(map[string]any, len(event.Properties)+6)
	for k, v := range event.Properties {
		params[k] = v
	}
	params["event_category"] = event.Category
	if event.Label != "" {
		params["event_label"] = event.Label
	}
	if event.Value != nil {
		params["value"] = *event.Value
	}
	if event.PagePath != "" {
		params["page_location"] = event.PagePath
	}
	params["session_id"] = sess.SessionID
	params["gtm_container_id"] = t.containerID

	body, err := json.Marshal(mpPayload{
		ClientID: sess.UserID,
		UserID:   sess.UserID,
		Events:   []mpEvent{{Name: event.Name, Params: params}},
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	target, err := url.Parse(t.endpoint)
	if err != nil {
		return fmt.Errorf("parse collector endpoint: %w", err)
	}
	q := target.Query()
	q.Set("measurement_id", t.measurementID)
	q.Set("api_secret", t.apiSecret)
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("collector returned status %d", resp.StatusCode)
	}
	return nil
}

// StoreSink records events in the analytics_events table
type StoreSink struct {
	store store.Store
	now   func() time.Time
}

// NewStoreSink creates a table sink
func NewStoreSink(s store.Store) *StoreSink {
	return &StoreSink{store: s, now: time.Now}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Send(ctx context.Context, sess Session, event Event) error {
	props := event.Properties
	if props == nil {
		props = map[string]any{}
	}
	encoded, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}

	row := store.Row{
		"user_id":    sess.UserID,
		"session_id": sess.SessionID,
		"event_name": event.Name,
		"category":   event.Category,
		"label":      event.Label,
		"properties": string(encoded),
		"page_path":  event.PagePath,
		"created_at": s.now().UTC(),
	}
	if event.Value != nil {
		row["value"] = *event.Value
	}

	_, err = s.store.Insert(ctx, store.TableAnalyticsEvents, row)
	return err
}

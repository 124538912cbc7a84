package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clr-site/internal/core"
)

func TestTagManagerPostsMeasurementProtocol(t *testing.T) {
	var got mpPayload
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{
			"measurement_id": r.URL.Query().Get("measurement_id"),
			"api_secret":     r.URL.Query().Get("api_secret"),
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tm := NewTagManager(core.AnalyticsConfig{
		MeasurementID: "G-TEST",
		ContainerID:   "GT-TEST",
		APISecret:     "secret",
		Endpoint:      srv.URL + "/mp/collect",
	})
	err := tm.Send(context.Background(), visitor, Event{
		Name:     "podcast_play",
		Category: "audio_engagement",
		Value:    value(1),
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if query["measurement_id"] != "G-TEST" || query["api_secret"] != "secret" {
		t.Errorf("Unexpected query %v", query)
	}
	if got.ClientID != visitor.UserID || len(got.Events) != 1 {
		t.Fatalf("Unexpected payload %+v", got)
	}
	params := got.Events[0].Params
	if got.Events[0].Name != "podcast_play" || params["event_category"] != "audio_engagement" || params["session_id"] != visitor.SessionID {
		t.Errorf("Unexpected event %+v", got.Events[0])
	}
}

func TestTagManagerReportsCollectorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tm := NewTagManager(core.AnalyticsConfig{MeasurementID: "G-TEST", APISecret: "secret", Endpoint: srv.URL})
	if err := tm.Send(context.Background(), visitor, Event{Name: "x"}); err == nil {
		t.Error("Expected an error for a 502 response")
	}
}

func TestTagManagerDisabledWithoutSecret(t *testing.T) {
	tm := NewTagManager(core.AnalyticsConfig{MeasurementID: "G-TEST", Endpoint: "http://127.0.0.1:1"})
	if tm.Enabled() {
		t.Fatal("Expected tag manager to be disabled")
	}
	if err := tm.Send(context.Background(), visitor, Event{Name: "x"}); err != nil {
		t.Errorf("Expected disabled send to be a no-op, got %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"clr-site/internal/core"
)

type recordingNotifier struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, to, subject, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subjects = append(n.subjects, subject)
	return n.err
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.subjects...)
}

func flappingServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	t.Cleanup(srv.Close)
	return srv, &status
}

func TestLinkMonitorAlertsOnTransitions(t *testing.T) {
	srv, status := flappingServer(t)
	notifier := &recordingNotifier{}
	m := NewLinkMonitor(notifier, "admin@example.com", core.NewDiscardLogger())
	links := []Link{{Name: "Pro plan", URL: srv.URL}}
	ctx := context.Background()

	results := m.CheckAll(ctx, links)
	if len(results) != 1 || !results[0].Up || results[0].StatusCode != http.StatusOK {
		t.Fatalf("Unexpected first check %+v", results)
	}
	if len(notifier.sent()) != 0 {
		t.Fatal("First check must not alert")
	}

	status.Store(http.StatusNotFound)
	m.CheckAll(ctx, links)
	m.CheckAll(ctx, links)

	status.Store(http.StatusOK)
	m.CheckAll(ctx, links)

	sent := notifier.sent()
	if len(sent) != 2 {
		t.Fatalf("Expected 2 alerts, got %v", sent)
	}
	if !strings.Contains(sent[0], "Pro plan is DOWN") || !strings.Contains(sent[1], "back UP") {
		t.Errorf("Unexpected alert subjects %v", sent)
	}
}

func TestLinkMonitorUnreachable(t *testing.T) {
	m := NewLinkMonitor(nil, "", core.NewDiscardLogger())

	results := m.CheckAll(context.Background(), []Link{{Name: "Broken", URL: "http://127.0.0.1:1"}})
	if len(results) != 1 || results[0].Up || results[0].Error == "" {
		t.Errorf("Expected an unreachable link to be down with an error, got %+v", results)
	}
}

func TestLinkMonitorLatestSortedByName(t *testing.T) {
	srv, _ := flappingServer(t)
	m := NewLinkMonitor(nil, "", core.NewDiscardLogger())

	m.CheckAll(context.Background(), []Link{
		{Name: "Workshop", URL: srv.URL + "/b"},
		{Name: "Feed", URL: srv.URL + "/a"},
	})

	latest := m.Latest()
	if len(latest) != 2 || latest[0].Name != "Feed" || latest[1].Name != "Workshop" {
		t.Errorf("Unexpected latest order %+v", latest)
	}
}

func TestLinkMonitorNotifierFailureIsLogged(t *testing.T) {
	srv, status := flappingServer(t)
	notifier := &recordingNotifier{err: errors.New("provider down")}
	m := NewLinkMonitor(notifier, "admin@example.com", core.NewDiscardLogger())
	links := []Link{{Name: "Feed", URL: srv.URL}}

	m.CheckAll(context.Background(), links)
	status.Store(http.StatusInternalServerError)
	results := m.CheckAll(context.Background(), links)

	if results[0].Up || len(notifier.sent()) != 1 {
		t.Errorf("Expected one attempted alert for a down link, got %+v %v", results, notifier.sent())
	}
}

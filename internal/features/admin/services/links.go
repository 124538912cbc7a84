package services

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"clr-site/internal/core"
)

// Notifier delivers an operator notification immediately
type Notifier interface {
	Notify(ctx context.Context, to, subject, text string) error
}

// Link is an outbound URL the site depends on, such as a payment link
type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// LinkStatus is the latest check of one link
type LinkStatus struct {
	Link
	Up           bool      `json:"up"`
	StatusCode   int       `json:"status_code"`
	ResponseTime int64     `json:"response_time_ms"`
	Error        string    `json:"error,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
}

// LinkMonitor checks outbound links and emails the admin when one goes
// down or recovers. Only transitions alert; the first check never does.
type LinkMonitor struct {
	client    *http.Client
	notifier  Notifier
	recipient string
	logger    *core.Logger
	now       func() time.Time

	mu   sync.Mutex
	last map[string]LinkStatus
}

// NewLinkMonitor creates a monitor alerting recipient through notifier.
// A nil notifier disables alerts.
func NewLinkMonitor(notifier Notifier, recipient string, logger *core.Logger) *LinkMonitor {
	return &LinkMonitor{
		client:    &http.Client{Timeout: 10 * time.Second},
		notifier:  notifier,
		recipient: recipient,
		logger:    logger,
		now:       time.Now,
		last:      make(map[string]LinkStatus),
	}
}

// CheckAll checks every link and returns the results in input order
func (m *LinkMonitor) CheckAll(ctx context.Context, links []Link) []LinkStatus {
	results := make([]LinkStatus, 0, len(links))
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}
		status := m.check(ctx, link)
		m.record(ctx, status)
		results = append(results, status)
	}
	return results
}

// Latest returns the most recent status of every checked link
func (m *LinkMonitor) Latest() []LinkStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]LinkStatus, 0, len(m.last))
	for _, s := range m.last {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b LinkStatus) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (m *LinkMonitor) check(ctx context.Context, link Link) LinkStatus {
	status := LinkStatus{Link: link, CheckedAt: m.now().UTC()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.URL, nil)
	if err != nil {
		status.Error = err.Error()
		return status
	}

	start := time.Now()
	resp, err := m.client.Do(req)
	status.ResponseTime = time.Since(start).Milliseconds()
	if err != nil {
		status.Error = err.Error()
		m.logger.Warn("Link check failed", "name", link.Name, "url", link.URL, "error", err)
		return status
	}
	defer resp.Body.Close()

	status.StatusCode = resp.StatusCode
	status.Up = resp.StatusCode >= 200 && resp.StatusCode < 400
	return status
}

func (m *LinkMonitor) record(ctx context.Context, status LinkStatus) {
	m.mu.Lock()
	previous, seen := m.last[status.URL]
	m.last[status.URL] = status
	m.mu.Unlock()

	if !seen || previous.Up == status.Up {
		return
	}
	m.alert(ctx, status)
}

func (m *LinkMonitor) alert(ctx context.Context, status LinkStatus) {
	if m.notifier == nil || m.recipient == "" {
		return
	}

	state := "DOWN"
	if status.Up {
		state = "back UP"
	}
	detail := fmt.Sprintf("HTTP %d", status.StatusCode)
	if status.Error != "" {
		detail = status.Error
	}

	subject := fmt.Sprintf("[Chef Life Radio] %s is %s", status.Name, state)
	text := fmt.Sprintf("%s (%s) is %s as of %s.\n\nLast check: %s\n",
		status.Name, status.URL, state, status.CheckedAt.Format("2006-01-02 15:04:05 MST"), detail)

	if err := m.notifier.Notify(ctx, m.recipient, subject, text); err != nil {
		m.logger.Error("Failed to send link alert", "name", status.Name, "error", err)
		return
	}
	m.logger.Info("Sent link alert", "name", status.Name, "up", status.Up)
}

package models

import (
	"fmt"
	"slices"
	"time"
)

// Subscriber statuses
const (
	StatusActive       = "active"
	StatusUnsubscribed = "unsubscribed"
)

const DefaultSource = "website"

var (
	Frequencies = []string{"weekly", "biweekly", "monthly"}
	Topics      = []string{"all", "podcast", "events", "blog"}
	Formats     = []string{"html", "text"}
)

// Preferences controls what a subscriber receives. It is always replaced
// wholesale.
type Preferences struct {
	Frequency string   `json:"frequency"`
	Topics    []string `json:"topics"`
	Format    string   `json:"format"`
}

// DefaultPreferences returns the preferences given to new subscribers
func DefaultPreferences() Preferences {
	return Preferences{Frequency: "weekly", Topics: []string{"all"}, Format: "html"}
}

// Validate checks that p is a complete preferences structure
func (p Preferences) Validate() error {
	if !slices.Contains(Frequencies, p.Frequency) {
		return fmt.Errorf("unknown frequency %q", p.Frequency)
	}
	if !slices.Contains(Formats, p.Format) {
		return fmt.Errorf("unknown format %q", p.Format)
	}
	if len(p.Topics) == 0 {
		return fmt.Errorf("at least one topic is required")
	}
	seen := make(map[string]bool, len(p.Topics))
	for _, topic := range p.Topics {
		if !slices.Contains(Topics, topic) {
			return fmt.Errorf("unknown topic %q", topic)
		}
		if seen[topic] {
			return fmt.Errorf("duplicate topic %q", topic)
		}
		seen[topic] = true
	}
	return nil
}

// Subscriber is a newsletter subscription record
type Subscriber struct {
	ID               int64       `json:"id"`
	Email            string      `json:"email"`
	Name             *string     `json:"name,omitempty"`
	Source           string      `json:"source"`
	Status           string      `json:"status"`
	UnsubscribeToken string      `json:"-"`
	Preferences      Preferences `json:"preferences"`
	SubscribedAt     time.Time   `json:"subscribed_at"`
	UnsubscribedAt   *time.Time  `json:"unsubscribed_at,omitempty"`
}

// Active reports whether the subscriber still receives email
func (s Subscriber) Active() bool {
	return s.Status == StatusActive
}

// DisplayName returns the subscriber's name or a friendly default
func (s Subscriber) DisplayName() string {
	if s.Name == nil || *s.Name == "" {
		return "Fellow Chef"
	}
	return *s.Name
}

// Outcome is the result of a subscribe request
type Outcome string

const (
	OutcomeSubscribed        Outcome = "subscribed"
	OutcomeAlreadySubscribed Outcome = "already_subscribed"
)

package services

import (
	"slices"
	"strings"
	"time"

	contentmodels "clr-site/internal/features/content/models"
)

// TypePast marks events kept on the page as past shows
const TypePast = "past"

// CalendarDay groups the events held on one date
type CalendarDay struct {
	Date   string                `json:"date"`
	Events []contentmodels.Event `json:"events"`
}

// Calendar groups the events falling in month by date, earliest first.
// Events with an unparseable date are left out.
func Calendar(events []contentmodels.Event, month time.Time) []CalendarDay {
	byDate := make(map[string][]contentmodels.Event)
	for _, event := range events {
		day, err := event.Day()
		if err != nil || day.Year() != month.Year() || day.Month() != month.Month() {
			continue
		}
		byDate[event.Date] = append(byDate[event.Date], event)
	}

	days := make([]CalendarDay, 0, len(byDate))
	for date, dayEvents := range byDate {
		days = append(days, CalendarDay{Date: date, Events: dayEvents})
	}
	slices.SortFunc(days, func(a, b CalendarDay) int {
		return strings.Compare(a.Date, b.Date)
	})
	return days
}

// Partition splits events into upcoming and past relative to today. An
// event is past when its date is before today or it is typed as a past show.
func Partition(events []contentmodels.Event, today time.Time) (upcoming, past []contentmodels.Event) {
	cutoff := today.Format(contentmodels.EventDateLayout)
	for _, event := range events {
		if event.Type == TypePast || event.Date < cutoff {
			past = append(past, event)
			continue
		}
		upcoming = append(upcoming, event)
	}
	return upcoming, past
}

// Capacity levels shown next to the attendee count
const (
	CapacityOpen    = "open"
	CapacityFilling = "filling"
	CapacityAlmost  = "almost_full"
)

// CapacityLevel classifies how full an event is: at least 90% is almost
// full, at least 70% is filling. Unlimited events are always open.
func CapacityLevel(event contentmodels.Event) string {
	if event.MaxAttendees <= 0 {
		return CapacityOpen
	}
	pct := event.CurrentAttendees * 100 / event.MaxAttendees
	switch {
	case pct >= 90:
		return CapacityAlmost
	case pct >= 70:
		return CapacityFilling
	default:
		return CapacityOpen
	}
}

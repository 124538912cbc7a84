// Package views renders the few server-side pages that email links land on.
// Components live in the .templ files; run `go tool templ generate` after
// editing them.
package views

import (
	twmerge "github.com/Oudwins/tailwind-merge-go"
)

// CSRFFieldName is the form field gorilla/csrf reads the token from
const CSRFFieldName = "gorilla.csrf.Token"

// Tone picks the colour scheme of a message block
type Tone int

const (
	ToneInfo Tone = iota
	ToneSuccess
	ToneError
)

const (
	panelBase  = "max-w-md mx-auto rounded-2xl bg-white p-8 shadow-lg text-center"
	buttonBase = "inline-flex items-center justify-center rounded-lg px-6 py-3 font-semibold bg-orange-600 text-white hover:bg-orange-700"
)

func (t Tone) classes() string {
	switch t {
	case ToneSuccess:
		return "border-t-4 border-green-500"
	case ToneError:
		return "border-t-4 border-red-500"
	default:
		return "border-t-4 border-orange-500"
	}
}

// Classes merges tailwind class lists so later lists win conflicts
func Classes(lists ...string) string {
	return twmerge.Merge(lists...)
}

// Option is a labelled choice on the preferences form
type Option struct {
	Value string
	Label string
}

var (
	FrequencyOptions = []Option{
		{"weekly", "Weekly - Our regular transformation insights"},
		{"biweekly", "Bi-weekly - Less frequent, more curated"},
		{"monthly", "Monthly - Just the highlights"},
	}
	TopicOptions = []Option{
		{"all", "All content - Full transformation experience"},
		{"podcast", "Podcast updates only - New episodes and highlights"},
		{"events", "Events only - Live shows and workshops"},
		{"blog", "Blog posts only - Written insights and articles"},
	}
	FormatOptions = []Option{
		{"html", "Rich HTML - Full design and images"},
		{"text", "Plain text - Simple, fast loading"},
	}
)

// PreferencesForm is the state of the preferences page
type PreferencesForm struct {
	Token     string
	CSRFToken string
	Frequency string
	Topics    []string
	Format    string
	Error     string
	Saved     bool
}

func (f PreferencesForm) tone() Tone {
	switch {
	case f.Error != "":
		return ToneError
	case f.Saved:
		return ToneSuccess
	default:
		return ToneInfo
	}
}

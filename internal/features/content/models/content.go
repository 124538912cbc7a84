package models

import (
	"time"
)

// Publication statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusUpcoming  = "upcoming"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// CategoryAll is the listing sentinel that matches every category
const CategoryAll = "all"

// Listable is implemented by records shown on searchable listing pages
type Listable interface {
	ListingTitle() string
	ListingExcerpt() string
	ListingTags() []string
	ListingCategory() string
}

// Episode is a podcast episode
type Episode struct {
	ID            int64     `json:"id" yaml:"id"`
	GUID          string    `json:"guid,omitempty" yaml:"guid"`
	Title         string    `json:"title" yaml:"title"`
	Description   string    `json:"description" yaml:"description"`
	Excerpt       string    `json:"excerpt,omitempty" yaml:"excerpt"`
	ShowNotes     string    `json:"show_notes,omitempty" yaml:"show_notes"`
	AudioURL      string    `json:"audio_url" yaml:"audio_url"`
	ImageURL      string    `json:"image_url" yaml:"image_url"`
	Duration      string    `json:"duration" yaml:"duration"`
	EpisodeNumber int       `json:"episode_number,omitempty" yaml:"episode_number"`
	Season        int       `json:"season,omitempty" yaml:"season"`
	GuestName     string    `json:"guest_name,omitempty" yaml:"guest_name"`
	Category      string    `json:"category" yaml:"category"`
	Tags          []string  `json:"tags" yaml:"tags"`
	Links         []string  `json:"links,omitempty" yaml:"links"`
	Featured      bool      `json:"featured" yaml:"featured"`
	Status        string    `json:"status" yaml:"status"`
	PublishedAt   time.Time `json:"published_at" yaml:"published_at"`
}

func (e Episode) ListingTitle() string    { return e.Title }
func (e Episode) ListingExcerpt() string  { return e.Description }
func (e Episode) ListingTags() []string   { return e.Tags }
func (e Episode) ListingCategory() string { return e.Category }

// Post is a blog post
type Post struct {
	ID          int64     `json:"id" yaml:"id"`
	Slug        string    `json:"slug" yaml:"slug"`
	Title       string    `json:"title" yaml:"title"`
	Excerpt     string    `json:"excerpt" yaml:"excerpt"`
	Content     string    `json:"content,omitempty" yaml:"content"`
	Category    string    `json:"category" yaml:"category"`
	Tags        []string  `json:"tags" yaml:"tags"`
	Author      string    `json:"author" yaml:"author"`
	ImageURL    string    `json:"image_url" yaml:"image_url"`
	ReadTime    string    `json:"read_time" yaml:"read_time"`
	BrandVoice  string    `json:"brand_voice" yaml:"brand_voice"`
	Featured    bool      `json:"featured" yaml:"featured"`
	Views       int64     `json:"views" yaml:"views"`
	Status      string    `json:"status" yaml:"status"`
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
}

func (p Post) ListingTitle() string    { return p.Title }
func (p Post) ListingExcerpt() string  { return p.Excerpt }
func (p Post) ListingTags() []string   { return p.Tags }
func (p Post) ListingCategory() string { return p.Category }

// Event is a live show or workshop
type Event struct {
	ID               int64    `json:"id" yaml:"id"`
	Title            string   `json:"title" yaml:"title"`
	Description      string   `json:"description" yaml:"description"`
	Date             string   `json:"date" yaml:"date"`
	Time             string   `json:"time" yaml:"time"`
	EndTime          string   `json:"end_time" yaml:"end_time"`
	Type             string   `json:"type" yaml:"type"`
	Location         string   `json:"location" yaml:"location"`
	Venue            string   `json:"venue" yaml:"venue"`
	Host             string   `json:"host" yaml:"host"`
	Price            float64  `json:"price" yaml:"price"`
	MaxAttendees     int      `json:"max_attendees" yaml:"max_attendees"`
	CurrentAttendees int      `json:"current_attendees" yaml:"current_attendees"`
	SoldOut          bool     `json:"sold_out" yaml:"sold_out"`
	Featured         bool     `json:"featured" yaml:"featured"`
	ImageURL         string   `json:"image_url" yaml:"image_url"`
	CheckoutURL      string   `json:"checkout_url,omitempty" yaml:"checkout_url"`
	Includes         []string `json:"includes,omitempty" yaml:"includes"`
	Requirements     []string `json:"requirements,omitempty" yaml:"requirements"`
	Status           string   `json:"status" yaml:"status"`
}

// EventDateLayout is the storage layout of Event.Date
const EventDateLayout = "2006-01-02"

// Day parses the event date
func (e Event) Day() (time.Time, error) {
	return time.Parse(EventDateLayout, e.Date)
}

// SpotsLeft returns the remaining capacity; unlimited events report -1
func (e Event) SpotsLeft() int {
	if e.MaxAttendees <= 0 {
		return -1
	}
	if left := e.MaxAttendees - e.CurrentAttendees; left > 0 {
		return left
	}
	return 0
}

// IsFull reports whether no more registrations are accepted
func (e Event) IsFull() bool {
	return e.SoldOut || e.SpotsLeft() == 0
}

// Video is a published video
type Video struct {
	ID           int64     `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description" yaml:"description"`
	YouTubeID    string    `json:"youtube_id" yaml:"youtube_id"`
	ThumbnailURL string    `json:"thumbnail_url" yaml:"thumbnail_url"`
	Duration     string    `json:"duration" yaml:"duration"`
	Category     string    `json:"category" yaml:"category"`
	Tags         []string  `json:"tags" yaml:"tags"`
	Views        int64     `json:"views" yaml:"views"`
	Likes        int64     `json:"likes" yaml:"likes"`
	Featured     bool      `json:"featured" yaml:"featured"`
	Status       string    `json:"status" yaml:"status"`
	PublishedAt  time.Time `json:"published_at" yaml:"published_at"`
}

func (v Video) ListingTitle() string    { return v.Title }
func (v Video) ListingExcerpt() string  { return v.Description }
func (v Video) ListingTags() []string   { return v.Tags }
func (v Video) ListingCategory() string { return v.Category }

// Stats summarises published content for the admin dashboard
type Stats struct {
	Episodes          int `json:"episodes"`
	Posts             int `json:"posts"`
	Events            int `json:"events"`
	ActiveSubscribers int `json:"active_subscribers"`
}

// Category lists offered by the listing pages
var (
	BlogCategories    = []string{CategoryAll, "Transformation", "Culture Change", "Leadership", "Operations", "Mindset", "Resilience"}
	PodcastCategories = []string{CategoryAll, "Transformation", "Leadership", "Wellness", "Business"}
	VideoCategories   = []string{CategoryAll, "Full Interview", "Highlight Reel", "Short", "Behind the Scenes"}
)

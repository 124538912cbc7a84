package models

import (
	"errors"
	"fmt"
	"strings"

	"clr-site/internal/store"
)

// ErrInvalidRow is returned when a stored row cannot become a typed record
var ErrInvalidRow = errors.New("invalid content row")

func rowID(row store.Row) (int64, error) {
	id, ok := row.Int64("id")
	if !ok || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %v", ErrInvalidRow, row["id"])
	}
	return id, nil
}

func rowTitle(row store.Row) (string, error) {
	title := strings.TrimSpace(row.String("title"))
	if title == "" {
		return "", fmt.Errorf("%w: empty title", ErrInvalidRow)
	}
	return title, nil
}

// DecodeEpisode converts a podcast_episodes row
func DecodeEpisode(row store.Row) (Episode, error) {
	id, err := rowID(row)
	if err != nil {
		return Episode{}, err
	}
	title, err := rowTitle(row)
	if err != nil {
		return Episode{}, err
	}

	number, _ := row.Int64("episode_number")
	season, _ := row.Int64("season")
	published, _ := row.Time("published_at")

	return Episode{
		ID:            id,
		GUID:          row.String("guid"),
		Title:         title,
		Description:   row.String("description"),
		Excerpt:       row.String("excerpt"),
		ShowNotes:     row.String("show_notes"),
		AudioURL:      row.String("audio_url"),
		ImageURL:      row.String("image_url"),
		Duration:      row.String("duration"),
		EpisodeNumber: int(number),
		Season:        int(season),
		GuestName:     row.String("guest_name"),
		Category:      row.String("category"),
		Tags:          row.Strings("tags"),
		Links:         row.Strings("links"),
		Featured:      row.Bool("featured"),
		Status:        row.String("status"),
		PublishedAt:   published,
	}, nil
}

// DecodePost converts a blog_posts row
func DecodePost(row store.Row) (Post, error) {
	id, err := rowID(row)
	if err != nil {
		return Post{}, err
	}
	title, err := rowTitle(row)
	if err != nil {
		return Post{}, err
	}
	slug := row.String("slug")
	if slug == "" {
		return Post{}, fmt.Errorf("%w: empty slug", ErrInvalidRow)
	}

	views, _ := row.Int64("views")
	published, _ := row.Time("published_at")

	return Post{
		ID:          id,
		Slug:        slug,
		Title:       title,
		Excerpt:     row.String("excerpt"),
		Content:     row.String("content"),
		Category:    row.String("category"),
		Tags:        row.Strings("tags"),
		Author:      row.String("author"),
		ImageURL:    row.String("image_url"),
		ReadTime:    row.String("read_time"),
		BrandVoice:  row.String("brand_voice"),
		Featured:    row.Bool("featured"),
		Views:       views,
		Status:      row.String("status"),
		PublishedAt: published,
	}, nil
}

// DecodeEvent converts an events row
func DecodeEvent(row store.Row) (Event, error) {
	id, err := rowID(row)
	if err != nil {
		return Event{}, err
	}
	title, err := rowTitle(row)
	if err != nil {
		return Event{}, err
	}
	day, ok := row.Time("date")
	if !ok {
		return Event{}, fmt.Errorf("%w: bad date %v", ErrInvalidRow, row["date"])
	}

	maxAttendees, _ := row.Int64("max_attendees")
	current, _ := row.Int64("current_attendees")

	return Event{
		ID:               id,
		Title:            title,
		Description:      row.String("description"),
		Date:             day.Format(EventDateLayout),
		Time:             row.String("time"),
		EndTime:          row.String("end_time"),
		Type:             row.String("event_type"),
		Location:         row.String("location"),
		Venue:            row.String("venue"),
		Host:             row.String("host"),
		Price:            row.Float("price"),
		MaxAttendees:     int(maxAttendees),
		CurrentAttendees: int(current),
		SoldOut:          row.Bool("sold_out"),
		Featured:         row.Bool("featured"),
		ImageURL:         row.String("image_url"),
		CheckoutURL:      row.String("checkout_url"),
		Includes:         row.Strings("includes"),
		Requirements:     row.Strings("requirements"),
		Status:           row.String("status"),
	}, nil
}

// DecodeVideo converts a videos row
func DecodeVideo(row store.Row) (Video, error) {
	id, err := rowID(row)
	if err != nil {
		return Video{}, err
	}
	title, err := rowTitle(row)
	if err != nil {
		return Video{}, err
	}

	views, _ := row.Int64("views")
	likes, _ := row.Int64("likes")
	published, _ := row.Time("published_at")

	return Video{
		ID:           id,
		Title:        title,
		Description:  row.String("description"),
		YouTubeID:    row.String("youtube_id"),
		ThumbnailURL: row.String("thumbnail_url"),
		Duration:     row.String("duration"),
		Category:     row.String("category"),
		Tags:         row.Strings("tags"),
		Views:        views,
		Likes:        likes,
		Featured:     row.Bool("featured"),
		Status:       row.String("status"),
		PublishedAt:  published,
	}, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"clr-site/internal/core"
	"clr-site/internal/features/content/models"
	"clr-site/internal/store"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"mvdan.cc/xurls/v2"
)

const excerptLength = 280

var httpsURLs = mustStrictScheme("https://")

func mustStrictScheme(scheme string) *regexp.Regexp {
	re, err := xurls.StrictMatchingScheme(scheme)
	if err != nil {
		panic(fmt.Sprintf("xurls scheme %q: %v", scheme, err))
	}
	return re
}

// SyncResult counts what a feed sync did
type SyncResult struct {
	Fetched  int `json:"fetched"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// FeedSyncer imports podcast feed items as published episodes
type FeedSyncer struct {
	store     store.Store
	parser    *gofeed.Parser
	converter *md.Converter
	logger    *core.Logger
	now       func() time.Time
}

// NewFeedSyncer creates a new feed syncer
func NewFeedSyncer(s store.Store, logger *core.Logger) *FeedSyncer {
	return &FeedSyncer{
		store:     s,
		parser:    gofeed.NewParser(),
		converter: md.NewConverter("", true, nil),
		logger:    logger,
		now:       time.Now,
	}
}

// Sync fetches the feed at feedURL and stores new episodes. Items that are
// already stored are skipped, so syncing is idempotent.
func (s *FeedSyncer) Sync(ctx context.Context, feedURL string) (SyncResult, error) {
	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	return s.save(ctx, feed)
}

// SyncReader stores the episodes of an already downloaded feed document
func (s *FeedSyncer) SyncReader(ctx context.Context, r io.Reader) (SyncResult, error) {
	feed, err := s.parser.Parse(r)
	if err != nil {
		return SyncResult{}, fmt.Errorf("parse feed: %w", err)
	}
	return s.save(ctx, feed)
}

func (s *FeedSyncer) save(ctx context.Context, feed *gofeed.Feed) (SyncResult, error) {
	result := SyncResult{Fetched: len(feed.Items)}

	feedImage := ""
	if feed.Image != nil {
		feedImage = feed.Image.URL
	}

	for _, item := range feed.Items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		row, err := s.episodeRow(item, feedImage)
		if err != nil {
			s.logger.Warn("Skipping feed item", "title", item.Title, "error", err)
			result.Failed++
			continue
		}

		if _, err := s.store.Insert(ctx, store.TableEpisodes, row); err != nil {
			if errors.Is(err, store.ErrUniqueViolation) {
				result.Skipped++
				continue
			}
			s.logger.Error("Failed to store feed item", "guid", row["guid"], "error", err)
			result.Failed++
			continue
		}
		result.Inserted++
	}

	s.logger.Info("Podcast feed synced",
		"fetched", result.Fetched, "inserted", result.Inserted,
		"skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

func (s *FeedSyncer) episodeRow(item *gofeed.Item, feedImage string) (store.Row, error) {
	guid := item.GUID
	if guid == "" {
		guid = item.Link
	}
	if guid == "" {
		return nil, errors.New("item has neither guid nor link")
	}
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil, errors.New("item has no title")
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}

	showNotes, err := s.converter.ConvertString(body)
	if err != nil {
		return nil, fmt.Errorf("convert show notes: %w", err)
	}

	text, err := plainText(body)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	links := extractLinks(body)

	tags, err := json.Marshal(nonNil(item.Categories))
	if err != nil {
		return nil, err
	}
	linksJSON, err := json.Marshal(links)
	if err != nil {
		return nil, err
	}

	publishedAt := s.now().UTC()
	if item.PublishedParsed != nil {
		publishedAt = item.PublishedParsed.UTC()
	}

	row := store.Row{
		"guid":         guid,
		"title":        title,
		"description":  text,
		"excerpt":      truncate(text, excerptLength),
		"show_notes":   showNotes,
		"audio_url":    audioURL(item),
		"image_url":    imageURL(item, feedImage),
		"tags":         string(tags),
		"links":        string(linksJSON),
		"status":       models.StatusPublished,
		"published_at": publishedAt,
		"created_at":   s.now().UTC(),
	}

	if ext := item.ITunesExt; ext != nil {
		row["duration"] = formatDuration(ext.Duration)
		if n, err := strconv.Atoi(strings.TrimSpace(ext.Episode)); err == nil {
			row["episode_number"] = int64(n)
		}
		if n, err := strconv.Atoi(strings.TrimSpace(ext.Season)); err == nil {
			row["season"] = int64(n)
		}
	}
	return row, nil
}

func audioURL(item *gofeed.Item) string {
	for _, enclosure := range item.Enclosures {
		if strings.HasPrefix(enclosure.Type, "audio/") {
			return enclosure.URL
		}
	}
	if len(item.Enclosures) > 0 {
		return item.Enclosures[0].URL
	}
	return ""
}

func imageURL(item *gofeed.Item, feedImage string) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	if item.ITunesExt != nil && item.ITunesExt.Image != "" {
		return item.ITunesExt.Image
	}
	if feedImage != "" {
		return feedImage
	}
	return defaultImageURL
}

// plainText strips markup and collapses whitespace
func plainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

func extractLinks(html string) []string {
	links := []string{}
	seen := make(map[string]struct{})
	for _, u := range httpsURLs.FindAllString(html, -1) {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		links = append(links, u)
	}
	return links
}

// formatDuration turns iTunes durations given in seconds into m:ss or h:mm:ss
func formatDuration(raw string) string {
	raw = strings.TrimSpace(raw)
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return raw
	}

	h, m, sec := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

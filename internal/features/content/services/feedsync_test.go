package services

import (
	"context"
	"strings"
	"testing"

	"clr-site/internal/core"
	"clr-site/internal/store"
	"clr-site/internal/store/storetest"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
  <title>Chef Life Radio</title>
  <link>https://chefliferadio.com</link>
  <image><url>https://cdn.example.com/cover.png</url><title>CLR</title><link>https://chefliferadio.com</link></image>
  <item>
    <title>The Mirror Episode</title>
    <guid>clr-ep-1</guid>
    <pubDate>Mon, 15 Jan 2024 10:00:00 +0000</pubDate>
    <description><![CDATA[<p>We hold up <strong>mirrors</strong>.</p><p>Show notes: <a href="https://chefliferadio.com/mirror">mirror</a> and https://example.com/book</p>]]></description>
    <enclosure url="https://cdn.example.com/ep1.mp3" type="audio/mpeg" length="1000"/>
    <category>Transformation</category>
    <itunes:duration>2732</itunes:duration>
    <itunes:episode>1</itunes:episode>
    <itunes:season>2</itunes:season>
  </item>
  <item>
    <title>From Line Cook to Leader</title>
    <link>https://chefliferadio.com/episodes/2</link>
    <pubDate>Wed, 10 Jan 2024 10:00:00 +0000</pubDate>
    <description>Finding your voice.</description>
    <enclosure url="https://cdn.example.com/ep2.mp3" type="audio/mpeg" length="1000"/>
    <itunes:duration>38:15</itunes:duration>
  </item>
  <item>
    <title></title>
    <guid>untitled</guid>
  </item>
</channel>
</rss>`

func TestFeedSyncIsIdempotent(t *testing.T) {
	s := storetest.New(t)
	syncer := NewFeedSyncer(s, core.NewDiscardLogger())
	ctx := context.Background()

	first, err := syncer.SyncReader(ctx, strings.NewReader(testFeed))
	if err != nil {
		t.Fatalf("SyncReader() error = %v", err)
	}
	if first.Fetched != 3 || first.Inserted != 2 || first.Failed != 1 {
		t.Errorf("Unexpected first sync result: %+v", first)
	}

	second, err := syncer.SyncReader(ctx, strings.NewReader(testFeed))
	if err != nil {
		t.Fatalf("SyncReader() error = %v", err)
	}
	if second.Inserted != 0 || second.Skipped != 2 {
		t.Errorf("Expected second sync to skip stored items, got %+v", second)
	}

	count, err := s.Count(ctx, store.TableEpisodes)
	if err != nil || count != 2 {
		t.Fatalf("Expected 2 stored episodes, got %d (%v)", count, err)
	}
}

func TestFeedSyncEpisodeFields(t *testing.T) {
	s := storetest.New(t)
	syncer := NewFeedSyncer(s, core.NewDiscardLogger())
	if _, err := syncer.SyncReader(context.Background(), strings.NewReader(testFeed)); err != nil {
		t.Fatalf("SyncReader() error = %v", err)
	}

	f := newTestFetcher(t, s)
	result := f.Episodes(context.Background(), 0, PolicyListing)
	if len(result.Items) != 2 {
		t.Fatalf("Expected 2 episodes, got %d", len(result.Items))
	}

	mirror := result.Items[0]
	if mirror.GUID != "clr-ep-1" || mirror.Title != "The Mirror Episode" {
		t.Errorf("Unexpected newest episode: %+v", mirror)
	}
	if mirror.Duration != "45:32" || mirror.EpisodeNumber != 1 || mirror.Season != 2 {
		t.Errorf("Expected iTunes fields to be mapped, got duration=%q episode=%d season=%d",
			mirror.Duration, mirror.EpisodeNumber, mirror.Season)
	}
	if mirror.AudioURL != "https://cdn.example.com/ep1.mp3" || mirror.ImageURL != "https://cdn.example.com/cover.png" {
		t.Errorf("Unexpected media URLs: %q %q", mirror.AudioURL, mirror.ImageURL)
	}
	if !strings.HasPrefix(mirror.Description, "We hold up mirrors.") || strings.Contains(mirror.Description, "<") {
		t.Errorf("Expected plain-text description, got %q", mirror.Description)
	}
	if !strings.Contains(mirror.ShowNotes, "**mirrors**") {
		t.Errorf("Expected markdown show notes, got %q", mirror.ShowNotes)
	}
	if len(mirror.Links) != 2 {
		t.Errorf("Expected two show-note links, got %v", mirror.Links)
	}
	if len(mirror.Tags) != 1 || mirror.Tags[0] != "Transformation" {
		t.Errorf("Expected categories as tags, got %v", mirror.Tags)
	}

	leader := result.Items[1]
	if leader.GUID != "https://chefliferadio.com/episodes/2" {
		t.Errorf("Expected link to stand in for a missing guid, got %q", leader.GUID)
	}
	if leader.Duration != "38:15" {
		t.Errorf("Expected clock durations to pass through, got %q", leader.Duration)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[string]string{
		"2732":    "45:32",
		"75":      "1:15",
		"3725":    "1:02:05",
		"45:32":   "45:32",
		" 52:18 ": "52:18",
	}
	for in, want := range tests {
		if got := formatDuration(in); got != want {
			t.Errorf("formatDuration(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderMarkdownEscapesRawHTML(t *testing.T) {
	html, err := RenderMarkdown("# The Mirror\n\n<script>alert(1)</script>\n\nLine one\nline two")
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	if !strings.Contains(html, "<h1>The Mirror</h1>") {
		t.Errorf("Expected heading, got %q", html)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("Expected raw HTML to be dropped, got %q", html)
	}
	if !strings.Contains(html, "<br") {
		t.Errorf("Expected hard wraps, got %q", html)
	}
}

func TestExtractLinks(t *testing.T) {
	html := `<p>Listen at <a href="https://chefliferadio.com/ep1">https://chefliferadio.com/ep1</a>
and https://chefliferadio.com/ep1 again, not http://insecure.example.com</p>`

	got := extractLinks(html)
	if len(got) != 1 || got[0] != "https://chefliferadio.com/ep1" {
		t.Errorf("Expected one deduplicated https link, got %v", got)
	}
	if got := extractLinks("no links here"); got == nil || len(got) != 0 {
		t.Errorf("Expected an empty non-nil slice, got %#v", got)
	}
}

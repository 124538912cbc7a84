package services

import "testing"

func TestContentTheme(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Surviving a Toxic Kitchen", "toxic_culture_transformation"},
		{"What Makes a Leader on the Line", "culinary_leadership"},
		{"The Mirror Doesn't Lie", "self_awareness"},
		{"Systems Before Heroics", "operational_excellence"},
		{"Burnout Is Not a Badge", "emotional_wellness"},
		{"Culture and Leadership", "toxic_culture_transformation"},
		{"Knife Skills", "general_transformation"},
	}
	for _, tt := range tests {
		if got := ContentTheme(tt.title); got != tt.want {
			t.Errorf("ContentTheme(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSiteSectionAndContentType(t *testing.T) {
	tests := []struct {
		path        string
		section     string
		contentType string
	}{
		{"/", "home", "page_content"},
		{"/podcast/episode-12", "podcast", "audio_content"},
		{"/blog/the-mirror", "blog", "article_content"},
		{"/events", "events", "event_content"},
		{"/videos", "home", "video_content"},
		{"/contact", "contact", "page_content"},
	}
	for _, tt := range tests {
		if got := SiteSection(tt.path); got != tt.section {
			t.Errorf("SiteSection(%q) = %q, want %q", tt.path, got, tt.section)
		}
		if got := ContentType(tt.path); got != tt.contentType {
			t.Errorf("ContentType(%q) = %q, want %q", tt.path, got, tt.contentType)
		}
	}
}

package services

import "strings"

var themes = []struct {
	keywords []string
	theme    string
}{
	{[]string{"toxic", "culture"}, "toxic_culture_transformation"},
	{[]string{"leadership", "leader"}, "culinary_leadership"},
	{[]string{"mirror", "self"}, "self_awareness"},
	{[]string{"operational", "system"}, "operational_excellence"},
	{[]string{"emotional", "burnout"}, "emotional_wellness"},
}

// ContentTheme maps a title to its editorial theme by keyword. The first
// matching theme wins.
func ContentTheme(title string) string {
	lower := strings.ToLower(title)
	for _, t := range themes {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return t.theme
			}
		}
	}
	return "general_transformation"
}

// SiteSection names the part of the site a path belongs to
func SiteSection(path string) string {
	for _, section := range []string{"podcast", "blog", "events", "about", "contact"} {
		if strings.Contains(path, "/"+section) {
			return section
		}
	}
	return "home"
}

// ContentType names the kind of content a path serves
func ContentType(path string) string {
	switch {
	case strings.Contains(path, "/podcast"):
		return "audio_content"
	case strings.Contains(path, "/blog"):
		return "article_content"
	case strings.Contains(path, "/events"):
		return "event_content"
	case strings.Contains(path, "/videos"):
		return "video_content"
	default:
		return "page_content"
	}
}

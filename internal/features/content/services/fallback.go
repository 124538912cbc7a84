package services

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"clr-site/internal/features/content/models"

	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var fallbackYAML []byte

// FallbackSet is the fixed content substituted for live rows
type FallbackSet struct {
	LatestEpisode models.Episode   `yaml:"latest_episode"`
	Episodes      []models.Episode `yaml:"episodes"`
	Posts         []models.Post    `yaml:"posts"`
	Events        []models.Event   `yaml:"events"`
	Videos        []models.Video   `yaml:"videos"`
}

var (
	fallbackOnce sync.Once
	fallbackSet  *FallbackSet
	fallbackErr  error
)

// LoadFallback parses the embedded fallback content once
func LoadFallback() (*FallbackSet, error) {
	fallbackOnce.Do(func() {
		var set FallbackSet
		if err := yaml.Unmarshal(fallbackYAML, &set); err != nil {
			fallbackErr = fmt.Errorf("failed to parse fallback content: %w", err)
			return
		}
		if len(set.Episodes) == 0 || len(set.Posts) == 0 || len(set.Events) == 0 || len(set.Videos) == 0 {
			fallbackErr = fmt.Errorf("fallback content is missing a content kind")
			return
		}
		fallbackSet = &set
	})
	return fallbackSet, fallbackErr
}

// MustLoadFallback is LoadFallback for callers that cannot run without it
func MustLoadFallback() *FallbackSet {
	set, err := LoadFallback()
	if err != nil {
		panic(err)
	}
	return set
}

// The accessors return deep copies so callers can never mutate the set.

func (s *FallbackSet) Latest() models.Episode {
	e := s.LatestEpisode
	e.Tags = slices.Clone(e.Tags)
	e.Links = slices.Clone(e.Links)
	return e
}

func (s *FallbackSet) EpisodeList() []models.Episode {
	out := make([]models.Episode, len(s.Episodes))
	for i, e := range s.Episodes {
		e.Tags = slices.Clone(e.Tags)
		e.Links = slices.Clone(e.Links)
		out[i] = e
	}
	return out
}

func (s *FallbackSet) PostList() []models.Post {
	out := make([]models.Post, len(s.Posts))
	for i, p := range s.Posts {
		p.Tags = slices.Clone(p.Tags)
		out[i] = p
	}
	return out
}

func (s *FallbackSet) EventList() []models.Event {
	out := make([]models.Event, len(s.Events))
	for i, e := range s.Events {
		e.Includes = slices.Clone(e.Includes)
		e.Requirements = slices.Clone(e.Requirements)
		out[i] = e
	}
	return out
}

func (s *FallbackSet) VideoList() []models.Video {
	out := make([]models.Video, len(s.Videos))
	for i, v := range s.Videos {
		v.Tags = slices.Clone(v.Tags)
		out[i] = v
	}
	return out
}

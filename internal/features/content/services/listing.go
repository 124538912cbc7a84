package services

import (
	"strings"

	"clr-site/internal/features/content/models"
)

// Page sizes of the listing pages
const (
	PostsPageSize    = 6
	VideosPageSize   = 6
	EpisodesPageSize = 4
)

// ListingQuery is the search, category and page state of a listing page.
// Changing the term or category always returns to page 1.
type ListingQuery struct {
	SearchTerm string `json:"q"`
	Category   string `json:"category"`
	Page       int    `json:"page"`
}

// NewListingQuery returns the initial state: no search, all categories, page 1
func NewListingQuery() ListingQuery {
	return ListingQuery{Category: models.CategoryAll, Page: 1}
}

// SetSearchTerm changes the search term and resets to page 1
func (q *ListingQuery) SetSearchTerm(term string) {
	q.SearchTerm = term
	q.Page = 1
}

// SetCategory changes the category and resets to page 1
func (q *ListingQuery) SetCategory(category string) {
	if category == "" {
		category = models.CategoryAll
	}
	q.Category = category
	q.Page = 1
}

// SetPage moves to page, clamped to [1, totalPages]
func (q *ListingQuery) SetPage(page, totalPages int) {
	if totalPages < 1 {
		totalPages = 1
	}
	q.Page = min(max(page, 1), totalPages)
}

// Matches reports whether item passes the search term and category
func (q ListingQuery) Matches(item models.Listable) bool {
	if q.Category != "" && q.Category != models.CategoryAll && item.ListingCategory() != q.Category {
		return false
	}

	term := strings.ToLower(q.SearchTerm)
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(item.ListingTitle()), term) ||
		strings.Contains(strings.ToLower(item.ListingExcerpt()), term) {
		return true
	}
	for _, tag := range item.ListingTags() {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Filter keeps the items matching q, preserving their order
func Filter[T models.Listable](items []T, q ListingQuery) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if q.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}

// Paginate returns the items of the 1-based page. Pages past the end are
// empty. The page has no spare capacity, so appending to it copies.
// pageSize must be positive.
func Paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		panic("services: page size must be positive")
	}
	if page < 1 {
		return []T{}
	}

	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end:end]
}

// TotalPages returns ceil(count / pageSize), at least 1
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		panic("services: page size must be positive")
	}
	if count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// Listing is one rendered page of a listing
type Listing[T any] struct {
	Items      []T          `json:"items"`
	Query      ListingQuery `json:"query"`
	TotalPages int          `json:"total_pages"`
	Total      int          `json:"total"`
	Empty      bool         `json:"empty"`
	Source     Source       `json:"source"`
}

// BuildListing filters items, clamps the requested page and slices it out
func BuildListing[T models.Listable](result Result[T], q ListingQuery, pageSize int) Listing[T] {
	filtered := Filter(result.Items, q)
	totalPages := TotalPages(len(filtered), pageSize)
	q.SetPage(q.Page, totalPages)

	return Listing[T]{
		Items:      Paginate(filtered, q.Page, pageSize),
		Query:      q,
		TotalPages: totalPages,
		Total:      len(filtered),
		Empty:      len(filtered) == 0,
		Source:     result.Source,
	}
}

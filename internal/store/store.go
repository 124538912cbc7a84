// Package store is the client for the relational RemoteStore that holds all
// site content, subscribers, registrations and analytics. Two backends are
// provided: SQLite (modernc) for single-node deployments and tests, and
// PostgreSQL (lib/pq) for the hosted store.
package store

import (
	"context"
	"errors"
)

// Collection names
const (
	TableEpisodes           = "podcast_episodes"
	TablePosts              = "blog_posts"
	TableEvents             = "events"
	TableRegistrations      = "event_registrations"
	TableVideos             = "videos"
	TableSubscribers        = "newsletter_subscribers"
	TableContactMessages    = "contact_messages"
	TableEmailTemplates     = "email_templates"
	TableEmailQueue         = "email_queue"
	TableAnalyticsEvents    = "analytics_events"
	TableContentInteraction = "content_interactions"
	TableConversions        = "conversions"
	TableAdminUsers         = "admin_users"
	TableAdminTokens        = "admin_tokens"
)

var collections = map[string]bool{
	TableEpisodes:           true,
	TablePosts:              true,
	TableEvents:             true,
	TableRegistrations:      true,
	TableVideos:             true,
	TableSubscribers:        true,
	TableContactMessages:    true,
	TableEmailTemplates:     true,
	TableEmailQueue:         true,
	TableAnalyticsEvents:    true,
	TableContentInteraction: true,
	TableConversions:        true,
	TableAdminUsers:         true,
	TableAdminTokens:        true,
}

var (
	// ErrUniqueViolation is returned when an insert or update collides with a
	// uniqueness constraint. It is the only write failure callers may treat
	// as "already done".
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrNotFound is returned by procedures whose target row does not exist
	ErrNotFound = errors.New("record not found")

	// ErrCapacity is returned when a registration would exceed an event's capacity
	ErrCapacity = errors.New("event capacity exceeded")

	// ErrUnknownProcedure is returned by Call for unregistered procedure names
	ErrUnknownProcedure = errors.New("unknown procedure")

	// ErrInvalidQuery is returned for unknown collections or malformed identifiers
	ErrInvalidQuery = errors.New("invalid query")
)

// Row is a single record keyed by column name. Values are plain scalars:
// string, int64, float64, bool, time.Time or nil.
type Row map[string]any

// Args are the named arguments of a remote procedure
type Args map[string]any

// Op is a comparison operator usable in filters
type Op string

const (
	OpEq    Op = "eq"
	OpNeq   Op = "neq"
	OpGt    Op = "gt"
	OpGte   Op = "gte"
	OpLt    Op = "lt"
	OpLte   Op = "lte"
	OpILike Op = "ilike"
	OpIn    Op = "in"
)

// Filter restricts a query to rows where Column Op Value holds
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Eq is shorthand for an equality filter
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// Order sorts a query by Column
type Order struct {
	Column string
	Desc   bool
}

// Query describes a filtered, sorted and limited read of one collection.
// All Filters must hold; when Any is non-empty at least one of its filters
// must hold as well.
type Query struct {
	Table   string
	Columns []string
	Filters []Filter
	Any     []Filter
	Order   []Order
	Limit   int
	Offset  int
}

// Store is the RemoteStore interface used by every feature
type Store interface {
	// Select returns the rows matching q
	Select(ctx context.Context, q Query) ([]Row, error)

	// Count returns the number of rows in table matching all filters
	Count(ctx context.Context, table string, filters ...Filter) (int, error)

	// Insert adds a row and returns it as stored, including generated columns
	Insert(ctx context.Context, table string, values Row) (Row, error)

	// Update sets values on rows matching all filters and returns the number
	// of rows affected
	Update(ctx context.Context, table string, values Row, filters ...Filter) (int64, error)

	// Delete removes rows matching all filters
	Delete(ctx context.Context, table string, filters ...Filter) (int64, error)

	// Call invokes a named procedure
	Call(ctx context.Context, procedure string, args Args) (Row, error)

	// Driver names the backend ("sqlite" or "postgres")
	Driver() string

	Close() error
}

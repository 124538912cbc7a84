package store

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestBuildSelect(t *testing.T) {
	tests := []struct {
		name     string
		dialect  dialect
		query    Query
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "published episodes newest first",
			dialect: sqliteDialect,
			query: Query{
				Table:   TableEpisodes,
				Filters: []Filter{Eq("status", "published")},
				Order:   []Order{{Column: "published_at", Desc: true}},
				Limit:   1,
			},
			wantSQL:  "SELECT * FROM podcast_episodes WHERE status = ? ORDER BY published_at DESC LIMIT 1",
			wantArgs: []any{"published"},
		},
		{
			name:    "postgres search with any-of group",
			dialect: postgresDialect,
			query: Query{
				Table:   TablePosts,
				Filters: []Filter{Eq("status", "published"), Eq("category", "Leadership")},
				Any: []Filter{
					{Column: "title", Op: OpILike, Value: "%mirror%"},
					{Column: "excerpt", Op: OpILike, Value: "%mirror%"},
				},
			},
			wantSQL:  "SELECT * FROM blog_posts WHERE status = $1 AND category = $2 AND (title ILIKE $3 OR excerpt ILIKE $4)",
			wantArgs: []any{"published", "Leadership", "%mirror%", "%mirror%"},
		},
		{
			name:    "upcoming events",
			dialect: sqliteDialect,
			query: Query{
				Table:   TableEvents,
				Columns: []string{"id", "title"},
				Filters: []Filter{
					{Column: "date", Op: OpGte, Value: "2026-10-17"},
					{Column: "status", Op: OpNeq, Value: "completed"},
				},
				Order:  []Order{{Column: "date"}},
				Limit:  3,
				Offset: 3,
			},
			wantSQL:  "SELECT id, title FROM events WHERE date >= ? AND status <> ? ORDER BY date LIMIT 3 OFFSET 3",
			wantArgs: []any{"2026-10-17", "completed"},
		},
		{
			name:    "in list and null check",
			dialect: sqliteDialect,
			query: Query{
				Table: TableEmailQueue,
				Filters: []Filter{
					{Column: "status", Op: OpIn, Value: []string{"pending", "failed"}},
					Eq("sent_at", nil),
				},
			},
			wantSQL:  "SELECT * FROM email_queue WHERE status IN (?, ?) AND sent_at IS NULL",
			wantArgs: []any{"pending", "failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := buildSelect(tt.dialect, tt.query)
			if err != nil {
				t.Fatalf("buildSelect() error = %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("sql = %q\nwant  %q", sql, tt.wantSQL)
			}
			if len(args) != len(tt.wantArgs) || (len(args) > 0 && !reflect.DeepEqual(args, tt.wantArgs)) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestBuildRejectsUnsafeIdentifiers(t *testing.T) {
	cases := []Query{
		{Table: "users; DROP TABLE blog_posts"},
		{Table: TablePosts, Columns: []string{"title, password"}},
		{Table: TablePosts, Filters: []Filter{Eq("1=1 OR status", "x")}},
		{Table: TablePosts, Order: []Order{{Column: "published_at; --"}}},
		{Table: TablePosts, Filters: []Filter{{Column: "status", Op: "regex", Value: "x"}}},
	}

	for _, q := range cases {
		if _, _, err := buildSelect(sqliteDialect, q); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("buildSelect(%+v) error = %v, want ErrInvalidQuery", q, err)
		}
	}
}

func TestBuildInsertAndUpdate(t *testing.T) {
	published := time.Date(2026, 10, 1, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))

	sql, args, err := buildInsert(sqliteDialect, TablePosts, Row{
		"title":        "Toxic vs. Tough",
		"slug":         "toxic-vs-tough",
		"published_at": published,
	})
	if err != nil {
		t.Fatalf("buildInsert() error = %v", err)
	}
	if want := "INSERT INTO blog_posts (published_at, slug, title) VALUES (?, ?, ?) RETURNING *"; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if args[0] != "2026-10-01T14:30:00Z" {
		t.Errorf("Expected sqlite timestamps as UTC RFC 3339, got %v", args[0])
	}

	sql, args, err = buildUpdate(postgresDialect, TableSubscribers, Row{"status": "unsubscribed"}, []Filter{Eq("unsubscribe_token", "tok")})
	if err != nil {
		t.Fatalf("buildUpdate() error = %v", err)
	}
	if want := "UPDATE newsletter_subscribers SET status = $1 WHERE unsubscribe_token = $2"; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"unsubscribed", "tok"}) {
		t.Errorf("args = %v", args)
	}

	if _, _, err := buildUpdate(sqliteDialect, TableSubscribers, Row{"status": "x"}, nil); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("Expected unfiltered update to be rejected, got %v", err)
	}
	if _, _, err := buildDelete(sqliteDialect, TableSubscribers, nil); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("Expected unfiltered delete to be rejected, got %v", err)
	}
}

func TestRebind(t *testing.T) {
	got := postgresDialect.rebind("UPDATE events SET n = n + ? WHERE id = ? AND n + ? <= m")
	want := "UPDATE events SET n = n + $1 WHERE id = $2 AND n + $3 <= m"
	if got != want {
		t.Errorf("rebind() = %q, want %q", got, want)
	}
	if got := sqliteDialect.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
}

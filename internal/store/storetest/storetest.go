// Package storetest opens migrated in-memory stores for tests.
package storetest

import (
	"context"
	"testing"

	"clr-site/internal/core"
	"clr-site/internal/store"
)

// New returns a fully migrated in-memory SQLite store that is closed when
// the test ends.
func New(t testing.TB) store.Store {
	t.Helper()

	s, err := store.Open(context.Background(), core.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, core.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

// Failing is a Store whose every operation returns Err. It stands in for an
// unreachable remote store.
type Failing struct {
	Err error
}

func (f Failing) Select(context.Context, store.Query) ([]store.Row, error) { return nil, f.Err }
func (f Failing) Count(context.Context, string, ...store.Filter) (int, error) {
	return 0, f.Err
}
func (f Failing) Insert(context.Context, string, store.Row) (store.Row, error) { return nil, f.Err }
func (f Failing) Update(context.Context, string, store.Row, ...store.Filter) (int64, error) {
	return 0, f.Err
}
func (f Failing) Delete(context.Context, string, ...store.Filter) (int64, error) { return 0, f.Err }
func (f Failing) Call(context.Context, string, store.Args) (store.Row, error)   { return nil, f.Err }
func (f Failing) Driver() string                                               { return "failing" }
func (f Failing) Close() error                                                 { return nil }

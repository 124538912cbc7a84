package store

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// dialect captures the SQL differences between backends
type dialect struct {
	name        string
	placeholder func(n int) string
	ilike       string
}

var (
	sqliteDialect = dialect{
		name:        "sqlite",
		placeholder: func(int) string { return "?" },
		ilike:       "LIKE",
	}
	postgresDialect = dialect{
		name:        "postgres",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		ilike:       "ILIKE",
	}
)

// rebind rewrites '?' placeholders into the dialect's form
func (d dialect) rebind(query string) string {
	if d.name == sqliteDialect.name {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString(d.placeholder(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

type builder struct {
	d    dialect
	sb   strings.Builder
	args []any
}

func newBuilder(d dialect) *builder {
	return &builder{d: d}
}

// bind appends an argument. SQLite stores timestamps as fixed-width UTC
// RFC 3339 text so that they order correctly as strings.
func (b *builder) bind(v any) string {
	if t, ok := v.(time.Time); ok && b.d.name == sqliteDialect.name {
		v = t.UTC().Format(time.RFC3339)
	}
	b.args = append(b.args, v)
	return b.d.placeholder(len(b.args))
}

func (b *builder) write(parts ...string) {
	for _, p := range parts {
		b.sb.WriteString(p)
	}
}

func (b *builder) build() (string, []any) {
	return b.sb.String(), b.args
}

func checkTable(table string) error {
	if !collections[table] {
		return fmt.Errorf("%w: unknown collection %q", ErrInvalidQuery, table)
	}
	return nil
}

func checkColumn(column string) error {
	if !identifierPattern.MatchString(column) {
		return fmt.Errorf("%w: bad column %q", ErrInvalidQuery, column)
	}
	return nil
}

func (b *builder) filter(f Filter) error {
	if err := checkColumn(f.Column); err != nil {
		return err
	}

	switch f.Op {
	case OpEq, "":
		if f.Value == nil {
			b.write(f.Column, " IS NULL")
			return nil
		}
		b.write(f.Column, " = ", b.bind(f.Value))
	case OpNeq:
		if f.Value == nil {
			b.write(f.Column, " IS NOT NULL")
			return nil
		}
		b.write(f.Column, " <> ", b.bind(f.Value))
	case OpGt:
		b.write(f.Column, " > ", b.bind(f.Value))
	case OpGte:
		b.write(f.Column, " >= ", b.bind(f.Value))
	case OpLt:
		b.write(f.Column, " < ", b.bind(f.Value))
	case OpLte:
		b.write(f.Column, " <= ", b.bind(f.Value))
	case OpILike:
		b.write(f.Column, " ", b.d.ilike, " ", b.bind(f.Value))
	case OpIn:
		values := inValues(f.Value)
		if len(values) == 0 {
			b.write("1 = 0")
			return nil
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = b.bind(v)
		}
		b.write(f.Column, " IN (", strings.Join(placeholders, ", "), ")")
	default:
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidQuery, f.Op)
	}
	return nil
}

func inValues(v any) []any {
	switch vs := v.(type) {
	case []any:
		return vs
	case []string:
		out := make([]any, len(vs))
		for i, s := range vs {
			out[i] = s
		}
		return out
	case []int64:
		out := make([]any, len(vs))
		for i, n := range vs {
			out[i] = n
		}
		return out
	default:
		return []any{v}
	}
}

func (b *builder) where(all []Filter, anyOf []Filter) error {
	if len(all) == 0 && len(anyOf) == 0 {
		return nil
	}

	b.write(" WHERE ")
	for i, f := range all {
		if i > 0 {
			b.write(" AND ")
		}
		if err := b.filter(f); err != nil {
			return err
		}
	}

	if len(anyOf) > 0 {
		if len(all) > 0 {
			b.write(" AND ")
		}
		b.write("(")
		for i, f := range anyOf {
			if i > 0 {
				b.write(" OR ")
			}
			if err := b.filter(f); err != nil {
				return err
			}
		}
		b.write(")")
	}
	return nil
}

func buildSelect(d dialect, q Query) (string, []any, error) {
	if err := checkTable(q.Table); err != nil {
		return "", nil, err
	}

	b := newBuilder(d)
	columns := "*"
	if len(q.Columns) > 0 {
		for _, c := range q.Columns {
			if err := checkColumn(c); err != nil {
				return "", nil, err
			}
		}
		columns = strings.Join(q.Columns, ", ")
	}
	b.write("SELECT ", columns, " FROM ", q.Table)

	if err := b.where(q.Filters, q.Any); err != nil {
		return "", nil, err
	}

	if len(q.Order) > 0 {
		b.write(" ORDER BY ")
		for i, o := range q.Order {
			if err := checkColumn(o.Column); err != nil {
				return "", nil, err
			}
			if i > 0 {
				b.write(", ")
			}
			b.write(o.Column)
			if o.Desc {
				b.write(" DESC")
			}
		}
	}

	if q.Limit > 0 {
		b.write(" LIMIT ", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		if q.Limit <= 0 && d.name == sqliteDialect.name {
			b.write(" LIMIT -1")
		}
		b.write(" OFFSET ", strconv.Itoa(q.Offset))
	}

	query, args := b.build()
	return query, args, nil
}

func buildCount(d dialect, table string, filters []Filter) (string, []any, error) {
	if err := checkTable(table); err != nil {
		return "", nil, err
	}

	b := newBuilder(d)
	b.write("SELECT COUNT(*) FROM ", table)
	if err := b.where(filters, nil); err != nil {
		return "", nil, err
	}

	query, args := b.build()
	return query, args, nil
}

func sortedColumns(values Row) ([]string, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no values", ErrInvalidQuery)
	}

	columns := make([]string, 0, len(values))
	for c := range values {
		if err := checkColumn(c); err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns, nil
}

func buildInsert(d dialect, table string, values Row) (string, []any, error) {
	if err := checkTable(table); err != nil {
		return "", nil, err
	}
	columns, err := sortedColumns(values)
	if err != nil {
		return "", nil, err
	}

	b := newBuilder(d)
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		placeholders[i] = b.bind(values[c])
	}
	b.write("INSERT INTO ", table, " (", strings.Join(columns, ", "), ") VALUES (",
		strings.Join(placeholders, ", "), ") RETURNING *")

	query, args := b.build()
	return query, args, nil
}

func buildUpdate(d dialect, table string, values Row, filters []Filter) (string, []any, error) {
	if err := checkTable(table); err != nil {
		return "", nil, err
	}
	if len(filters) == 0 {
		return "", nil, fmt.Errorf("%w: update without filters", ErrInvalidQuery)
	}
	columns, err := sortedColumns(values)
	if err != nil {
		return "", nil, err
	}

	b := newBuilder(d)
	b.write("UPDATE ", table, " SET ")
	for i, c := range columns {
		if i > 0 {
			b.write(", ")
		}
		b.write(c, " = ", b.bind(values[c]))
	}
	if err := b.where(filters, nil); err != nil {
		return "", nil, err
	}

	query, args := b.build()
	return query, args, nil
}

func buildDelete(d dialect, table string, filters []Filter) (string, []any, error) {
	if err := checkTable(table); err != nil {
		return "", nil, err
	}
	if len(filters) == 0 {
		return "", nil, fmt.Errorf("%w: delete without filters", ErrInvalidQuery)
	}

	b := newBuilder(d)
	b.write("DELETE FROM ", table)
	if err := b.where(filters, nil); err != nil {
		return "", nil, err
	}

	query, args := b.build()
	return query, args, nil
}

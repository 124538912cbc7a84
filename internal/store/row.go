package store

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// String returns a text column, or "" when the column is null or not text
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// NullString returns a text column or nil when it is null
func (r Row) NullString(column string) *string {
	if r[column] == nil {
		return nil
	}
	s := r.String(column)
	return &s
}

// Int64 returns an integer column, accepting numeric text
func (r Row) Int64(column string) (int64, bool) {
	switch v := r[column].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Float returns a numeric column
func (r Row) Float(column string) float64 {
	switch v := r[column].(type) {
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	default:
		return toFloat(v)
	}
}

// Bool returns a boolean column. SQLite stores booleans as 0/1.
func (r Row) Bool(column string) bool {
	switch v := r[column].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// Time returns a timestamp or date column
func (r Row) Time(column string) (time.Time, bool) {
	switch v := r[column].(type) {
	case time.Time:
		return v, true
	case string:
		return ParseTime(v)
	default:
		return time.Time{}, false
	}
}

// Strings decodes a JSON array column; malformed values yield nil
func (r Row) Strings(column string) []string {
	var out []string
	switch v := r[column].(type) {
	case []string:
		return v
	case string:
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil
		}
	}
	return out
}

// JSON decodes a JSON document column into dst
func (r Row) JSON(column string, dst any) error {
	raw := r.String(column)
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

// ParseTime accepts the timestamp layouts written by either backend
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

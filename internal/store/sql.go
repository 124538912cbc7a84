package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clr-site/internal/core"
)

const operationTimeout = 10 * time.Second

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// sqlStore implements Store over database/sql; backends supply the dialect
// and the driver-specific error classification.
type sqlStore struct {
	db       *core.Database
	dialect  dialect
	classify func(error) error
	logger   *core.Logger
}

func (s *sqlStore) Driver() string {
	return s.dialect.name
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) Select(ctx context.Context, q Query) ([]Row, error) {
	query, args, err := buildSelect(s.dialect, q)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	rows, err := queryRows(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", q.Table, s.classify(err))
	}
	return rows, nil
}

func (s *sqlStore) Count(ctx context.Context, table string, filters ...Filter) (int, error) {
	query, args, err := buildCount(s.dialect, table, filters)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, s.classify(err))
	}
	return count, nil
}

func (s *sqlStore) Insert(ctx context.Context, table string, values Row) (Row, error) {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	return s.insert(ctx, s.db, table, values)
}

func (s *sqlStore) insert(ctx context.Context, q querier, table string, values Row) (Row, error) {
	query, args, err := buildInsert(s.dialect, table, values)
	if err != nil {
		return nil, err
	}

	rows, err := queryRows(ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, s.classify(err))
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert %s: no row returned", table)
	}
	return rows[0], nil
}

func (s *sqlStore) Update(ctx context.Context, table string, values Row, filters ...Filter) (int64, error) {
	query, args, err := buildUpdate(s.dialect, table, values, filters)
	if err != nil {
		return 0, err
	}

	return s.exec(ctx, s.db, "update "+table, query, args...)
}

func (s *sqlStore) Delete(ctx context.Context, table string, filters ...Filter) (int64, error) {
	query, args, err := buildDelete(s.dialect, table, filters)
	if err != nil {
		return 0, err
	}

	return s.exec(ctx, s.db, "delete "+table, query, args...)
}

func (s *sqlStore) exec(ctx context.Context, q querier, op, query string, args ...any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, s.classify(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return affected, nil
}

func queryRows(ctx context.Context, q querier, query string, args ...any) ([]Row, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = normalizeValue(values[i])
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}

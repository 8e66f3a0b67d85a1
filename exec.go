package chainq

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotBound is returned when an execution method is called on a
// Query that has no database handle attached.
var ErrNotBound = errors.New("query not bound to a database")

// Count returns the number of rows matching the query's filters, 0 for
// an empty match.
func (q Query) Count(ctx context.Context) (int64, error) {
	if q.exec == nil {
		return 0, ErrNotBound
	}
	sqlStr, args := q.Select("count(*)").Build()
	var count int64
	if err := q.exec.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

// Max returns the largest value of the column among matching rows, or
// nil when no non-NULL values match.
func (q Query) Max(ctx context.Context, column string) (any, error) {
	return q.aggregate(ctx, "max("+quoteIdent(column)+")")
}

// Min returns the smallest value of the column among matching rows, or
// nil when no non-NULL values match.
func (q Query) Min(ctx context.Context, column string) (any, error) {
	return q.aggregate(ctx, "min("+quoteIdent(column)+")")
}

// Sum returns the sum of the column over matching rows, or nil when no
// non-NULL values match. See Total for the variant that returns 0.0
// instead.
func (q Query) Sum(ctx context.Context, column string) (any, error) {
	return q.aggregate(ctx, "sum("+quoteIdent(column)+")")
}

// Avg returns the mean of the column over matching rows as a float64,
// or nil when no non-NULL values match.
func (q Query) Avg(ctx context.Context, column string) (any, error) {
	return q.aggregate(ctx, "avg("+quoteIdent(column)+")")
}

// Total returns the sum of the column over matching rows as a float64.
// Unlike Sum it returns 0.0 rather than nil on an empty match, per
// sqlite's total() semantics.
func (q Query) Total(ctx context.Context, column string) (float64, error) {
	if q.exec == nil {
		return 0, ErrNotBound
	}
	sqlStr, args := q.Select("total(" + quoteIdent(column) + ")").Build()
	var total float64
	if err := q.exec.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to run aggregate query: %w", err)
	}
	return total, nil
}

func (q Query) aggregate(ctx context.Context, expr string) (any, error) {
	if q.exec == nil {
		return nil, ErrNotBound
	}
	sqlStr, args := q.Select(expr).Build()
	var value any
	if err := q.exec.QueryRowContext(ctx, sqlStr, args...).Scan(&value); err != nil {
		return nil, fmt.Errorf("failed to run aggregate query: %w", err)
	}
	return value, nil
}

// Insert writes one row from the given column/value map and returns
// the last inserted row id, or (0, err) when the statement fails.
func (q Query) Insert(ctx context.Context, values map[string]any) (int64, error) {
	if q.exec == nil {
		return 0, ErrNotBound
	}
	sqlStr, args := q.BuildInsert(values)
	res, err := q.exec.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert row: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read last insert id: %w", err)
	}
	return id, nil
}

// Update sets the given column/value map on every row matching the
// query's filters and returns the number of rows changed. Matching
// nothing is not an error; the count is simply 0.
func (q Query) Update(ctx context.Context, values map[string]any) (int64, error) {
	if q.exec == nil {
		return 0, ErrNotBound
	}
	sqlStr, args := q.BuildUpdate(values)
	res, err := q.exec.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update rows: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected row count: %w", err)
	}
	return affected, nil
}

// Delete removes every row matching the query's filters and returns
// the number of rows removed. Matching nothing is not an error; the
// count is simply 0.
func (q Query) Delete(ctx context.Context) (int64, error) {
	if q.exec == nil {
		return 0, ErrNotBound
	}
	sqlStr, args := q.BuildDelete()
	res, err := q.exec.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete rows: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected row count: %w", err)
	}
	return affected, nil
}

// Rows compiles and executes the SELECT and returns a lazy cursor over
// the result. Each call recompiles and re-executes; no statement is
// cached on the Query.
func (q Query) Rows(ctx context.Context) (*Rows, error) {
	if q.exec == nil {
		return nil, ErrNotBound
	}
	sqlStr, args := q.Build()
	rows, err := q.exec.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	return newRows(rows)
}

// All drains the cursor into a slice. Convenient for small results;
// prefer Rows for anything large.
func (q Query) All(ctx context.Context) ([]Row, error) {
	rows, err := q.Rows(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Row
	for rows.Next() {
		row, err := rows.Row()
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

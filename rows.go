package chainq

import (
	"database/sql"
	"fmt"
)

// Row is a single result row keyed by column name. A NULL column is
// present with a nil value.
type Row map[string]any

// Rows is a lazy, forward-only cursor over a SELECT result. It is not
// restartable; executing the query again produces a fresh cursor.
type Rows struct {
	rows    *sql.Rows
	columns []string
}

func newRows(rows *sql.Rows) (*Rows, error) {
	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	return &Rows{rows: rows, columns: columns}, nil
}

// Next advances the cursor to the next row. It returns false when no
// rows remain or iteration failed; Err distinguishes the two.
func (r *Rows) Next() bool {
	return r.rows.Next()
}

// Row reads the current row. Valid only after a Next call that
// returned true.
func (r *Rows) Row() (Row, error) {
	values := make([]any, len(r.columns))
	ptrs := make([]any, len(r.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	row := make(Row, len(r.columns))
	for i, col := range r.columns {
		row[col] = values[i]
	}
	return row, nil
}

// Err returns the error, if any, encountered during iteration.
func (r *Rows) Err() error {
	return r.rows.Err()
}

// Close releases the underlying cursor. Safe to call more than once.
func (r *Rows) Close() error {
	return r.rows.Close()
}

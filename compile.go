package chainq

import (
	"strconv"
	"strings"
)

// Build compiles the query to a parameterized SELECT statement. The
// returned bindings are the WHERE bindings followed by the HAVING
// bindings, matching placeholder order in the SQL text. Compilation is
// total; malformed fragments surface only when the engine runs them.
func (q Query) Build() (string, []any) {
	var sb strings.Builder

	sb.WriteString("SELECT ")
	if len(q.columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(q.columns, ", "))
	}

	sb.WriteString(" FROM ")
	sb.WriteString(quoteIdent(q.table))

	args := cloneAppend([]any(nil), q.args...)

	if q.where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(q.where)
	}

	if q.group != nil && len(q.group.columns) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(q.group.columns, ", "))
		if q.group.having != "" {
			sb.WriteString(" HAVING ")
			sb.WriteString(q.group.having)
			args = append(args, q.group.havingArgs...)
		}
	}

	if len(q.order) > 0 {
		sb.WriteString(" ORDER BY ")
		parts := make([]string, len(q.order))
		for i, term := range q.order {
			dir := " ASC"
			if term.desc {
				dir = " DESC"
			}
			parts[i] = quoteIdent(term.column) + dir
		}
		sb.WriteString(strings.Join(parts, ", "))
	}

	if q.limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(*q.limit))
		if q.offset != nil {
			sb.WriteString(" OFFSET ")
			sb.WriteString(strconv.Itoa(*q.offset))
		}
	}

	return sb.String(), args
}

// BuildInsert compiles an INSERT of the given column/value map. Column
// names are iterated in sorted order, and the value bindings are
// produced in the same pass so they stay aligned with the column list.
func (q Query) BuildInsert(values map[string]any) (string, []any) {
	cols := sortedKeys(values)
	placeholders := make([]string, len(cols))
	args := make([]any, 0, len(q.args)+len(cols))
	args = append(args, q.args...)
	for i, col := range cols {
		placeholders[i] = "?"
		args = append(args, values[col])
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(quoteIdent(q.table))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES (")
	sb.WriteString(strings.Join(placeholders, ", "))
	sb.WriteString(")")

	return sb.String(), args
}

// BuildUpdate compiles an UPDATE of the given column/value map,
// constrained by the query's filters. SET bindings come first, then the
// WHERE bindings, matching placeholder order in the SQL text.
func (q Query) BuildUpdate(values map[string]any) (string, []any) {
	cols := sortedKeys(values)
	assignments := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(q.args))
	for i, col := range cols {
		assignments[i] = col + " = ?"
		args = append(args, values[col])
	}
	args = append(args, q.args...)

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(quoteIdent(q.table))
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(assignments, ", "))
	if q.where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(q.where)
	}

	return sb.String(), args
}

// BuildDelete compiles a DELETE constrained by the query's filters.
func (q Query) BuildDelete() (string, []any) {
	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(quoteIdent(q.table))
	if q.where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(q.where)
	}
	return sb.String(), cloneAppend([]any(nil), q.args...)
}

// quoteIdent wraps an identifier in double quotes. Embedded quote
// characters are not escaped; identifiers are trusted input.
func quoteIdent(name string) string {
	return `"` + name + `"`
}

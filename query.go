package chainq

import (
	"fmt"
	"sort"
	"strings"
)

// Query is an immutable description of one statement against a named
// table. Builder methods never mutate the receiver; each returns a new
// Query, so intermediate values can be shared and extended freely.
type Query struct {
	exec    Execer
	table   string
	columns []string
	where   string
	args    []any
	group   *groupClause
	order   []orderTerm
	limit   *int
	offset  *int
}

// groupClause holds the GROUP BY columns together with an optional
// HAVING fragment. Group replaces the whole clause, so a stale HAVING
// never outlives its grouping.
type groupClause struct {
	columns    []string
	having     string
	havingArgs []any
}

// orderTerm is one ORDER BY entry.
type orderTerm struct {
	column string
	desc   bool
}

// Range is an inclusive pair of BETWEEN bounds. SQL BETWEEN includes
// both endpoints.
type Range struct {
	From any
	To   any
}

// Table returns an unbound Query for the named table. Unbound queries
// compile with Build and friends but cannot execute; use (*DB).Table or
// Bind to attach an execution target.
func Table(name string) Query {
	return Query{table: name}
}

// Bind attaches an execution target to the query. Any Execer works,
// including *sql.Tx, so a built query can run inside a transaction.
func (q Query) Bind(exec Execer) Query {
	q.exec = exec
	return q
}

// Select replaces the column list wholesale; the last call wins.
// Column expressions are emitted as given, so aggregates and aliases
// pass through:
//
//	Select("name", "age")
//	Select("count(*) AS total")
//
// Calling Select with no arguments resets the list to the default "*".
func (q Query) Select(columns ...string) Query {
	if len(columns) == 0 {
		q.columns = nil
		return q
	}
	q.columns = cloneAppend([]string(nil), columns...)
	return q
}

// Distinct selects a single column with duplicate elimination.
// Generates: SELECT DISTINCT column FROM ...
func (q Query) Distinct(column string) Query {
	q.columns = []string{"DISTINCT " + column}
	return q
}

// Filter adds a raw condition with optional bindings. Multiple Filter
// calls are combined with AND in call order, and their bindings are
// concatenated in the same order. The fragment is not parsed or
// validated:
//
//	Filter("age >= ?", 21)
//	Filter("email IS NOT NULL")
func (q Query) Filter(cond string, args ...any) Query {
	if q.where == "" {
		q.where = cond
	} else {
		q.where += " AND " + cond
	}
	q.args = cloneAppend(q.args, args...)
	return q
}

// FilterEq adds an equality condition per map entry. Keys are iterated
// in sorted order so the compiled SQL is deterministic. A nil value
// becomes an IS NULL test with no binding:
//
//	FilterEq(map[string]any{"status": "active", "deleted_at": nil})
func (q Query) FilterEq(conds map[string]any) Query {
	for _, col := range sortedKeys(conds) {
		if conds[col] == nil {
			q = q.Filter(quoteIdent(col) + " IS NULL")
		} else {
			q = q.Filter(quoteIdent(col)+" = ?", conds[col])
		}
	}
	return q
}

// FilterIn adds an IN condition per map entry, one binding per list
// element in list order. Keys are iterated in sorted order. Entries
// with an empty list are skipped.
func (q Query) FilterIn(conds map[string][]any) Query {
	for _, col := range sortedKeys(conds) {
		values := conds[col]
		if len(values) == 0 {
			continue
		}
		placeholders := make([]string, len(values))
		for i := range placeholders {
			placeholders[i] = "?"
		}
		expr := fmt.Sprintf("%s IN (%s)", quoteIdent(col), strings.Join(placeholders, ", "))
		q = q.Filter(expr, values...)
	}
	return q
}

// FilterBetween adds a BETWEEN condition per map entry with the two
// range bounds as bindings. Keys are iterated in sorted order.
func (q Query) FilterBetween(conds map[string]Range) Query {
	for _, col := range sortedKeys(conds) {
		r := conds[col]
		q = q.Filter(quoteIdent(col)+" BETWEEN ? AND ?", r.From, r.To)
	}
	return q
}

// Group replaces the GROUP BY columns wholesale; the last call wins and
// any HAVING attached to the previous grouping is discarded. Column
// expressions are emitted as given. Calling Group with no arguments
// clears the grouping.
func (q Query) Group(columns ...string) Query {
	if len(columns) == 0 {
		q.group = nil
		return q
	}
	q.group = &groupClause{columns: cloneAppend([]string(nil), columns...)}
	return q
}

// Having sets the HAVING fragment and bindings for the current
// grouping, replacing any previous one. A HAVING without GROUP BY
// columns is never emitted.
func (q Query) Having(cond string, args ...any) Query {
	g := groupClause{having: cond, havingArgs: cloneAppend([]any(nil), args...)}
	if q.group != nil {
		g.columns = q.group.columns
	}
	q.group = &g
	return q
}

// Order appends ORDER BY columns; chained calls accumulate. The default
// direction is ascending; a "-" prefix selects descending:
//
//	Order("name")                // name ASC
//	Order("name", "-created_at") // name ASC, created_at DESC
func (q Query) Order(columns ...string) Query {
	order := make([]orderTerm, 0, len(q.order)+len(columns))
	order = append(order, q.order...)
	q.order = appendOrderTerms(order, columns)
	return q
}

// Reorder discards the accumulated ORDER BY columns and starts over
// with the given ones, parsed as in Order.
func (q Query) Reorder(columns ...string) Query {
	q.order = appendOrderTerms(make([]orderTerm, 0, len(columns)), columns)
	return q
}

// ReverseOrder flips the direction of every ORDER BY column, keeping
// their positions.
func (q Query) ReverseOrder() Query {
	order := make([]orderTerm, len(q.order))
	for i, term := range q.order {
		term.desc = !term.desc
		order[i] = term
	}
	q.order = order
	return q
}

// Limit caps the number of returned rows. A negative n means "no
// limit" and clears both the limit and any offset, since OFFSET is only
// emitted alongside LIMIT.
func (q Query) Limit(n int) Query {
	if n < 0 {
		q.limit = nil
		q.offset = nil
		return q
	}
	q.limit = &n
	return q
}

// LimitOffset sets the row cap and the number of rows to skip,
// replacing any previous values. A negative n clears both; a negative
// offset sets the limit only.
func (q Query) LimitOffset(n, offset int) Query {
	if n < 0 {
		q.limit = nil
		q.offset = nil
		return q
	}
	q.limit = &n
	if offset < 0 {
		q.offset = nil
		return q
	}
	q.offset = &offset
	return q
}

func appendOrderTerms(order []orderTerm, columns []string) []orderTerm {
	for _, col := range columns {
		desc := false
		if strings.HasPrefix(col, "-") {
			desc = true
			col = col[1:]
		}
		order = append(order, orderTerm{column: col, desc: desc})
	}
	return order
}

// cloneAppend concatenates into a fresh slice so no Query aliases
// another Query's backing array, or a caller's variadic slice.
func cloneAppend[T any](dst []T, src ...T) []T {
	out := make([]T, 0, len(dst)+len(src))
	out = append(out, dst...)
	return append(out, src...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

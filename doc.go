// Package chainq provides a fluent, immutable query builder for embedded
// SQLite databases.
//
// # Query Builder
//
// Every builder operation returns a new Query value, so a partially built
// query can be shared and extended in several directions without the
// branches interfering:
//
//	base := db.Table("users").Filter("active = ?", 1)
//	adults := base.Filter("age >= ?", 18).Order("-age")
//	recent := base.Order("-created_at").Limit(10)
//
// Queries compile to parameterized SQL with positional placeholders:
//
//	sql, args := db.Table("users").
//	    Select("department", "count(*) AS headcount").
//	    Filter("age >= ?", 21).
//	    Group("department").
//	    Having("count(*) > ?", 3).
//	    Order("-headcount").
//	    Limit(10).
//	    Build()
//
// # Execution
//
// A Query obtained from (*DB).Table executes against that handle. Scalar
// aggregates (Count, Max, Min, Sum, Avg, Total), row mutations (Insert,
// Update, Delete), and lazy iteration (Rows) all compile fresh on each
// call:
//
//	rows, err := db.Table("users").Filter("age >= ?", 18).Rows(ctx)
//	defer rows.Close()
//	for rows.Next() {
//	    row, err := rows.Row()
//	    ...
//	}
//
// Identifier quoting wraps names in double quotes without escaping
// embedded quote characters, and raw condition fragments pass through to
// the engine verbatim; the builder never validates SQL.
package chainq

package chainq

import (
	"fmt"
	"strings"
	"time"
)

// interpolateQuery substitutes bindings into placeholders for log
// output. The result is valid SQL that can be copy-pasted into a
// sqlite shell; it is never sent to the engine.
func interpolateQuery(query string, args []any) string {
	for _, arg := range args {
		var replacement string
		switch v := arg.(type) {
		case string:
			// Single-quote strings, doubling internal quotes.
			replacement = "'" + strings.ReplaceAll(v, "'", "''") + "'"
		case int, int8, int16, int32, int64:
			replacement = fmt.Sprintf("%d", v)
		case uint, uint8, uint16, uint32, uint64:
			replacement = fmt.Sprintf("%d", v)
		case float32, float64:
			replacement = fmt.Sprintf("%v", v)
		case bool:
			if v {
				replacement = "true"
			} else {
				replacement = "false"
			}
		case time.Time:
			// RFC3339Nano drops the monotonic clock reading, which is
			// not valid SQL.
			replacement = "'" + v.Format(time.RFC3339Nano) + "'"
		case nil:
			replacement = "NULL"
		default:
			replacement = fmt.Sprintf("'%v'", v)
		}

		// Replace the first remaining '?'.
		query = strings.Replace(query, "?", replacement, 1)
	}

	return query
}

// cleanQueryWhitespace collapses whitespace runs to single spaces and
// trims the ends, so multi-line statements log as one line.
func cleanQueryWhitespace(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

package sqldrv

import (
	"strings"

	"github.com/blastrain/vitess-sqlparser/sqlparser"
)

// Classifier decides which call path of an underlying driver API a statement
// belongs on. database/sql and pgx split execution into query and exec
// surfaces, so adapters need to know up front whether SQL yields rows.
type Classifier struct{}

// NewClassifier creates a statement classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// YieldsRows reports whether the first statement of sql produces a result
// set. Parsing is attempted first; SQL the parser cannot handle (vendor
// extensions, multi-statement batches) falls back to keyword inspection.
func (c *Classifier) YieldsRows(sql string) bool {
	stmt, err := sqlparser.Parse(firstStatement(sql))
	if err != nil {
		return hasRowKeyword(sql)
	}

	switch stmt.(type) {
	case *sqlparser.Select, *sqlparser.Union, *sqlparser.Show, *sqlparser.OtherRead:
		return true
	default:
		return false
	}
}

// firstStatement cuts a multi-statement batch down to its leading statement
// for parsing. Semicolons inside quoted literals are respected.
func firstStatement(sql string) string {
	var quote byte
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			} else if ch == '\\' {
				i++
			}
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
		case ch == ';':
			return sql[:i]
		}
	}
	return sql
}

func hasRowKeyword(sql string) bool {
	upper := strings.ToUpper(strings.TrimSpace(firstStatement(sql)))
	return strings.HasPrefix(upper, "SELECT") ||
		strings.HasPrefix(upper, "SHOW") ||
		strings.HasPrefix(upper, "DESCRIBE") ||
		strings.HasPrefix(upper, "DESC") ||
		strings.HasPrefix(upper, "EXPLAIN") ||
		strings.HasPrefix(upper, "WITH")
}

// DefaultClassifier is the shared classifier instance.
var DefaultClassifier = NewClassifier()

// YieldsRows is a convenience function using the default classifier.
func YieldsRows(sql string) bool {
	return DefaultClassifier.YieldsRows(sql)
}

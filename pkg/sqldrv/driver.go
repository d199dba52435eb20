// Package sqldrv defines the driver call sequence the execution engine rides
// on: prepare or create a statement, bind typed parameters, execute, walk the
// outcomes (result sets and update counts), read generated keys, close.
// Adapters for concrete drivers live in the subpackages.
package sqldrv

import "context"

// NoMoreOutcomes is the update-count sentinel meaning the statement has no
// further outcomes to report.
const NoMoreOutcomes int64 = -1

// Conn is one live database connection, owned exclusively by a single
// execution for its whole duration.
type Conn interface {
	// Prepare compiles sql into a prepared statement. Adapters request
	// generated-key retrieval where the underlying driver supports it.
	Prepare(ctx context.Context, sql string) (PreparedStatement, error)

	// Statement creates a plain handle for literal SQL execution.
	Statement() Statement

	// Placeholder renders the driver-native positional placeholder for the
	// given 1-based bind index.
	Placeholder(index int) string

	Close() error
}

// Statement executes literal SQL text.
type Statement interface {
	OutcomeSource

	// Execute runs sql and reports whether the first outcome is a result set.
	Execute(ctx context.Context, sql string) (bool, error)

	Close() error
}

// PreparedStatement executes SQL with separately bound parameter values.
type PreparedStatement interface {
	ParamBinder
	OutcomeSource

	// Execute runs the statement with the bound parameters and reports
	// whether the first outcome is a result set.
	Execute(ctx context.Context) (bool, error)

	Close() error
}

// ParamBinder is the typed parameter-setting protocol. Indexes are 1-based.
type ParamBinder interface {
	BindNull(index int) error
	BindInt(index int, v int32) error
	BindLong(index int, v int64) error
	// BindDecimal binds an exact decimal literal, keeping fractional values
	// out of binary-float representation on the wire.
	BindDecimal(index int, literal string) error
	BindBool(index int, v bool) error
	BindString(index int, v string) error
}

// OutcomeSource is the cursor over one execution's outcomes. An executed
// statement is positioned on its first outcome; NextOutcome advances.
type OutcomeSource interface {
	// ResultSet returns the current outcome's rows, or nil when the current
	// outcome is an update count.
	ResultSet() (RowSet, error)

	// UpdateCount returns the current outcome's affected-row count, or
	// NoMoreOutcomes when the current outcome is a result set or the
	// statement is drained.
	UpdateCount() int64

	// NextOutcome advances to the next outcome and reports whether it is a
	// result set. The statement is drained when it reports false and
	// UpdateCount returns NoMoreOutcomes.
	NextOutcome() (bool, error)

	// GeneratedKeys returns the ordered auto-generated keys the driver
	// reported for the current outcome. An empty sequence is not an error.
	GeneratedKeys() ([]int64, error)
}

// RowSet is a forward-only cursor over one result set.
type RowSet interface {
	Columns() ([]string, error)
	Next() bool
	// Values returns the current row's values, normalized by the adapter.
	Values() ([]any, error)
	Err() error
	Close() error
}

package engine

// WriteSummary is the normalized outcome of a write statement.
type WriteSummary struct {
	AffectedRows int64 `json:"affectedRows"`
	// GeneratedKeys holds the auto-assigned ids of inserted rows, omitted
	// when the driver reported none.
	GeneratedKeys []int64 `json:"generatedKeys,omitempty"`
}

// Hint is an advisory message about a result, never part of the data itself.
type Hint struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// Result is the normalized outcome of one execution.
//
// Data is a []map[string]any for a single result set, a WriteSummary for a
// single write, or an ordered []any mixing both when the execution produced
// multiple outcomes. A single outcome is returned bare so single-statement
// callers stay ergonomic.
type Result struct {
	Data  any    `json:"data"`
	Hints []Hint `json:"hints,omitempty"`
}

// generatedKeysLabel is the column label some drivers use when a write-only
// statement surfaces its generated keys as a result set instead of update
// metadata. A single-row result set carrying only this column is a synthetic
// marker, not user data.
const generatedKeysLabel = "GENERATED_KEYS"

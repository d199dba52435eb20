package engine

import (
	"github.com/lowkit/sqlrunner/pkg/sqldrv"
)

// harvest drains every outcome one execution produced and normalizes them.
//
// The cursor walk mirrors the driver protocol: process the current outcome,
// advance, stop once no result set remains and the update count reports the
// end sentinel. The body runs at least once, so even a bare write with no
// reported count yields a summary.
func harvest(stmt statement, isResultSet bool) (*Result, error) {
	var outcomes []any
	var hints []Hint

	for {
		if isResultSet {
			rows, labels, err := parseCurrentResultSet(stmt)
			if err != nil {
				return nil, asExecutionError(err)
			}
			if !isGeneratedKeysSentinel(rows) {
				outcomes = append(outcomes, rows)
				hints = append(hints, columnHints(labels)...)
			}
		} else {
			summary := WriteSummary{AffectedRows: stmt.UpdateCount()}
			keys, err := stmt.GeneratedKeys()
			if err != nil {
				return nil, asExecutionError(err)
			}
			if len(keys) > 0 {
				summary.GeneratedKeys = keys
			}
			outcomes = append(outcomes, summary)
		}

		var err error
		isResultSet, err = stmt.NextOutcome()
		if err != nil {
			return nil, asExecutionError(err)
		}
		if !isResultSet && stmt.UpdateCount() == sqldrv.NoMoreOutcomes {
			break
		}
	}

	res := &Result{Hints: hints}
	if len(outcomes) == 1 {
		// A single outcome is returned bare, not wrapped in a one-element
		// sequence.
		res.Data = outcomes[0]
	} else {
		res.Data = outcomes
	}
	return res, nil
}

func parseCurrentResultSet(stmt statement) ([]map[string]any, []string, error) {
	rs, err := stmt.ResultSet()
	if err != nil {
		return nil, nil, err
	}
	if rs == nil {
		return []map[string]any{}, nil, nil
	}
	return sqldrv.ParseRows(rs)
}

// isGeneratedKeysSentinel detects the single-row result set some drivers
// emit to wrap a write's generated keys instead of reporting an update
// count. It is a compatibility shim for that driver quirk and must never be
// surfaced as user data.
func isGeneratedKeysSentinel(rows []map[string]any) bool {
	if len(rows) != 1 {
		return false
	}
	row := rows[0]
	if len(row) != 1 {
		return false
	}
	_, ok := row[generatedKeysLabel]
	return ok
}

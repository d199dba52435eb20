package engine

import "strings"

// HintDuplicateColumn flags column labels that still collide after the
// driver's own disambiguation, typically the same column name surfacing from
// both sides of a join.
const HintDuplicateColumn = "DUPLICATE_COLUMN"

// columnHints inspects the ordered column labels of a result set and emits
// advisory messages. Data is never altered.
func columnHints(labels []string) []Hint {
	dups := identicalColumns(labels)
	if len(dups) == 0 {
		return nil
	}
	return []Hint{{Kind: HintDuplicateColumn, Detail: strings.Join(dups, "/")}}
}

// identicalColumns returns every occurrence of a label that appears more
// than once, preserving order and multiplicity.
func identicalColumns(labels []string) []string {
	counts := make(map[string]int, len(labels))
	for _, l := range labels {
		counts[l]++
	}
	var dups []string
	for _, l := range labels {
		if counts[l] > 1 {
			dups = append(dups, l)
		}
	}
	return dups
}

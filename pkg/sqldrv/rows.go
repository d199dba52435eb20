package sqldrv

import "time"

// ParseRows drains a result set into column-label → value mappings, also
// returning the ordered column labels. The row set is closed before return.
func ParseRows(rs RowSet) ([]map[string]any, []string, error) {
	defer func() { _ = rs.Close() }()

	labels, err := rs.Columns()
	if err != nil {
		return nil, nil, err
	}

	rows := []map[string]any{}
	for rs.Next() {
		values, err := rs.Values()
		if err != nil {
			return nil, nil, err
		}
		row := make(map[string]any, len(labels))
		for i, label := range labels {
			var v any
			if i < len(values) {
				v = NormalizeValue(values[i])
			}
			row[label] = v
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, nil, err
	}
	return rows, labels, nil
}

// NormalizeValue converts driver-native values into the JSON-shaped forms
// results are built from.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return v
	}
}

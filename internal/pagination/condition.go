package pagination

import "strings"

// Condition renders the keyset predicate of a scan as a portable SQL fragment.
// For columns (a, b) and a descending scan after (x, y) it yields
// "((a < ?) OR (a = ? AND b < ?))" with args x, x, y. It returns an empty
// string when the scan has no boundary.
func Condition(o Ordering, s Scan) (string, []any) {
	if s.After == nil {
		return "", nil
	}
	op := ">"
	if s.Descending(o) {
		op = "<"
	}

	var (
		sb   strings.Builder
		args []any
	)
	for i := range o.Columns {
		if i > 0 {
			sb.WriteString(" OR ")
		}
		sb.WriteByte('(')
		for j := 0; j < i; j++ {
			sb.WriteString(o.Columns[j])
			sb.WriteString(" = ? AND ")
			args = append(args, s.After[j])
		}
		sb.WriteString(o.Columns[i])
		sb.WriteByte(' ')
		sb.WriteString(op)
		sb.WriteString(" ?)")
		args = append(args, s.After[i])
	}
	return "(" + sb.String() + ")", args
}

// OrderBy renders the ORDER BY clause of a scan, e.g. "block_number DESC, tx_index DESC".
func OrderBy(o Ordering, s Scan) string {
	dir := " ASC"
	if s.Descending(o) {
		dir = " DESC"
	}
	parts := make([]string, len(o.Columns))
	for i, c := range o.Columns {
		parts[i] = c + dir
	}
	return strings.Join(parts, ", ")
}

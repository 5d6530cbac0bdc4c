package workbook

import (
	"log/slog"
	"strings"
)

// HeaderMap maps a normalized column name to its column index. Keys are
// lower-cased and alphanumeric-only; the map is built once per sheet and not
// mutated afterwards.
type HeaderMap map[string]int

// NormalizeKey strips every non-alphanumeric rune and lower-cases the rest,
// so "Is Cash Payment?" and "isCashPayment" resolve to the same key.
func NormalizeKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// HeaderFromRow builds a HeaderMap from one row. When two columns normalize
// to the same key the later column wins; that collision is logged because it
// usually means a malformed template.
func HeaderFromRow(row Row) HeaderMap {
	headers := make(HeaderMap)
	for idx, cell := range row {
		key := NormalizeKey(AsString(cell))
		if key == "" {
			continue
		}
		if prev, ok := headers[key]; ok {
			slog.Warn("duplicate header column, later column wins",
				"column", key, "previous_index", prev, "index", idx)
		}
		headers[key] = idx
	}
	return headers
}

// Header locates the first non-empty row of the sheet, reads it as a header
// row, and returns the mapping plus the index of the first data row. A sheet
// whose first row yields no usable headers is headerless: the map is empty
// and data starts at that same row, with the projectors falling back to
// fixed positional columns.
func (s *Sheet) Header() (HeaderMap, int) {
	first := s.firstNonEmptyRow()
	if first < 0 {
		return HeaderMap{}, len(s.Rows)
	}
	headers := HeaderFromRow(s.Rows[first])
	if len(headers) == 0 {
		return headers, first
	}
	return headers, first + 1
}

func (s *Sheet) firstNonEmptyRow() int {
	for i, row := range s.Rows {
		if !row.IsEmpty() {
			return i
		}
	}
	return -1
}

// Lookup resolves the first of the given column names present in the map.
// Names are normalized before lookup, so callers can pass API-style names.
func (h HeaderMap) Lookup(names ...string) (int, bool) {
	for _, name := range names {
		if idx, ok := h[NormalizeKey(name)]; ok {
			return idx, true
		}
	}
	return 0, false
}

// StringField reads the first matching column of the row as a trimmed string.
// Returns "" when no column matches or the cell is empty.
func (h HeaderMap) StringField(row Row, names ...string) string {
	idx, ok := h.Lookup(names...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(AsString(row.Cell(idx)))
}

// BoolField reads the first matching column as a boolean. Any of "true",
// "yes" or "1" (case-insensitive) count as true. The second result reports
// whether a value was present at all.
func (h HeaderMap) BoolField(row Row, names ...string) (bool, bool) {
	s := h.StringField(row, names...)
	if s == "" {
		return false, false
	}
	return ParseBool(s), true
}

// ParseBool applies the template boolean convention: "true", "yes" and "1"
// are true, anything else is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// Package workbook reads spreadsheet templates and turns their rows into
// normalized API payloads: it types raw cells, maps header columns, classifies
// sheets into entity types, and projects rows into per-entity payloads.
package workbook

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CellKind identifies the underlying type of a spreadsheet cell.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindString
	KindNumber
	KindBool
	KindDate
	KindFormula
)

// Cell is one typed spreadsheet cell. Exactly one of the value fields is
// meaningful, selected by Kind. Formula cells carry the cached result the
// file was last saved with.
type Cell struct {
	Kind CellKind

	Str  string
	Num  float64
	Bool bool
	Date time.Time

	// Cached formula results, string preferred over numeric.
	CachedStr    string
	CachedNum    float64
	HasCachedNum bool
}

// Row is an ordered sequence of typed cells.
type Row []Cell

// Cell returns the cell at idx, or an empty cell when idx is out of range.
func (r Row) Cell(idx int) Cell {
	if idx < 0 || idx >= len(r) {
		return Cell{}
	}
	return r[idx]
}

// IsEmpty reports whether every cell in the row normalizes to nil.
func (r Row) IsEmpty() bool {
	for _, c := range r {
		if Normalize(c) != nil {
			return false
		}
	}
	return true
}

// StringCell builds a string cell. Used by the reader and by tests.
func StringCell(s string) Cell { return Cell{Kind: KindString, Str: s} }

// NumberCell builds a numeric cell.
func NumberCell(n float64) Cell { return Cell{Kind: KindNumber, Num: n} }

// BoolCell builds a boolean cell.
func BoolCell(b bool) Cell { return Cell{Kind: KindBool, Bool: b} }

// DateCell builds a date cell.
func DateCell(t time.Time) Cell { return Cell{Kind: KindDate, Date: t} }

// Normalize converts a typed cell into a canonical scalar: string, int64,
// float64, bool, time.Time, or nil for empty and unsupported cells. Numeric
// cells that hold an exact integer come back as int64. Formula cells resolve
// to their cached string result, then their cached numeric result, then nil.
// Normalization never fails; a cell it cannot handle is simply nil.
func Normalize(c Cell) any {
	switch c.Kind {
	case KindString:
		s := strings.TrimSpace(c.Str)
		if s == "" {
			return nil
		}
		return s
	case KindNumber:
		return normalizeNumber(c.Num)
	case KindBool:
		return c.Bool
	case KindDate:
		return c.Date
	case KindFormula:
		if s := strings.TrimSpace(c.CachedStr); s != "" {
			return s
		}
		if c.HasCachedNum {
			return normalizeNumber(c.CachedNum)
		}
		return nil
	default:
		return nil
	}
}

func normalizeNumber(f float64) any {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return int64(f)
	}
	return f
}

// AsString renders the normalized value of a cell as a string, or "" for an
// empty cell. Dates render in the long form expected by the remote API.
func AsString(c Cell) string {
	switch v := Normalize(c).(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return FormatLongDate(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// monthNames is the fixed English month table. The remote API expects English
// month names regardless of the host locale.
var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// FormatLongDate renders a date as "2 January 2006" using the fixed English
// month table.
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthNames[t.Month()-1], t.Year())
}

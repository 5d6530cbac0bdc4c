package workbook

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook is a parsed spreadsheet file: an ordered list of sheets of typed
// rows. The reader owns format decoding; everything downstream works on Cell
// values only.
type Workbook struct {
	Name   string
	Sheets []Sheet
}

// Sheet is a single tab within a workbook.
type Sheet struct {
	Name string
	Rows []Row
}

// Read opens and parses the workbook at path.
func Read(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return readFile(f, filepath.Base(path))
}

// Open parses a workbook from a byte-backed resource. The name is carried
// through for classification and logging.
func Open(r io.Reader, name string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", name, err)
	}
	defer f.Close()
	return readFile(f, name)
}

func readFile(f *excelize.File, name string) (*Workbook, error) {
	wb := &Workbook{Name: name}
	for _, sheetName := range f.GetSheetList() {
		rows, err := readSheet(f, sheetName)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheetName, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: sheetName, Rows: rows})
	}
	return wb, nil
}

func readSheet(f *excelize.File, sheetName string) ([]Row, error) {
	raw, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(raw))
	for r, cols := range raw {
		row := make(Row, len(cols))
		for c := range cols {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			row[c] = readCell(f, sheetName, axis)
		}
		rows[r] = row
	}
	return rows, nil
}

// readCell types one cell. Formula cells keep their cached result; numeric
// cells with a date number format become dates.
func readCell(f *excelize.File, sheetName, axis string) Cell {
	raw, err := f.GetCellValue(sheetName, axis, excelize.Options{RawCellValue: true})
	if err != nil || strings.TrimSpace(raw) == "" {
		return Cell{}
	}

	if formula, _ := f.GetCellFormula(sheetName, axis); formula != "" {
		cached, _ := f.GetCellValue(sheetName, axis)
		cell := Cell{Kind: KindFormula}
		if n, err := strconv.ParseFloat(cached, 64); err == nil {
			cell.CachedNum = n
			cell.HasCachedNum = true
		} else {
			cell.CachedStr = cached
		}
		return cell
	}

	ct, _ := f.GetCellType(sheetName, axis)
	switch ct {
	case excelize.CellTypeBool:
		return BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeInlineString, excelize.CellTypeSharedString:
		return StringCell(raw)
	}

	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		if isDateStyled(f, sheetName, axis) {
			if t, err := excelize.ExcelDateToTime(n, false); err == nil {
				return DateCell(t)
			}
		}
		return NumberCell(n)
	}
	return StringCell(raw)
}

// Built-in number format ids that render as dates or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true,
	21: true, 22: true, 27: true, 28: true, 29: true, 30: true, 31: true,
	32: true, 33: true, 34: true, 35: true, 36: true, 45: true, 46: true,
	47: true, 50: true, 51: true, 52: true, 53: true, 54: true, 55: true,
	56: true, 57: true, 58: true,
}

func isDateStyled(f *excelize.File, sheetName, axis string) bool {
	styleID, err := f.GetCellStyle(sheetName, axis)
	if err != nil {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if builtinDateFormats[style.NumFmt] {
		return true
	}
	if style.CustomNumFmt != nil {
		return looksLikeDateFormat(*style.CustomNumFmt)
	}
	return false
}

// looksLikeDateFormat inspects a custom number format for date tokens, outside
// quoted literals.
func looksLikeDateFormat(format string) bool {
	var b strings.Builder
	inQuote := false
	for _, r := range format {
		if r == '"' {
			inQuote = !inQuote
			continue
		}
		if !inQuote {
			b.WriteRune(r)
		}
	}
	s := strings.ToLower(b.String())
	return strings.ContainsAny(s, "yd") || strings.Contains(s, "mm")
}

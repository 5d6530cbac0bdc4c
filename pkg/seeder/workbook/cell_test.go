package workbook

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want any
	}{
		{"empty cell", Cell{}, nil},
		{"string", StringCell("Cash"), "Cash"},
		{"string trimmed", StringCell("  Cash \t"), "Cash"},
		{"whitespace only", StringCell("   "), nil},
		{"integer number", NumberCell(100), int64(100)},
		{"negative integer", NumberCell(-3), int64(-3)},
		{"fractional number", NumberCell(200.5), 200.5},
		{"bool true", BoolCell(true), true},
		{"bool false", BoolCell(false), false},
		{"formula cached string", Cell{Kind: KindFormula, CachedStr: "USD"}, "USD"},
		{"formula cached number", Cell{Kind: KindFormula, CachedNum: 42, HasCachedNum: true}, int64(42)},
		{"formula no cache", Cell{Kind: KindFormula}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.cell); got != tt.want {
				t.Errorf("Normalize() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	d := time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)
	got := Normalize(DateCell(d))
	if got != d {
		t.Errorf("Normalize(date) = %v, want %v", got, d)
	}
}

func TestFormatLongDate(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2006, 1, 2, 0, 0, 0, 0, time.UTC), "2 January 2006"},
		{time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC), "18 August 2025"},
		{time.Date(1999, 12, 31, 23, 59, 0, 0, time.UTC), "31 December 1999"},
	}
	for _, tt := range tests {
		if got := FormatLongDate(tt.date); got != tt.want {
			t.Errorf("FormatLongDate(%v) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestAsString(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"empty", Cell{}, ""},
		{"string", StringCell("USD"), "USD"},
		{"integer", NumberCell(42), "42"},
		{"fraction", NumberCell(2.5), "2.5"},
		{"bool", BoolCell(true), "true"},
		{"date", DateCell(time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)), "12 March 2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AsString(tt.cell); got != tt.want {
				t.Errorf("AsString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRowIsEmpty(t *testing.T) {
	if !(Row{}).IsEmpty() {
		t.Error("zero-length row should be empty")
	}
	if !(Row{Cell{}, StringCell("  "), Cell{}}).IsEmpty() {
		t.Error("row of blank cells should be empty")
	}
	if (Row{Cell{}, NumberCell(0)}).IsEmpty() {
		t.Error("row with a numeric zero is not empty")
	}
}

func TestRowCellOutOfRange(t *testing.T) {
	row := Row{StringCell("a")}
	if got := row.Cell(5); got.Kind != KindEmpty {
		t.Errorf("out-of-range cell should be empty, got kind %d", got.Kind)
	}
	if got := row.Cell(-1); got.Kind != KindEmpty {
		t.Errorf("negative index should be empty, got kind %d", got.Kind)
	}
}

package workbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Name", "name"},
		{"Is Cash Payment?", "iscashpayment"},
		{"isCashPayment", "iscashpayment"},
		{"GL Code", "glcode"},
		{"  started_on  ", "startedon"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeKey(tt.input), "NormalizeKey(%q)", tt.input)
	}
}

func TestHeaderFromRowLastDuplicateWins(t *testing.T) {
	row := Row{StringCell("Name"), StringCell("Description"), StringCell("name")}
	headers := HeaderFromRow(row)

	assert.Len(t, headers, 2)
	assert.Equal(t, 2, headers["name"])
	assert.Equal(t, 1, headers["description"])
}

func TestSheetHeaderSkipsLeadingBlankRows(t *testing.T) {
	sheet := &Sheet{Rows: []Row{
		{},
		{StringCell("Name"), StringCell("Permissions")},
		{StringCell("Teller Role"), StringCell("CREATE_CLIENT")},
	}}

	headers, dataStart := sheet.Header()
	assert.Equal(t, 2, dataStart)
	idx, ok := headers.Lookup("name")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestSheetHeaderEmptySheet(t *testing.T) {
	sheet := &Sheet{Rows: []Row{{}, {}}}
	headers, dataStart := sheet.Header()
	assert.Empty(t, headers)
	assert.Equal(t, len(sheet.Rows), dataStart)
}

func TestHeaderFields(t *testing.T) {
	headers := HeaderFromRow(Row{StringCell("Name"), StringCell("Is Cash Payment")})
	row := Row{StringCell("  Cash  "), StringCell("TRUE")}

	assert.Equal(t, "Cash", headers.StringField(row, "name"))
	assert.Equal(t, "", headers.StringField(row, "missing"))

	isCash, present := headers.BoolField(row, "isCashPayment")
	assert.True(t, present)
	assert.True(t, isCash)

	_, present = headers.BoolField(Row{StringCell("Cash")}, "isCashPayment")
	assert.False(t, present)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "TRUE", "Yes", "1", " yes "} {
		assert.True(t, ParseBool(s), "ParseBool(%q)", s)
	}
	for _, s := range []string{"false", "no", "0", "", "maybe"} {
		assert.False(t, ParseBool(s), "ParseBool(%q)", s)
	}
}

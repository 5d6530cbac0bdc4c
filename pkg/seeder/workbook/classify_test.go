package workbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyFilenameWinsOverSheetName(t *testing.T) {
	got := Classify("Currencies.xlsx", "Clients", HeaderMap{})
	assert.Equal(t, EntityCurrencies, got)
}

func TestClassifySheetNameWhenFilenameUnknown(t *testing.T) {
	got := Classify("seed-data.xlsx", "Payment Types", HeaderMap{})
	assert.Equal(t, EntityPaymentTypes, got)
}

func TestDetectFromName(t *testing.T) {
	tests := []struct {
		name string
		want EntityType
	}{
		{"Currencies.xlsx", EntityCurrencies},
		{"PaymentTypes.xls", EntityPaymentTypes},
		{"Roles", EntityRoles},
		{"Tellers.xlsx", EntityTellers},
		{"SavingsProducts.xlsx", EntitySavingsProducts},
		{"CurrentAccountProducts.xlsx", EntitySavingsProducts},
		{"Clients.xlsx", EntityClients},
		{"ChartOfAccounts.xlsx", EntityChartOfAccounts},
		{"GLAccounts.xlsx", EntityChartOfAccounts},
		{"Sheet1", EntityUnknown},
		{"", EntityUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFromName(tt.name), "DetectFromName(%q)", tt.name)
	}
}

func TestDetectFromHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    EntityType
	}{
		{"currencies column", []string{"Currencies"}, EntityCurrencies},
		{"bare code column", []string{"Code"}, EntityCurrencies},
		{"payment types", []string{"Name", "Description", "Is Cash Payment", "Position"}, EntityPaymentTypes},
		{"roles", []string{"Name", "Description", "Permissions"}, EntityRoles},
		{"savings products", []string{"Name", "Currency", "Digits After Decimal"}, EntitySavingsProducts},
		{"tellers by keyword", []string{"Teller Name", "Office"}, EntityTellers},
		{"tellers by office id", []string{"Name", "Office Id", "Started On"}, EntityTellers},
		{"clients", []string{"First Name", "Last Name", "Office Id"}, EntityClients},
		{"chart of accounts", []string{"GL Code", "Name", "Type"}, EntityChartOfAccounts},
		{"nothing recognizable", []string{"Foo", "Bar"}, EntityUnknown},
		{"no headers", nil, EntityUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := make(Row, len(tt.headers))
			for i, h := range tt.headers {
				row[i] = StringCell(h)
			}
			assert.Equal(t, tt.want, DetectFromHeaders(HeaderFromRow(row)))
		})
	}
}

func TestEntityTypeString(t *testing.T) {
	assert.Equal(t, "roles", EntityRoles.String())
	assert.Equal(t, "glaccounts", EntityChartOfAccounts.String())
	assert.Equal(t, "unknown", EntityUnknown.String())
}

package workbook

// apiFieldNames maps normalized column keys to the camelCase field names the
// remote API expects. Applied whenever a projector copies header-mapped
// columns generically; keys without an entry pass through unchanged.
var apiFieldNames = map[string]string{
	// savings products
	"digitsafterdecimal":          "digitsAfterDecimal",
	"currencycode":                "currencyCode",
	"shortname":                   "shortName",
	"overdraftportfoliocontrolid": "overdraftPortfolioControlId",
	"savingsreferenceaccountid":   "savingsReferenceAccountId",
	"savingscontrolaccountid":     "savingsControlAccountId",
	"transfersinsuspenseaccountid": "transfersInSuspenseAccountId",
	"interestonsavingsaccountid":  "interestOnSavingsAccountId",
	"writeoffaccountid":           "writeOffAccountId",
	"incomefromfeeaccountid":      "incomeFromFeeAccountId",
	"incomefrompenaltyaccountid":  "incomeFromPenaltyAccountId",
	"incomefrominterestid":        "incomeFromInterestId",
	"accountingrule":              "accountingRule",

	// clients
	"mobilenumber":          "mobileNo",
	"externalid":            "externalId",
	"lookupofficename":      "officeName",
	"dateofbirth":           "dateOfBirth",
	"activationdate":        "activationDate",
	"lookupofficeopeneddate": "submittedOnDate",
	"officename":            "officeName",
	"submittedondate":       "submittedOnDate",
	"savingsproductid":      "savingsProductId",

	// chart of accounts
	"glcode":               "glCode",
	"manualentriesallowed": "manualEntriesAllowed",

	// tellers / payment types
	"officeid":      "officeId",
	"startdate":     "startDate",
	"enddate":       "endDate",
	"iscashpayment": "isCashPayment",
}

// APIFieldName translates a normalized column key into the remote API's
// expected field name.
func APIFieldName(key string) string {
	if mapped, ok := apiFieldNames[key]; ok {
		return mapped
	}
	return key
}

package workbook

import "strings"

// EntityType is the closed set of entities the seeder can provision. Adding
// a type means touching the classifier, the projector, and the duplicate
// index together; types are never inferred dynamically.
type EntityType int

const (
	EntityUnknown EntityType = iota
	EntityCurrencies
	EntityPaymentTypes
	EntityRoles
	EntitySavingsProducts
	EntityTellers
	EntityClients
	EntityChartOfAccounts
)

func (t EntityType) String() string {
	switch t {
	case EntityCurrencies:
		return "currencies"
	case EntityPaymentTypes:
		return "paymenttypes"
	case EntityRoles:
		return "roles"
	case EntitySavingsProducts:
		return "savingsproducts"
	case EntityTellers:
		return "tellers"
	case EntityClients:
		return "clients"
	case EntityChartOfAccounts:
		return "glaccounts"
	default:
		return "unknown"
	}
}

// nameKeywords maps filename/sheet-name substrings to entity types, in match
// priority order. "saving"/"currentaccount" must be tested before "account"
// so savings templates are not mistaken for chart-of-accounts ones.
var nameKeywords = []struct {
	keyword string
	entity  EntityType
}{
	{"currency", EntityCurrencies},
	{"payment", EntityPaymentTypes},
	{"role", EntityRoles},
	{"teller", EntityTellers},
	{"saving", EntitySavingsProducts},
	{"currentaccount", EntitySavingsProducts},
	{"client", EntityClients},
	{"chart", EntityChartOfAccounts},
	{"account", EntityChartOfAccounts},
	{"gl", EntityChartOfAccounts},
}

// Classify assigns an entity type to a sheet. Filename hints take precedence
// over sheet-name hints, which take precedence over header heuristics: a file
// is assumed single-purpose, so its name wins even when the sheet disagrees.
// Returns EntityUnknown when nothing matches; the caller skips such sheets.
func Classify(filename, sheetName string, headers HeaderMap) EntityType {
	if t := DetectFromName(filename); t != EntityUnknown {
		return t
	}
	if t := DetectFromName(sheetName); t != EntityUnknown {
		return t
	}
	return DetectFromHeaders(headers)
}

// DetectFromName matches a filename or sheet name against the keyword table.
func DetectFromName(name string) EntityType {
	flat := NormalizeKey(name)
	if flat == "" {
		return EntityUnknown
	}
	for _, k := range nameKeywords {
		if strings.Contains(flat, k.keyword) {
			return k.entity
		}
	}
	return EntityUnknown
}

// DetectFromHeaders applies fixed required-column combinations per entity
// type. A sheet that matches no rule stays unknown; it is never guessed from
// positional data alone.
func DetectFromHeaders(headers HeaderMap) EntityType {
	has := func(names ...string) bool {
		_, ok := headers.Lookup(names...)
		return ok
	}

	switch {
	case has("currencies"), has("code") && !has("glcode"):
		return EntityCurrencies
	case has("name", "paymenttype", "payment") && has("iscashpayment", "cash", "iscash"):
		return EntityPaymentTypes
	case has("permissions") && has("name", "rolename"):
		return EntityRoles
	case has("name") && has("currency", "currencycode"):
		return EntitySavingsProducts
	case has("teller"), has("name") && has("officeid"):
		return EntityTellers
	case has("firstname") && has("lastname") && has("officeid", "office"):
		return EntityClients
	case has("glcode"), has("accountname"):
		return EntityChartOfAccounts
	default:
		return EntityUnknown
	}
}

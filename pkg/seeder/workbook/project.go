package workbook

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Payload is the normalized key-value structure sent to the remote API for
// one creation or update call. Built fresh per row and not touched after it
// is handed to the upload driver.
type Payload map[string]any

// SetDefault stores v under key only when the key is absent.
func (p Payload) SetDefault(key string, v any) {
	if _, ok := p[key]; !ok {
		p[key] = v
	}
}

// Projector turns rows into per-entity payloads. Locale and DateFormat are
// stamped onto every payload whose create endpoint requires them.
type Projector struct {
	Locale     string
	DateFormat string

	// Now supplies client activation/submission dates; injectable for tests.
	Now func() time.Time
}

// NewProjector builds a projector with the given locale constants.
func NewProjector(locale, dateFormat string) *Projector {
	return &Projector{Locale: locale, DateFormat: dateFormat, Now: time.Now}
}

// Currencies collects the currency-code column across every data row of the
// sheet into one batch list, preserving row order and dropping blanks. This
// is the one entity where many rows produce a single payload: the caller
// PUTs the full list as a replacement set.
func (p *Projector) Currencies(sheet *Sheet) []string {
	headers, dataStart := sheet.Header()
	var codes []string
	if idx, ok := headers.Lookup("currencies", "code", "currency", "currencyCode"); ok {
		for _, row := range sheet.Rows[dataStart:] {
			if s := strings.TrimSpace(AsString(row.Cell(idx))); s != "" {
				codes = append(codes, s)
			}
		}
		return codes
	}
	// No recognizable code column: treat the sheet as a bare list and take
	// every non-empty string in the first column, first row included.
	first := sheet.firstNonEmptyRow()
	if first < 0 {
		return nil
	}
	for _, row := range sheet.Rows[first:] {
		if s, ok := Normalize(row.Cell(0)).(string); ok {
			codes = append(codes, s)
		}
	}
	return codes
}

// PaymentType projects one row into a payment-type creation payload.
// Rejects the row when the required name is blank.
func (p *Projector) PaymentType(row Row, headers HeaderMap) (string, Payload, bool) {
	var name, description, position string
	var isCash, hasCash bool
	if len(headers) > 0 {
		name = headers.StringField(row, "name", "paymentType", "payment")
		description = headers.StringField(row, "description", "desc")
		isCash, hasCash = headers.BoolField(row, "isCashPayment", "cash", "isCash")
		position = headers.StringField(row, "position", "order", "pos")
	} else {
		name = strings.TrimSpace(AsString(row.Cell(0)))
		description = strings.TrimSpace(AsString(row.Cell(1)))
		if s := AsString(row.Cell(2)); strings.TrimSpace(s) != "" {
			isCash, hasCash = ParseBool(s), true
		}
		position = strings.TrimSpace(AsString(row.Cell(3)))
	}
	if name == "" {
		return "", nil, false
	}

	payload := Payload{"name": name}
	if description != "" {
		payload["description"] = description
	}
	if hasCash {
		payload["isCashPayment"] = isCash
	}
	if position != "" {
		payload["position"] = position
	}
	return name, payload, true
}

// Role projects one row into a role creation payload plus the raw permission
// tokens from the permissions column. Token validation against the remote
// permission set happens in FilterPermissions.
func (p *Projector) Role(row Row, headers HeaderMap) (string, Payload, []string, bool) {
	var name, description, permissions string
	if len(headers) > 0 {
		name = headers.StringField(row, "name")
		description = headers.StringField(row, "description")
		permissions = headers.StringField(row, "permissions")
	} else {
		name = strings.TrimSpace(AsString(row.Cell(0)))
		description = strings.TrimSpace(AsString(row.Cell(1)))
		permissions = strings.TrimSpace(AsString(row.Cell(2)))
	}
	if name == "" {
		return "", nil, nil, false
	}

	payload := Payload{"name": name}
	if description != "" {
		payload["description"] = description
	}

	var tokens []string
	for _, tok := range strings.Split(permissions, ",") {
		if t := strings.TrimSpace(tok); t != "" {
			tokens = append(tokens, t)
		}
	}
	return name, payload, tokens, true
}

// FilterPermissions keeps only tokens present in the remote permission-name
// set, mapped to true. Unknown tokens are dropped with a warning; they never
// fail the row.
func FilterPermissions(roleName string, tokens []string, available map[string]bool) map[string]bool {
	granted := make(map[string]bool)
	for _, tok := range tokens {
		if available[tok] {
			granted[tok] = true
		} else {
			slog.Warn("permission not available on server, dropping",
				"role", roleName, "permission", tok)
		}
	}
	return granted
}

// SavingsProduct projects all header-mapped columns generically, renames
// currency to currencyCode, and overlays the interest-calculation defaults
// the create endpoint requires when the template leaves them out.
func (p *Projector) SavingsProduct(row Row, headers HeaderMap) (string, Payload, bool) {
	var name string
	payload := Payload{}
	if len(headers) > 0 {
		name = headers.StringField(row, "name", "productName", "savingsName")
		payload = rowToPayload(row, headers)
	} else {
		name = strings.TrimSpace(AsString(row.Cell(0)))
		if code := strings.TrimSpace(AsString(row.Cell(1))); code != "" {
			payload["currencyCode"] = code
		}
	}
	if name == "" {
		return "", nil, false
	}
	payload["name"] = name

	if code, ok := payload["currency"]; ok {
		payload.SetDefault("currencyCode", code)
		delete(payload, "currency")
	}

	payload.SetDefault("nominalAnnualInterestRate", 0)
	payload.SetDefault("interestCompoundingPeriodType", 1)
	payload.SetDefault("interestPostingPeriodType", 4)
	payload.SetDefault("interestCalculationType", 1)
	payload.SetDefault("interestCalculationDaysInYearType", 365)
	payload.SetDefault("locale", p.Locale)
	return name, payload, true
}

// tellerStatusCodes maps template status text to the remote status codes.
var tellerStatusCodes = map[string]int{
	"active":   300,
	"inactive": 400,
	"closed":   600,
}

// Teller projects one row into a teller creation payload. The remote API
// requires startDate; date columns accept native date cells or MM/dd/yy text.
func (p *Projector) Teller(row Row, headers HeaderMap) (string, Payload, bool) {
	positional := len(headers) == 0
	field := func(pos int, names ...string) string {
		if positional {
			return strings.TrimSpace(AsString(row.Cell(pos)))
		}
		return headers.StringField(row, names...)
	}

	name := field(0, "tellerName", "name", "teller")
	if name == "" {
		return "", nil, false
	}
	payload := Payload{"name": name}

	if officeID := field(1, "office", "officeId"); officeID != "" {
		if id, err := strconv.Atoi(officeID); err == nil {
			payload["officeId"] = id
		} else {
			slog.Warn("invalid officeId, omitting field", "teller", name, "officeId", officeID)
		}
	}
	if description := field(2, "description", "desc"); description != "" {
		payload["description"] = description
	}

	startCell := row.Cell(3)
	if !positional {
		if idx, ok := headers.Lookup("startedOn", "startDate", "start"); ok {
			startCell = row.Cell(idx)
		} else {
			startCell = Cell{}
		}
	}
	if start, ok := convertDate(startCell); ok {
		payload["startDate"] = start
	}

	endCell := row.Cell(4)
	if !positional {
		if idx, ok := headers.Lookup("endDate", "end"); ok {
			endCell = row.Cell(idx)
		} else {
			endCell = Cell{}
		}
	}
	if end, ok := convertDate(endCell); ok {
		payload["endDate"] = end
	}

	if status := field(5, "status"); status != "" {
		if code, err := strconv.Atoi(status); err == nil {
			payload["status"] = code
		} else if code, ok := tellerStatusCodes[strings.ToLower(status)]; ok {
			payload["status"] = code
		} else {
			slog.Warn("unknown teller status, omitting field", "teller", name, "status", status)
		}
	}

	payload["locale"] = p.Locale
	payload["dateFormat"] = p.DateFormat
	return name, payload, true
}

// Client projects one row into a reduced client creation payload: office,
// name fields, active flag, person legal form, and a savings product id so
// the client is provisioned with an attached savings account. The returned
// externalId (possibly "") is the natural key for duplicate detection.
func (p *Projector) Client(row Row, headers HeaderMap) (string, Payload, bool) {
	positional := len(headers) == 0
	field := func(pos int, names ...string) string {
		if positional {
			return strings.TrimSpace(AsString(row.Cell(pos)))
		}
		return headers.StringField(row, names...)
	}

	firstName := field(0, "firstname", "first")
	lastName := field(1, "lastname", "last")
	if firstName == "" || lastName == "" {
		return "", nil, false
	}

	officeID := 1
	if s := field(2, "officeId", "office"); s != "" {
		if id, err := strconv.Atoi(s); err == nil {
			officeID = id
		}
	}
	savingsProductID := 1
	if s := field(3, "savingsProductId", "savingsProduct"); s != "" {
		if id, err := strconv.Atoi(s); err == nil {
			savingsProductID = id
		}
	}

	today := FormatLongDate(p.Now())
	payload := Payload{
		"officeId":         officeID,
		"firstname":        firstName,
		"lastname":         lastName,
		"active":           true,
		"legalFormId":      1, // person
		"savingsProductId": savingsProductID,
		"locale":           p.Locale,
		"dateFormat":       p.DateFormat,
		"activationDate":   today,
		"submittedOnDate":  today,
	}

	externalID := field(4, "externalId", "external")
	if externalID != "" {
		payload["externalId"] = externalID
	}
	return externalID, payload, true
}

// GLAccount projects one row into a general-ledger account payload.
// Requires name and glCode; fills the account-shape defaults when absent.
func (p *Projector) GLAccount(row Row, headers HeaderMap) (string, Payload, bool) {
	var name, glCode string
	payload := Payload{}
	if len(headers) > 0 {
		name = headers.StringField(row, "name", "accountName", "glName")
		glCode = headers.StringField(row, "glCode", "code")
		payload = rowToPayload(row, headers)
	} else {
		name = strings.TrimSpace(AsString(row.Cell(0)))
		glCode = strings.TrimSpace(AsString(row.Cell(1)))
	}
	if name == "" || glCode == "" {
		return "", nil, false
	}

	payload["name"] = name
	payload["glCode"] = glCode
	payload.SetDefault("type", "ASSET")
	payload.SetDefault("usage", "DETAIL")
	payload.SetDefault("manualEntriesAllowed", true)
	payload.SetDefault("description", name)
	payload.SetDefault("locale", p.Locale)
	return glCode, payload, true
}

// rowToPayload copies every header-mapped, non-empty cell into a payload,
// translating column keys to API field names and rendering dates long-form.
func rowToPayload(row Row, headers HeaderMap) Payload {
	payload := Payload{}
	for key, idx := range headers {
		v := Normalize(row.Cell(idx))
		if v == nil {
			continue
		}
		if t, ok := v.(time.Time); ok {
			v = FormatLongDate(t)
		}
		payload[APIFieldName(key)] = v
	}
	return payload
}

var shortDatePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2}$`)

// convertDate renders a date column value in the long form the API expects.
// Native date cells convert directly; MM/dd/yy text converts assuming 20xx;
// any other non-empty text passes through untouched on the assumption it is
// already in the right format.
func convertDate(cell Cell) (string, bool) {
	switch v := Normalize(cell).(type) {
	case time.Time:
		return FormatLongDate(v), true
	case string:
		if shortDatePattern.MatchString(v) {
			parts := strings.Split(v, "/")
			month, _ := strconv.Atoi(parts[0])
			day, _ := strconv.Atoi(parts[1])
			year, _ := strconv.Atoi(parts[2])
			if month >= 1 && month <= 12 {
				return FormatLongDate(time.Date(2000+year, time.Month(month), day, 0, 0, 0, 0, time.UTC)), true
			}
		}
		return v, true
	default:
		return "", false
	}
}

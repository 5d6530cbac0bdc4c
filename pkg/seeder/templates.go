package seeder

import (
	"os"
	"path/filepath"
)

// templateUpload maps a direct-upload template file to its bulk-import
// endpoint. These templates bypass row projection entirely: Fineract parses
// them server-side.
type templateUpload struct {
	File     string
	Endpoint string
}

// directTemplates is processed in order; office structure has to exist
// before staff and users reference it.
var directTemplates = []templateUpload{
	{"Offices.xls", "offices/uploadtemplate"},
	{"Staffs.xls", "staff/uploadtemplate"},
	{"Users.xls", "users/uploadtemplate"},
	{"ChartOfAccounts.xls", "glaccounts/uploadtemplate"},
	{"SavingsAccount.xls", "savingsaccounts/uploadtemplate"},
}

// findTemplate locates a template file in dir, accepting either the .xls
// name from the table or an .xlsx sibling. Returns "" when neither exists.
func findTemplate(dir, file string) string {
	candidates := []string{
		filepath.Join(dir, file),
		filepath.Join(dir, file+"x"),
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

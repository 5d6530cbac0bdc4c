package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"fineractseed/pkg/seeder/fineract"
	"fineractseed/pkg/seeder/workbook"
)

// Runner drives one import run. It owns the run-scoped entity indexes and
// the outcome counters; processing is strictly sequential, one workbook,
// one sheet, one row at a time.
type Runner struct {
	cfg       Config
	client    *fineract.Client
	projector *workbook.Projector

	// Lazily fetched, at most once per run per entity type.
	indexes     map[workbook.EntityType]*fineract.Index
	permissions map[string]bool
}

// NewRunner builds a runner over a configured client.
func NewRunner(cfg Config, client *fineract.Client) *Runner {
	return &Runner{
		cfg:       cfg,
		client:    client,
		projector: workbook.NewProjector(cfg.Fineract.Locale, cfg.Fineract.DateFormat),
		indexes:   make(map[workbook.EntityType]*fineract.Index),
	}
}

// Run processes every discovered workbook sheet through the import
// pipeline, then delivers the remaining direct-upload templates. No row or
// sheet failure aborts the run; the summary records everything.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()
	summary := &Summary{RunID: uuid.NewString(), StartedAt: started}
	log := slog.With("run_id", summary.RunID)
	log.Info("starting import run", "data_dir", r.cfg.Data.Dir, "dry_run", r.cfg.DryRun)

	workbooks, err := r.discoverWorkbooks()
	if err != nil {
		return summary, err
	}
	if len(workbooks) == 0 {
		log.Warn("no workbook templates found", "dir", filepath.Join(r.cfg.Data.Dir, "workbook-templates"))
	}

	for _, path := range workbooks {
		if ctx.Err() != nil {
			break
		}
		results, err := r.processWorkbook(ctx, path)
		if err != nil {
			log.Error("failed processing workbook", "workbook", path, "error", err)
			continue
		}
		summary.Sheets = append(summary.Sheets, results...)
	}

	if ctx.Err() == nil {
		summary.Templates = r.processTemplates(ctx, log)
	}

	summary.Duration = time.Since(started)
	summary.Log()
	return summary, ctx.Err()
}

func (r *Runner) discoverWorkbooks() ([]string, error) {
	dir := filepath.Join(r.cfg.Data.Dir, "workbook-templates")
	var paths []string
	for _, pattern := range []string{"*.xls", "*.xlsx"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("discover workbooks: %w", err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	return paths, nil
}

func (r *Runner) processWorkbook(ctx context.Context, path string) ([]SheetResult, error) {
	wb, err := workbook.Read(path)
	if err != nil {
		return nil, err
	}

	var results []SheetResult
	for i := range wb.Sheets {
		if ctx.Err() != nil {
			break
		}
		sheet := &wb.Sheets[i]
		headers, _ := sheet.Header()
		entity := workbook.Classify(wb.Name, sheet.Name, headers)
		if entity == workbook.EntityUnknown {
			slog.Warn("unrecognized sheet, skipping", "workbook", wb.Name, "sheet", sheet.Name)
			continue
		}
		slog.Info("processing sheet", "workbook", wb.Name, "sheet", sheet.Name, "entity", entity.String())
		outcome := r.seedSheet(ctx, sheet, entity)
		results = append(results, SheetResult{
			Workbook: wb.Name,
			Sheet:    sheet.Name,
			Entity:   entity,
			Outcome:  outcome,
		})
	}
	return results, nil
}

func (r *Runner) seedSheet(ctx context.Context, sheet *workbook.Sheet, entity workbook.EntityType) Outcome {
	switch entity {
	case workbook.EntityCurrencies:
		return r.seedCurrencies(ctx, sheet)
	case workbook.EntityPaymentTypes:
		return r.seedPaymentTypes(ctx, sheet)
	case workbook.EntityRoles:
		return r.seedRoles(ctx, sheet)
	case workbook.EntitySavingsProducts:
		return r.seedSavingsProducts(ctx, sheet)
	case workbook.EntityTellers:
		return r.seedTellers(ctx, sheet)
	case workbook.EntityClients:
		return r.seedClients(ctx, sheet)
	case workbook.EntityChartOfAccounts:
		return r.seedGLAccounts(ctx, sheet)
	default:
		return Outcome{}
	}
}

// index returns the duplicate-detection index for an entity type, fetching
// it on first use. Currencies never consult an index: their PUT replaces
// the whole set.
func (r *Runner) index(ctx context.Context, entity workbook.EntityType) *fineract.Index {
	if ix, ok := r.indexes[entity]; ok {
		return ix
	}
	var ix *fineract.Index
	if r.cfg.DryRun {
		ix = &fineract.Index{}
	} else {
		switch entity {
		case workbook.EntityRoles:
			ix = fineract.FetchIndex(ctx, r.client, "roles", "name")
		case workbook.EntitySavingsProducts:
			ix = fineract.FetchIndex(ctx, r.client, "savingsproducts", "name")
		case workbook.EntityTellers:
			ix = fineract.FetchIndex(ctx, r.client, "tellers", "name")
		case workbook.EntityPaymentTypes:
			ix = fineract.FetchIndex(ctx, r.client, "paymenttypes", "name")
		case workbook.EntityChartOfAccounts:
			ix = fineract.FetchIndex(ctx, r.client, "glaccounts", "glCode")
		case workbook.EntityClients:
			ix = fineract.FetchPagedIndex(ctx, r.client, "clients", "externalId")
		default:
			ix = &fineract.Index{}
		}
	}
	r.indexes[entity] = ix
	return ix
}

func (r *Runner) permissionSet(ctx context.Context) map[string]bool {
	if r.permissions == nil {
		r.permissions = fineract.FetchPermissionNames(ctx, r.client)
	}
	return r.permissions
}

func (r *Runner) seedCurrencies(ctx context.Context, sheet *workbook.Sheet) Outcome {
	var out Outcome
	codes := r.projector.Currencies(sheet)
	if len(codes) == 0 {
		slog.Warn("no currency codes found, skipping update", "sheet", sheet.Name)
		return out
	}
	if r.cfg.DryRun {
		slog.Info("dry run: would replace currencies", "codes", codes)
		out.Created = len(codes)
		return out
	}
	if _, err := r.client.PutJSON(ctx, "currencies", workbook.Payload{"currencies": codes}); err != nil {
		slog.Error("failed updating currencies", "sheet", sheet.Name, "codes", codes, "error", err)
		out.Failed = len(codes)
		return out
	}
	slog.Info("currencies replaced", "count", len(codes))
	out.Created = len(codes)
	return out
}

func (r *Runner) seedPaymentTypes(ctx context.Context, sheet *workbook.Sheet) Outcome {
	var out Outcome
	headers, dataStart := sheet.Header()
	for i, row := range sheet.Rows[dataStart:] {
		if ctx.Err() != nil {
			break
		}
		if row.IsEmpty() {
			continue
		}
		name, payload, ok := r.projector.PaymentType(row, headers)
		if !ok {
			slog.Warn("row rejected, required fields blank",
				"sheet", sheet.Name, "entity", "paymenttypes", "row", dataStart+i+1)
			continue
		}
		if _, exists := r.index(ctx, workbook.EntityPaymentTypes).ID(name); exists {
			slog.Info("payment type already exists, skipping", "name", name)
			out.Skipped++
			continue
		}
		if r.cfg.DryRun {
			slog.Info("dry run: would create payment type", "name", name)
			out.Created++
			continue
		}
		if _, err := r.client.PostJSON(ctx, "paymenttypes", payload); err != nil {
			slog.Error("failed creating payment type", "name", name, "payload", payload, "error", err)
			out.Failed++
			continue
		}
		out.Created++
	}
	return out
}

func (r *Runner) seedRoles(ctx context.Context, sheet *workbook.Sheet) Outcome {
	var out Outcome
	headers, dataStart := sheet.Header()
	for i, row := range sheet.Rows[dataStart:] {
		if ctx.Err() != nil {
			break
		}
		if row.IsEmpty() {
			continue
		}
		name, payload, tokens, ok := r.projector.Role(row, headers)
		if !ok {
			slog.Warn("row rejected, required fields blank",
				"sheet", sheet.Name, "entity", "roles", "row", dataStart+i+1)
			continue
		}
		if r.cfg.DryRun {
			slog.Info("dry run: would create role", "name", name, "permissions", len(tokens))
			out.Created++
			continue
		}

		if id, exists := r.index(ctx, workbook.EntityRoles).ID(name); exists {
			slog.Info("role already exists, skipping creation", "name", name, "id", id)
			out.Skipped++
			r.assignPermissions(ctx, name, id, tokens)
			continue
		}

		resp, err := r.client.PostJSON(ctx, "roles", payload)
		if err != nil {
			slog.Error("failed creating role", "name", name, "payload", payload, "error", err)
			out.Failed++
			continue
		}
		out.Created++

		if len(tokens) == 0 {
			continue
		}
		id, ok := fineract.ResourceID(resp)
		if !ok {
			slog.Warn("role created but no resourceId returned, skipping permissions", "name", name)
			continue
		}
		r.assignPermissions(ctx, name, id, tokens)
	}
	return out
}

// assignPermissions filters the row's permission tokens against the remote
// set and PUTs the granted ones to the role. Failures are logged with the
// payload but never fail the row.
func (r *Runner) assignPermissions(ctx context.Context, roleName string, roleID int64, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	granted := workbook.FilterPermissions(roleName, tokens, r.permissionSet(ctx))
	if len(granted) == 0 {
		slog.Warn("no valid permissions for role", "role", roleName)
		return
	}
	endpoint := fmt.Sprintf("roles/%d/permissions", roleID)
	payload := workbook.Payload{"permissions": granted}
	if _, err := r.client.PutJSON(ctx, endpoint, payload); err != nil {
		slog.Error("failed updating role permissions",
			"role", roleName, "endpoint", endpoint, "payload", payload, "error", err)
		return
	}
	slog.Info("role permissions updated", "role", roleName, "granted", len(granted))
}

func (r *Runner) seedSavingsProducts(ctx context.Context, sheet *workbook.Sheet) Outcome {
	var out Outcome
	headers, dataStart := sheet.Header()
	for i, row := range sheet.Rows[dataStart:] {
		if ctx.Err() != nil {
			break
		}
		if row.IsEmpty() {
			continue
		}
		name, payload, ok := r.projector.SavingsProduct(row, headers)
		if !ok {
			slog.Warn("row rejected, required fields blank",
				"sheet", sheet.Name, "entity", "savingsproducts", "row", dataStart+i+1)
			continue
		}
		if _, exists := r.index(ctx, workbook.EntitySavingsProducts).ID(name); exists {
			slog.Info("savings product already exists, skipping", "name", name)
			out.Skipped++
			continue
		}
		if r.cfg.DryRun {
			slog.Info("dry run: would create savings product", "name", name)
			out.Created++
			continue
		}
		if _, err := r.client.PostJSON(ctx, "savingsproducts", payload); err != nil {
			slog.Error("failed creating savings product", "name", name, "payload", payload, "error", err)
			out.Failed++
			continue
		}
		out.Created++
	}
	return out
}

func (r *Runner) seedTellers(ctx context.Context, sheet *workbook.Sheet) Outcome {
	var out Outcome
	headers, dataStart := sheet.Header()
	for i, row := range sheet.Rows[dataStart:] {
		if ctx.Err() != nil {
			break
		}
		if row.IsEmpty() {
			continue
		}
		name, payload, ok := r.projector.Teller(row, headers)
		if !ok {
			slog.Warn("row rejected, required fields blank",
				"sheet", sheet.Name, "entity", "tellers", "row", dataStart+i+1)
			continue
		}
		if _, exists := r.index(ctx, workbook.EntityTellers).ID(name); exists {
			slog.Info("teller already exists, skipping", "name", name)
			out.Skipped++
			continue
		}
		if r.cfg.DryRun {
			slog.Info("dry run: would create teller", "name", name)
			out.Created++
			continue
		}
		resp, err := r.client.PostJSON(ctx, "tellers", payload)
		if err != nil {
			slog.Error("failed creating teller", "name", name, "payload", payload, "error", err)
			out.Failed++
			continue
		}
		if id, ok := fineract.ResourceID(resp); ok {
			slog.Info("teller created", "name", name, "id", id)
		} else {
			slog.Info("teller created without resourceId in response", "name", name)
		}
		out.Created++
	}
	return out
}

func (r *Runner) seedClients(ctx context.Context, sheet *workbook.Sheet) Outcome {
	var out Outcome
	headers, dataStart := sheet.Header()
	for i, row := range sheet.Rows[dataStart:] {
		if ctx.Err() != nil {
			break
		}
		if row.IsEmpty() {
			continue
		}
		externalID, payload, ok := r.projector.Client(row, headers)
		if !ok {
			slog.Warn("row rejected, required fields blank",
				"sheet", sheet.Name, "entity", "clients", "row", dataStart+i+1)
			continue
		}
		if externalID != "" {
			if id, exists := r.index(ctx, workbook.EntityClients).ID(externalID); exists {
				slog.Info("client already exists, skipping", "external_id", externalID, "id", id)
				out.Skipped++
				continue
			}
		}
		if r.cfg.DryRun {
			slog.Info("dry run: would create client", "external_id", externalID)
			out.Created++
			continue
		}
		if _, err := r.client.PostJSON(ctx, "clients", payload); err != nil {
			slog.Error("failed creating client", "external_id", externalID, "payload", payload, "error", err)
			out.Failed++
			continue
		}
		out.Created++
	}
	return out
}

func (r *Runner) seedGLAccounts(ctx context.Context, sheet *workbook.Sheet) Outcome {
	var out Outcome
	headers, dataStart := sheet.Header()
	for i, row := range sheet.Rows[dataStart:] {
		if ctx.Err() != nil {
			break
		}
		if row.IsEmpty() {
			continue
		}
		glCode, payload, ok := r.projector.GLAccount(row, headers)
		if !ok {
			slog.Warn("row rejected, required fields blank",
				"sheet", sheet.Name, "entity", "glaccounts", "row", dataStart+i+1)
			continue
		}
		if _, exists := r.index(ctx, workbook.EntityChartOfAccounts).ID(glCode); exists {
			slog.Info("gl account already exists, skipping", "gl_code", glCode)
			out.Skipped++
			continue
		}
		if r.cfg.DryRun {
			slog.Info("dry run: would create gl account", "gl_code", glCode)
			out.Created++
			continue
		}
		if _, err := r.client.PostJSON(ctx, "glaccounts", payload); err != nil {
			slog.Error("failed creating gl account", "gl_code", glCode, "payload", payload, "error", err)
			out.Failed++
			continue
		}
		out.Created++
	}
	return out
}

// processTemplates uploads the direct bulk-import templates that exist in
// the data directory.
func (r *Runner) processTemplates(ctx context.Context, log *slog.Logger) []TemplateResult {
	var results []TemplateResult
	for _, tmpl := range directTemplates {
		if ctx.Err() != nil {
			break
		}
		path := findTemplate(r.cfg.Data.Dir, tmpl.File)
		if path == "" {
			log.Debug("template not present, skipping", "file", tmpl.File)
			continue
		}
		if r.cfg.DryRun {
			log.Info("dry run: would upload template", "file", path, "endpoint", tmpl.Endpoint)
			results = append(results, TemplateResult{File: path, Endpoint: tmpl.Endpoint})
			continue
		}
		data, err := os.ReadFile(path)
		if err == nil {
			err = r.client.UploadTemplate(ctx, tmpl.Endpoint, filepath.Base(path), data)
		}
		if err != nil {
			log.Error("template upload failed", "file", path, "endpoint", tmpl.Endpoint, "error", err)
		} else {
			log.Info("template uploaded", "file", path, "endpoint", tmpl.Endpoint)
		}
		results = append(results, TemplateResult{File: path, Endpoint: tmpl.Endpoint, Err: err})
	}
	return results
}

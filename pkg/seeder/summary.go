package seeder

import (
	"log/slog"
	"time"

	"fineractseed/pkg/seeder/workbook"
)

// Outcome is the per-sheet tally. Blank and rejected rows are excluded
// before counting, so Created+Skipped+Failed equals the rows attempted.
type Outcome struct {
	Created int
	Skipped int
	Failed  int
}

// Add folds another tally into this one.
func (o *Outcome) Add(other Outcome) {
	o.Created += other.Created
	o.Skipped += other.Skipped
	o.Failed += other.Failed
}

// SheetResult is the outcome of one classified sheet.
type SheetResult struct {
	Workbook string
	Sheet    string
	Entity   workbook.EntityType
	Outcome  Outcome
}

// TemplateResult is the outcome of one direct-upload template.
type TemplateResult struct {
	File     string
	Endpoint string
	Err      error
}

// Summary aggregates a whole orchestration run.
type Summary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Sheets    []SheetResult
	Templates []TemplateResult
}

// Total folds every sheet outcome into one process-wide tally.
func (s *Summary) Total() Outcome {
	var total Outcome
	for _, r := range s.Sheets {
		total.Add(r.Outcome)
	}
	return total
}

// HasFailures reports whether any row or template upload failed; it drives
// the process exit status.
func (s *Summary) HasFailures() bool {
	for _, r := range s.Sheets {
		if r.Outcome.Failed > 0 {
			return true
		}
	}
	for _, t := range s.Templates {
		if t.Err != nil {
			return true
		}
	}
	return false
}

// Log writes the run summary.
func (s *Summary) Log() {
	total := s.Total()
	slog.Info("import run complete",
		"run_id", s.RunID,
		"duration", s.Duration,
		"sheets", len(s.Sheets),
		"templates", len(s.Templates),
		"created", total.Created,
		"skipped", total.Skipped,
		"failed", total.Failed,
	)
	for _, r := range s.Sheets {
		slog.Info("sheet outcome",
			"workbook", r.Workbook, "sheet", r.Sheet, "entity", r.Entity.String(),
			"created", r.Outcome.Created, "skipped", r.Outcome.Skipped, "failed", r.Outcome.Failed)
	}
	for _, t := range s.Templates {
		if t.Err != nil {
			slog.Error("template upload failed", "file", t.File, "endpoint", t.Endpoint, "error", t.Err)
		} else {
			slog.Info("template uploaded", "file", t.File, "endpoint", t.Endpoint)
		}
	}
}

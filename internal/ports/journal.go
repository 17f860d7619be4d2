package ports

import (
	"context"

	"ledger_import/internal/services/normalizer"
)

type RunInfo struct {
	ImportRecordID string
	Type           string
	Source         string
	Path           string
	Bucket         string
	Key            string
	SizeBytes      int64
}

// Journal keeps an audit trail of import runs. Journal failures are
// logged by callers and never fail a run.
type Journal interface {
	Begin(ctx context.Context, info RunInfo) (string, error)
	Warnings(ctx context.Context, recordID, importType string, headerRows int, warnings []normalizer.Warning) error
	Finish(ctx context.Context, recordID string, out Outcome, runErr error) error
}

type NopJournal struct{}

func (NopJournal) Begin(context.Context, RunInfo) (string, error) { return "", nil }

func (NopJournal) Warnings(context.Context, string, string, int, []normalizer.Warning) error {
	return nil
}

func (NopJournal) Finish(context.Context, string, Outcome, error) error { return nil }

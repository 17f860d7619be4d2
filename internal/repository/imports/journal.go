package importitems

import (
	"context"
	"time"

	mg "ledger_import/internal/config/connections/mongo"
	"ledger_import/internal/ports"
	"ledger_import/internal/services/normalizer"
)

// Journal records runs in Mongo import_records / import_record_items.
type Journal struct {
	MG *mg.Mongo
}

// NewJournal falls back to a no-op journal when Mongo is not configured.
func NewJournal(m *mg.Mongo) ports.Journal {
	if m == nil || m.Database == nil {
		return ports.NopJournal{}
	}
	return &Journal{MG: m}
}

func (j *Journal) Begin(ctx context.Context, info ports.RunInfo) (string, error) {
	if info.ImportRecordID != "" {
		return info.ImportRecordID, UpdateImportRecord(ctx, j.MG, info.ImportRecordID, RecordUpdate{Status: StatusProcessing})
	}

	rec := Record{
		Status: StatusProcessing,
		Type:   info.Type,
		Source: info.Source,
	}
	if info.Path != "" {
		rec.Path = &info.Path
	}
	if info.Bucket != "" {
		rec.Bucket = &info.Bucket
	}
	if info.Key != "" {
		rec.Key = &info.Key
	}
	if info.SizeBytes > 0 {
		rec.SizeBytes = &info.SizeBytes
	}
	return InsertImportRecord(ctx, j.MG, rec)
}

func (j *Journal) Warnings(ctx context.Context, recordID, importType string, headerRows int, ws []normalizer.Warning) error {
	return InsertItems(ctx, j.MG, ItemsFromWarnings(recordID, ModelTypeFor(importType), headerRows, ws, time.Now().UTC()))
}

func (j *Journal) Finish(ctx context.Context, recordID string, out ports.Outcome, runErr error) error {
	if recordID == "" {
		return nil
	}
	return UpdateImportRecord(ctx, j.MG, recordID, FinishUpdate(out, runErr))
}

// FinishUpdate builds the final status update for a run.
func FinishUpdate(out ports.Outcome, runErr error) RecordUpdate {
	count, stored, warns := out.Rows, out.Stored, len(out.Warnings)
	upd := RecordUpdate{
		Status:   StatusDone,
		Count:    &count,
		Stored:   &stored,
		Warnings: &warns,
	}
	if runErr != nil {
		msg := runErr.Error()
		upd.Status = StatusFailed
		upd.Errors = &msg
	}
	return upd
}

package importitems

import (
	"context"

	mg "ledger_import/internal/config/connections/mongo"

	"go.mongodb.org/mongo-driver/bson"
)

// Store exposes import_records to the HTTP layer.
type Store struct {
	MG *mg.Mongo
}

func (s Store) Insert(ctx context.Context, rec Record) (string, error) {
	return InsertImportRecord(ctx, s.MG, rec)
}

func (s Store) Find(ctx context.Context, id string) (Record, error) {
	return FindImportRecordByID(ctx, s.MG, id)
}

// List returns the newest records first, optionally narrowed to one import type.
func (s Store) List(ctx context.Context, typ string, limit, skip int64) ([]Record, int64, error) {
	filter := bson.M{"deleted_at": bson.M{"$exists": false}}
	if typ != "" {
		filter["type"] = typ
	}
	return ListImportRecords(ctx, s.MG, filter, limit, skip)
}

package importitems

import (
	"context"
	"fmt"
	"strconv"
	"time"

	mg "ledger_import/internal/config/connections/mongo"
	"ledger_import/internal/services/normalizer"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ImportRecordItemsCollection = "import_record_items"

type Item struct {
	ImportRecordID string    `bson:"import_record_id" json:"import_record_id"`
	ModelType      string    `bson:"model_type" json:"model_type"`
	ModelID        string    `bson:"model_id" json:"model_id"`
	Payload        string    `bson:"payload" json:"payload"`
	Status         string    `bson:"status" json:"status"`
	Errors         string    `bson:"errors" json:"errors"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// ItemsFromWarnings turns cell warnings into journal items keyed by sheet row.
func ItemsFromWarnings(importRecordID string, mt ModelType, headerRows int, ws []normalizer.Warning, now time.Time) []Item {
	items := make([]Item, 0, len(ws))
	for _, w := range ws {
		items = append(items, Item{
			ImportRecordID: importRecordID,
			ModelType:      string(mt),
			ModelID:        "row:" + strconv.Itoa(w.SheetRow(headerRows)),
			Payload:        fmt.Sprintf(`{"field":%q,"column":%d,"value":%q}`, w.Field, w.Column, w.Value),
			Status:         StatusWarning,
			Errors:         w.Reason,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return items
}

func InsertItems(ctx context.Context, m *mg.Mongo, items []Item) error {
	if m == nil || m.Client == nil || m.Database == nil {
		return mongo.ErrClientDisconnected
	}
	if len(items) == 0 {
		return nil
	}

	docs := make([]any, 0, len(items))
	for _, it := range items {
		docs = append(docs, it)
	}

	_, err := m.Database.Collection(ImportRecordItemsCollection).
		InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

package importitems

import (
	"context"
	"fmt"
	"time"

	mg "ledger_import/internal/config/connections/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ImportRecordsCollection = "import_records"

type Record struct {
	ID        any        `bson:"_id,omitempty" json:"id"`
	Count     int        `bson:"count" json:"count"`
	Stored    int        `bson:"stored" json:"stored"`
	Warnings  int        `bson:"warnings" json:"warnings"`
	Status    string     `bson:"status" json:"status"`
	Errors    *string    `bson:"errors,omitempty" json:"errors,omitempty"`
	Type      string     `bson:"type" json:"type"`
	Source    string     `bson:"source,omitempty" json:"source,omitempty"`
	Path      *string    `bson:"path,omitempty" json:"path,omitempty"`
	Bucket    *string    `bson:"bucket,omitempty" json:"bucket,omitempty"`
	Key       *string    `bson:"key,omitempty" json:"key,omitempty"`
	SizeBytes *int64     `bson:"size_bytes,omitempty" json:"size_bytes,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// RecordUpdate carries the fields a run changes when it finishes.
type RecordUpdate struct {
	Status   string
	Count    *int
	Stored   *int
	Warnings *int
	Errors   *string
}

func (u RecordUpdate) toBSON(now time.Time) bson.M {
	set := bson.M{"status": u.Status, "updated_at": now}
	if u.Count != nil {
		set["count"] = *u.Count
	}
	if u.Stored != nil {
		set["stored"] = *u.Stored
	}
	if u.Warnings != nil {
		set["warnings"] = *u.Warnings
	}
	if u.Errors != nil {
		set["errors"] = *u.Errors
	}
	return bson.M{"$set": set}
}

func InsertImportRecord(ctx context.Context, m *mg.Mongo, rec Record) (string, error) {
	if m == nil || m.Client == nil || m.Database == nil {
		return "", mongo.ErrClientDisconnected
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = StatusParsed
	}
	rec.ID = nil

	res, err := m.Database.Collection(ImportRecordsCollection).InsertOne(ctx, rec, options.InsertOne())
	if err != nil {
		return "", err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(res.InsertedID), nil
}

// idFilter matches either an ObjectID or a plain string _id.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}

func UpdateImportRecord(ctx context.Context, m *mg.Mongo, importRecordID string, upd RecordUpdate) error {
	if m == nil || m.Database == nil {
		return mongo.ErrClientDisconnected
	}
	if importRecordID == "" {
		return fmt.Errorf("empty importRecordID")
	}
	if upd.Status == "" {
		return fmt.Errorf("empty status")
	}

	res, err := m.Database.Collection(ImportRecordsCollection).
		UpdateOne(ctx, idFilter(importRecordID), upd.toBSON(time.Now().UTC()))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no import_record found with id %s", importRecordID)
	}
	return nil
}

func FindImportRecordByID(ctx context.Context, m *mg.Mongo, id string) (Record, error) {
	var out Record
	if m == nil || m.Database == nil {
		return out, mongo.ErrClientDisconnected
	}

	err := m.Database.Collection(ImportRecordsCollection).FindOne(ctx, idFilter(id)).Decode(&out)
	if err != nil {
		return out, fmt.Errorf("not found: %w", err)
	}
	if oid, ok := out.ID.(primitive.ObjectID); ok {
		out.ID = oid.Hex()
	}
	return out, nil
}

func ListImportRecords(ctx context.Context, m *mg.Mongo, filter bson.M, limit, skip int64) ([]Record, int64, error) {
	if m == nil || m.Database == nil {
		return nil, 0, mongo.ErrClientDisconnected
	}
	coll := m.Database.Collection(ImportRecordsCollection)
	if filter == nil {
		filter = bson.M{}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if skip > 0 {
		opts.SetSkip(skip)
	}

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	recs := make([]Record, 0)
	for cur.Next(ctx) {
		var r Record
		if err := cur.Decode(&r); err != nil {
			continue
		}
		if oid, ok := r.ID.(primitive.ObjectID); ok {
			r.ID = oid.Hex()
		}
		recs = append(recs, r)
	}
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		total = int64(len(recs))
	}
	return recs, total, nil
}

package cache

import (
	"context"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cloudshift-ai/cloudshift"
)

// MongoStore keeps records in a MongoDB collection, one document per cache
// key. Hit counts and edit appends use atomic update operators, so the
// per-key write serialization holds across orchestrator instances.
type MongoStore struct {
	col    *mongo.Collection
	logger *slog.Logger
}

// NewMongoStore creates a store over the "translations" collection of db.
// The caller owns the client lifecycle.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		col:    db.Collection("translations"),
		logger: slog.Default(),
	}
}

// Lookup finds the record and atomically increments its hit count in one
// round trip. An unreachable database degrades to a miss.
func (s *MongoStore) Lookup(ctx context.Context, key string) (*Record, bool) {
	after := options.After
	res := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"hit_count": 1}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	)

	var rec Record
	if err := res.Decode(&rec); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			s.logger.Warn("mongo lookup failed, treating as miss", "key", key, "error", err)
		}
		return nil, false
	}
	return &rec, true
}

// Put creates or replaces the record document. A single replace is atomic on
// the server side.
func (s *MongoStore) Put(ctx context.Context, key string, rec *Record) error {
	rec.Key = key
	upsert := true
	_, err := s.col.ReplaceOne(ctx,
		bson.M{"_id": key}, rec,
		&options.ReplaceOptions{Upsert: &upsert},
	)
	if err != nil {
		return &cloudshift.StoreWriteError{Op: "put", Key: key, Cause: err}
	}
	return nil
}

// AppendEdit pushes the entry onto the record's edit history atomically.
func (s *MongoStore) AppendEdit(ctx context.Context, key string, entry cloudshift.EditEntry) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{
			"$push": bson.M{"edit_history": entry},
			"$set":  bson.M{"user_edited": true},
		},
	)
	if err != nil {
		return &cloudshift.StoreWriteError{Op: "append_edit", Key: key, Cause: err}
	}
	if res.MatchedCount == 0 {
		return &cloudshift.NotFoundError{Key: key}
	}
	return nil
}

// Stats aggregates record counts and document sizes server-side.
func (s *MongoStore) Stats(ctx context.Context) (cloudshift.Stats, error) {
	var stats cloudshift.Stats

	cursor, err := s.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"total":  bson.M{"$sum": 1},
			"edited": bson.M{"$sum": bson.M{"$cond": bson.A{"$user_edited", 1, 0}}},
			"bytes":  bson.M{"$sum": bson.M{"$bsonSize": "$$ROOT"}},
		}}},
	})
	if err != nil {
		return stats, err
	}
	defer cursor.Close(ctx)

	var row struct {
		Total  int   `bson:"total"`
		Edited int   `bson:"edited"`
		Bytes  int64 `bson:"bytes"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&row); err != nil {
			return stats, err
		}
		stats.TotalRecords = row.Total
		stats.EditedCount = row.Edited
		stats.TotalSizeBytes = row.Bytes
	}
	return stats, cursor.Err()
}

// Clear removes records or resets edit history per scope.
func (s *MongoStore) Clear(ctx context.Context, scope cloudshift.ClearScope) error {
	switch scope {
	case cloudshift.ClearAll, cloudshift.ClearTranslations:
		if _, err := s.col.DeleteMany(ctx, bson.M{}); err != nil {
			return &cloudshift.StoreWriteError{Op: "clear", Cause: err}
		}
	case cloudshift.ClearEdits:
		_, err := s.col.UpdateMany(ctx, bson.M{},
			bson.M{
				"$set":   bson.M{"user_edited": false},
				"$unset": bson.M{"edit_history": ""},
			},
		)
		if err != nil {
			return &cloudshift.StoreWriteError{Op: "clear", Cause: err}
		}
	}
	return nil
}

// Records returns every record, keyed by cache key. Used by the exporter.
func (s *MongoStore) Records(ctx context.Context) (map[string]*Record, error) {
	cursor, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make(map[string]*Record)
	for cursor.Next(ctx) {
		var rec Record
		if err := cursor.Decode(&rec); err != nil {
			s.logger.Warn("skipping undecodable record", "error", err)
			continue
		}
		out[rec.Key] = &rec
	}
	return out, cursor.Err()
}

// Close releases nothing; the Mongo client is owned by the caller.
func (s *MongoStore) Close() error {
	return nil
}

// Verify MongoStore implements Store
var _ Store = (*MongoStore)(nil)

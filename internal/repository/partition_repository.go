package repository

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yourorg/orgvault/internal/observability/metrics"
)

// MongoPartitionStore implements domain.PartitionStore. Partitions are plain
// collections inside the master database, named by the resolver, holding one
// metadata marker plus whatever the tenant writes through other services.
type MongoPartitionStore struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewMongoPartitionStore creates a new partition store over the master database.
func NewMongoPartitionStore(db *mongo.Database, logger *slog.Logger) *MongoPartitionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoPartitionStore{db: db, logger: logger}
}

// Create provisions the partition by writing its metadata marker. An empty
// collection is indistinguishable from one that was never provisioned, so
// the marker is mandatory, not decoration.
func (s *MongoPartitionStore) Create(ctx context.Context, partitionID, tenantName string) error {
	_, err := s.db.Collection(partitionID).InsertOne(ctx, bson.M{
		"_metadata": bson.M{
			"organization_name": tenantName,
			"collection_name":   partitionID,
			"created_at":        time.Now().UTC(),
		},
	})
	if err != nil {
		return storageErr("create partition", err)
	}
	s.logger.Info("partition created", slog.String("partition_id", partitionID))
	return nil
}

// Migrate copies every document from oldID into newID, dropping the
// store-assigned _id so the destination assigns fresh ones, then drops the
// source. The store has no rename and no cross-collection transaction: if
// this is interrupted, the old partition, the new one, or both may exist,
// and cleanup is out-of-band. Callers must not update the directory until
// Migrate returns nil. Returns the number of documents copied.
func (s *MongoPartitionStore) Migrate(ctx context.Context, oldID, newID string) (int64, error) {
	cur, err := s.db.Collection(oldID).Find(ctx, bson.M{})
	if err != nil {
		return 0, storageErr("read partition for migration", err)
	}
	defer cur.Close(ctx)

	dst := s.db.Collection(newID)
	var copied int64
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return copied, storageErr("decode partition document", err)
		}
		delete(doc, "_id")
		if _, err := dst.InsertOne(ctx, doc); err != nil {
			return copied, storageErr("copy partition document", err)
		}
		copied++
	}
	if err := cur.Err(); err != nil {
		return copied, storageErr("iterate partition", err)
	}

	if err := s.db.Collection(oldID).Drop(ctx); err != nil {
		return copied, storageErr("drop old partition", err)
	}

	metrics.AddMigratedDocuments(copied)
	s.logger.Info("partition migrated",
		slog.String("from", oldID),
		slog.String("to", newID),
		slog.Int64("documents", copied),
	)
	return copied, nil
}

// Drop removes the whole partition. Dropping a collection that does not
// exist is a no-op in the store, so Drop is idempotent.
func (s *MongoPartitionStore) Drop(ctx context.Context, partitionID string) error {
	if err := s.db.Collection(partitionID).Drop(ctx); err != nil {
		return storageErr("drop partition", err)
	}
	s.logger.Info("partition dropped", slog.String("partition_id", partitionID))
	return nil
}

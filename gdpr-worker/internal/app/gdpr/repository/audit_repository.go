package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"recipehub/gdpr-worker/internal/app/gdpr/entity"
	"recipehub/pkg/logger"
)

type auditRepository struct {
	collection *mongo.Collection
}

// NewAuditRepository ensures the user_id and occurred_at indexes. A failed
// index build is logged; inserts still work without it.
func NewAuditRepository(db *mongo.Database, collectionName string) AuditRepository {
	collection := db.Collection(collectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "occurred_at", Value: -1}},
			Options: options.Index().SetName("user_occurred_idx"),
		},
		{
			Keys:    bson.D{{Key: "action", Value: 1}},
			Options: options.Index().SetName("action_idx"),
		},
	})
	if err != nil {
		logger.Warn().Err(err).Str("collection", collectionName).Msg("Failed to create audit indexes")
	}

	return &auditRepository{collection: collection}
}

// Insert is idempotent on entry.ID so a redelivered event does not produce a
// second document.
func (r *auditRepository) Insert(ctx context.Context, entry *entity.AuditEntry) error {
	_, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func (r *auditRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}

package repository

import (
	"context"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// auditRetention is the TTL of audit documents.
const auditRetention = 90 * 24 * 60 * 60

type auditLogRepository struct {
	db *mongo.Database
}

func NewAuditLogRepository(db *mongo.Database) domain.AuditRepository {
	return &auditLogRepository{
		db: db,
	}
}

func (r *auditLogRepository) Log(ctx context.Context, log *domain.BreakoutAuditLog) error {
	collection := r.db.Collection(db.BreakoutAuditLogsCollection)

	_, err := collection.InsertOne(ctx, log)
	return err
}

func (r *auditLogRepository) GetByMeetingID(ctx context.Context, meetingID string, limit int) ([]domain.BreakoutAuditLog, error) {
	collection := r.db.Collection(db.BreakoutAuditLogsCollection)

	filter := bson.M{"meeting_id": meetingID}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []domain.BreakoutAuditLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *auditLogRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.BreakoutAuditLogsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "meeting_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(auditRetention),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

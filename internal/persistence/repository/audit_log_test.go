package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestAuditLogRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("log inserts", func(mt *mtest.T) {
		repo := NewAuditLogRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		ev := domain.NewEvent(domain.EventMeetingStarted, "m1", time.Now(), nil)
		require.NoError(t, repo.Log(context.Background(), domain.NewAuditLog(ev)))
	})

	mt.Run("get by meeting", func(mt *mtest.T) {
		repo := NewAuditLogRepository(mt.DB)
		ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		ns := mt.DB.Name() + ".breakout_audit_logs"
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "a1"},
			{Key: "meeting_id", Value: "m1"},
			{Key: "event_type", Value: string(domain.EventBreakoutsEnded)},
			{Key: "timestamp", Value: ts},
			{Key: "metadata", Value: bson.D{{Key: "reason", Value: "expired"}}},
		})
		last := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, last)

		logs, err := repo.GetByMeetingID(context.Background(), "m1", 10)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "a1", logs[0].ID)
		assert.Equal(t, domain.EventBreakoutsEnded, logs[0].EventType)
		assert.Equal(t, "expired", logs[0].Metadata["reason"])
		assert.True(t, ts.Equal(logs[0].Timestamp))
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		repo := NewAuditLogRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(t, repo.EnsureIndexes(context.Background()))
	})
}

package providerRepo

import (
	"context"
	"testing"
	"time"

	"hms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestGetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes availability", func(mt *mtest.T) {
		repo := NewMongoProviderRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".providers", mtest.FirstBatch, bson.D{
			{Key: "id", Value: "doc-1"},
			{Key: "name", Value: "Dr. Okafor"},
			{Key: "slotDurationMinutes", Value: 30},
			{Key: "availability", Value: bson.D{
				{Key: "monday", Value: bson.D{
					{Key: "isAvailable", Value: true},
					{Key: "startTime", Value: "09:00"},
					{Key: "endTime", Value: "17:00"},
				}},
			}},
		}))

		p, err := repo.GetByID(context.Background(), "doc-1")
		require.NoError(mt, err)
		assert.Equal(mt, 30, p.SlotDurationMinutes)
		assert.Equal(mt, "17:00", p.Availability["monday"].EndTime)
	})

	mt.Run("missing maps to ErrNotFound", func(mt *mtest.T) {
		repo := NewMongoProviderRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".providers", mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), "nope")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestUpdateAvailability(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no such provider", func(mt *mtest.T) {
		repo := NewMongoProviderRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.UpdateAvailability(context.Background(), "nope", models.AvailabilityUpdate{}, time.Now())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

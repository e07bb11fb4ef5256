package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the appointment indexes. The partial unique index on
// slotKey allows at most one slot-occupying appointment per provider and start.
func (r *MongoAppointmentRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slotIdx := mongo.IndexModel{
		Keys: bson.D{{Key: "slotKey", Value: 1}},
		Options: options.Index().
			SetName("uniq_active_slot").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"slotKey": bson.M{"$exists": true}}),
	}
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{
			{Key: "providerId", Value: 1},
			{Key: "status", Value: 1},
			{Key: "scheduledStart", Value: 1},
		}},
		{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "scheduledStart", Value: -1}}},
		slotIdx,
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}

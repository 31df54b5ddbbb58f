package mongodb

import (
	"context"
	"time"

	"github.com/padhai-app/padhai-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure DoubtQuotaRepository implements the interface
var _ repositories.DoubtQuotaRepository = (*DoubtQuotaRepository)(nil)

// DoubtQuotaRepository tracks per-(student, day) doubt counters so quota
// consumption is a single conditional update instead of a check-then-act
// read. Counter documents are unique on (studentId, day).
type DoubtQuotaRepository struct {
	collection *mongo.Collection
}

// NewDoubtQuotaRepository creates a new DoubtQuotaRepository
func NewDoubtQuotaRepository(db *mongo.Database) *DoubtQuotaRepository {
	return &DoubtQuotaRepository{
		collection: db.Collection("doubt_quotas"),
	}
}

// EnsureIndexes creates the unique (studentId, day) index TryConsume relies
// on. Called once at startup.
func (r *DoubtQuotaRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "day", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// TryConsume reserves one quota unit for the day. The filter only matches a
// counter still below the limit, so the $inc can never push the count past
// it. When the counter is already at the limit the filter matches nothing
// and the upsert collides with the unique index, which reads as a denial.
func (r *DoubtQuotaRepository) TryConsume(ctx context.Context, studentID primitive.ObjectID, day time.Time, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	filter := bson.M{
		"studentId": studentID,
		"day":       day,
		"count":     bson.M{"$lt": limit},
	}
	update := bson.M{
		"$inc": bson.M{"count": 1},
		"$setOnInsert": bson.M{
			"studentId": studentID,
			"day":       day,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Release hands back one reserved unit after a failed doubt insert.
func (r *DoubtQuotaRepository) Release(ctx context.Context, studentID primitive.ObjectID, day time.Time) error {
	filter := bson.M{
		"studentId": studentID,
		"day":       day,
		"count":     bson.M{"$gt": 0},
	}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"count": -1}})
	return err
}

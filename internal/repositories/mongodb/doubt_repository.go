package mongodb

import (
	"context"
	"time"

	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure DoubtRepository implements the interface
var _ repositories.DoubtRepository = (*DoubtRepository)(nil)

// DoubtRepository handles MongoDB operations for Doubt
type DoubtRepository struct {
	collection *mongo.Collection
}

// NewDoubtRepository creates a new DoubtRepository
func NewDoubtRepository(db *mongo.Database) *DoubtRepository {
	return &DoubtRepository{
		collection: db.Collection("doubts"),
	}
}

// Create inserts a new doubt
func (r *DoubtRepository) Create(ctx context.Context, doubt *models.Doubt) error {
	doubt.ID = primitive.NewObjectID()
	doubt.CreatedAt = time.Now()
	doubt.UpdatedAt = time.Now()
	if doubt.Status == "" {
		doubt.Status = models.DoubtStatusPending
	}
	_, err := r.collection.InsertOne(ctx, doubt)
	return err
}

// FindByID finds a doubt by ID
func (r *DoubtRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doubt, error) {
	var doubt models.Doubt
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doubt)
	if err != nil {
		return nil, translateErr(err)
	}
	return &doubt, nil
}

// FindByStudent returns a student's doubts, newest first, with optional
// status and subject filters
func (r *DoubtRepository) FindByStudent(ctx context.Context, studentID primitive.ObjectID, status, subject string, page, limit int) ([]*models.Doubt, error) {
	filter := bson.M{"student": studentID}
	if status != "" {
		filter["status"] = status
	}
	if subject != "" {
		filter["subject"] = subject
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var doubts []*models.Doubt
	if err = cursor.All(ctx, &doubts); err != nil {
		return nil, err
	}
	if doubts == nil {
		doubts = []*models.Doubt{}
	}
	return doubts, nil
}

// Update updates an existing doubt
func (r *DoubtRepository) Update(ctx context.Context, doubt *models.Doubt) error {
	doubt.UpdatedAt = time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": doubt.ID}, bson.M{"$set": doubt})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// CountByStudentSince counts doubts a student created at or after the given
// instant. The rate limiter's advisory path uses this with start-of-day.
func (r *DoubtRepository) CountByStudentSince(ctx context.Context, studentID primitive.ObjectID, since time.Time) (int64, error) {
	filter := bson.M{
		"student":   studentID,
		"createdAt": bson.M{"$gte": since},
	}
	return r.collection.CountDocuments(ctx, filter)
}

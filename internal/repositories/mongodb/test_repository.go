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

// Compile-time check to ensure TestRepository implements the interface
var _ repositories.TestRepository = (*TestRepository)(nil)

// TestRepository handles MongoDB operations for tests and attempts
type TestRepository struct {
	tests    *mongo.Collection
	attempts *mongo.Collection
}

// NewTestRepository creates a new TestRepository
func NewTestRepository(db *mongo.Database) *TestRepository {
	return &TestRepository{
		tests:    db.Collection("tests"),
		attempts: db.Collection("test_attempts"),
	}
}

// Create inserts a new test
func (r *TestRepository) Create(ctx context.Context, test *models.Test) error {
	test.ID = primitive.NewObjectID()
	test.CreatedAt = time.Now()
	test.UpdatedAt = time.Now()
	_, err := r.tests.InsertOne(ctx, test)
	return err
}

// FindByID finds a test by ID
func (r *TestRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Test, error) {
	var test models.Test
	err := r.tests.FindOne(ctx, bson.M{"_id": id}).Decode(&test)
	if err != nil {
		return nil, translateErr(err)
	}
	return &test, nil
}

// FindPublished lists published tests for a class and board
func (r *TestRepository) FindPublished(ctx context.Context, class int, board string, page, limit int) ([]*models.Test, error) {
	filter := bson.M{"class": class, "board": board, "isPublished": true}
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

	cursor, err := r.tests.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tests []*models.Test
	if err = cursor.All(ctx, &tests); err != nil {
		return nil, err
	}
	if tests == nil {
		tests = []*models.Test{}
	}
	return tests, nil
}

// CreateAttempt inserts a new test attempt
func (r *TestRepository) CreateAttempt(ctx context.Context, attempt *models.TestAttempt) error {
	attempt.ID = primitive.NewObjectID()
	attempt.CreatedAt = time.Now()
	_, err := r.attempts.InsertOne(ctx, attempt)
	return err
}

// FindAttemptsByStudent returns a student's attempts, newest first
func (r *TestRepository) FindAttemptsByStudent(ctx context.Context, studentID primitive.ObjectID, limit int) ([]*models.TestAttempt, error) {
	if limit < 1 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.attempts.Find(ctx, bson.M{"student": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var attempts []*models.TestAttempt
	if err = cursor.All(ctx, &attempts); err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []*models.TestAttempt{}
	}
	return attempts, nil
}

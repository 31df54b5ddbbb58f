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

// Compile-time check to ensure ContentRepository implements the interface
var _ repositories.ContentRepository = (*ContentRepository)(nil)

// ContentRepository handles MongoDB operations for Content
type ContentRepository struct {
	collection *mongo.Collection
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db *mongo.Database) *ContentRepository {
	return &ContentRepository{
		collection: db.Collection("contents"),
	}
}

// Create inserts a new content entry
func (r *ContentRepository) Create(ctx context.Context, content *models.Content) error {
	content.ID = primitive.NewObjectID()
	content.CreatedAt = time.Now()
	content.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, content)
	return err
}

// FindByID finds a content entry by ID
func (r *ContentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Content, error) {
	var content models.Content
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&content)
	if err != nil {
		return nil, translateErr(err)
	}
	return &content, nil
}

// FindByFilter lists catalog entries for a class and board, optionally
// narrowed to a subject
func (r *ContentRepository) FindByFilter(ctx context.Context, class int, board, subject string, page, limit int) ([]*models.Content, error) {
	filter := bson.M{"class": class, "board": board}
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
		SetSort(bson.D{{Key: "chapter", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var contents []*models.Content
	if err = cursor.All(ctx, &contents); err != nil {
		return nil, err
	}
	if contents == nil {
		contents = []*models.Content{}
	}
	return contents, nil
}

// IncrementViews atomically bumps the view counter
func (r *ContentRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

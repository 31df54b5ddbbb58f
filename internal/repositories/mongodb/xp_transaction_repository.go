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

// Compile-time check to ensure XPTransactionRepository implements the interface
var _ repositories.XPTransactionRepository = (*XPTransactionRepository)(nil)

// XPTransactionRepository handles MongoDB operations for the XP audit trail
type XPTransactionRepository struct {
	collection *mongo.Collection
}

// NewXPTransactionRepository creates a new XPTransactionRepository
func NewXPTransactionRepository(db *mongo.Database) *XPTransactionRepository {
	return &XPTransactionRepository{
		collection: db.Collection("xp_transactions"),
	}
}

// Create inserts a new XP transaction
func (r *XPTransactionRepository) Create(ctx context.Context, tx *models.XPTransaction) error {
	tx.ID = primitive.NewObjectID()
	tx.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, tx)
	return err
}

// FindByUserID returns a user's XP awards, newest first
func (r *XPTransactionRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.XPTransaction, error) {
	if limit < 1 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []*models.XPTransaction
	if err = cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*models.XPTransaction{}
	}
	return txs, nil
}

package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure UserRepository implements the interface
var _ repositories.UserRepository = (*UserRepository)(nil)

// UserRepository handles MongoDB operations for User
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// FindByPhone finds a user by phone number
func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// Update updates an existing user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	filter := bson.M{"_id": user.ID}
	update := bson.M{"$set": user}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// IncrementXP atomically increments progress.totalXP and returns the user as
// stored after the increment, so concurrent awards never lose points.
func (r *UserRepository) IncrementXP(ctx context.Context, id primitive.ObjectID, points int) (*models.User, error) {
	if points <= 0 {
		return nil, errors.New("points to add must be positive")
	}
	filter := bson.M{"_id": id}
	update := bson.M{
		"$inc": bson.M{"progress.totalXP": points},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// UpdateProgressDerived persists the recomputed level and, when a milestone
// was crossed, appends the badge in the same update.
func (r *UserRepository) UpdateProgressDerived(ctx context.Context, id primitive.ObjectID, level int, badge *models.Badge) error {
	update := bson.M{
		"$set": bson.M{
			"progress.currentLevel": level,
			"updatedAt":             time.Now(),
		},
	}
	if badge != nil {
		update["$push"] = bson.M{"progress.badges": badge}
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// UpdateProgress replaces the progress subdocument
func (r *UserRepository) UpdateProgress(ctx context.Context, id primitive.ObjectID, progress models.Progress) error {
	update := bson.M{"$set": bson.M{"progress": progress, "updatedAt": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// UpdateStats replaces the stats subdocument
func (r *UserRepository) UpdateStats(ctx context.Context, id primitive.ObjectID, stats models.Stats) error {
	update := bson.M{"$set": bson.M{"stats": stats, "updatedAt": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Leaderboard returns the top students by XP within a class and board
func (r *UserRepository) Leaderboard(ctx context.Context, class int, board string, limit int) ([]*models.User, error) {
	filter := bson.M{
		"class": class,
		"board": board,
		"role":  models.RoleStudent,
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "progress.totalXP", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// CountWithMoreXP counts students in the same class and board with strictly
// more XP; rank is this count plus one.
func (r *UserRepository) CountWithMoreXP(ctx context.Context, class int, board string, totalXP int) (int64, error) {
	filter := bson.M{
		"class":            class,
		"board":            board,
		"role":             models.RoleStudent,
		"progress.totalXP": bson.M{"$gt": totalXP},
	}
	return r.collection.CountDocuments(ctx, filter)
}

// translateErr maps driver errors to repository sentinels
func translateErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repositories.ErrNotFound
	}
	return err
}

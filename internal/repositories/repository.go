package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/padhai-app/padhai-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when a record does not exist. Implementations
// translate their driver's not-found error into this sentinel so callers
// never depend on storage details.
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// IncrementXP atomically adds points to progress.totalXP and returns the
	// user as stored after the increment.
	IncrementXP(ctx context.Context, id primitive.ObjectID, points int) (*models.User, error)
	// UpdateProgressDerived persists the recomputed level and optionally
	// appends a badge in one update.
	UpdateProgressDerived(ctx context.Context, id primitive.ObjectID, level int, badge *models.Badge) error
	UpdateProgress(ctx context.Context, id primitive.ObjectID, progress models.Progress) error
	UpdateStats(ctx context.Context, id primitive.ObjectID, stats models.Stats) error
	Leaderboard(ctx context.Context, class int, board string, limit int) ([]*models.User, error)
	CountWithMoreXP(ctx context.Context, class int, board string, totalXP int) (int64, error)
}

// DoubtRepository defines the interface for doubt data operations
type DoubtRepository interface {
	Create(ctx context.Context, doubt *models.Doubt) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doubt, error)
	FindByStudent(ctx context.Context, studentID primitive.ObjectID, status, subject string, page, limit int) ([]*models.Doubt, error)
	Update(ctx context.Context, doubt *models.Doubt) error
	CountByStudentSince(ctx context.Context, studentID primitive.ObjectID, since time.Time) (int64, error)
}

// DoubtQuotaRepository reserves units of the per-day doubt quota. TryConsume
// must be atomic: under concurrent submissions the count for a (student,
// day) pair never exceeds the limit.
type DoubtQuotaRepository interface {
	TryConsume(ctx context.Context, studentID primitive.ObjectID, day time.Time, limit int) (bool, error)
	// Release returns one reserved unit, used when doubt persistence fails
	// after the quota was consumed.
	Release(ctx context.Context, studentID primitive.ObjectID, day time.Time) error
}

// ContentRepository defines the interface for content catalog operations
type ContentRepository interface {
	Create(ctx context.Context, content *models.Content) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Content, error)
	FindByFilter(ctx context.Context, class int, board, subject string, page, limit int) ([]*models.Content, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
}

// TestRepository defines the interface for test and attempt operations
type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Test, error)
	FindPublished(ctx context.Context, class int, board string, page, limit int) ([]*models.Test, error)
	CreateAttempt(ctx context.Context, attempt *models.TestAttempt) error
	FindAttemptsByStudent(ctx context.Context, studentID primitive.ObjectID, limit int) ([]*models.TestAttempt, error)
}

// XPTransactionRepository defines the interface for the XP audit trail
type XPTransactionRepository interface {
	Create(ctx context.Context, tx *models.XPTransaction) error
	FindByUserID(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.XPTransaction, error)
}

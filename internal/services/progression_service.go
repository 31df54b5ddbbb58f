package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/repositories"
)

// XP awards for qualifying actions.
const (
	XPDoubtAsked       = 10
	XPDoubtAnswered    = 20
	XPDoubtResolved    = 5
	XPChapterCompleted = 15
	XPImprovedScore    = 5
	XPContentBookmark  = 2
	XPContentViewed    = 3
	XPTestAttempted    = 25
	XPAISimplifier     = 5
	XPAIExplainer      = 10
	XPAIQuestionGen    = 15
	XPAIStudyPlanner   = 20
	XPAIChat           = 3
)

// ProgressionService owns XP awards and activity tracking. XP persistence
// is split in two so concurrent awards cannot lose points: the total is
// bumped with an atomic increment, then level and milestone badge are
// recomputed from the stored total and written back.
type ProgressionService struct {
	userRepo repositories.UserRepository
	xpRepo   repositories.XPTransactionRepository
}

// NewProgressionService creates a new ProgressionService
func NewProgressionService(userRepo repositories.UserRepository, xpRepo repositories.XPTransactionRepository) *ProgressionService {
	return &ProgressionService{
		userRepo: userRepo,
		xpRepo:   xpRepo,
	}
}

// AwardXP grants points to the user for the given reason. The reason is a
// free-text audit label, never parsed. The caller's user is updated in place
// with the resulting progression state.
func (s *ProgressionService) AwardXP(ctx context.Context, user *models.User, points int, reason string) error {
	if points <= 0 {
		return errors.New("points to award must be positive")
	}
	now := time.Now()

	updated, err := s.userRepo.IncrementXP(ctx, user.ID, points)
	if err != nil {
		return err
	}

	// Replay the award through the pure engine against the stored total, so
	// the derived level and badge come from the post-increment state even if
	// another award landed in between.
	replay := *updated
	replay.Progress.TotalXP -= points
	replay.Progress.CurrentLevel = replay.Progress.TotalXP/models.XPPerLevel + 1
	badge := replay.AddXP(points, now)

	if err := s.userRepo.UpdateProgressDerived(ctx, user.ID, replay.Progress.CurrentLevel, badge); err != nil {
		return err
	}
	user.Progress = replay.Progress

	// Audit trail is telemetry; a failed insert never undoes the award.
	tx := &models.XPTransaction{
		UserID: user.ID,
		Points: points,
		Reason: reason,
	}
	if err := s.xpRepo.Create(ctx, tx); err != nil {
		log.Printf("[WARN] progression: failed to record XP transaction for user %s: %v", user.ID.Hex(), err)
	}
	return nil
}

// RecordActivity refreshes the last-active timestamp and the study streak.
// Implements the gate's ActivityRecorder.
func (s *ProgressionService) RecordActivity(ctx context.Context, user *models.User, now time.Time) error {
	user.TouchActivity(now)
	return s.userRepo.UpdateStats(ctx, user.ID, user.Stats)
}

// XPHistory returns the most recent XP awards for a user.
func (s *ProgressionService) XPHistory(ctx context.Context, user *models.User, limit int) ([]*models.XPTransaction, error) {
	return s.xpRepo.FindByUserID(ctx, user.ID, limit)
}

package services

import (
	"context"
	"errors"
	"log"

	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrTestNotPublished is returned when a student submits against an
// unpublished test.
var ErrTestNotPublished = errors.New("test is not published")

// AttemptResult is what a graded submission returns.
type AttemptResult struct {
	Attempt      *models.TestAttempt `json:"attempt"`
	Score        float64             `json:"score"`
	AverageScore float64             `json:"averageScore"`
}

// TestService handles published assessments and attempt submission.
type TestService struct {
	testRepo    repositories.TestRepository
	userRepo    repositories.UserRepository
	progression *ProgressionService
}

// NewTestService creates a new TestService
func NewTestService(testRepo repositories.TestRepository, userRepo repositories.UserRepository, progression *ProgressionService) *TestService {
	return &TestService{
		testRepo:    testRepo,
		userRepo:    userRepo,
		progression: progression,
	}
}

// ListTests lists published tests for the student's class and board.
func (s *TestService) ListTests(ctx context.Context, user *models.User, page, limit int) ([]*models.Test, error) {
	return s.testRepo.FindPublished(ctx, user.Class, user.Board, page, limit)
}

// SubmitAttempt grades a submission, records the attempt, folds the score
// into the student's running average and awards XP.
func (s *TestService) SubmitAttempt(ctx context.Context, user *models.User, testID primitive.ObjectID, answers []int) (*AttemptResult, error) {
	test, err := s.testRepo.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if !test.IsPublished {
		return nil, ErrTestNotPublished
	}

	score := test.Grade(answers)
	attempt := &models.TestAttempt{
		Test:    test.ID,
		Student: user.ID,
		Answers: answers,
		Score:   score,
	}
	if err := s.testRepo.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	user.RecordTestScore(score)
	if err := s.userRepo.UpdateStats(ctx, user.ID, user.Stats); err != nil {
		return nil, err
	}

	if err := s.progression.AwardXP(ctx, user, XPTestAttempted, "Test Attempted"); err != nil {
		log.Printf("[WARN] tests: failed to award XP for user %s: %v", user.ID.Hex(), err)
	}

	return &AttemptResult{
		Attempt:      attempt,
		Score:        score,
		AverageScore: user.Stats.AverageScore,
	}, nil
}

// RecentAttempts returns the student's latest attempts.
func (s *TestService) RecentAttempts(ctx context.Context, user *models.User, limit int) ([]*models.TestAttempt, error) {
	return s.testRepo.FindAttemptsByStudent(ctx, user.ID, limit)
}

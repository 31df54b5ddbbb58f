package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Doubt service errors surfaced to handlers.
var (
	ErrNotDoubtOwner = errors.New("doubt belongs to another student")
	ErrCannotAnswer  = errors.New("only teachers and admins can answer doubts")
	ErrAlreadyClosed = errors.New("doubt is already resolved")
)

// DoubtAnswerer abstracts the AI collaborator so doubt creation can be
// tested without a provider.
type DoubtAnswerer interface {
	SolveDoubt(ctx context.Context, doubt *models.Doubt) (string, error)
}

// CreateDoubtResult is what a successful submission returns.
type CreateDoubtResult struct {
	Doubt       *models.Doubt `json:"doubt"`
	AIAnswer    string        `json:"aiAnswer,omitempty"`
	HasAIAnswer bool          `json:"hasAIAnswer"`
}

// DoubtService handles doubt submission and follow-up. Quota consumption
// happens in the access gate before CreateDoubt runs; the service releases
// the reserved unit if persistence fails.
type DoubtService struct {
	doubtRepo   repositories.DoubtRepository
	quotaRepo   repositories.DoubtQuotaRepository
	userRepo    repositories.UserRepository
	progression *ProgressionService
	ai          DoubtAnswerer
	loc         *time.Location
}

// NewDoubtService creates a new DoubtService
func NewDoubtService(doubtRepo repositories.DoubtRepository, quotaRepo repositories.DoubtQuotaRepository, userRepo repositories.UserRepository, progression *ProgressionService, ai DoubtAnswerer, loc *time.Location) *DoubtService {
	if loc == nil {
		loc = time.Local
	}
	return &DoubtService{
		doubtRepo:   doubtRepo,
		quotaRepo:   quotaRepo,
		userRepo:    userRepo,
		progression: progression,
		ai:          ai,
		loc:         loc,
	}
}

// ReleaseQuota hands today's reserved quota unit back to the student. The
// rate limiter consumes a unit before the request body is even read, so
// every outcome that does not end with a stored doubt must come through
// here or the unit stays burned.
func (s *DoubtService) ReleaseQuota(ctx context.Context, user *models.User) {
	day := models.StartOfDay(time.Now().In(s.loc))
	if err := s.quotaRepo.Release(ctx, user.ID, day); err != nil {
		log.Printf("[WARN] doubts: failed to release quota for user %s: %v", user.ID.Hex(), err)
	}
}

// CreateDoubt persists a new doubt for the student, bumps the asked counter,
// awards XP, and attempts an AI answer. The XP award does not depend on the
// AI call succeeding, and an AI failure never fails the submission. A
// rejected or unpersisted submission releases the reserved quota unit.
func (s *DoubtService) CreateDoubt(ctx context.Context, user *models.User, req *models.CreateDoubtRequest) (*CreateDoubtResult, error) {
	if err := req.Validate(); err != nil {
		s.ReleaseQuota(ctx, user)
		return nil, err
	}

	doubt := &models.Doubt{
		Student:     user.ID,
		Title:       req.Title,
		Description: req.Description,
		Subject:     req.Subject,
		Class:       user.Class,
		Chapter:     req.Chapter,
		Topic:       req.Topic,
		Type:        req.Type,
		Status:      models.DoubtStatusPending,
	}

	if err := s.doubtRepo.Create(ctx, doubt); err != nil {
		s.ReleaseQuota(ctx, user)
		return nil, err
	}

	user.Stats.TotalDoubtsAsked++
	if err := s.userRepo.UpdateStats(ctx, user.ID, user.Stats); err != nil {
		log.Printf("[WARN] doubts: failed to update stats for user %s: %v", user.ID.Hex(), err)
	}

	if err := s.progression.AwardXP(ctx, user, XPDoubtAsked, "Doubt Asked"); err != nil {
		log.Printf("[WARN] doubts: failed to award XP for user %s: %v", user.ID.Hex(), err)
	}

	result := &CreateDoubtResult{Doubt: doubt}

	answer, err := s.ai.SolveDoubt(ctx, doubt)
	if err != nil {
		log.Printf("[WARN] doubts: AI answer failed for doubt %s: %v", doubt.ID.Hex(), err)
		return result, nil
	}

	doubt.AddAnswer(models.DoubtAnswer{
		AnswerType: "ai",
		Content:    answer,
		CreatedAt:  time.Now(),
	})
	if err := s.doubtRepo.Update(ctx, doubt); err != nil {
		log.Printf("[WARN] doubts: failed to attach AI answer to doubt %s: %v", doubt.ID.Hex(), err)
		return result, nil
	}

	result.AIAnswer = answer
	result.HasAIAnswer = true
	return result, nil
}

// ListDoubts returns the student's own doubts.
func (s *DoubtService) ListDoubts(ctx context.Context, user *models.User, status, subject string, page, limit int) ([]*models.Doubt, error) {
	return s.doubtRepo.FindByStudent(ctx, user.ID, status, subject, page, limit)
}

// GetDoubt returns a doubt the student owns.
func (s *DoubtService) GetDoubt(ctx context.Context, user *models.User, id primitive.ObjectID) (*models.Doubt, error) {
	doubt, err := s.doubtRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doubt.Student != user.ID && user.Role == models.RoleStudent {
		return nil, ErrNotDoubtOwner
	}
	return doubt, nil
}

// AddAnswer attaches a teacher or admin answer and rewards the answerer.
func (s *DoubtService) AddAnswer(ctx context.Context, answerer *models.User, doubtID primitive.ObjectID, content string) (*models.Doubt, error) {
	if answerer.Role != models.RoleTeacher && answerer.Role != models.RoleAdmin {
		return nil, ErrCannotAnswer
	}

	doubt, err := s.doubtRepo.FindByID(ctx, doubtID)
	if err != nil {
		return nil, err
	}
	if doubt.Status == models.DoubtStatusResolved {
		return nil, ErrAlreadyClosed
	}

	doubt.AddAnswer(models.DoubtAnswer{
		AnsweredBy: answerer.ID,
		AnswerType: answerer.Role,
		Content:    content,
		CreatedAt:  time.Now(),
	})
	if err := s.doubtRepo.Update(ctx, doubt); err != nil {
		return nil, err
	}

	if err := s.progression.AwardXP(ctx, answerer, XPDoubtAnswered, "Doubt Answered"); err != nil {
		log.Printf("[WARN] doubts: failed to award answer XP for user %s: %v", answerer.ID.Hex(), err)
	}
	return doubt, nil
}

// Resolve closes a doubt the student owns and rewards them.
func (s *DoubtService) Resolve(ctx context.Context, user *models.User, doubtID primitive.ObjectID) (*models.Doubt, error) {
	doubt, err := s.doubtRepo.FindByID(ctx, doubtID)
	if err != nil {
		return nil, err
	}
	if doubt.Student != user.ID {
		return nil, ErrNotDoubtOwner
	}
	if doubt.Status == models.DoubtStatusResolved {
		return nil, ErrAlreadyClosed
	}

	doubt.MarkResolved(time.Now())
	if err := s.doubtRepo.Update(ctx, doubt); err != nil {
		return nil, err
	}

	if err := s.progression.AwardXP(ctx, user, XPDoubtResolved, "Doubt Resolved"); err != nil {
		log.Printf("[WARN] doubts: failed to award resolve XP for user %s: %v", user.ID.Hex(), err)
	}
	return doubt, nil
}

// DoubtsAskedToday reports the advisory daily count for display purposes.
func (s *DoubtService) DoubtsAskedToday(ctx context.Context, user *models.User) (int64, error) {
	day := models.StartOfDay(time.Now().In(s.loc))
	return s.doubtRepo.CountByStudentSince(ctx, user.ID, day)
}

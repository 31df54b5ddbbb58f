package services

import (
	"context"
	"time"

	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const leaderboardSize = 10

// Dashboard is the aggregate view behind the home screen.
type Dashboard struct {
	User struct {
		Name               string              `json:"name"`
		Class              int                 `json:"class"`
		Board              string              `json:"board"`
		Subscription       models.Subscription `json:"subscription"`
		SubscriptionStatus string              `json:"subscriptionStatus"`
		RemainingDays      int                 `json:"remainingDays"`
	} `json:"user"`
	Progress struct {
		TotalXP           int            `json:"totalXP"`
		CurrentLevel      int            `json:"currentLevel"`
		CompletedChapters int            `json:"completedChapters"`
		BySubject         map[string]int `json:"bySubject"`
		TotalBookmarks    int            `json:"totalBookmarks"`
		RecentBadges      []models.Badge `json:"recentBadges"`
	} `json:"progress"`
	Stats  models.Stats `json:"stats"`
	Recent struct {
		Doubts   []*models.Doubt       `json:"doubts"`
		Attempts []*models.TestAttempt `json:"attempts"`
	} `json:"recent"`
}

// LeaderboardEntry is one row of the class leaderboard.
type LeaderboardEntry struct {
	Name         string `json:"name"`
	TotalXP      int    `json:"totalXP"`
	CurrentLevel int    `json:"currentLevel"`
}

// Leaderboard is the class ranking around the caller.
type Leaderboard struct {
	TopUsers  []LeaderboardEntry `json:"topUsers"`
	UserRank  int64              `json:"userRank"`
	UserXP    int                `json:"userXP"`
	UserLevel int                `json:"userLevel"`
}

// UserService handles profile, dashboard and leaderboard reads.
type UserService struct {
	userRepo  repositories.UserRepository
	doubtRepo repositories.DoubtRepository
	testRepo  repositories.TestRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository, doubtRepo repositories.DoubtRepository, testRepo repositories.TestRepository) *UserService {
	return &UserService{
		userRepo:  userRepo,
		doubtRepo: doubtRepo,
		testRepo:  testRepo,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// UpdateProfile applies editable profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, name, state string, class int) error {
	if name != "" {
		user.Name = name
	}
	if state != "" {
		user.State = state
	}
	if class >= 1 && class <= 12 {
		user.Class = class
	}
	return s.userRepo.Update(ctx, user)
}

// GetDashboard assembles the home screen aggregate for a user.
func (s *UserService) GetDashboard(ctx context.Context, user *models.User) (*Dashboard, error) {
	now := time.Now()

	recentDoubts, err := s.doubtRepo.FindByStudent(ctx, user.ID, "", "", 1, 5)
	if err != nil {
		return nil, err
	}
	recentAttempts, err := s.testRepo.FindAttemptsByStudent(ctx, user.ID, 5)
	if err != nil {
		return nil, err
	}

	var d Dashboard
	d.User.Name = user.Name
	d.User.Class = user.Class
	d.User.Board = user.Board
	d.User.Subscription = user.Subscription
	d.User.SubscriptionStatus = user.SubscriptionStatus(now)
	d.User.RemainingDays = user.RemainingDays(now)

	d.Progress.TotalXP = user.Progress.TotalXP
	d.Progress.CurrentLevel = user.Progress.CurrentLevel
	d.Progress.CompletedChapters = len(user.Progress.CompletedChapters)
	d.Progress.BySubject = make(map[string]int)
	for _, chapter := range user.Progress.CompletedChapters {
		d.Progress.BySubject[chapter.Subject]++
	}
	d.Progress.TotalBookmarks = len(user.Progress.Bookmarks)
	badges := user.Progress.Badges
	if len(badges) > 3 {
		badges = badges[len(badges)-3:]
	}
	d.Progress.RecentBadges = badges

	d.Stats = user.Stats
	d.Recent.Doubts = recentDoubts
	d.Recent.Attempts = recentAttempts
	return &d, nil
}

// GetLeaderboard returns the top students in the caller's class and board
// plus the caller's own rank.
func (s *UserService) GetLeaderboard(ctx context.Context, user *models.User) (*Leaderboard, error) {
	top, err := s.userRepo.Leaderboard(ctx, user.Class, user.Board, leaderboardSize)
	if err != nil {
		return nil, err
	}

	ahead, err := s.userRepo.CountWithMoreXP(ctx, user.Class, user.Board, user.Progress.TotalXP)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(top))
	for i, u := range top {
		entries[i] = LeaderboardEntry{
			Name:         u.Name,
			TotalXP:      u.Progress.TotalXP,
			CurrentLevel: u.Progress.CurrentLevel,
		}
	}

	return &Leaderboard{
		TopUsers:  entries,
		UserRank:  ahead + 1,
		UserXP:    user.Progress.TotalXP,
		UserLevel: user.Progress.CurrentLevel,
	}, nil
}

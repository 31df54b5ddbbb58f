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

// ErrPremiumContent is returned when premium-marked material is opened
// without a usable subscription.
var ErrPremiumContent = errors.New("active subscription required for premium content")

// ContentView is the catalog entry plus its computed delivery URL.
type ContentView struct {
	*models.Content
	URL        string `json:"url"`
	Bookmarked bool   `json:"bookmarked"`
}

// ContentService handles the study material catalog and the per-user
// bookmark and completion state that hangs off it.
type ContentService struct {
	contentRepo repositories.ContentRepository
	userRepo    repositories.UserRepository
	progression *ProgressionService
	cdnBase     string
}

// NewContentService creates a new ContentService
func NewContentService(contentRepo repositories.ContentRepository, userRepo repositories.UserRepository, progression *ProgressionService, cdnBase string) *ContentService {
	return &ContentService{
		contentRepo: contentRepo,
		userRepo:    userRepo,
		progression: progression,
		cdnBase:     cdnBase,
	}
}

// ListContent lists catalog entries for the student's class and board.
func (s *ContentService) ListContent(ctx context.Context, user *models.User, subject string, page, limit int) ([]*ContentView, error) {
	contents, err := s.contentRepo.FindByFilter(ctx, user.Class, user.Board, subject, page, limit)
	if err != nil {
		return nil, err
	}
	views := make([]*ContentView, len(contents))
	for i, c := range contents {
		views[i] = &ContentView{
			Content:    c,
			URL:        c.ContentURL(s.cdnBase),
			Bookmarked: user.HasBookmark(c.Subject, c.Chapter, c.Topic),
		}
	}
	return views, nil
}

// GetContent returns one catalog entry, counts the view and awards XP.
func (s *ContentService) GetContent(ctx context.Context, user *models.User, id primitive.ObjectID) (*ContentView, error) {
	content, err := s.contentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Premium material is checked per item, not per route; the listing stays
	// visible so students can see what an upgrade unlocks.
	if content.IsPremium && !user.HasActiveSubscription(time.Now()) {
		return nil, ErrPremiumContent
	}

	if err := s.contentRepo.IncrementViews(ctx, id); err != nil {
		log.Printf("[WARN] content: failed to count view for %s: %v", id.Hex(), err)
	}
	if err := s.progression.AwardXP(ctx, user, XPContentViewed, "Content Viewed"); err != nil {
		log.Printf("[WARN] content: failed to award view XP for user %s: %v", user.ID.Hex(), err)
	}

	return &ContentView{
		Content:    content,
		URL:        content.ContentURL(s.cdnBase),
		Bookmarked: user.HasBookmark(content.Subject, content.Chapter, content.Topic),
	}, nil
}

// ToggleBookmark adds or removes the bookmark for a catalog entry. Adding
// awards XP; removing does not. Returns whether the entry is bookmarked
// after the call.
func (s *ContentService) ToggleBookmark(ctx context.Context, user *models.User, contentID primitive.ObjectID) (bool, error) {
	content, err := s.contentRepo.FindByID(ctx, contentID)
	if err != nil {
		return false, err
	}

	now := time.Now()
	if user.HasBookmark(content.Subject, content.Chapter, content.Topic) {
		user.RemoveBookmark(content.Subject, content.Chapter, content.Topic)
		if err := s.userRepo.UpdateProgress(ctx, user.ID, user.Progress); err != nil {
			return true, err
		}
		return false, nil
	}

	user.AddBookmark(content.Subject, content.Chapter, content.Topic, now)
	if err := s.userRepo.UpdateProgress(ctx, user.ID, user.Progress); err != nil {
		return false, err
	}
	if err := s.progression.AwardXP(ctx, user, XPContentBookmark, "Content Bookmarked"); err != nil {
		log.Printf("[WARN] content: failed to award bookmark XP for user %s: %v", user.ID.Hex(), err)
	}
	return true, nil
}

// Bookmarks returns the user's bookmarks, newest first.
func (s *ContentService) Bookmarks(user *models.User) []models.Bookmark {
	bookmarks := make([]models.Bookmark, len(user.Progress.Bookmarks))
	copy(bookmarks, user.Progress.Bookmarks)
	for i := 0; i < len(bookmarks); i++ {
		for j := i + 1; j < len(bookmarks); j++ {
			if bookmarks[j].BookmarkedAt.After(bookmarks[i].BookmarkedAt) {
				bookmarks[i], bookmarks[j] = bookmarks[j], bookmarks[i]
			}
		}
	}
	return bookmarks
}

// CompleteChapter records a chapter completion for a catalog entry. The
// first completion earns full XP; beating a previous best earns a smaller
// award; anything else changes nothing.
func (s *ContentService) CompleteChapter(ctx context.Context, user *models.User, contentID primitive.ObjectID, score float64) (models.CompletionResult, error) {
	content, err := s.contentRepo.FindByID(ctx, contentID)
	if err != nil {
		return models.CompletionNone, err
	}

	result := user.CompleteChapter(content.Subject, content.Chapter, score, time.Now())
	if result == models.CompletionNone {
		return result, nil
	}

	if err := s.userRepo.UpdateProgress(ctx, user.ID, user.Progress); err != nil {
		return result, err
	}

	switch result {
	case models.CompletionFirst:
		err = s.progression.AwardXP(ctx, user, XPChapterCompleted, "Chapter Completed")
	case models.CompletionImproved:
		err = s.progression.AwardXP(ctx, user, XPImprovedScore, "Improved Score")
	}
	if err != nil {
		log.Printf("[WARN] content: failed to award completion XP for user %s: %v", user.ID.Hex(), err)
	}
	return result, nil
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContentService(student *models.User, contents ...*models.Content) (*ContentService, *fakeContentRepo) {
	userRepo := newFakeUserRepo(student)
	contentRepo := newFakeContentRepo(contents...)
	progression := NewProgressionService(userRepo, &fakeXPRepo{})
	return NewContentService(contentRepo, userRepo, progression, "https://cdn.example.com"), contentRepo
}

func sampleContent(premium bool) *models.Content {
	return &models.Content{
		Title:       "Motion in a Straight Line",
		Subject:     "Physics",
		Class:       10,
		Board:       models.BoardCBSE,
		Chapter:     "Motion",
		Topic:       "Velocity",
		ContentType: "video",
		StoragePath: "physics/motion/velocity.mp4",
		IsPremium:   premium,
	}
}

func TestGetContentCountsViewAndAwardsXP(t *testing.T) {
	student := newStudent()
	content := sampleContent(false)
	svc, contentRepo := newContentService(student, content)

	view, err := svc.GetContent(context.Background(), student, content.ID)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/physics/motion/velocity.mp4", view.URL)
	assert.Equal(t, 1, contentRepo.contents[content.ID].Views)
	assert.Equal(t, XPContentViewed, student.Progress.TotalXP)
}

func TestGetContentPremiumGating(t *testing.T) {
	student := newStudent()
	student.Subscription.EndDate = time.Now().Add(-time.Hour)
	content := sampleContent(true)
	svc, contentRepo := newContentService(student, content)

	_, err := svc.GetContent(context.Background(), student, content.ID)
	assert.ErrorIs(t, err, ErrPremiumContent)
	assert.Equal(t, 0, contentRepo.contents[content.ID].Views, "a denied open never counts a view")
	assert.Equal(t, 0, student.Progress.TotalXP)

	// The demo trial counts as an active subscription
	student.Subscription.EndDate = time.Now().Add(time.Hour)
	_, err = svc.GetContent(context.Background(), student, content.ID)
	assert.NoError(t, err)
}

func TestToggleBookmarkAwardsOnlyOnAdd(t *testing.T) {
	student := newStudent()
	content := sampleContent(false)
	svc, _ := newContentService(student, content)

	bookmarked, err := svc.ToggleBookmark(context.Background(), student, content.ID)
	require.NoError(t, err)
	assert.True(t, bookmarked)
	assert.Equal(t, XPContentBookmark, student.Progress.TotalXP)

	bookmarked, err = svc.ToggleBookmark(context.Background(), student, content.ID)
	require.NoError(t, err)
	assert.False(t, bookmarked)
	assert.Equal(t, XPContentBookmark, student.Progress.TotalXP, "removal earns nothing")
	assert.Empty(t, student.Progress.Bookmarks)
}

func TestCompleteChapterAwards(t *testing.T) {
	student := newStudent()
	content := sampleContent(false)
	svc, _ := newContentService(student, content)

	result, err := svc.CompleteChapter(context.Background(), student, content.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, models.CompletionFirst, result)
	assert.Equal(t, XPChapterCompleted, student.Progress.TotalXP)

	result, err = svc.CompleteChapter(context.Background(), student, content.ID, 55)
	require.NoError(t, err)
	assert.Equal(t, models.CompletionNone, result)
	assert.Equal(t, XPChapterCompleted, student.Progress.TotalXP, "a worse score changes nothing")

	result, err = svc.CompleteChapter(context.Background(), student, content.ID, 85)
	require.NoError(t, err)
	assert.Equal(t, models.CompletionImproved, result)
	assert.Equal(t, XPChapterCompleted+XPImprovedScore, student.Progress.TotalXP)

	require.Len(t, student.Progress.CompletedChapters, 1)
	assert.Equal(t, 85.0, student.Progress.CompletedChapters[0].Score)
}

func TestListContentMarksBookmarks(t *testing.T) {
	student := newStudent()
	content := sampleContent(false)
	svc, _ := newContentService(student, content)

	_, err := svc.ToggleBookmark(context.Background(), student, content.ID)
	require.NoError(t, err)

	views, err := svc.ListContent(context.Background(), student, "Physics", 1, 20)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Bookmarked)
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDoubtRequest() *models.CreateDoubtRequest {
	return &models.CreateDoubtRequest{
		Title:       "Why does ice float on water?",
		Description: "I read that solids are denser than liquids, but ice floats.",
		Subject:     "Physics",
		Chapter:     "States of Matter",
		Type:        "conceptual",
	}
}

func newDoubtService(student *models.User, doubtRepo *fakeDoubtRepo, quotaRepo *fakeQuotaRepo, ai *fakeAI) (*DoubtService, *fakeUserRepo) {
	userRepo := newFakeUserRepo(student)
	progression := NewProgressionService(userRepo, &fakeXPRepo{})
	svc := NewDoubtService(doubtRepo, quotaRepo, userRepo, progression, ai, time.UTC)
	return svc, userRepo
}

func TestCreateDoubtHappyPath(t *testing.T) {
	student := newStudent()
	doubtRepo := newFakeDoubtRepo()
	ai := &fakeAI{answer: "Ice is less dense than liquid water because of hydrogen bonding."}
	svc, _ := newDoubtService(student, doubtRepo, &fakeQuotaRepo{}, ai)

	result, err := svc.CreateDoubt(context.Background(), student, validDoubtRequest())
	require.NoError(t, err)

	assert.True(t, result.HasAIAnswer)
	assert.NotEmpty(t, result.AIAnswer)
	assert.Equal(t, models.DoubtStatusAnswered, result.Doubt.Status)
	assert.Equal(t, student.Class, result.Doubt.Class)

	assert.Equal(t, XPDoubtAsked, student.Progress.TotalXP)
	assert.Equal(t, 1, student.Stats.TotalDoubtsAsked)
}

func TestCreateDoubtAIFailureStillSucceedsAndAwardsXP(t *testing.T) {
	student := newStudent()
	doubtRepo := newFakeDoubtRepo()
	ai := &fakeAI{err: errors.New("provider timeout")}
	svc, _ := newDoubtService(student, doubtRepo, &fakeQuotaRepo{}, ai)

	result, err := svc.CreateDoubt(context.Background(), student, validDoubtRequest())
	require.NoError(t, err, "an AI failure never fails the submission")

	assert.False(t, result.HasAIAnswer)
	assert.Equal(t, models.DoubtStatusPending, result.Doubt.Status)
	assert.Equal(t, XPDoubtAsked, student.Progress.TotalXP, "XP is awarded regardless of the AI outcome")
	assert.Equal(t, 1, ai.calls)
}

func TestCreateDoubtInsertFailureReleasesQuota(t *testing.T) {
	student := newStudent()
	doubtRepo := newFakeDoubtRepo()
	doubtRepo.failCreate = true
	quotaRepo := &fakeQuotaRepo{consumed: 1}
	svc, _ := newDoubtService(student, doubtRepo, quotaRepo, &fakeAI{})

	_, err := svc.CreateDoubt(context.Background(), student, validDoubtRequest())
	require.Error(t, err)

	assert.Equal(t, 1, quotaRepo.released, "the reserved unit is handed back")
	assert.Equal(t, 0, student.Progress.TotalXP, "no XP for a failed submission")
	assert.Equal(t, 0, student.Stats.TotalDoubtsAsked)
}

func TestCreateDoubtValidation(t *testing.T) {
	student := newStudent()
	quotaRepo := &fakeQuotaRepo{}
	svc, _ := newDoubtService(student, newFakeDoubtRepo(), quotaRepo, &fakeAI{})

	_, err := svc.CreateDoubt(context.Background(), student, &models.CreateDoubtRequest{})
	require.Error(t, err)

	var ve *models.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, 1, quotaRepo.released, "a rejected submission hands the reserved unit back")
}

func TestCreateDoubtValidationFailureDoesNotBurnQuota(t *testing.T) {
	student := newStudent()
	// One unit already consumed, as the rate limiter does before the
	// handler ever sees the payload.
	quotaRepo := &fakeQuotaRepo{consumed: 1}
	svc, _ := newDoubtService(student, newFakeDoubtRepo(), quotaRepo, &fakeAI{})

	_, err := svc.CreateDoubt(context.Background(), student, &models.CreateDoubtRequest{})
	require.Error(t, err)

	assert.Equal(t, 0, quotaRepo.consumed, "only stored doubts count against the daily allowance")
	assert.Equal(t, 0, student.Stats.TotalDoubtsAsked)
	assert.Equal(t, 0, student.Progress.TotalXP)
}

func TestReleaseQuotaHandsBackUnit(t *testing.T) {
	student := newStudent()
	quotaRepo := &fakeQuotaRepo{consumed: 2}
	svc, _ := newDoubtService(student, newFakeDoubtRepo(), quotaRepo, &fakeAI{})

	// What the handler does when the request body cannot be bound.
	svc.ReleaseQuota(context.Background(), student)
	assert.Equal(t, 1, quotaRepo.consumed)
	assert.Equal(t, 1, quotaRepo.released)
}

func TestGetDoubtOwnership(t *testing.T) {
	student := newStudent()
	other := newStudent()
	doubtRepo := newFakeDoubtRepo()
	svc, _ := newDoubtService(student, doubtRepo, &fakeQuotaRepo{}, &fakeAI{answer: "ok"})

	result, err := svc.CreateDoubt(context.Background(), student, validDoubtRequest())
	require.NoError(t, err)

	_, err = svc.GetDoubt(context.Background(), other, result.Doubt.ID)
	assert.ErrorIs(t, err, ErrNotDoubtOwner)

	doubt, err := svc.GetDoubt(context.Background(), student, result.Doubt.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Doubt.ID, doubt.ID)

	// Teachers can read any doubt
	teacher := newStudent()
	teacher.Role = models.RoleTeacher
	_, err = svc.GetDoubt(context.Background(), teacher, result.Doubt.ID)
	assert.NoError(t, err)
}

func TestAddAnswerRoleCheck(t *testing.T) {
	student := newStudent()
	doubtRepo := newFakeDoubtRepo()
	svc, _ := newDoubtService(student, doubtRepo, &fakeQuotaRepo{}, &fakeAI{err: errors.New("down")})

	result, err := svc.CreateDoubt(context.Background(), student, validDoubtRequest())
	require.NoError(t, err)

	_, err = svc.AddAnswer(context.Background(), student, result.Doubt.ID, "students cannot answer")
	assert.ErrorIs(t, err, ErrCannotAnswer)

	teacher := newStudent()
	teacher.Role = models.RoleTeacher
	doubt, err := svc.AddAnswer(context.Background(), teacher, result.Doubt.ID, "Water expands when it freezes.")
	require.NoError(t, err)
	assert.Equal(t, models.DoubtStatusAnswered, doubt.Status)
	require.Len(t, doubt.Answers, 1)
	assert.Equal(t, models.RoleTeacher, doubt.Answers[0].AnswerType)
}

func TestResolveDoubt(t *testing.T) {
	student := newStudent()
	doubtRepo := newFakeDoubtRepo()
	svc, _ := newDoubtService(student, doubtRepo, &fakeQuotaRepo{}, &fakeAI{answer: "ok"})

	result, err := svc.CreateDoubt(context.Background(), student, validDoubtRequest())
	require.NoError(t, err)
	xpAfterCreate := student.Progress.TotalXP

	other := newStudent()
	_, err = svc.Resolve(context.Background(), other, result.Doubt.ID)
	assert.ErrorIs(t, err, ErrNotDoubtOwner)

	doubt, err := svc.Resolve(context.Background(), student, result.Doubt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DoubtStatusResolved, doubt.Status)
	assert.False(t, doubt.ResolvedAt.IsZero())
	assert.Equal(t, xpAfterCreate+XPDoubtResolved, student.Progress.TotalXP)

	_, err = svc.Resolve(context.Background(), student, result.Doubt.ID)
	assert.ErrorIs(t, err, ErrAlreadyClosed)
}

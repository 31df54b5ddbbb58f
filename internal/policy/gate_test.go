package policy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAccounts struct {
	users map[primitive.ObjectID]*models.User
	err   error
}

func (f *fakeAccounts) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

type fakeQuota struct {
	counts map[string]int
	err    error
}

func (f *fakeQuota) TryConsume(_ context.Context, studentID primitive.ObjectID, day time.Time, limit int) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	key := studentID.Hex() + day.Format("2006-01-02")
	if f.counts[key] >= limit {
		return false, nil
	}
	f.counts[key]++
	return true, nil
}

type fakeActivity struct {
	calls int
	err   error
}

func (f *fakeActivity) RecordActivity(_ context.Context, _ *models.User, _ time.Time) error {
	f.calls++
	return f.err
}

func activeUser(tier models.SubscriptionTier) *models.User {
	return &models.User{
		ID: primitive.NewObjectID(),
		Subscription: models.Subscription{
			Type:     tier,
			EndDate:  time.Now().Add(24 * time.Hour),
			IsActive: true,
		},
	}
}

func newTestGate(users ...*models.User) (*Gate, *fakeQuota, *fakeActivity) {
	accounts := &fakeAccounts{users: map[primitive.ObjectID]*models.User{}}
	for _, u := range users {
		accounts.users[u.ID] = u
	}
	quota := &fakeQuota{}
	activity := &fakeActivity{}
	return NewGate(accounts, quota, activity, nil, time.UTC), quota, activity
}

func TestEvaluateAccessUnauthenticated(t *testing.T) {
	gate, _, activity := newTestGate()

	decision, user, err := gate.EvaluateAccess(context.Background(), Request{})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonUnauthenticated, decision.Reason)
	assert.Nil(t, user)
	assert.Zero(t, activity.calls)
}

func TestEvaluateAccessUnknownAccount(t *testing.T) {
	gate, _, _ := newTestGate()

	decision, user, err := gate.EvaluateAccess(context.Background(), Request{AccountID: primitive.NewObjectID()})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonAccountNotFound, decision.Reason)
	assert.Equal(t, "User not found", decision.Message)
	assert.Nil(t, user)
}

func TestEvaluateAccessStoreFailureFailsClosed(t *testing.T) {
	accounts := &fakeAccounts{err: errors.New("connection reset")}
	gate := NewGate(accounts, &fakeQuota{}, &fakeActivity{}, nil, time.UTC)

	decision, _, err := gate.EvaluateAccess(context.Background(), Request{AccountID: primitive.NewObjectID()})
	require.Error(t, err)
	assert.False(t, decision.Allowed)
}

func TestEvaluateAccessGenericAllowsAndTracksActivity(t *testing.T) {
	student := activeUser(models.TierDemo)
	gate, _, activity := newTestGate(student)

	decision, user, err := gate.EvaluateAccess(context.Background(), Request{
		AccountID: student.ID,
		Action:    ActionGeneric,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, student, user)
	assert.Equal(t, 1, activity.calls)
}

func TestEvaluateAccessPremiumResourceRequiresActiveSubscription(t *testing.T) {
	now := time.Now()

	expired := activeUser(models.TierBasic)
	expired.Subscription.EndDate = now.Add(-time.Second)
	flagged := activeUser(models.TierPremium)
	flagged.Subscription.IsActive = false
	ok := activeUser(models.TierDemo)

	gate, _, activity := newTestGate(expired, flagged, ok)

	for _, blocked := range []*models.User{expired, flagged} {
		decision, user, err := gate.EvaluateAccess(context.Background(), Request{
			AccountID:       blocked.ID,
			PremiumResource: true,
		})
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, ReasonSubscriptionRequired, decision.Reason)
		assert.Equal(t, "Active subscription required", decision.Message)
		assert.Equal(t, blocked, user)
	}
	assert.Zero(t, activity.calls, "denied requests never touch activity")

	decision, _, err := gate.EvaluateAccess(context.Background(), Request{
		AccountID:       ok.ID,
		PremiumResource: true,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "an active demo trial passes the premium-resource check")
}

func TestEvaluateAccessSubscriptionEndingExactlyNowIsExpired(t *testing.T) {
	now := time.Now()
	student := activeUser(models.TierPremium)
	student.Subscription.EndDate = now

	gate, _, _ := newTestGate(student)
	gate.SetNow(func() time.Time { return now })

	decision, _, err := gate.EvaluateAccess(context.Background(), Request{
		AccountID:       student.ID,
		PremiumResource: true,
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonSubscriptionRequired, decision.Reason)
}

func TestEvaluateAccessDoubtQuotaDemoTier(t *testing.T) {
	student := activeUser(models.TierDemo)
	gate, _, _ := newTestGate(student)

	req := Request{AccountID: student.ID, Action: ActionAskDoubt}

	for i := 0; i < 2; i++ {
		decision, _, err := gate.EvaluateAccess(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "doubt %d within the demo quota", i+1)
	}

	decision, _, err := gate.EvaluateAccess(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonRateLimited, decision.Reason)
	assert.Equal(t, 2, decision.Limit)
	assert.Equal(t, "Daily doubt limit (2) exceeded. Upgrade subscription for more doubts.", decision.Message)
}

func TestEvaluateAccessDoubtQuotaPremiumTier(t *testing.T) {
	student := activeUser(models.TierPremium)
	gate, _, _ := newTestGate(student)

	req := Request{AccountID: student.ID, Action: ActionAskDoubt}

	for i := 0; i < 10; i++ {
		decision, _, err := gate.EvaluateAccess(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "doubt %d within the premium quota", i+1)
	}

	decision, _, err := gate.EvaluateAccess(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 10, decision.Limit)
}

func TestEvaluateAccessUnknownTierGetsDemoQuota(t *testing.T) {
	student := activeUser("legacy-gold")
	gate, _, _ := newTestGate(student)

	req := Request{AccountID: student.ID, Action: ActionAskDoubt}

	for i := 0; i < 2; i++ {
		decision, _, err := gate.EvaluateAccess(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	}

	decision, _, err := gate.EvaluateAccess(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 2, decision.Limit, "unrecognized tiers get the tightest quota")
}

func TestEvaluateAccessQuotaStoreFailureFailsClosed(t *testing.T) {
	student := activeUser(models.TierDemo)
	accounts := &fakeAccounts{users: map[primitive.ObjectID]*models.User{student.ID: student}}
	quota := &fakeQuota{err: errors.New("write conflict")}
	gate := NewGate(accounts, quota, &fakeActivity{}, nil, time.UTC)

	decision, _, err := gate.EvaluateAccess(context.Background(), Request{
		AccountID: student.ID,
		Action:    ActionAskDoubt,
	})
	require.Error(t, err)
	assert.False(t, decision.Allowed)
}

func TestEvaluateAccessTierRestriction(t *testing.T) {
	demo := activeUser(models.TierDemo)
	premium := activeUser(models.TierPremium)
	inactive := activeUser(models.TierPremium)
	inactive.Subscription.IsActive = false

	gate, _, _ := newTestGate(demo, premium, inactive)

	premiumOnly := []models.SubscriptionTier{models.TierPremium}

	decision, _, err := gate.EvaluateAccess(context.Background(), Request{
		AccountID:    demo.ID,
		AllowedTiers: premiumOnly,
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonTierMismatch, decision.Reason)
	assert.Equal(t, "premium subscription required", decision.Message)

	// An inactive subscription is reported as missing before the tier is
	// even considered
	decision, _, err = gate.EvaluateAccess(context.Background(), Request{
		AccountID:    inactive.ID,
		AllowedTiers: premiumOnly,
	})
	require.NoError(t, err)
	assert.Equal(t, ReasonSubscriptionRequired, decision.Reason)

	decision, _, err = gate.EvaluateAccess(context.Background(), Request{
		AccountID:    premium.ID,
		AllowedTiers: premiumOnly,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestEvaluateAccessActivityFailureIsOpen(t *testing.T) {
	student := activeUser(models.TierBasic)
	accounts := &fakeAccounts{users: map[primitive.ObjectID]*models.User{student.ID: student}}
	activity := &fakeActivity{err: errors.New("stats collection unavailable")}
	gate := NewGate(accounts, &fakeQuota{}, activity, nil, time.UTC)

	decision, _, err := gate.EvaluateAccess(context.Background(), Request{AccountID: student.ID})
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "a failed activity touch never blocks the action")
	assert.Equal(t, 1, activity.calls)
}

func TestEvaluateAccessQuotaDayBoundary(t *testing.T) {
	student := activeUser(models.TierDemo)
	gate, quota, _ := newTestGate(student)

	base := time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)
	gate.SetNow(func() time.Time { return base })

	req := Request{AccountID: student.ID, Action: ActionAskDoubt}
	for i := 0; i < 2; i++ {
		decision, _, err := gate.EvaluateAccess(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	}
	decision, _, err := gate.EvaluateAccess(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	// Two minutes later it is a new day and the counter starts fresh
	gate.SetNow(func() time.Time { return base.Add(2 * time.Minute) })
	decision, _, err = gate.EvaluateAccess(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Len(t, quota.counts, 2, "each day has its own counter")
}

package policy

import (
	"testing"

	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestQuotaTableForTier(t *testing.T) {
	quotas := DefaultQuotas()

	assert.Equal(t, 2, quotas.ForTier(models.TierDemo))
	assert.Equal(t, 5, quotas.ForTier(models.TierBasic))
	assert.Equal(t, 10, quotas.ForTier(models.TierPremium))
	assert.Equal(t, 2, quotas.ForTier("enterprise"), "unknown tiers fall back to the demo quota")
	assert.Equal(t, 2, quotas.ForTier(""), "empty tier falls back to the demo quota")
}

func TestCheckDoubtQuota(t *testing.T) {
	quotas := DefaultQuotas()

	// Demo: third doubt of the day is denied
	d := CheckDoubtQuota(quotas, models.TierDemo, 1)
	assert.True(t, d.Allowed)

	d = CheckDoubtQuota(quotas, models.TierDemo, 2)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonRateLimited, d.Reason)
	assert.Equal(t, 2, d.Limit)
	assert.Equal(t, "Daily doubt limit (2) exceeded. Upgrade subscription for more doubts.", d.Message)

	// Premium: tenth is the last allowed
	d = CheckDoubtQuota(quotas, models.TierPremium, 9)
	assert.True(t, d.Allowed)

	d = CheckDoubtQuota(quotas, models.TierPremium, 10)
	assert.False(t, d.Allowed)
	assert.Equal(t, "Daily doubt limit (10) exceeded. Upgrade subscription for more doubts.", d.Message)
}

func TestRateLimitMessage(t *testing.T) {
	assert.Equal(t, "Daily doubt limit (5) exceeded. Upgrade subscription for more doubts.", RateLimitMessage(5))
}

func TestTierMismatchMessage(t *testing.T) {
	assert.Equal(t, "premium subscription required",
		TierMismatchMessage([]models.SubscriptionTier{models.TierPremium}))
	assert.Equal(t, "basic or premium subscription required",
		TierMismatchMessage([]models.SubscriptionTier{models.TierBasic, models.TierPremium}))
}

func TestTierAllowed(t *testing.T) {
	allowed := []models.SubscriptionTier{models.TierBasic, models.TierPremium}

	assert.True(t, TierAllowed(models.TierBasic, allowed))
	assert.True(t, TierAllowed(models.TierPremium, allowed))
	assert.False(t, TierAllowed(models.TierDemo, allowed))
}

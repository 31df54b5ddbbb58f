package policy

import (
	"fmt"
	"strings"

	"github.com/padhai-app/padhai-backend/internal/models"
)

// DenyReason enumerates the stable denial reasons surfaced to callers.
type DenyReason string

const (
	ReasonUnauthenticated      DenyReason = "UNAUTHENTICATED"
	ReasonAccountNotFound      DenyReason = "ACCOUNT_NOT_FOUND"
	ReasonSubscriptionRequired DenyReason = "SUBSCRIPTION_REQUIRED"
	ReasonRateLimited          DenyReason = "RATE_LIMITED"
	ReasonTierMismatch         DenyReason = "TIER_MISMATCH"
)

// MsgActiveSubscriptionRequired is shown when a premium resource is hit
// without a usable subscription.
const MsgActiveSubscriptionRequired = "Active subscription required"

// Decision is the outcome of an access check. Decisions are returned as
// values, never raised; every caller handles every case.
type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
	Message string     `json:"message,omitempty"`
	Limit   int        `json:"limit,omitempty"` // daily quota, set on RATE_LIMITED denials
}

// Allow returns a passing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a failing decision with the given reason and message.
func Deny(reason DenyReason, message string) Decision {
	return Decision{Reason: reason, Message: message}
}

// QuotaTable maps a subscription tier to its daily doubt quota.
type QuotaTable map[models.SubscriptionTier]int

// DefaultQuotas returns the stock per-day doubt quotas.
func DefaultQuotas() QuotaTable {
	return QuotaTable{
		models.TierDemo:    2,
		models.TierBasic:   5,
		models.TierPremium: 10,
	}
}

// ForTier returns the quota for a tier. Unknown tiers fall back to the demo
// quota, so a malformed subscription record fails toward the tightest limit.
func (q QuotaTable) ForTier(tier models.SubscriptionTier) int {
	if limit, ok := q[tier]; ok {
		return limit
	}
	return q[models.TierDemo]
}

// RateLimitMessage renders the user-facing quota denial.
func RateLimitMessage(limit int) string {
	return fmt.Sprintf("Daily doubt limit (%d) exceeded. Upgrade subscription for more doubts.", limit)
}

// TierMismatchMessage renders the user-facing denial for a tier-restricted
// action, e.g. "premium subscription required".
func TierMismatchMessage(tiers []models.SubscriptionTier) string {
	names := make([]string, len(tiers))
	for i, t := range tiers {
		names[i] = string(t)
	}
	return strings.Join(names, " or ") + " subscription required"
}

// CheckDoubtQuota is the advisory check-then-act form of the rate limiter:
// the caller supplies the count of doubts the student already asked today.
// The atomic consume path in the gate supersedes this under concurrency, but
// the decision semantics are identical.
func CheckDoubtQuota(quotas QuotaTable, tier models.SubscriptionTier, doubtsToday int) Decision {
	limit := quotas.ForTier(tier)
	if doubtsToday >= limit {
		d := Deny(ReasonRateLimited, RateLimitMessage(limit))
		d.Limit = limit
		return d
	}
	return Allow()
}

// TierAllowed reports whether tier is in the allowed set.
func TierAllowed(tier models.SubscriptionTier, allowed []models.SubscriptionTier) bool {
	for _, t := range allowed {
		if t == tier {
			return true
		}
	}
	return false
}

package policy

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action identifies the kind of operation being authorized.
type Action string

const (
	ActionAskDoubt Action = "doubt.ask"
	ActionGeneric  Action = "generic"
)

// Request describes one incoming action to authorize.
type Request struct {
	AccountID       primitive.ObjectID
	Action          Action
	PremiumResource bool
	// AllowedTiers, when non-empty, restricts the action to those tiers
	// exactly (on top of the subscription being active).
	AllowedTiers []models.SubscriptionTier
}

// AccountSource resolves the account under decision.
type AccountSource interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// QuotaConsumer atomically reserves one unit of the daily doubt quota.
// Implementations must guarantee that concurrent consumers can never exceed
// the limit for the same (student, day).
type QuotaConsumer interface {
	TryConsume(ctx context.Context, studentID primitive.ObjectID, day time.Time, limit int) (bool, error)
}

// ActivityRecorder persists the post-authorization activity touch. It is
// best-effort telemetry: the gate logs failures and moves on.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, user *models.User, now time.Time) error
}

// Gate composes the subscription policy, the doubt rate limiter and the tier
// check into a single authorization decision per incoming action. All checks
// fail closed; only the activity touch fails open.
type Gate struct {
	accounts AccountSource
	quota    QuotaConsumer
	activity ActivityRecorder
	quotas   QuotaTable
	loc      *time.Location
	now      func() time.Time
}

// NewGate creates a Gate. quotas falls back to DefaultQuotas and loc to the
// server's local timezone when nil.
func NewGate(accounts AccountSource, quota QuotaConsumer, activity ActivityRecorder, quotas QuotaTable, loc *time.Location) *Gate {
	if quotas == nil {
		quotas = DefaultQuotas()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Gate{
		accounts: accounts,
		quota:    quota,
		activity: activity,
		quotas:   quotas,
		loc:      loc,
		now:      time.Now,
	}
}

// EvaluateAccess runs the ordered checks for one action, short-circuiting on
// the first failure:
//
//  1. identity resolved (account record exists),
//  2. active subscription when the resource is premium-marked,
//  3. daily doubt quota when the action asks a doubt,
//  4. allowed-tier membership when the action is tier-restricted.
//
// On success the account's last-active timestamp is refreshed; a failure to
// record it never blocks the action. A non-nil error means the store failed
// and the overall action must fail; it is never a policy denial.
func (g *Gate) EvaluateAccess(ctx context.Context, req Request) (Decision, *models.User, error) {
	if req.AccountID.IsZero() {
		return Deny(ReasonUnauthenticated, "authorization required"), nil, nil
	}

	now := g.now().In(g.loc)

	user, err := g.accounts.FindByID(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Deny(ReasonAccountNotFound, "User not found"), nil, nil
		}
		return Decision{}, nil, err
	}

	if req.PremiumResource && !user.HasActiveSubscription(now) {
		return Deny(ReasonSubscriptionRequired, MsgActiveSubscriptionRequired), user, nil
	}

	if req.Action == ActionAskDoubt {
		limit := g.quotas.ForTier(user.Subscription.Type)
		ok, err := g.quota.TryConsume(ctx, user.ID, models.StartOfDay(now), limit)
		if err != nil {
			return Decision{}, nil, err
		}
		if !ok {
			d := Deny(ReasonRateLimited, RateLimitMessage(limit))
			d.Limit = limit
			return d, user, nil
		}
	}

	if len(req.AllowedTiers) > 0 {
		if !user.HasActiveSubscription(now) {
			return Deny(ReasonSubscriptionRequired, MsgActiveSubscriptionRequired), user, nil
		}
		if !TierAllowed(user.Subscription.Type, req.AllowedTiers) {
			return Deny(ReasonTierMismatch, TierMismatchMessage(req.AllowedTiers)), user, nil
		}
	}

	if g.activity != nil {
		if err := g.activity.RecordActivity(ctx, user, now); err != nil {
			log.Printf("[WARN] gate: activity tracking failed for user %s: %v", user.ID.Hex(), err)
		}
	}

	return Allow(), user, nil
}

// SetNow overrides the gate clock. Tests only.
func (g *Gate) SetNow(now func() time.Time) {
	g.now = now
}

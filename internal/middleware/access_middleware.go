package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/policy"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const currentUserKey = "currentUser"

// CurrentUser returns the account resolved by one of the gate middlewares.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// accountID reads the subject claim left by JWTAuthMiddleware. A missing or
// malformed claim yields the zero ObjectID, which the gate rejects as
// unauthenticated.
func accountID(c *gin.Context) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// statusForReason maps a denial reason to its HTTP status.
func statusForReason(reason policy.DenyReason) int {
	switch reason {
	case policy.ReasonUnauthenticated:
		return http.StatusUnauthorized
	case policy.ReasonAccountNotFound:
		return http.StatusNotFound
	case policy.ReasonRateLimited:
		return http.StatusTooManyRequests
	case policy.ReasonSubscriptionRequired, policy.ReasonTierMismatch:
		return http.StatusForbidden
	default:
		return http.StatusForbidden
	}
}

func abortWithDecision(c *gin.Context, decision policy.Decision) {
	body := gin.H{"error": decision.Message, "reason": decision.Reason}
	if decision.Reason == policy.ReasonRateLimited {
		body["limit"] = decision.Limit
	}
	c.AbortWithStatusJSON(statusForReason(decision.Reason), body)
}

func evaluate(c *gin.Context, gate *policy.Gate, req policy.Request) {
	req.AccountID = accountID(c)
	decision, user, err := gate.EvaluateAccess(c.Request.Context(), req)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to authorize request"})
		return
	}
	if !decision.Allowed {
		abortWithDecision(c, decision)
		return
	}
	c.Set(currentUserKey, user)
	c.Next()
}

// Authenticated resolves the account behind the token and stores it in the
// context. No subscription policy applies beyond the account existing.
func Authenticated(gate *policy.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		evaluate(c, gate, policy.Request{Action: policy.ActionGeneric})
	}
}

// RequireActiveSubscription guards premium-marked resources: the account must
// hold a subscription that is both flagged active and not expired.
func RequireActiveSubscription(gate *policy.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		evaluate(c, gate, policy.Request{Action: policy.ActionGeneric, PremiumResource: true})
	}
}

// RequireTiers restricts the route to accounts on one of the given tiers,
// on top of the subscription being active.
func RequireTiers(gate *policy.Gate, tiers ...models.SubscriptionTier) gin.HandlerFunc {
	return func(c *gin.Context) {
		evaluate(c, gate, policy.Request{Action: policy.ActionGeneric, AllowedTiers: tiers})
	}
}

// DoubtRateLimit reserves one unit of the account's daily doubt quota before
// the handler runs. The reservation is atomic; concurrent requests cannot
// overshoot the limit.
func DoubtRateLimit(gate *policy.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		evaluate(c, gate, policy.Request{Action: policy.ActionAskDoubt})
	}
}

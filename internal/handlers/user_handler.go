package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/padhai-app/padhai-backend/internal/middleware"
	"github.com/padhai-app/padhai-backend/internal/services"
)

// UserHandler handles profile, dashboard and leaderboard HTTP requests
type UserHandler struct {
	userService *services.UserService
	progression *services.ProgressionService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService, progression *services.ProgressionService) *UserHandler {
	return &UserHandler{
		userService: userService,
		progression: progression,
	}
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	now := time.Now()
	c.JSON(http.StatusOK, gin.H{
		"user":               user,
		"subscriptionStatus": user.SubscriptionStatus(now),
		"remainingDays":      user.RemainingDays(now),
	})
}

// UpdateMe handles PUT /users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	var req struct {
		Name  string `json:"name"`
		State string `json:"state"`
		Class int    `json:"class"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.UpdateProfile(c.Request.Context(), user, req.Name, req.State, req.Class); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetDashboard handles GET /users/me/dashboard
func (h *UserHandler) GetDashboard(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	dashboard, err := h.userService.GetDashboard(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetLeaderboard handles GET /users/leaderboard
func (h *UserHandler) GetLeaderboard(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	leaderboard, err := h.userService.GetLeaderboard(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, leaderboard)
}

// GetXPHistory handles GET /users/me/xp
func (h *UserHandler) GetXPHistory(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	history, err := h.progression.XPHistory(c.Request.Context(), user, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load XP history: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": history})
}

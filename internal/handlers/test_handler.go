package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/padhai-app/padhai-backend/internal/middleware"
	"github.com/padhai-app/padhai-backend/internal/repositories"
	"github.com/padhai-app/padhai-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestHandler handles assessment HTTP requests
type TestHandler struct {
	testService *services.TestService
}

// NewTestHandler creates a new TestHandler
func NewTestHandler(testService *services.TestService) *TestHandler {
	return &TestHandler{
		testService: testService,
	}
}

// ListTests handles GET /tests
func (h *TestHandler) ListTests(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	tests, err := h.testService.ListTests(c.Request.Context(), user, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get tests: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tests": tests})
}

// SubmitAttempt handles POST /tests/:id/attempts
func (h *TestHandler) SubmitAttempt(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req struct {
		Answers []int `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.testService.SubmitAttempt(c.Request.Context(), user, id, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Test not found"})
		case errors.Is(err, services.ErrTestNotPublished):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit attempt: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// RecentAttempts handles GET /tests/attempts
func (h *TestHandler) RecentAttempts(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	attempts, err := h.testService.RecentAttempts(c.Request.Context(), user, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get attempts: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}

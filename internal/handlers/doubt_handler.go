package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/padhai-app/padhai-backend/internal/middleware"
	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/repositories"
	"github.com/padhai-app/padhai-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DoubtHandler handles doubt-related HTTP requests
type DoubtHandler struct {
	doubtService *services.DoubtService
}

// NewDoubtHandler creates a new DoubtHandler
func NewDoubtHandler(doubtService *services.DoubtService) *DoubtHandler {
	return &DoubtHandler{
		doubtService: doubtService,
	}
}

// CreateDoubt handles POST /doubts
func (h *DoubtHandler) CreateDoubt(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	var req models.CreateDoubtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// The rate limiter already reserved a unit for this request.
		h.doubtService.ReleaseQuota(c.Request.Context(), user)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.doubtService.CreateDoubt(c.Request.Context(), user, &req)
	if err != nil {
		if respondValidation(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create doubt: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListDoubts handles GET /doubts
func (h *DoubtHandler) ListDoubts(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	status := c.Query("status")
	subject := c.Query("subject")

	doubts, err := h.doubtService.ListDoubts(c.Request.Context(), user, status, subject, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get doubts: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"doubts": doubts})
}

// GetDoubt handles GET /doubts/:id
func (h *DoubtHandler) GetDoubt(c *gin.Context) {
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

	doubt, err := h.doubtService.GetDoubt(c.Request.Context(), user, id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Doubt not found"})
		case errors.Is(err, services.ErrNotDoubtOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get doubt: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, doubt)
}

// AddAnswer handles POST /doubts/:id/answers
func (h *DoubtHandler) AddAnswer(c *gin.Context) {
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
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Content) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Answer content is required"})
		return
	}

	doubt, err := h.doubtService.AddAnswer(c.Request.Context(), user, id, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Doubt not found"})
		case errors.Is(err, services.ErrCannotAnswer):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrAlreadyClosed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add answer: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, doubt)
}

// ResolveDoubt handles POST /doubts/:id/resolve
func (h *DoubtHandler) ResolveDoubt(c *gin.Context) {
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

	doubt, err := h.doubtService.Resolve(c.Request.Context(), user, id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Doubt not found"})
		case errors.Is(err, services.ErrNotDoubtOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrAlreadyClosed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve doubt: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, doubt)
}

// GetQuotaStatus handles GET /doubts/quota
func (h *DoubtHandler) GetQuotaStatus(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	asked, err := h.doubtService.DoubtsAskedToday(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get quota: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"askedToday": asked,
		"tier":       user.Subscription.Type,
	})
}

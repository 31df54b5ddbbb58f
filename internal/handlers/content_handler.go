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

// ContentHandler handles study material HTTP requests
type ContentHandler struct {
	contentService *services.ContentService
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(contentService *services.ContentService) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
	}
}

// ListContent handles GET /content
func (h *ContentHandler) ListContent(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	subject := c.Query("subject")

	contents, err := h.contentService.ListContent(c.Request.Context(), user, subject, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get content: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": contents})
}

// GetContent handles GET /content/:id
func (h *ContentHandler) GetContent(c *gin.Context) {
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

	view, err := h.contentService.GetContent(c.Request.Context(), user, id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		case errors.Is(err, services.ErrPremiumContent):
			c.JSON(http.StatusForbidden, gin.H{"error": "Active subscription required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get content: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

// ToggleBookmark handles POST /content/:id/bookmark
func (h *ContentHandler) ToggleBookmark(c *gin.Context) {
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

	bookmarked, err := h.contentService.ToggleBookmark(c.Request.Context(), user, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle bookmark: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmarked": bookmarked})
}

// GetBookmarks handles GET /content/bookmarks
func (h *ContentHandler) GetBookmarks(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmarks": h.contentService.Bookmarks(user)})
}

// CompleteChapter handles POST /content/:id/complete
func (h *ContentHandler) CompleteChapter(c *gin.Context) {
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
		Score float64 `json:"score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Score < 0 || req.Score > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Score must be between 0 and 100"})
		return
	}

	result, err := h.contentService.CompleteChapter(c.Request.Context(), user, id, req.Score)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record completion: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recorded": result != 0,
		"progress": user.Progress,
	})
}

package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/padhai-app/padhai-backend/internal/middleware"
	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/services"
)

// AIHandler handles AI tutoring HTTP requests
type AIHandler struct {
	aiService   *services.AIService
	progression *services.ProgressionService
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(aiService *services.AIService, progression *services.ProgressionService) *AIHandler {
	return &AIHandler{
		aiService:   aiService,
		progression: progression,
	}
}

func (h *AIHandler) award(c *gin.Context, user *models.User, points int, reason string) {
	if err := h.progression.AwardXP(c.Request.Context(), user, points, reason); err != nil {
		log.Printf("[WARN] ai: failed to award XP for user %s: %v", user.ID.Hex(), err)
	}
}

// Simplify handles POST /ai/simplify
func (h *AIHandler) Simplify(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}

	result, err := h.aiService.Simplify(c.Request.Context(), req.Text, user.Class)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI request failed: " + err.Error()})
		return
	}

	h.award(c, user, services.XPAISimplifier, "AI Simplifier Used")
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// ExplainConcept handles POST /ai/explain
func (h *AIHandler) ExplainConcept(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	var req struct {
		Concept string `json:"concept"`
		Subject string `json:"subject"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Concept) == "" || strings.TrimSpace(req.Subject) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Concept and subject are required"})
		return
	}

	result, err := h.aiService.ExplainConcept(c.Request.Context(), req.Concept, req.Subject, user.Class)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI request failed: " + err.Error()})
		return
	}

	h.award(c, user, services.XPAIExplainer, "AI Explainer Used")
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// GenerateQuestions handles POST /ai/questions
func (h *AIHandler) GenerateQuestions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	var req struct {
		Subject    string `json:"subject"`
		Chapter    string `json:"chapter"`
		Count      int    `json:"count"`
		Difficulty string `json:"difficulty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Chapter) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subject and chapter are required"})
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}

	result, err := h.aiService.GenerateQuestions(c.Request.Context(), req.Subject, req.Chapter, user.Class, req.Count, req.Difficulty)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI request failed: " + err.Error()})
		return
	}

	h.award(c, user, services.XPAIQuestionGen, "AI Question Generator Used")
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// StudyPlan handles POST /ai/study-plan
func (h *AIHandler) StudyPlan(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	var req struct {
		Subjects []string `json:"subjects"`
		Days     int      `json:"days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Subjects) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one subject is required"})
		return
	}

	result, err := h.aiService.StudyPlan(c.Request.Context(), req.Subjects, user.Class, req.Days)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI request failed: " + err.Error()})
		return
	}

	h.award(c, user, services.XPAIStudyPlanner, "AI Study Planner Used")
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// Chat handles POST /ai/chat
func (h *AIHandler) Chat(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	result, err := h.aiService.Chat(c.Request.Context(), req.Message, user.Class)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI request failed: " + err.Error()})
		return
	}

	h.award(c, user, services.XPAIChat, "AI Chat Used")
	c.JSON(http.StatusOK, gin.H{"result": result})
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/padhai-app/padhai-backend/internal/config"
	"github.com/padhai-app/padhai-backend/internal/handlers"
	"github.com/padhai-app/padhai-backend/internal/middleware"
	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/policy"
)

// HandlerDependencies carries the constructed handlers and the access gate
// into route setup.
type HandlerDependencies struct {
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	DoubtHandler   *handlers.DoubtHandler
	ContentHandler *handlers.ContentHandler
	TestHandler    *handlers.TestHandler
	AIHandler      *handlers.AIHandler
	Gate           *policy.Gate
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps *HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
			auth.POST("/otp/request", deps.AuthHandler.RequestOTP)
			auth.POST("/otp/verify", deps.AuthHandler.VerifyOTP)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		users := protected.Group("/users")
		users.Use(middleware.Authenticated(deps.Gate))
		{
			users.GET("/me", deps.UserHandler.GetMe)
			users.PUT("/me", deps.UserHandler.UpdateMe)
			users.GET("/me/dashboard", deps.UserHandler.GetDashboard)
			users.GET("/me/xp", deps.UserHandler.GetXPHistory)
			users.GET("/leaderboard", deps.UserHandler.GetLeaderboard)
		}

		doubts := protected.Group("/doubts")
		{
			// Submission reserves a quota unit atomically before the handler
			// runs; everything else only needs the account resolved.
			doubts.POST("", middleware.DoubtRateLimit(deps.Gate), deps.DoubtHandler.CreateDoubt)
			doubts.GET("", middleware.Authenticated(deps.Gate), deps.DoubtHandler.ListDoubts)
			doubts.GET("/quota", middleware.Authenticated(deps.Gate), deps.DoubtHandler.GetQuotaStatus)
			doubts.GET("/:id", middleware.Authenticated(deps.Gate), deps.DoubtHandler.GetDoubt)
			doubts.POST("/:id/answers", middleware.Authenticated(deps.Gate), deps.DoubtHandler.AddAnswer)
			doubts.POST("/:id/resolve", middleware.Authenticated(deps.Gate), deps.DoubtHandler.ResolveDoubt)
		}

		content := protected.Group("/content")
		content.Use(middleware.Authenticated(deps.Gate))
		{
			content.GET("", deps.ContentHandler.ListContent)
			content.GET("/bookmarks", deps.ContentHandler.GetBookmarks)
			content.GET("/:id", deps.ContentHandler.GetContent)
			content.POST("/:id/bookmark", deps.ContentHandler.ToggleBookmark)
			content.POST("/:id/complete", deps.ContentHandler.CompleteChapter)
		}

		tests := protected.Group("/tests")
		tests.Use(middleware.Authenticated(deps.Gate))
		{
			tests.GET("", deps.TestHandler.ListTests)
			tests.GET("/attempts", deps.TestHandler.RecentAttempts)
			tests.POST("/:id/attempts", deps.TestHandler.SubmitAttempt)
		}

		ai := protected.Group("/ai")
		{
			ai.POST("/simplify", middleware.Authenticated(deps.Gate), deps.AIHandler.Simplify)
			ai.POST("/explain", middleware.Authenticated(deps.Gate), deps.AIHandler.ExplainConcept)
			ai.POST("/chat", middleware.Authenticated(deps.Gate), deps.AIHandler.Chat)

			// Generation features are restricted to the top tier.
			premiumOnly := middleware.RequireTiers(deps.Gate, models.TierPremium)
			ai.POST("/questions", premiumOnly, deps.AIHandler.GenerateQuestions)
			ai.POST("/study-plan", premiumOnly, deps.AIHandler.StudyPlan)
		}
	}

	return router
}

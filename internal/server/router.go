package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/minachen/sproutlog-backend/internal/handlers"
	"github.com/minachen/sproutlog-backend/internal/middleware"
)

type RouterConfig struct {
	RequestLog      *middleware.RequestLogMiddleware
	EntryHandler    *handlers.EntryHandler
	QuestionHandler *handlers.QuestionHandler
	ChatHandler     *handlers.ChatHandler
	DigestHandler   *handlers.DigestHandler
	LearningHandler *handlers.LearningHandler
	StrategyHandler *handlers.StrategyHandler
	PromptHandler   *handlers.PromptHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.RequestLog != nil {
		router.Use(cfg.RequestLog.Log())
	}

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Entries
		api.POST("/entries", cfg.EntryHandler.CreateEntry)
		api.GET("/entries", cfg.EntryHandler.ListEntries)
		api.GET("/entries/:id", cfg.EntryHandler.GetEntry)

		// Questions
		api.POST("/questions", cfg.QuestionHandler.CreateQuestion)
		api.GET("/questions", cfg.QuestionHandler.ListQuestions)
		api.GET("/questions/:id", cfg.QuestionHandler.GetQuestion)
		api.PATCH("/questions/:id", cfg.QuestionHandler.UpdateQuestion)
		api.DELETE("/questions/:id", cfg.QuestionHandler.DeleteQuestion)
		api.POST("/questions/:id/observations", cfg.QuestionHandler.AddObservation)
		api.POST("/questions/:id/discuss", cfg.QuestionHandler.Discuss)

		// Chat
		api.POST("/chat", cfg.ChatHandler.Send)
		api.GET("/chat", cfg.ChatHandler.ListConversations)
		api.GET("/chat/:id", cfg.ChatHandler.GetConversation)

		// Digests
		api.POST("/digests", cfg.DigestHandler.CreateDigest)
		api.GET("/digests", cfg.DigestHandler.ListDigests)
		api.GET("/digests/:date", cfg.DigestHandler.GetDigest)
		api.PUT("/digests/:date", cfg.DigestHandler.UpdateDigest)
		api.DELETE("/digests/:date", cfg.DigestHandler.DeleteDigest)

		// Learnings
		api.POST("/learnings", cfg.LearningHandler.CreateLearning)
		api.GET("/learnings", cfg.LearningHandler.ListLearnings)
		api.GET("/learnings/:id", cfg.LearningHandler.GetLearning)
		api.PATCH("/learnings/:id", cfg.LearningHandler.UpdateLearning)
		api.DELETE("/learnings/:id", cfg.LearningHandler.DeleteLearning)

		// Strategies
		api.GET("/strategies", cfg.StrategyHandler.ListStrategies)

		// Prompt admin
		api.GET("/prompts/:agent", cfg.PromptHandler.ListVersions)
		api.POST("/prompts/:agent", cfg.PromptHandler.CreateVersion)
		api.POST("/prompts/:agent/enable", cfg.PromptHandler.EnableVersion)
		api.POST("/prompts/cache/clear", cfg.PromptHandler.ClearCache)
	}

	return router
}

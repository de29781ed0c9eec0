package app

import (
	"github.com/gin-gonic/gin"

	"github.com/minachen/sproutlog-backend/internal/server"
)

func wireRouter(handlers Handlers, middleware Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		RequestLog:      middleware.RequestLog,
		EntryHandler:    handlers.Entry,
		QuestionHandler: handlers.Question,
		ChatHandler:     handlers.Chat,
		DigestHandler:   handlers.Digest,
		LearningHandler: handlers.Learning,
		StrategyHandler: handlers.Strategy,
		PromptHandler:   handlers.Prompt,
	})
}

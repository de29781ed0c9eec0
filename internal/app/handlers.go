package app

import (
	"github.com/minachen/sproutlog-backend/internal/handlers"
	"github.com/minachen/sproutlog-backend/internal/logger"
)

type Handlers struct {
	Entry    *handlers.EntryHandler
	Question *handlers.QuestionHandler
	Chat     *handlers.ChatHandler
	Digest   *handlers.DigestHandler
	Learning *handlers.LearningHandler
	Strategy *handlers.StrategyHandler
	Prompt   *handlers.PromptHandler
}

func wireHandlers(log *logger.Logger, s Services, r Repos) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Entry:    handlers.NewEntryHandler(s.Entry),
		Question: handlers.NewQuestionHandler(s.Question),
		Chat:     handlers.NewChatHandler(s.Chat),
		Digest:   handlers.NewDigestHandler(s.Digest),
		Learning: handlers.NewLearningHandler(s.Learning),
		Strategy: handlers.NewStrategyHandler(r.Strategy),
		Prompt:   handlers.NewPromptHandler(s.Prompts),
	}
}

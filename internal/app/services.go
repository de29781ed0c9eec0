package app

import (
	"fmt"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/services"
)

type Services struct {
	OpenAI    services.OpenAIClient
	Prompts   services.PromptRegistry
	Invoker   services.AgentInvoker
	Recorder  services.RecorderService
	Retrieval services.RetrievalService
	Expert    services.ExpertService
	Entry     services.EntryService
	Question  services.QuestionService
	Chat      services.ChatService
	Digest    services.DigestService
	Learning  services.LearningService
}

func wireServices(log *logger.Logger, cfg Config, r Repos) (Services, error) {
	log.Info("Wiring services...")

	openAI, err := services.NewOpenAIClient(log)
	if err != nil {
		return Services{}, fmt.Errorf("init openai client: %w", err)
	}

	prompts := services.NewPromptRegistry(r.AgentPrompt, log, services.PromptRegistryOptions{
		PromptsDir: cfg.PromptsDir,
		CacheTTL:   cfg.PromptCacheTTL,
	})

	agentConfigs, err := services.LoadAgentConfigs(cfg.AgentConfigPath)
	if err != nil {
		return Services{}, err
	}
	invoker := services.NewAgentInvoker(openAI, prompts, r.AICallLog, log, agentConfigs)

	recorder := services.NewRecorderService(invoker, log)
	scorer := services.NewTagOverlapScorer(r.Entry, log)
	retrieval := services.NewRetrievalService(r.Entry, r.Strategy, scorer, log)
	expert := services.NewExpertService(invoker, log)

	entry := services.NewEntryService(r.Entry, r.FactCard, r.ExpertAnalysis, recorder, retrieval, expert, log)
	question := services.NewQuestionService(
		r.Question, r.QuestionObservation, r.QuestionDiscussion, r.ChildProfile,
		prompts, openAI, invoker, log,
	)
	chat := services.NewChatService(
		r.Conversation, r.ChatMessage, r.Entry, r.ChildProfile, r.ValuesPrinciple,
		prompts, openAI, invoker, log,
	)

	return Services{
		OpenAI:    openAI,
		Prompts:   prompts,
		Invoker:   invoker,
		Recorder:  recorder,
		Retrieval: retrieval,
		Expert:    expert,
		Entry:     entry,
		Question:  question,
		Chat:      chat,
		Digest:    services.NewDigestService(r.DailyDigest, log),
		Learning:  services.NewLearningService(r.Learning, log),
	}, nil
}

package app

import (
	"gorm.io/gorm"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/repos"
)

type Repos struct {
	Entry               repos.EntryRepo
	FactCard            repos.FactCardRepo
	ExpertAnalysis      repos.ExpertAnalysisRepo
	Question            repos.QuestionRepo
	QuestionObservation repos.QuestionObservationRepo
	QuestionDiscussion  repos.QuestionDiscussionRepo
	AgentPrompt         repos.AgentPromptRepo
	Strategy            repos.StrategyRepo
	DailyDigest         repos.DailyDigestRepo
	Learning            repos.LearningRepo
	Conversation        repos.ConversationRepo
	ChatMessage         repos.ChatMessageRepo
	ChildProfile        repos.ChildProfileRepo
	ValuesPrinciple     repos.ValuesPrincipleRepo
	AICallLog           repos.AICallLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Entry:               repos.NewEntryRepo(db, log),
		FactCard:            repos.NewFactCardRepo(db, log),
		ExpertAnalysis:      repos.NewExpertAnalysisRepo(db, log),
		Question:            repos.NewQuestionRepo(db, log),
		QuestionObservation: repos.NewQuestionObservationRepo(db, log),
		QuestionDiscussion:  repos.NewQuestionDiscussionRepo(db, log),
		AgentPrompt:         repos.NewAgentPromptRepo(db, log),
		Strategy:            repos.NewStrategyRepo(db, log),
		DailyDigest:         repos.NewDailyDigestRepo(db, log),
		Learning:            repos.NewLearningRepo(db, log),
		Conversation:        repos.NewConversationRepo(db, log),
		ChatMessage:         repos.NewChatMessageRepo(db, log),
		ChildProfile:        repos.NewChildProfileRepo(db, log),
		ValuesPrinciple:     repos.NewValuesPrincipleRepo(db, log),
		AICallLog:           repos.NewAICallLogRepo(db, log),
	}
}

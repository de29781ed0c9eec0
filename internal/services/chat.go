package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/repos"
	"github.com/minachen/sproutlog-backend/internal/types"
)

const (
	chatRecentEntries   = 5
	chatRelevantEntries = 5
	chatTitleMaxRunes   = 30
)

type SendChatResult struct {
	ConversationID    uuid.UUID           `json:"conversation_id"`
	Reply             *types.ChatMessage  `json:"reply"`
	IsNewConversation bool                `json:"is_new_conversation"`
	Conversation      *types.Conversation `json:"conversation,omitempty"`
}

// ChatService runs the freeform companion chat. Every turn is grounded in
// recent entries, keyword-matched entries, the child profile, and the
// family's active principles.
type ChatService interface {
	Send(ctx context.Context, conversationID *uuid.UUID, message string) (*SendChatResult, error)
	ListConversations(ctx context.Context, limit int) ([]*types.Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (*types.Conversation, error)
}

type chatService struct {
	convRepo      repos.ConversationRepo
	messageRepo   repos.ChatMessageRepo
	entryRepo     repos.EntryRepo
	profileRepo   repos.ChildProfileRepo
	principleRepo repos.ValuesPrincipleRepo
	registry      PromptRegistry
	client        OpenAIClient
	invoker       AgentInvoker
	log           *logger.Logger
}

func NewChatService(
	convRepo repos.ConversationRepo,
	messageRepo repos.ChatMessageRepo,
	entryRepo repos.EntryRepo,
	profileRepo repos.ChildProfileRepo,
	principleRepo repos.ValuesPrincipleRepo,
	registry PromptRegistry,
	client OpenAIClient,
	invoker AgentInvoker,
	baseLog *logger.Logger,
) ChatService {
	return &chatService{
		convRepo:      convRepo,
		messageRepo:   messageRepo,
		entryRepo:     entryRepo,
		profileRepo:   profileRepo,
		principleRepo: principleRepo,
		registry:      registry,
		client:        client,
		invoker:       invoker,
		log:           baseLog.With("service", "ChatService"),
	}
}

func (s *chatService) Send(ctx context.Context, conversationID *uuid.UUID, message string) (*SendChatResult, error) {
	text := strings.TrimSpace(message)
	if text == "" {
		return nil, errors.New("message is required")
	}

	var conv *types.Conversation
	isNew := false
	if conversationID != nil {
		existing, err := s.convRepo.GetWithMessages(ctx, *conversationID)
		if err != nil {
			return nil, err
		}
		conv = existing
	} else {
		created, err := s.convRepo.Create(ctx, nil, &types.Conversation{Status: "active"})
		if err != nil {
			return nil, err
		}
		conv = created
		isNew = true
	}

	history := make([]ChatTurn, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		history = append(history, ChatTurn{Role: msg.Role, Content: msg.Content})
	}

	prompt, err := s.registry.Resolve(ctx, AgentChat)
	if err != nil {
		return nil, err
	}
	system := prompt.SystemPrompt + "\n\n" + s.buildChatContext(ctx, text)

	if _, err := s.messageRepo.Create(ctx, nil, &types.ChatMessage{
		ConversationID: conv.ID,
		Role:           "user",
		Content:        text,
	}); err != nil {
		return nil, err
	}

	cfg := s.invoker.ConfigFor(AgentChat)
	reply, err := s.client.Chat(ctx, system, history, text, CallSettings{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("chat call failed: %w", err)
	}
	content := strings.TrimSpace(reply.Content)
	if content == "" {
		return nil, errors.New("chat call returned an empty response")
	}

	assistantMsg, err := s.messageRepo.Create(ctx, nil, &types.ChatMessage{
		ConversationID: conv.ID,
		Role:           "assistant",
		Content:        content,
	})
	if err != nil {
		return nil, err
	}

	if isNew {
		title := chatTitle(text)
		if err := s.convRepo.UpdateTitle(ctx, nil, conv.ID, title); err != nil {
			s.log.Warn("failed to set conversation title", "conversation_id", conv.ID, "error", err)
		} else {
			conv.Title = &title
		}
	}

	return &SendChatResult{
		ConversationID:    conv.ID,
		Reply:             assistantMsg,
		IsNewConversation: isNew,
		Conversation:      conv,
	}, nil
}

func (s *chatService) buildChatContext(ctx context.Context, message string) string {
	var b strings.Builder

	if profile, err := s.profileRepo.First(ctx); err == nil {
		fmt.Fprintf(&b, "## Child\n%s, age %s\n\n", profile.Name, ageLabel(profile.Birthday, time.Now()))
	}

	if principles, err := s.principleRepo.ListActive(ctx); err == nil && len(principles) > 0 {
		b.WriteString("## Family principles\n")
		for _, p := range principles {
			fmt.Fprintf(&b, "- %s\n", p.Principle)
		}
		b.WriteString("\n")
	}

	if recent, err := s.entryRepo.ListRecent(ctx, nil, chatRecentEntries); err == nil && len(recent) > 0 {
		b.WriteString("## Recent journal entries\n")
		writeChatEntries(&b, recent)
		b.WriteString("\n")
	}

	if keywords := extractTopicTags(message); len(keywords) > 0 {
		if relevant, err := s.entryRepo.ListTagged(ctx, keywords, nil, chatRelevantEntries); err == nil && len(relevant) > 0 {
			b.WriteString("## Entries related to the question\n")
			writeChatEntries(&b, relevant)
		}
	}
	return b.String()
}

func writeChatEntries(b *strings.Builder, entries []*types.Entry) {
	for _, entry := range entries {
		line := entry.RawText
		if entry.FactCard != nil && entry.FactCard.OneLine != "" {
			line = entry.FactCard.OneLine
		}
		fmt.Fprintf(b, "- %s: %s\n", entry.EntryDate.Format("2006-01-02"), line)
	}
}

// topicTriggers maps substrings of the user's message to journal tags worth
// pulling into context.
var topicTriggers = []struct {
	trigger string
	tags    []string
}{
	{"sleep", []string{"sleep", "nap", "bedtime"}},
	{"nap", []string{"sleep", "nap"}},
	{"cry", []string{"crying", "tantrum", "emotion"}},
	{"tantrum", []string{"tantrum", "emotion"}},
	{"eat", []string{"feeding", "eating", "picky eating"}},
	{"food", []string{"feeding", "eating", "picky eating"}},
	{"meal", []string{"feeding", "eating"}},
	{"friend", []string{"social", "peer", "sharing"}},
	{"play", []string{"play", "social"}},
	{"daycare", []string{"daycare", "separation"}},
	{"talk", []string{"language", "milestone"}},
}

func extractTopicTags(message string) []string {
	lowered := strings.ToLower(message)
	seen := make(map[string]struct{})
	var tags []string
	for _, t := range topicTriggers {
		if !strings.Contains(lowered, t.trigger) {
			continue
		}
		for _, tag := range t.tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}

func chatTitle(message string) string {
	runes := []rune(strings.TrimSpace(message))
	if len(runes) <= chatTitleMaxRunes {
		return string(runes)
	}
	return string(runes[:chatTitleMaxRunes]) + "…"
}

func (s *chatService) ListConversations(ctx context.Context, limit int) ([]*types.Conversation, error) {
	return s.convRepo.List(ctx, limit)
}

func (s *chatService) GetConversation(ctx context.Context, id uuid.UUID) (*types.Conversation, error) {
	return s.convRepo.GetWithMessages(ctx, id)
}

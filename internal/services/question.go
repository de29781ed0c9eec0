package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/repos"
	"github.com/minachen/sproutlog-backend/internal/types"
)

// Stage machine tuning. A question moves from observing to experimenting
// once it has at least observationStageThreshold observations and a trial
// keyword shows up in the new observation or the last
// observationScanWindow observations. Later transitions are user-driven.
const (
	observationStageThreshold = 3
	observationScanWindow     = 5
	discussionHistoryLimit    = 20
	discussionObservationsCap = 10
)

var trialKeywords = []string{"tried", "attempt", "testing", "experiment", "trial"}

type UpdateQuestionInput struct {
	Question          *string
	Stage             *string
	CurrentConclusion *string
	ConclusionSource  *string
	DisplayOrder      *int
}

type AddObservationResult struct {
	Observation *types.QuestionObservation `json:"observation"`
	// StageUpdate is the new stage when the observation triggered a
	// transition, empty otherwise.
	StageUpdate string `json:"stage_update,omitempty"`
}

type DiscussResult struct {
	UserMessage         *types.QuestionDiscussion `json:"user_message"`
	AssistantMessage    *types.QuestionDiscussion `json:"assistant_message"`
	SuggestedConclusion *string                   `json:"suggested_conclusion,omitempty"`
}

type QuestionService interface {
	Create(ctx context.Context, question string) (*types.ParentingQuestion, error)
	List(ctx context.Context) ([]*types.ParentingQuestion, error)
	Get(ctx context.Context, id uuid.UUID) (*types.ParentingQuestion, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateQuestionInput) (*types.ParentingQuestion, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddObservation(ctx context.Context, questionID uuid.UUID, content string, entryID *uuid.UUID) (*AddObservationResult, error)
	Discuss(ctx context.Context, questionID uuid.UUID, message string) (*DiscussResult, error)
}

type questionService struct {
	questionRepo   repos.QuestionRepo
	obsRepo        repos.QuestionObservationRepo
	discussionRepo repos.QuestionDiscussionRepo
	profileRepo    repos.ChildProfileRepo
	registry       PromptRegistry
	client         OpenAIClient
	invoker        AgentInvoker
	log            *logger.Logger
}

func NewQuestionService(
	questionRepo repos.QuestionRepo,
	obsRepo repos.QuestionObservationRepo,
	discussionRepo repos.QuestionDiscussionRepo,
	profileRepo repos.ChildProfileRepo,
	registry PromptRegistry,
	client OpenAIClient,
	invoker AgentInvoker,
	baseLog *logger.Logger,
) QuestionService {
	return &questionService{
		questionRepo:   questionRepo,
		obsRepo:        obsRepo,
		discussionRepo: discussionRepo,
		profileRepo:    profileRepo,
		registry:       registry,
		client:         client,
		invoker:        invoker,
		log:            baseLog.With("service", "QuestionService"),
	}
}

func (s *questionService) Create(ctx context.Context, question string) (*types.ParentingQuestion, error) {
	text := strings.TrimSpace(question)
	if text == "" {
		return nil, errors.New("question is required")
	}
	maxOrder, err := s.questionRepo.MaxDisplayOrder(ctx)
	if err != nil {
		return nil, err
	}
	return s.questionRepo.Create(ctx, nil, &types.ParentingQuestion{
		Question:     text,
		Stage:        types.QuestionStageObserving,
		DisplayOrder: maxOrder + 1,
	})
}

func (s *questionService) List(ctx context.Context) ([]*types.ParentingQuestion, error) {
	return s.questionRepo.List(ctx)
}

func (s *questionService) Get(ctx context.Context, id uuid.UUID) (*types.ParentingQuestion, error) {
	return s.questionRepo.GetDetail(ctx, id)
}

func (s *questionService) Update(ctx context.Context, id uuid.UUID, input UpdateQuestionInput) (*types.ParentingQuestion, error) {
	fields := map[string]interface{}{}
	if input.Question != nil {
		text := strings.TrimSpace(*input.Question)
		if text == "" {
			return nil, errors.New("question cannot be empty")
		}
		fields["question"] = text
	}
	if input.Stage != nil {
		if !types.IsQuestionStage(*input.Stage) {
			return nil, fmt.Errorf("unknown stage %q", *input.Stage)
		}
		fields["stage"] = *input.Stage
	}
	if input.CurrentConclusion != nil {
		fields["current_conclusion"] = *input.CurrentConclusion
	}
	if input.ConclusionSource != nil {
		if !types.IsConclusionSource(*input.ConclusionSource) {
			return nil, fmt.Errorf("unknown conclusion source %q", *input.ConclusionSource)
		}
		fields["conclusion_source"] = *input.ConclusionSource
	}
	if input.DisplayOrder != nil {
		fields["display_order"] = *input.DisplayOrder
	}
	if len(fields) == 0 {
		return s.questionRepo.GetByID(ctx, id)
	}
	if err := s.questionRepo.Update(ctx, nil, id, fields); err != nil {
		return nil, err
	}
	return s.questionRepo.GetByID(ctx, id)
}

func (s *questionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.questionRepo.Delete(ctx, id)
}

func (s *questionService) AddObservation(ctx context.Context, questionID uuid.UUID, content string, entryID *uuid.UUID) (*AddObservationResult, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return nil, errors.New("content is required")
	}
	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	source := types.ObservationSourceManual
	if entryID != nil {
		source = types.ObservationSourceEntry
	}
	obs, err := s.obsRepo.Create(ctx, nil, &types.QuestionObservation{
		QuestionID: questionID,
		Content:    text,
		Source:     source,
		EntryID:    entryID,
	})
	if err != nil {
		return nil, err
	}

	result := &AddObservationResult{Observation: obs}
	if question.Stage != types.QuestionStageObserving {
		return result, nil
	}

	count, err := s.obsRepo.CountByQuestion(ctx, questionID)
	if err != nil {
		s.log.Warn("observation count failed, skipping stage check", "question_id", questionID, "error", err)
		return result, nil
	}
	if count < observationStageThreshold {
		return result, nil
	}

	triggered := containsTrialKeyword(text)
	if !triggered {
		recent, err := s.obsRepo.ListRecent(ctx, questionID, observationScanWindow)
		if err != nil {
			s.log.Warn("recent observation scan failed, skipping stage check", "question_id", questionID, "error", err)
			return result, nil
		}
		for _, o := range recent {
			if containsTrialKeyword(o.Content) {
				triggered = true
				break
			}
		}
	}
	if !triggered {
		return result, nil
	}

	err = s.questionRepo.Update(ctx, nil, questionID, map[string]interface{}{
		"stage": types.QuestionStageExperimenting,
	})
	if err != nil {
		s.log.Warn("stage transition failed", "question_id", questionID, "error", err)
		return result, nil
	}
	s.log.Info("question advanced to experimenting", "question_id", questionID, "observations", count)
	result.StageUpdate = types.QuestionStageExperimenting
	return result, nil
}

func containsTrialKeyword(content string) bool {
	lowered := strings.ToLower(content)
	for _, keyword := range trialKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func (s *questionService) Discuss(ctx context.Context, questionID uuid.UUID, message string) (*DiscussResult, error) {
	text := strings.TrimSpace(message)
	if text == "" {
		return nil, errors.New("message is required")
	}
	question, err := s.questionRepo.GetDetail(ctx, questionID)
	if err != nil {
		return nil, err
	}

	prompt, err := s.registry.Resolve(ctx, AgentExpert)
	if err != nil {
		return nil, err
	}
	system := prompt.SystemPrompt + "\n\n" + buildQuestionContext(ctx, s.profileRepo, question)

	history := make([]ChatTurn, 0, discussionHistoryLimit)
	for i, turn := range question.Discussions {
		if i >= discussionHistoryLimit {
			break
		}
		history = append(history, ChatTurn{Role: turn.Role, Content: turn.Content})
	}

	cfg := s.invoker.ConfigFor(AgentChat)
	reply, err := s.client.Chat(ctx, system, history, text, CallSettings{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("discussion call failed: %w", err)
	}
	content := strings.TrimSpace(reply.Content)
	if content == "" {
		return nil, errors.New("discussion call returned an empty response")
	}

	userMsg, err := s.discussionRepo.Create(ctx, nil, &types.QuestionDiscussion{
		QuestionID: questionID,
		Role:       "user",
		Content:    text,
	})
	if err != nil {
		return nil, err
	}
	assistantMsg, err := s.discussionRepo.Create(ctx, nil, &types.QuestionDiscussion{
		QuestionID: questionID,
		Role:       "assistant",
		Content:    content,
	})
	if err != nil {
		return nil, err
	}

	return &DiscussResult{
		UserMessage:         userMsg,
		AssistantMessage:    assistantMsg,
		SuggestedConclusion: extractConclusionSuggestion(content),
	}, nil
}

func buildQuestionContext(ctx context.Context, profileRepo repos.ChildProfileRepo, question *types.ParentingQuestion) string {
	var b strings.Builder
	b.WriteString("## Question under discussion\n")
	b.WriteString(question.Question + "\n")
	fmt.Fprintf(&b, "Stage: %s\n", question.Stage)
	if question.CurrentConclusion != nil && *question.CurrentConclusion != "" {
		fmt.Fprintf(&b, "Current conclusion: %s\n", *question.CurrentConclusion)
	}

	if profile, err := profileRepo.First(ctx); err == nil {
		fmt.Fprintf(&b, "\n## Child\n%s, born %s\n", profile.Name, profile.Birthday.Format("2006-01-02"))
	}

	if len(question.Observations) > 0 {
		b.WriteString("\n## Observations (newest first)\n")
		for i, obs := range question.Observations {
			if i >= discussionObservationsCap {
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", obs.CreatedAt.Format("2006-01-02"), obs.Content)
		}
	}
	return b.String()
}

var conclusionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:conclusion|summary|takeaway)\s*[:：]\s*([^\n]+)`),
	regexp.MustCompile(`(?i)(?:you could try|i suggest|consider)\s+([^\n]+)`),
}

// extractConclusionSuggestion scans an assistant reply for a short phrase
// worth proposing as the question's conclusion. Returns nil when nothing
// matches; the parent always decides whether to adopt it.
func extractConclusionSuggestion(reply string) *string {
	for _, pattern := range conclusionPatterns {
		if m := pattern.FindStringSubmatch(reply); len(m) > 1 {
			suggestion := strings.TrimSpace(m[1])
			if suggestion != "" {
				return &suggestion
			}
		}
	}
	return nil
}

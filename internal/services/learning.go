package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/repos"
	"github.com/minachen/sproutlog-backend/internal/types"
)

type CreateLearningInput struct {
	Topic          string      `json:"topic"`
	Insight        string      `json:"insight"`
	Status         string      `json:"status"`
	Confidence     *float64    `json:"confidence"`
	Evidence       interface{} `json:"evidence"`
	Source         string      `json:"source"`
	SourceDigestID *uuid.UUID  `json:"source_digest_id"`
}

type UpdateLearningInput struct {
	Topic      *string     `json:"topic"`
	Insight    *string     `json:"insight"`
	Status     *string     `json:"status"`
	Confidence *float64    `json:"confidence"`
	Evidence   interface{} `json:"evidence"`
}

type LearningService interface {
	Create(ctx context.Context, input CreateLearningInput) (*types.Learning, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Learning, error)
	List(ctx context.Context, filter repos.LearningFilter) ([]*types.Learning, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateLearningInput) (*types.Learning, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type learningService struct {
	repo repos.LearningRepo
	log  *logger.Logger
}

func NewLearningService(repo repos.LearningRepo, baseLog *logger.Logger) LearningService {
	return &learningService{
		repo: repo,
		log:  baseLog.With("service", "LearningService"),
	}
}

func isLearningStatus(s string) bool {
	return s == types.LearningStatusHypothesis ||
		s == types.LearningStatusValidated ||
		s == types.LearningStatusInvalidated
}

func (s *learningService) Create(ctx context.Context, input CreateLearningInput) (*types.Learning, error) {
	topic := strings.TrimSpace(input.Topic)
	insight := strings.TrimSpace(input.Insight)
	if topic == "" {
		return nil, errors.New("topic is required")
	}
	if insight == "" {
		return nil, errors.New("insight is required")
	}

	learning := &types.Learning{
		Topic:          topic,
		Insight:        insight,
		Status:         types.LearningStatusHypothesis,
		Confidence:     0.5,
		Source:         "user",
		SourceDigestID: input.SourceDigestID,
	}
	if input.Status != "" {
		if !isLearningStatus(input.Status) {
			return nil, fmt.Errorf("unknown status %q", input.Status)
		}
		learning.Status = input.Status
	}
	if input.Confidence != nil {
		if *input.Confidence < 0 || *input.Confidence > 1 {
			return nil, errors.New("confidence must be between 0 and 1")
		}
		learning.Confidence = *input.Confidence
	}
	if input.Evidence != nil {
		learning.Evidence = mustJSON(input.Evidence)
	}
	if input.Source != "" {
		learning.Source = input.Source
	}
	return s.repo.Create(ctx, nil, learning)
}

func (s *learningService) Get(ctx context.Context, id uuid.UUID) (*types.Learning, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *learningService) List(ctx context.Context, filter repos.LearningFilter) ([]*types.Learning, error) {
	return s.repo.List(ctx, filter)
}

func (s *learningService) Update(ctx context.Context, id uuid.UUID, input UpdateLearningInput) (*types.Learning, error) {
	fields := map[string]interface{}{}
	if input.Topic != nil {
		topic := strings.TrimSpace(*input.Topic)
		if topic == "" {
			return nil, errors.New("topic cannot be empty")
		}
		fields["topic"] = topic
	}
	if input.Insight != nil {
		insight := strings.TrimSpace(*input.Insight)
		if insight == "" {
			return nil, errors.New("insight cannot be empty")
		}
		fields["insight"] = insight
	}
	if input.Status != nil {
		if !isLearningStatus(*input.Status) {
			return nil, fmt.Errorf("unknown status %q", *input.Status)
		}
		fields["status"] = *input.Status
	}
	if input.Confidence != nil {
		if *input.Confidence < 0 || *input.Confidence > 1 {
			return nil, errors.New("confidence must be between 0 and 1")
		}
		fields["confidence"] = *input.Confidence
	}
	if input.Evidence != nil {
		fields["evidence"] = mustJSON(input.Evidence)
	}
	if len(fields) == 0 {
		return s.repo.GetByID(ctx, id)
	}
	if err := s.repo.Update(ctx, nil, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *learningService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/repos"
	"github.com/minachen/sproutlog-backend/internal/types"
)

// ErrDigestExists is returned when creating a digest for a date that
// already has one; callers update instead.
var ErrDigestExists = errors.New("digest already exists for this date")

type DigestFields struct {
	RecordSummary    interface{} `json:"record_summary,omitempty"`
	AIAnalysis       interface{} `json:"ai_analysis,omitempty"`
	DiscussionPoints interface{} `json:"discussion_points,omitempty"`
	Conclusions      interface{} `json:"conclusions,omitempty"`
	OpenQuestions    interface{} `json:"open_questions,omitempty"`
	EntryIDs         interface{} `json:"entry_ids,omitempty"`
	RelatedDigestIDs interface{} `json:"related_digest_ids,omitempty"`
	LearningIDs      interface{} `json:"learning_ids,omitempty"`
}

type DigestService interface {
	Create(ctx context.Context, date time.Time, fields DigestFields) (*types.DailyDigest, error)
	GetByDate(ctx context.Context, date time.Time) (*types.DailyDigest, error)
	UpdateByDate(ctx context.Context, date time.Time, fields DigestFields) (*types.DailyDigest, error)
	DeleteByDate(ctx context.Context, date time.Time) error
	List(ctx context.Context, limit, offset int) ([]*types.DailyDigest, error)
}

type digestService struct {
	repo repos.DailyDigestRepo
	log  *logger.Logger
}

func NewDigestService(repo repos.DailyDigestRepo, baseLog *logger.Logger) DigestService {
	return &digestService{
		repo: repo,
		log:  baseLog.With("service", "DigestService"),
	}
}

// normalizeDate truncates to a UTC calendar day so the per-day unique key
// behaves the same regardless of client timezone.
func normalizeDate(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *digestService) Create(ctx context.Context, date time.Time, fields DigestFields) (*types.DailyDigest, error) {
	day := normalizeDate(date)
	if existing, err := s.repo.GetByDate(ctx, day); err == nil && existing != nil {
		return nil, ErrDigestExists
	} else if err != nil && !errors.Is(err, repos.ErrNotFound) {
		return nil, err
	}

	digest := &types.DailyDigest{Date: day}
	applyDigestFields(digest, fields)
	return s.repo.Create(ctx, nil, digest)
}

func applyDigestFields(digest *types.DailyDigest, fields DigestFields) {
	for _, f := range []struct {
		value  interface{}
		target *datatypes.JSON
	}{
		{fields.RecordSummary, &digest.RecordSummary},
		{fields.AIAnalysis, &digest.AIAnalysis},
		{fields.DiscussionPoints, &digest.DiscussionPoints},
		{fields.Conclusions, &digest.Conclusions},
		{fields.OpenQuestions, &digest.OpenQuestions},
		{fields.EntryIDs, &digest.EntryIDs},
		{fields.RelatedDigestIDs, &digest.RelatedDigestIDs},
		{fields.LearningIDs, &digest.LearningIDs},
	} {
		if f.value != nil {
			*f.target = mustJSON(f.value)
		}
	}
}

func (s *digestService) GetByDate(ctx context.Context, date time.Time) (*types.DailyDigest, error) {
	return s.repo.GetByDate(ctx, normalizeDate(date))
}

func (s *digestService) UpdateByDate(ctx context.Context, date time.Time, fields DigestFields) (*types.DailyDigest, error) {
	updates := map[string]interface{}{}
	for _, f := range []struct {
		value  interface{}
		column string
	}{
		{fields.RecordSummary, "record_summary"},
		{fields.AIAnalysis, "ai_analysis"},
		{fields.DiscussionPoints, "discussion_points"},
		{fields.Conclusions, "conclusions"},
		{fields.OpenQuestions, "open_questions"},
		{fields.EntryIDs, "entry_ids"},
		{fields.RelatedDigestIDs, "related_digest_ids"},
		{fields.LearningIDs, "learning_ids"},
	} {
		if f.value != nil {
			updates[f.column] = mustJSON(f.value)
		}
	}
	if len(updates) == 0 {
		return s.repo.GetByDate(ctx, normalizeDate(date))
	}
	return s.repo.UpdateByDate(ctx, nil, normalizeDate(date), updates)
}

func (s *digestService) DeleteByDate(ctx context.Context, date time.Time) error {
	return s.repo.DeleteByDate(ctx, normalizeDate(date))
}

func (s *digestService) List(ctx context.Context, limit, offset int) ([]*types.DailyDigest, error) {
	return s.repo.List(ctx, limit, offset)
}

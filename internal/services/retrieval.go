package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/repos"
	"github.com/minachen/sproutlog-backend/internal/types"
)

const (
	defaultRetrievalLimit   = 6
	maxContextStrategies    = 5
	similarOverfetchFactor  = 2
)

// SimilarityScorer ranks past entries by similarity to a fact card. The
// shipped implementation scores by tag overlap; an embedding-based scorer
// can replace it behind the same interface.
type SimilarityScorer interface {
	Similar(ctx context.Context, fact *types.FactCardOutput, excludeIDs []uuid.UUID, quota int) ([]*types.EntryWithAnalysis, error)
}

type tagOverlapScorer struct {
	entryRepo repos.EntryRepo
	log       *logger.Logger
}

func NewTagOverlapScorer(entryRepo repos.EntryRepo, baseLog *logger.Logger) SimilarityScorer {
	return &tagOverlapScorer{
		entryRepo: entryRepo,
		log:       baseLog.With("service", "TagOverlapScorer"),
	}
}

// Similar over-fetches candidates that share at least one tag, then ranks
// by overlap count descending. Candidates arrive newest first and the sort
// is stable, so equal overlap breaks toward recency. An entry sharing no
// tags is never returned, even under quota.
func (s *tagOverlapScorer) Similar(ctx context.Context, fact *types.FactCardOutput, excludeIDs []uuid.UUID, quota int) ([]*types.EntryWithAnalysis, error) {
	if quota <= 0 || len(fact.Tags) == 0 {
		return nil, nil
	}
	candidates, err := s.entryRepo.ListTagged(ctx, fact.Tags, excludeIDs, quota*similarOverfetchFactor)
	if err != nil {
		return nil, err
	}

	tagSet := make(map[string]struct{}, len(fact.Tags))
	for _, tag := range fact.Tags {
		tagSet[tag] = struct{}{}
	}
	type scored struct {
		view    *types.EntryWithAnalysis
		overlap int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, candidate := range candidates {
		view := entryView(candidate)
		if view.FactCard == nil {
			continue
		}
		overlap := 0
		for _, tag := range view.FactCard.Tags {
			if _, ok := tagSet[tag]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		ranked = append(ranked, scored{view: view, overlap: overlap})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].overlap > ranked[j].overlap
	})
	if len(ranked) > quota {
		ranked = ranked[:quota]
	}
	views := make([]*types.EntryWithAnalysis, 0, len(ranked))
	for _, r := range ranked {
		views = append(views, r.view)
	}
	return views, nil
}

// RetrievalService assembles the history context for the expert stage:
// recent entries, similar entries, and active strategies matching the
// entry's inferred categories.
type RetrievalService interface {
	Retrieve(ctx context.Context, fact *types.FactCardOutput, currentEntryID uuid.UUID, limit int) (*types.RetrievalContext, error)
}

type retrievalService struct {
	entryRepo    repos.EntryRepo
	strategyRepo repos.StrategyRepo
	scorer       SimilarityScorer
	log          *logger.Logger
}

func NewRetrievalService(
	entryRepo repos.EntryRepo,
	strategyRepo repos.StrategyRepo,
	scorer SimilarityScorer,
	baseLog *logger.Logger,
) RetrievalService {
	return &retrievalService{
		entryRepo:    entryRepo,
		strategyRepo: strategyRepo,
		scorer:       scorer,
		log:          baseLog.With("service", "RetrievalService"),
	}
}

func (s *retrievalService) Retrieve(ctx context.Context, fact *types.FactCardOutput, currentEntryID uuid.UUID, limit int) (*types.RetrievalContext, error) {
	if limit <= 0 {
		limit = defaultRetrievalLimit
	}
	recentQuota := (limit + 1) / 2
	similarQuota := limit / 2

	exclude := []uuid.UUID{currentEntryID}
	recentRows, err := s.entryRepo.ListRecent(ctx, exclude, recentQuota)
	if err != nil {
		return nil, err
	}
	recent := entryViews(recentRows)
	for _, view := range recent {
		exclude = append(exclude, view.ID)
	}

	similar, err := s.scorer.Similar(ctx, fact, exclude, similarQuota)
	if err != nil {
		return nil, err
	}

	var hints []types.StrategyHint
	if categories := inferCategories(fact.Tags); len(categories) > 0 {
		strategies, err := s.strategyRepo.ListActiveByCategories(ctx, categories, maxContextStrategies)
		if err != nil {
			return nil, err
		}
		for _, strat := range strategies {
			hints = append(hints, types.StrategyHint{
				Category:    strat.Category,
				Description: strat.Description,
				Conditions:  strat.Conditions,
			})
		}
	}

	return &types.RetrievalContext{
		RecentEntries:  recent,
		SimilarEntries: similar,
		Strategies:     hints,
	}, nil
}

// Category taxonomy for matching entry tags to strategy categories. A tag
// matches when it contains a keyword or a keyword contains it.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"sleep", []string{"sleep", "nap", "bedtime", "night waking", "night terror", "regression"}},
	{"emotion", []string{"emotion", "tantrum", "anxiety", "fear", "crying", "separation", "frustration"}},
	{"behavior", []string{"behavior", "hitting", "biting", "sharing", "defiance", "conflict"}},
	{"feeding", []string{"feeding", "eating", "picky", "meal", "appetite", "solids"}},
	{"social", []string{"social", "peer", "friend", "daycare", "preschool", "playdate"}},
}

func inferCategories(tags []string) []string {
	var categories []string
	for _, entry := range categoryKeywords {
		if tagsMatchCategory(tags, entry.keywords) {
			categories = append(categories, entry.category)
		}
	}
	return categories
}

func tagsMatchCategory(tags, keywords []string) bool {
	for _, tag := range tags {
		lowered := strings.ToLower(tag)
		for _, keyword := range keywords {
			if strings.Contains(lowered, keyword) || strings.Contains(keyword, lowered) {
				return true
			}
		}
	}
	return false
}

package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/minachen/sproutlog-backend/internal/types"
)

func TestSimilarRanksByTagOverlap(t *testing.T) {
	// Candidates newest first, overlap counts 1, 2, 2, 0 against the fact
	// card's tags. With quota 2 the two 2-overlap entries win, newest first.
	oneOverlap := entryWithTags(1, "sleep")
	twoOverlapNewer := entryWithTags(2, "sleep", "tantrum")
	twoOverlapOlder := entryWithTags(3, "tantrum", "sleep", "bedtime")
	zeroOverlap := entryWithTags(4, "feeding")

	repo := &fakeEntryRepo{tagged: []*types.Entry{oneOverlap, twoOverlapNewer, twoOverlapOlder, zeroOverlap}}
	scorer := NewTagOverlapScorer(repo, testLogger())

	fact := &types.FactCardOutput{Tags: []string{"sleep", "tantrum"}}
	got, err := scorer.Similar(context.Background(), fact, nil, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != twoOverlapNewer.ID || got[1].ID != twoOverlapOlder.ID {
		t.Fatalf("wrong ranking: %v, %v", got[0].ID, got[1].ID)
	}
}

func TestSimilarNeverReturnsZeroOverlap(t *testing.T) {
	zero := entryWithTags(1, "feeding")
	repo := &fakeEntryRepo{tagged: []*types.Entry{zero}}
	scorer := NewTagOverlapScorer(repo, testLogger())

	got, err := scorer.Similar(context.Background(), &types.FactCardOutput{Tags: []string{"sleep"}}, nil, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0: zero-overlap entries never fill the quota", len(got))
	}
}

func TestSimilarOverfetchesCandidates(t *testing.T) {
	repo := &fakeEntryRepo{}
	scorer := NewTagOverlapScorer(repo, testLogger())
	if _, err := scorer.Similar(context.Background(), &types.FactCardOutput{Tags: []string{"sleep"}}, nil, 3); err != nil {
		t.Fatal(err)
	}
	if len(repo.taggedCalls) != 1 || repo.taggedCalls[0].limit != 6 {
		t.Fatalf("taggedCalls = %+v, want one call with limit 6", repo.taggedCalls)
	}
}

func TestSimilarWithoutTagsSkipsQuery(t *testing.T) {
	repo := &fakeEntryRepo{}
	scorer := NewTagOverlapScorer(repo, testLogger())
	got, err := scorer.Similar(context.Background(), &types.FactCardOutput{}, nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil || len(repo.taggedCalls) != 0 {
		t.Fatalf("expected no query for untagged card, got %d calls", len(repo.taggedCalls))
	}
}

func TestRetrieveSplitsQuotaAndExcludesRecent(t *testing.T) {
	recentA := entryWithTags(1, "sleep")
	recentB := entryWithTags(2, "play")
	similar := entryWithTags(5, "sleep", "bedtime")
	entryRepo := &fakeEntryRepo{
		recent: []*types.Entry{recentA, recentB},
		tagged: []*types.Entry{similar},
	}
	strategyRepo := &fakeStrategyRepo{}
	svc := NewRetrievalService(entryRepo, strategyRepo, NewTagOverlapScorer(entryRepo, testLogger()), testLogger())

	currentID := uuid.New()
	fact := &types.FactCardOutput{Tags: []string{"sleep", "bedtime"}}
	result, err := svc.Retrieve(context.Background(), fact, currentID, 5)
	if err != nil {
		t.Fatal(err)
	}

	// ceil(5/2)=3 recent requested, 2 available; floor(5/2)=2 similar quota.
	if len(result.RecentEntries) != 2 {
		t.Fatalf("recent = %d, want 2", len(result.RecentEntries))
	}
	if len(result.SimilarEntries) != 1 || result.SimilarEntries[0].ID != similar.ID {
		t.Fatalf("similar = %+v", result.SimilarEntries)
	}

	// The similarity query must exclude the current entry and every recent
	// pick so sections never overlap.
	call := entryRepo.taggedCalls[0]
	wantExcluded := map[uuid.UUID]bool{currentID: true, recentA.ID: true, recentB.ID: true}
	for _, id := range call.exclude {
		delete(wantExcluded, id)
	}
	if len(wantExcluded) != 0 {
		t.Fatalf("missing exclusions: %v", wantExcluded)
	}
}

func TestRetrieveAttachesMatchingStrategies(t *testing.T) {
	cond := "after daycare"
	entryRepo := &fakeEntryRepo{}
	strategyRepo := &fakeStrategyRepo{active: []*types.Strategy{
		{Category: "sleep", Description: "earlier wind-down", Conditions: &cond, Status: types.StrategyStatusActive},
	}}
	svc := NewRetrievalService(entryRepo, strategyRepo, NewTagOverlapScorer(entryRepo, testLogger()), testLogger())

	result, err := svc.Retrieve(context.Background(), &types.FactCardOutput{Tags: []string{"bedtime"}}, uuid.New(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(strategyRepo.lastCats, []string{"sleep"}) {
		t.Fatalf("categories = %v", strategyRepo.lastCats)
	}
	if len(result.Strategies) != 1 || result.Strategies[0].Description != "earlier wind-down" {
		t.Fatalf("strategies = %+v", result.Strategies)
	}
}

func TestRetrieveSkipsStrategiesWithoutCategories(t *testing.T) {
	entryRepo := &fakeEntryRepo{}
	strategyRepo := &fakeStrategyRepo{}
	svc := NewRetrievalService(entryRepo, strategyRepo, NewTagOverlapScorer(entryRepo, testLogger()), testLogger())

	result, err := svc.Retrieve(context.Background(), &types.FactCardOutput{Tags: []string{"xylophone"}}, uuid.New(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if strategyRepo.lastCats != nil {
		t.Fatalf("expected no strategy query, got categories %v", strategyRepo.lastCats)
	}
	if len(result.Strategies) != 0 {
		t.Fatalf("strategies = %+v", result.Strategies)
	}
}

func TestRetrievePropagatesRepoErrors(t *testing.T) {
	entryRepo := &fakeEntryRepo{recentErr: errors.New("db down")}
	svc := NewRetrievalService(entryRepo, &fakeStrategyRepo{}, NewTagOverlapScorer(entryRepo, testLogger()), testLogger())
	if _, err := svc.Retrieve(context.Background(), &types.FactCardOutput{}, uuid.New(), 4); err == nil {
		t.Fatal("expected error")
	}
}

func TestInferCategories(t *testing.T) {
	cases := []struct {
		name string
		tags []string
		want []string
	}{
		{"exact keyword", []string{"sleep"}, []string{"sleep"}},
		{"tag contains keyword", []string{"sleep regression"}, []string{"sleep"}},
		{"keyword contains tag", []string{"nap"}, []string{"sleep"}},
		{"multiple categories in fixed order", []string{"picky eating", "tantrum"}, []string{"emotion", "feeding"}},
		{"case insensitive", []string{"Bedtime"}, []string{"sleep"}},
		{"no match", []string{"xylophone"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inferCategories(tc.tags)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("inferCategories(%v) = %v, want %v", tc.tags, got, tc.want)
			}
		})
	}
}

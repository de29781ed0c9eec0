package services

import (
	"context"
	"strings"
	"testing"

	"github.com/minachen/sproutlog-backend/internal/types"
)

func validExpertJSON() string {
	return `{
		"interpretation": "Skipped naps at this age commonly cascade into evening meltdowns.",
		"suggestions": [{"category": "action", "content": "move dinner earlier on no-nap days", "priority": "high"}],
		"risk_flags": []
	}`
}

func TestAnalyzeParsesValidOutput(t *testing.T) {
	invoker := &fakeInvoker{replies: []invokerReply{{data: validExpertJSON()}}}
	svc := NewExpertService(invoker, testLogger())

	out, status := svc.Analyze(context.Background(), ExpertInput{
		FactCard: &types.FactCardOutput{OneLine: "no nap, meltdown", Tags: []string{"sleep"}},
		Context:  &types.RetrievalContext{},
	})
	if !status.Success {
		t.Fatalf("status = %+v", status)
	}
	if len(out.Suggestions) != 1 || out.Suggestions[0].Priority != "high" {
		t.Fatalf("out = %+v", out)
	}
	if invoker.lastAgent != AgentExpert {
		t.Fatalf("agent = %q", invoker.lastAgent)
	}
}

func TestAnalyzeFailsValidation(t *testing.T) {
	invoker := &fakeInvoker{replies: []invokerReply{{data: `{"interpretation": ""}`}}}
	svc := NewExpertService(invoker, testLogger())

	out, status := svc.Analyze(context.Background(), ExpertInput{
		FactCard: &types.FactCardOutput{OneLine: "x"},
	})
	if status.Success || out != nil {
		t.Fatalf("expected failure, got %+v", status)
	}
}

func TestBuildExpertMessageSections(t *testing.T) {
	cond := "on daycare days"
	in := ExpertInput{
		FactCard: &types.FactCardOutput{
			OneLine:     "no nap, meltdown",
			Tags:        []string{"sleep", "tantrum"},
			AgeBucket:   "2-3y",
			Events:      []types.Event{{Type: "sleep", Description: "refused nap", Emotion: "negative"}},
			MissingInfo: []string{"what time did she wake up"},
		},
		Context: &types.RetrievalContext{
			RecentEntries: []*types.EntryWithAnalysis{entryView(entryWithTags(1, "sleep"))},
			SimilarEntries: []*types.EntryWithAnalysis{entryView(entryWithTags(7, "sleep", "bedtime"))},
			Strategies: []types.StrategyHint{
				{Category: "sleep", Description: "earlier wind-down", Conditions: &cond},
			},
		},
	}

	msg := buildExpertMessage(in)
	for _, want := range []string{
		"## Current entry",
		"no nap, meltdown",
		"2-3y",
		"sleep, tantrum",
		"refused nap",
		"what time did she wake up",
		"## Recent entries",
		"## Similar past entries",
		"## Active strategies",
		"earlier wind-down",
		"on daycare days",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestBuildExpertMessageWithEmptyContext(t *testing.T) {
	msg := buildExpertMessage(ExpertInput{FactCard: &types.FactCardOutput{OneLine: "x"}})
	if strings.Contains(msg, "## Recent entries") || strings.Contains(msg, "## Active strategies") {
		t.Fatalf("empty context should omit sections:\n%s", msg)
	}
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/types"
)

type ExpertInput struct {
	FactCard *types.FactCardOutput
	// Context may be empty when retrieval degraded; the stage still runs.
	Context *types.RetrievalContext
}

// ExpertService interprets one fact card against the retrieved history.
type ExpertService interface {
	Analyze(ctx context.Context, in ExpertInput) (*types.ExpertOutput, StageStatus)
}

type expertService struct {
	invoker AgentInvoker
	log     *logger.Logger
}

func NewExpertService(invoker AgentInvoker, baseLog *logger.Logger) ExpertService {
	return &expertService{
		invoker: invoker,
		log:     baseLog.With("service", "ExpertService"),
	}
}

func (s *expertService) Analyze(ctx context.Context, in ExpertInput) (*types.ExpertOutput, StageStatus) {
	result, err := s.invoker.InvokeWithRetry(ctx, AgentExpert, buildExpertMessage(in), stageMaxRetries, nil)
	if err != nil {
		s.log.Error("expert stage failed", "error", err)
		return nil, StageStatus{Error: err.Error()}
	}

	var out types.ExpertOutput
	if err := json.Unmarshal(result.Data, &out); err != nil {
		s.log.Error("expert output did not match schema", "error", err, "prompt_version", result.PromptVersion)
		return nil, StageStatus{
			Error:         fmt.Sprintf("expert output did not match schema: %v", err),
			PromptVersion: result.PromptVersion,
		}
	}
	if err := out.Validate(); err != nil {
		s.log.Error("expert output failed validation", "error", err, "prompt_version", result.PromptVersion)
		return nil, StageStatus{
			Error:         fmt.Sprintf("expert output failed validation: %v", err),
			PromptVersion: result.PromptVersion,
		}
	}
	return &out, StageStatus{Success: true, PromptVersion: result.PromptVersion}
}

func buildExpertMessage(in ExpertInput) string {
	var b bytes.Buffer

	b.WriteString("## Current entry\n")
	fmt.Fprintf(&b, "Summary: %s\n", in.FactCard.OneLine)
	if in.FactCard.AgeBucket != "" {
		fmt.Fprintf(&b, "Age: %s\n", in.FactCard.AgeBucket)
	}
	if len(in.FactCard.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(in.FactCard.Tags, ", "))
	}
	for _, ev := range in.FactCard.Events {
		fmt.Fprintf(&b, "- [%s] %s", ev.Type, ev.Description)
		if ev.Emotion != "" {
			fmt.Fprintf(&b, " (emotion: %s)", ev.Emotion)
		}
		b.WriteString("\n")
	}
	if len(in.FactCard.MissingInfo) > 0 {
		fmt.Fprintf(&b, "Open questions: %s\n", strings.Join(in.FactCard.MissingInfo, "; "))
	}

	context := in.Context
	if context == nil {
		context = &types.RetrievalContext{}
	}
	writeEntrySection(&b, "Recent entries", context.RecentEntries)
	writeEntrySection(&b, "Similar past entries", context.SimilarEntries)

	if len(context.Strategies) > 0 {
		b.WriteString("\n## Active strategies\n")
		for _, hint := range context.Strategies {
			fmt.Fprintf(&b, "- [%s] %s", hint.Category, hint.Description)
			if hint.Conditions != nil && *hint.Conditions != "" {
				fmt.Fprintf(&b, " (when: %s)", *hint.Conditions)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeEntrySection(b *bytes.Buffer, title string, entries []*types.EntryWithAnalysis) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n", title)
	for _, entry := range entries {
		line := entry.RawText
		if entry.FactCard != nil && entry.FactCard.OneLine != "" {
			line = entry.FactCard.OneLine
		}
		fmt.Fprintf(b, "- %s: %s\n", entry.EntryDate.Format("2006-01-02"), line)
	}
}

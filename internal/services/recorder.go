package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/types"
)

const stageMaxRetries = 2

// StageStatus reports how one pipeline stage ended. PromptVersion is set
// whenever a prompt was resolved, so failures are attributable to a version.
type StageStatus struct {
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	PromptVersion string `json:"prompt_version,omitempty"`
}

type RecorderInput struct {
	RawText   string
	EntryDate time.Time
	ChildAge  *string
}

// RecorderService turns a raw journal entry into a validated fact card.
// A model reply that parses but fails validation is a stage failure just
// like a transport failure; nothing partial is returned.
type RecorderService interface {
	Record(ctx context.Context, in RecorderInput) (*types.FactCardOutput, StageStatus)
}

type recorderService struct {
	invoker AgentInvoker
	log     *logger.Logger
}

func NewRecorderService(invoker AgentInvoker, baseLog *logger.Logger) RecorderService {
	return &recorderService{
		invoker: invoker,
		log:     baseLog.With("service", "RecorderService"),
	}
}

func (s *recorderService) Record(ctx context.Context, in RecorderInput) (*types.FactCardOutput, StageStatus) {
	result, err := s.invoker.InvokeWithRetry(ctx, AgentRecorder, buildRecorderMessage(in), stageMaxRetries, nil)
	if err != nil {
		s.log.Error("recorder stage failed", "error", err)
		return nil, StageStatus{Error: err.Error()}
	}

	var out types.FactCardOutput
	if err := json.Unmarshal(result.Data, &out); err != nil {
		s.log.Error("recorder output did not match schema", "error", err, "prompt_version", result.PromptVersion)
		return nil, StageStatus{
			Error:         fmt.Sprintf("recorder output did not match schema: %v", err),
			PromptVersion: result.PromptVersion,
		}
	}
	if err := out.Validate(); err != nil {
		s.log.Error("recorder output failed validation", "error", err, "prompt_version", result.PromptVersion)
		return nil, StageStatus{
			Error:         fmt.Sprintf("recorder output failed validation: %v", err),
			PromptVersion: result.PromptVersion,
		}
	}
	return &out, StageStatus{Success: true, PromptVersion: result.PromptVersion}
}

func buildRecorderMessage(in RecorderInput) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "## Entry date\n%s\n\n", in.EntryDate.Format("2006-01-02"))
	if in.ChildAge != nil && *in.ChildAge != "" {
		fmt.Fprintf(&b, "## Child age\n%s\n\n", *in.ChildAge)
	}
	fmt.Fprintf(&b, "## Raw entry\n%s\n", in.RawText)
	return b.String()
}

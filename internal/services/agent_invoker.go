package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/repos"
	"github.com/minachen/sproutlog-backend/internal/types"
)

// AgentConfig is the model configuration for one agent. Zero fields fall
// back to the agent's default.
type AgentConfig struct {
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	// HasTemperature distinguishes "explicitly 0" from "unset" when
	// merging; yaml decoding sets it via UnmarshalYAML.
	HasTemperature bool `yaml:"-"`
}

func (c *AgentConfig) UnmarshalYAML(value *yaml.Node) error {
	type raw struct {
		Model       string   `yaml:"model"`
		MaxTokens   int      `yaml:"max_tokens"`
		Temperature *float64 `yaml:"temperature"`
	}
	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}
	c.Model = r.Model
	c.MaxTokens = r.MaxTokens
	if r.Temperature != nil {
		c.Temperature = *r.Temperature
		c.HasTemperature = true
	}
	return nil
}

var defaultAgentConfigs = map[string]AgentConfig{
	AgentRecorder: {Model: "gpt-4o", MaxTokens: 2000, Temperature: 0.3, HasTemperature: true},
	AgentExpert:   {Model: "gpt-4o", MaxTokens: 3000, Temperature: 0.5, HasTemperature: true},
	AgentChat:     {Model: "gpt-4o", MaxTokens: 2000, Temperature: 0.7, HasTemperature: true},
}

// LoadAgentConfigs reads optional per-agent overrides from a yaml file of
// the form:
//
//	recorder:
//	  model: gpt-4o-mini
//	  temperature: 0.2
//
// A missing file is not an error; the defaults apply.
func LoadAgentConfigs(path string) (map[string]AgentConfig, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read agent config %s: %w", path, err)
	}
	var overrides map[string]AgentConfig
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse agent config %s: %w", path, err)
	}
	return overrides, nil
}

func mergeAgentConfig(base AgentConfig, override *AgentConfig) AgentConfig {
	if override == nil {
		return base
	}
	merged := base
	if override.Model != "" {
		merged.Model = override.Model
	}
	if override.MaxTokens > 0 {
		merged.MaxTokens = override.MaxTokens
	}
	if override.HasTemperature {
		merged.Temperature = override.Temperature
	}
	return merged
}

// AgentCallResult is a successful agent invocation: the raw JSON object the
// model produced, the prompt version that produced it, and token usage.
type AgentCallResult struct {
	Data          json.RawMessage
	PromptVersion string
	Usage         *TokenUsage
}

// AgentInvoker runs one structured-output agent call: resolve the prompt,
// merge the model config, call the model, and require a single JSON object
// back. InvokeWithRetry adds a linear-backoff retry loop around transport
// failures, empty replies, and non-JSON replies.
type AgentInvoker interface {
	Invoke(ctx context.Context, agentName, userMessage string, override *AgentConfig) (*AgentCallResult, error)
	InvokeWithRetry(ctx context.Context, agentName, userMessage string, maxRetries int, override *AgentConfig) (*AgentCallResult, error)
	ConfigFor(agentName string) AgentConfig
}

type agentInvoker struct {
	client      OpenAIClient
	registry    PromptRegistry
	callLogRepo repos.AICallLogRepo
	log         *logger.Logger
	configs     map[string]AgentConfig
	backoffBase time.Duration
}

func NewAgentInvoker(
	client OpenAIClient,
	registry PromptRegistry,
	callLogRepo repos.AICallLogRepo,
	baseLog *logger.Logger,
	overrides map[string]AgentConfig,
) AgentInvoker {
	configs := make(map[string]AgentConfig, len(defaultAgentConfigs))
	for name, cfg := range defaultAgentConfigs {
		if override, ok := overrides[name]; ok {
			cfg = mergeAgentConfig(cfg, &override)
		}
		configs[name] = cfg
	}
	return &agentInvoker{
		client:      client,
		registry:    registry,
		callLogRepo: callLogRepo,
		log:         baseLog.With("service", "AgentInvoker"),
		configs:     configs,
		backoffBase: time.Second,
	}
}

func (a *agentInvoker) ConfigFor(agentName string) AgentConfig {
	if cfg, ok := a.configs[agentName]; ok {
		return cfg
	}
	return AgentConfig{Model: "gpt-4o", MaxTokens: 2000, Temperature: 0.7, HasTemperature: true}
}

func (a *agentInvoker) Invoke(ctx context.Context, agentName, userMessage string, override *AgentConfig) (*AgentCallResult, error) {
	prompt, err := a.registry.Resolve(ctx, agentName)
	if err != nil {
		a.recordCall(ctx, agentName, "", "error", nil, err)
		return nil, fmt.Errorf("resolve prompt for %s: %w", agentName, err)
	}

	cfg := mergeAgentConfig(a.ConfigFor(agentName), override)
	start := time.Now()
	reply, err := a.client.Chat(ctx, prompt.SystemPrompt, nil, userMessage, CallSettings{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		JSONObject:  true,
	})
	elapsed := time.Since(start)
	if err != nil {
		a.recordCall(ctx, agentName, cfg.Model, prompt.Version, nil, err)
		return nil, fmt.Errorf("%s call failed: %w", agentName, err)
	}

	content := strings.TrimSpace(reply.Content)
	if content == "" {
		err := fmt.Errorf("%s returned an empty response", agentName)
		a.recordCall(ctx, agentName, cfg.Model, prompt.Version, reply.Usage, err)
		return nil, err
	}
	if !strings.HasPrefix(content, "{") || !json.Valid([]byte(content)) {
		err := fmt.Errorf("%s returned a non-JSON response", agentName)
		a.recordCall(ctx, agentName, cfg.Model, prompt.Version, reply.Usage, err)
		return nil, err
	}

	a.log.Debug("agent call succeeded",
		"agent", agentName,
		"model", cfg.Model,
		"prompt_version", prompt.Version,
		"duration_ms", elapsed.Milliseconds())
	a.recordCall(ctx, agentName, cfg.Model, prompt.Version, reply.Usage, nil)
	return &AgentCallResult{
		Data:          json.RawMessage(content),
		PromptVersion: prompt.Version,
		Usage:         reply.Usage,
	}, nil
}

func (a *agentInvoker) InvokeWithRetry(ctx context.Context, agentName, userMessage string, maxRetries int, override *AgentConfig) (*AgentCallResult, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * a.backoffBase
			a.log.Warn("retrying agent call",
				"agent", agentName,
				"attempt", attempt+1,
				"wait", wait.String(),
				"error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		result, err := a.Invoke(ctx, agentName, userMessage, override)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
	}
	return nil, lastErr
}

// recordCall writes an audit row for the invocation; failures here are
// logged and swallowed so accounting never breaks the call path.
func (a *agentInvoker) recordCall(ctx context.Context, agentName, model, promptVersion string, usage *TokenUsage, callErr error) {
	if a.callLogRepo == nil {
		return
	}
	row := &types.AICallLog{
		AgentName:     agentName,
		Model:         model,
		PromptVersion: promptVersion,
		Success:       callErr == nil,
	}
	if callErr != nil {
		row.Error = callErr.Error()
	}
	if usage != nil {
		if data, err := json.Marshal(usage); err == nil {
			row.Usage = datatypes.JSON(data)
		}
	}
	if _, err := a.callLogRepo.Create(ctx, nil, row); err != nil {
		a.log.Warn("failed to record ai call", "agent", agentName, "error", err)
	}
}

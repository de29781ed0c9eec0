package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/utils"
)

// ChatTurn is one prior message in a conversation, oldest first.
type ChatTurn struct {
	Role    string
	Content string
}

// TokenUsage mirrors the usage block of a chat completion response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CallSettings carries the per-call model parameters. JSONObject asks the
// API to constrain the reply to a single JSON object.
type CallSettings struct {
	Model       string
	MaxTokens   int
	Temperature float64
	JSONObject  bool
}

// ChatResult is the raw model reply plus usage accounting when the API
// returned it.
type ChatResult struct {
	Content string
	Usage   *TokenUsage
}

type OpenAIClient interface {
	Chat(ctx context.Context, system string, history []ChatTurn, user string, settings CallSettings) (*ChatResult, error)
}

type openAIClient struct {
	apiKey     string
	baseURL    string
	maxRetries int
	httpClient *http.Client
	log        *logger.Logger
}

// NewOpenAIClient reads OPENAI_* configuration from the environment.
// Transport-level retries default to zero; the agent invoker owns the
// retry policy for agent calls.
func NewOpenAIClient(baseLog *logger.Logger) (OpenAIClient, error) {
	log := baseLog.With("service", "OpenAIClient")
	apiKey := strings.TrimSpace(utils.GetEnv("OPENAI_API_KEY", "", log))
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	baseURL := strings.TrimRight(utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com/v1", log), "/")
	timeoutSec := utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 60, log)
	maxRetries := utils.GetEnvAsInt("OPENAI_MAX_RETRIES", 0, log)
	return &openAIClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		log:        log,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *TokenUsage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

type openAIHTTPError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai: status %d: %s", e.StatusCode, e.Message)
}

func (c *openAIClient) Chat(ctx context.Context, system string, history []ChatTurn, user string, settings CallSettings) (*ChatResult, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	for _, turn := range history {
		messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	reqBody := chatCompletionRequest{
		Model:       settings.Model,
		Messages:    messages,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	}
	if settings.JSONObject {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.backoff(ctx, attempt, lastErr); err != nil {
				return nil, err
			}
		}
		result, err := c.doChat(ctx, payload)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
		c.log.Warn("openai call failed, retrying", "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

func (c *openAIClient) doChat(ctx context.Context, payload []byte) (*ChatResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var parsed chatCompletionResponse
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, &openAIHTTPError{
			StatusCode: resp.StatusCode,
			Message:    msg,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("openai: response has no choices")
	}
	return &ChatResult{
		Content: parsed.Choices[0].Message.Content,
		Usage:   parsed.Usage,
	}, nil
}

func (c *openAIClient) backoff(ctx context.Context, attempt int, lastErr error) error {
	wait := time.Duration(attempt) * time.Second
	var httpErr *openAIHTTPError
	if errors.As(lastErr, &httpErr) && httpErr.RetryAfter > 0 {
		wait = httpErr.RetryAfter
	}
	if wait > 10*time.Second {
		wait = 10 * time.Second
	}
	wait += time.Duration(rand.Int63n(int64(250 * time.Millisecond)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func isRetryable(err error) bool {
	var httpErr *openAIHTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

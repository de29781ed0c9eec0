package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/repos"
	"github.com/minachen/sproutlog-backend/internal/types"
)

// Prompt resolution sources, in priority order.
const (
	PromptSourceFile     = "file"
	PromptSourceDatabase = "database"
	PromptSourceDefault  = "default"
)

// ResolvedPrompt is the system prompt an agent call should use, with enough
// provenance to stamp onto call logs and stage results.
type ResolvedPrompt struct {
	AgentName    string
	Version      string
	SystemPrompt string
	Source       string
}

type CreatePromptVersionInput struct {
	AgentName         string
	Version           string
	SystemPrompt      string
	ReleaseNotes      *string
	EnableImmediately bool
}

// PromptRegistry resolves the active system prompt for an agent:
// a file override in PromptsDir wins, then the enabled database version,
// then the compiled default. Resolutions are cached per agent with a TTL.
type PromptRegistry interface {
	Resolve(ctx context.Context, agentName string) (*ResolvedPrompt, error)
	CreateVersion(ctx context.Context, input CreatePromptVersionInput) (*types.AgentPrompt, error)
	EnableVersion(ctx context.Context, agentName, version string) error
	ListVersions(ctx context.Context, agentName string) ([]*types.AgentPrompt, error)
	ClearCache(agentName string)
}

type PromptRegistryOptions struct {
	// PromptsDir holds per-agent override files named <agent>.md. Empty
	// disables file overrides.
	PromptsDir string
	CacheTTL   time.Duration
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

type cachedPrompt struct {
	resolved  *ResolvedPrompt
	expiresAt time.Time
}

type promptRegistry struct {
	repo repos.AgentPromptRepo
	log  *logger.Logger
	opts PromptRegistryOptions

	mu    sync.Mutex
	cache map[string]cachedPrompt
	group singleflight.Group
}

func NewPromptRegistry(repo repos.AgentPromptRepo, baseLog *logger.Logger, opts PromptRegistryOptions) PromptRegistry {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 60 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &promptRegistry{
		repo:  repo,
		log:   baseLog.With("service", "PromptRegistry"),
		opts:  opts,
		cache: make(map[string]cachedPrompt),
	}
}

func (r *promptRegistry) Resolve(ctx context.Context, agentName string) (*ResolvedPrompt, error) {
	if cached, ok := r.cached(agentName); ok {
		return cached, nil
	}
	v, err, _ := r.group.Do(agentName, func() (interface{}, error) {
		if cached, ok := r.cached(agentName); ok {
			return cached, nil
		}
		resolved, cacheable, err := r.resolve(ctx, agentName)
		if err != nil {
			return nil, err
		}
		if cacheable {
			r.store(agentName, resolved)
		}
		return resolved, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ResolvedPrompt), nil
}

// resolve walks the override chain. The second return reports whether the
// result may be cached: a default reached only because the database lookup
// errored is served but not cached, so the next call retries the lookup.
func (r *promptRegistry) resolve(ctx context.Context, agentName string) (*ResolvedPrompt, bool, error) {
	if override, ok := r.readOverrideFile(agentName); ok {
		return &ResolvedPrompt{
			AgentName:    agentName,
			Version:      PromptSourceFile,
			SystemPrompt: override,
			Source:       PromptSourceFile,
		}, true, nil
	}

	row, err := r.repo.FindEnabled(ctx, agentName)
	if err == nil {
		return &ResolvedPrompt{
			AgentName:    agentName,
			Version:      row.Version,
			SystemPrompt: row.SystemPrompt,
			Source:       PromptSourceDatabase,
		}, true, nil
	}
	dbFailed := !errors.Is(err, repos.ErrNotFound)
	if dbFailed {
		r.log.Warn("prompt lookup failed, falling back to default", "agent", agentName, "error", err)
	}

	if def, ok := defaultPrompts[agentName]; ok {
		return &ResolvedPrompt{
			AgentName:    agentName,
			Version:      PromptSourceDefault,
			SystemPrompt: def,
			Source:       PromptSourceDefault,
		}, !dbFailed, nil
	}
	return nil, false, fmt.Errorf("no prompt available for agent %q", agentName)
}

func (r *promptRegistry) readOverrideFile(agentName string) (string, bool) {
	if r.opts.PromptsDir == "" {
		return "", false
	}
	path := filepath.Join(r.opts.PromptsDir, agentName+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", false
	}
	return content, true
}

func (r *promptRegistry) cached(agentName string) (*ResolvedPrompt, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.cache[agentName]
	if !ok || r.opts.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.resolved, true
}

func (r *promptRegistry) store(agentName string, resolved *ResolvedPrompt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[agentName] = cachedPrompt{
		resolved:  resolved,
		expiresAt: r.opts.Now().Add(r.opts.CacheTTL),
	}
}

func (r *promptRegistry) CreateVersion(ctx context.Context, input CreatePromptVersionInput) (*types.AgentPrompt, error) {
	if strings.TrimSpace(input.AgentName) == "" {
		return nil, errors.New("agent_name is required")
	}
	if strings.TrimSpace(input.Version) == "" {
		return nil, errors.New("version is required")
	}
	if strings.TrimSpace(input.SystemPrompt) == "" {
		return nil, errors.New("system_prompt is required")
	}
	prompt := &types.AgentPrompt{
		AgentName:    input.AgentName,
		Version:      input.Version,
		SystemPrompt: input.SystemPrompt,
		ReleaseNotes: input.ReleaseNotes,
	}
	created, err := r.repo.CreateVersion(ctx, prompt, input.EnableImmediately)
	if err != nil {
		return nil, err
	}
	r.ClearCache(input.AgentName)
	return created, nil
}

func (r *promptRegistry) EnableVersion(ctx context.Context, agentName, version string) error {
	if err := r.repo.EnableVersion(ctx, agentName, version); err != nil {
		return err
	}
	r.ClearCache(agentName)
	return nil
}

func (r *promptRegistry) ListVersions(ctx context.Context, agentName string) ([]*types.AgentPrompt, error) {
	return r.repo.ListByAgent(ctx, agentName)
}

// ClearCache drops the cached resolution for one agent, or for every agent
// when agentName is empty.
func (r *promptRegistry) ClearCache(agentName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if agentName == "" {
		r.cache = make(map[string]cachedPrompt)
		return
	}
	delete(r.cache, agentName)
}

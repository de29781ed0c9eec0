package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/minachen/sproutlog-backend/internal/types"
)

func newTestRegistry(t *testing.T, repo *memPromptRepo, opts PromptRegistryOptions) PromptRegistry {
	t.Helper()
	return NewPromptRegistry(repo, testLogger(), opts)
}

func enabledPrompt(agent, version, body string) CreatePromptVersionInput {
	return CreatePromptVersionInput{
		AgentName:         agent,
		Version:           version,
		SystemPrompt:      body,
		EnableImmediately: true,
	}
}

func TestResolvePrefersFileOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "recorder.md"), []byte("file prompt\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	repo := &memPromptRepo{}
	registry := newTestRegistry(t, repo, PromptRegistryOptions{PromptsDir: dir})
	if _, err := registry.CreateVersion(context.Background(), enabledPrompt(AgentRecorder, "v1", "db prompt")); err != nil {
		t.Fatal(err)
	}

	resolved, err := registry.Resolve(context.Background(), AgentRecorder)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Source != PromptSourceFile {
		t.Fatalf("source = %q, want file", resolved.Source)
	}
	if resolved.SystemPrompt != "file prompt" {
		t.Fatalf("prompt = %q", resolved.SystemPrompt)
	}
}

func TestResolvePrefersEnabledVersionOverDefault(t *testing.T) {
	repo := &memPromptRepo{}
	registry := newTestRegistry(t, repo, PromptRegistryOptions{})
	if _, err := registry.CreateVersion(context.Background(), enabledPrompt(AgentRecorder, "v2", "db prompt")); err != nil {
		t.Fatal(err)
	}

	resolved, err := registry.Resolve(context.Background(), AgentRecorder)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Source != PromptSourceDatabase || resolved.Version != "v2" {
		t.Fatalf("got source=%q version=%q", resolved.Source, resolved.Version)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	registry := newTestRegistry(t, &memPromptRepo{}, PromptRegistryOptions{})
	resolved, err := registry.Resolve(context.Background(), AgentExpert)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Source != PromptSourceDefault {
		t.Fatalf("source = %q, want default", resolved.Source)
	}
	if resolved.SystemPrompt == "" {
		t.Fatal("default prompt is empty")
	}
}

func TestResolveUnknownAgentFails(t *testing.T) {
	registry := newTestRegistry(t, &memPromptRepo{}, PromptRegistryOptions{})
	if _, err := registry.Resolve(context.Background(), "mystery"); err == nil {
		t.Fatal("expected error for unknown agent")
	}
}

func TestResolveCachesWithinTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := &memPromptRepo{}
	registry := newTestRegistry(t, repo, PromptRegistryOptions{
		CacheTTL: 60 * time.Second,
		Now:      func() time.Time { return now },
	})
	if _, err := registry.CreateVersion(context.Background(), enabledPrompt(AgentChat, "v1", "first")); err != nil {
		t.Fatal(err)
	}
	first, err := registry.Resolve(context.Background(), AgentChat)
	if err != nil {
		t.Fatal(err)
	}
	if first.Version != "v1" {
		t.Fatalf("version = %q", first.Version)
	}

	// Mutate the store behind the cache's back.
	repo.rows[0].SystemPrompt = "mutated"
	repo.rows[0].Version = "v1-mutated"

	cached, err := registry.Resolve(context.Background(), AgentChat)
	if err != nil {
		t.Fatal(err)
	}
	if cached.Version != "v1" {
		t.Fatalf("expected cached v1, got %q", cached.Version)
	}

	now = now.Add(61 * time.Second)
	fresh, err := registry.Resolve(context.Background(), AgentChat)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Version != "v1-mutated" {
		t.Fatalf("expected re-resolve after TTL, got %q", fresh.Version)
	}
}

func TestMutatorsInvalidateCache(t *testing.T) {
	repo := &memPromptRepo{}
	registry := newTestRegistry(t, repo, PromptRegistryOptions{CacheTTL: time.Hour})
	if _, err := registry.CreateVersion(context.Background(), enabledPrompt(AgentRecorder, "v1", "first")); err != nil {
		t.Fatal(err)
	}
	if _, err := registry.Resolve(context.Background(), AgentRecorder); err != nil {
		t.Fatal(err)
	}

	if _, err := registry.CreateVersion(context.Background(), enabledPrompt(AgentRecorder, "v2", "second")); err != nil {
		t.Fatal(err)
	}
	resolved, err := registry.Resolve(context.Background(), AgentRecorder)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Version != "v2" {
		t.Fatalf("expected v2 after create, got %q", resolved.Version)
	}

	if err := registry.EnableVersion(context.Background(), AgentRecorder, "v1"); err != nil {
		t.Fatal(err)
	}
	resolved, err = registry.Resolve(context.Background(), AgentRecorder)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Version != "v1" {
		t.Fatalf("expected v1 after enable, got %q", resolved.Version)
	}
}

func TestAtMostOneEnabledVersion(t *testing.T) {
	repo := &memPromptRepo{}
	registry := newTestRegistry(t, repo, PromptRegistryOptions{})
	ctx := context.Background()
	for _, v := range []string{"v1", "v2", "v3"} {
		if _, err := registry.CreateVersion(ctx, enabledPrompt(AgentExpert, v, "body "+v)); err != nil {
			t.Fatal(err)
		}
	}

	enabled := 0
	for _, row := range repo.rows {
		if row.Enabled {
			enabled++
			if row.Version != "v3" {
				t.Fatalf("enabled version = %q, want v3", row.Version)
			}
		}
	}
	if enabled != 1 {
		t.Fatalf("enabled count = %d, want 1", enabled)
	}
}

func TestEnableUnknownVersionFails(t *testing.T) {
	registry := newTestRegistry(t, &memPromptRepo{}, PromptRegistryOptions{})
	if err := registry.EnableVersion(context.Background(), AgentExpert, "missing"); err == nil {
		t.Fatal("expected error enabling unknown version")
	}
}

func TestLookupErrorServesDefaultWithoutCaching(t *testing.T) {
	repo := &memPromptRepo{findErr: errors.New("db down")}
	registry := newTestRegistry(t, repo, PromptRegistryOptions{CacheTTL: time.Hour})

	resolved, err := registry.Resolve(context.Background(), AgentChat)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Source != PromptSourceDefault {
		t.Fatalf("source = %q, want default", resolved.Source)
	}

	// Recovery is picked up on the next resolve; no TTL wait.
	repo.findErr = nil
	repo.rows = append(repo.rows, &types.AgentPrompt{
		AgentName:    AgentChat,
		Version:      "v9",
		SystemPrompt: "recovered",
		Enabled:      true,
		CreatedAt:    repo.tick(),
	})
	resolved, err = registry.Resolve(context.Background(), AgentChat)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Version != "v9" {
		t.Fatalf("expected v9 after recovery, got %q", resolved.Version)
	}
}

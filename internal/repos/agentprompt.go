package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/types"
)

// AgentPromptRepo owns the "at most one enabled version per agent" invariant:
// the mutating operations run disable-all-then-enable-one inside a single
// transaction so readers never observe two enabled rows.
type AgentPromptRepo interface {
	// CreateVersion inserts a new version; with enableImmediately it first
	// disables every other version of the agent in the same transaction.
	CreateVersion(ctx context.Context, prompt *types.AgentPrompt, enableImmediately bool) (*types.AgentPrompt, error)
	// EnableVersion disables all versions for the agent, then enables one.
	EnableVersion(ctx context.Context, agentName, version string) error
	// FindEnabled returns the most recently created enabled version, or
	// ErrNotFound.
	FindEnabled(ctx context.Context, agentName string) (*types.AgentPrompt, error)
	ListByAgent(ctx context.Context, agentName string) ([]*types.AgentPrompt, error)
}

type agentPromptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAgentPromptRepo(db *gorm.DB, baseLog *logger.Logger) AgentPromptRepo {
	return &agentPromptRepo{db: db, log: baseLog.With("repo", "AgentPromptRepo")}
}

func (r *agentPromptRepo) CreateVersion(ctx context.Context, prompt *types.AgentPrompt, enableImmediately bool) (*types.AgentPrompt, error) {
	prompt.Enabled = enableImmediately
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if enableImmediately {
			if err := tx.Model(&types.AgentPrompt{}).
				Where("agent_name = ?", prompt.AgentName).
				Update("enabled", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(prompt).Error
	})
	if err != nil {
		return nil, err
	}
	return prompt, nil
}

func (r *agentPromptRepo) EnableVersion(ctx context.Context, agentName, version string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&types.AgentPrompt{}).
			Where("agent_name = ?", agentName).
			Update("enabled", false).Error; err != nil {
			return err
		}
		res := tx.Model(&types.AgentPrompt{}).
			Where("agent_name = ? AND version = ?", agentName, version).
			Update("enabled", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *agentPromptRepo) FindEnabled(ctx context.Context, agentName string) (*types.AgentPrompt, error) {
	var prompt types.AgentPrompt
	err := r.db.WithContext(ctx).
		Where("agent_name = ? AND enabled = ?", agentName, true).
		Order("created_at DESC").
		First(&prompt).Error
	if err != nil {
		return nil, translate(err)
	}
	return &prompt, nil
}

func (r *agentPromptRepo) ListByAgent(ctx context.Context, agentName string) ([]*types.AgentPrompt, error) {
	var prompts []*types.AgentPrompt
	err := r.db.WithContext(ctx).
		Where("agent_name = ?", agentName).
		Order("created_at DESC").
		Find(&prompts).Error
	if err != nil {
		return nil, err
	}
	return prompts, nil
}

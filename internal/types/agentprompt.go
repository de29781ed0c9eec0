package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AgentPrompt is one versioned revision of an agent's system prompt. At most
// one row per agent name may have Enabled=true; the registry enforces this
// inside a transaction on every create/enable.
type AgentPrompt struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AgentName    string    `gorm:"column:agent_name;not null;index;uniqueIndex:idx_agent_prompt_name_version" json:"agent_name"`
	Version      string    `gorm:"column:version;not null;uniqueIndex:idx_agent_prompt_name_version" json:"version"`
	SystemPrompt string    `gorm:"column:system_prompt;not null" json:"system_prompt"`
	Enabled      bool      `gorm:"column:enabled;not null;default:false;index" json:"enabled"`
	ReleaseNotes *string   `gorm:"column:release_notes" json:"release_notes,omitempty"`
	CreatedAt    time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (AgentPrompt) TableName() string { return "agent_prompt" }

func (p *AgentPrompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

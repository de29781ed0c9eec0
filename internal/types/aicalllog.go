package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AICallLog is one audit row per model invocation.
type AICallLog struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AgentName     string         `gorm:"column:agent_name;not null;index" json:"agent_name"`
	Model         string         `gorm:"column:model;not null" json:"model"`
	PromptVersion string         `gorm:"column:prompt_version" json:"prompt_version"`
	Success       bool           `gorm:"column:success;not null" json:"success"`
	Error         string         `gorm:"column:error" json:"error"`
	Usage         datatypes.JSON `gorm:"type:jsonb;column:usage" json:"usage"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (AICallLog) TableName() string { return "ai_call_log" }

func (l *AICallLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

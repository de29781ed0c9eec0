package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Conversation is one freeform chat thread with the expert persona.
type Conversation struct {
	ID        uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title     *string       `gorm:"column:title" json:"title,omitempty"`
	Status    string        `gorm:"column:status;not null;default:active" json:"status"`
	Messages  []ChatMessage `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConversationID;references:ID" json:"messages,omitempty"`
	CreatedAt time.Time     `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;default:now();index" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversation" }

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type ChatMessage struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"conversation_id"`
	Role               string         `gorm:"column:role;not null" json:"role"`
	Content            string         `gorm:"column:content;not null" json:"content"`
	ReferencedEntryIDs datatypes.JSON `gorm:"type:jsonb;column:referenced_entry_ids" json:"referenced_entry_ids"`
	CreatedAt          time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ChatMessage) TableName() string { return "chat_message" }

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LearningStatusHypothesis  = "hypothesis"
	LearningStatusValidated   = "validated"
	LearningStatusInvalidated = "invalidated"
)

// Learning is one longitudinal insight in the knowledge base, promoted from
// hypothesis to validated (or invalidated) as evidence accumulates.
type Learning struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Topic          string         `gorm:"column:topic;not null;index" json:"topic"`
	Insight        string         `gorm:"column:insight;not null" json:"insight"`
	Status         string         `gorm:"column:status;not null;default:hypothesis;index" json:"status"`
	Confidence     float64        `gorm:"column:confidence;not null;default:0.5" json:"confidence"`
	Evidence       datatypes.JSON `gorm:"type:jsonb;column:evidence" json:"evidence"`
	Source         string         `gorm:"column:source;not null;default:user" json:"source"`
	SourceDigestID *uuid.UUID     `gorm:"type:uuid" json:"source_digest_id,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Learning) TableName() string { return "learning" }

func (l *Learning) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

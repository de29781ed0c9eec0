package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ObservationSourceEntry  = "entry"
	ObservationSourceManual = "manual"
)

// QuestionObservation is append-only; the stage machine never mutates or
// deletes one.
type QuestionObservation struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	QuestionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"question_id"`
	Content    string     `gorm:"column:content;not null" json:"content"`
	Source     string     `gorm:"column:source;not null" json:"source"`
	EntryID    *uuid.UUID `gorm:"type:uuid" json:"entry_id,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (QuestionObservation) TableName() string { return "question_observation" }

func (o *QuestionObservation) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

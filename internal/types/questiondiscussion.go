package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionDiscussion is one turn of the expert-persona discussion attached to
// a question, ordered by creation.
type QuestionDiscussion struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Role       string    `gorm:"column:role;not null" json:"role"`
	Content    string    `gorm:"column:content;not null" json:"content"`
	CreatedAt  time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (QuestionDiscussion) TableName() string { return "question_discussion" }

func (d *QuestionDiscussion) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry is the raw journal record. It is written before any pipeline stage
// runs and is never rolled back, so user input survives stage failures.
type Entry struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RawText   string    `gorm:"column:raw_text;not null" json:"raw_text"`
	EntryDate time.Time `gorm:"column:entry_date;not null;index" json:"entry_date"`
	ChildAge  *string   `gorm:"column:child_age" json:"child_age,omitempty"`
	FactCard  *FactCard `gorm:"constraint:OnDelete:CASCADE;foreignKey:EntryID;references:ID" json:"fact_card,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Entry) TableName() string { return "entry" }

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

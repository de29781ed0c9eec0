package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FactCard is the structured distillation of one Entry. Immutable after the
// recorder stage writes it.
type FactCard struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EntryID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"entry_id"`
	OneLine        string          `gorm:"column:one_line;not null" json:"one_line"`
	Events         datatypes.JSON  `gorm:"type:jsonb;column:events" json:"events"`
	Tags           datatypes.JSON  `gorm:"type:jsonb;column:tags" json:"tags"`
	MissingInfo    datatypes.JSON  `gorm:"type:jsonb;column:missing_info" json:"missing_info"`
	AgeBucket      *string         `gorm:"column:age_bucket" json:"age_bucket,omitempty"`
	ExpertAnalysis *ExpertAnalysis `gorm:"constraint:OnDelete:CASCADE;foreignKey:FactCardID;references:ID" json:"expert_analysis,omitempty"`
	CreatedAt      time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (FactCard) TableName() string { return "fact_card" }

func (f *FactCard) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

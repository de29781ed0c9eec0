package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExpertAnalysis is written only when the expert stage succeeds; a fact card
// without one is a normal state, not an error.
type ExpertAnalysis struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FactCardID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"fact_card_id"`
	Interpretation string         `gorm:"column:interpretation;not null" json:"interpretation"`
	Suggestions    datatypes.JSON `gorm:"type:jsonb;column:suggestions" json:"suggestions"`
	Patterns       datatypes.JSON `gorm:"type:jsonb;column:patterns" json:"patterns"`
	RiskFlags      datatypes.JSON `gorm:"type:jsonb;column:risk_flags" json:"risk_flags"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ExpertAnalysis) TableName() string { return "expert_analysis" }

func (e *ExpertAnalysis) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StrategyStatusActive  = "active"
	StrategyStatusRetired = "retired"
)

// Strategy is a parenting approach that worked (or failed) before, surfaced
// to the expert stage when its category matches the current fact card.
type Strategy struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Category    string    `gorm:"column:category;not null;index" json:"category"`
	Description string    `gorm:"column:description;not null" json:"description"`
	Conditions  *string   `gorm:"column:conditions" json:"conditions,omitempty"`
	Status      string    `gorm:"column:status;not null;default:active;index" json:"status"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Strategy) TableName() string { return "strategy" }

func (s *Strategy) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

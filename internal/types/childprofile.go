package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChildProfile is a single-row profile used to personalize chat and
// discussion context.
type ChildProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Birthday  time.Time `gorm:"column:birthday;not null" json:"birthday"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ChildProfile) TableName() string { return "child_profile" }

func (c *ChildProfile) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ValuesPrinciple is one confirmed parenting principle, injected into chat
// context while active.
type ValuesPrinciple struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Principle string    `gorm:"column:principle;not null" json:"principle"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ValuesPrinciple) TableName() string { return "values_principle" }

func (v *ValuesPrinciple) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

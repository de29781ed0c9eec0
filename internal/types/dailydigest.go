package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DailyDigest aggregates one calendar day of entries into an editable
// summary. Keyed by date; one row per day.
type DailyDigest struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Date             time.Time      `gorm:"column:date;not null;uniqueIndex" json:"date"`
	RecordSummary    datatypes.JSON `gorm:"type:jsonb;column:record_summary" json:"record_summary"`
	AIAnalysis       datatypes.JSON `gorm:"type:jsonb;column:ai_analysis" json:"ai_analysis"`
	DiscussionPoints datatypes.JSON `gorm:"type:jsonb;column:discussion_points" json:"discussion_points"`
	Conclusions      datatypes.JSON `gorm:"type:jsonb;column:conclusions" json:"conclusions"`
	OpenQuestions    datatypes.JSON `gorm:"type:jsonb;column:open_questions" json:"open_questions"`
	EntryIDs         datatypes.JSON `gorm:"type:jsonb;column:entry_ids" json:"entry_ids"`
	RelatedDigestIDs datatypes.JSON `gorm:"type:jsonb;column:related_digest_ids" json:"related_digest_ids"`
	LearningIDs      datatypes.JSON `gorm:"type:jsonb;column:learning_ids" json:"learning_ids"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (DailyDigest) TableName() string { return "daily_digest" }

func (d *DailyDigest) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	QuestionStageObserving     = "observing"
	QuestionStageExperimenting = "experimenting"
	QuestionStageInternalized  = "internalized"
)

const (
	ConclusionSourceAI         = "ai"
	ConclusionSourceUser       = "user"
	ConclusionSourceAIModified = "ai_modified"
)

func IsQuestionStage(s string) bool {
	return s == QuestionStageObserving || s == QuestionStageExperimenting || s == QuestionStageInternalized
}

func IsConclusionSource(s string) bool {
	return s == ConclusionSourceAI || s == ConclusionSourceUser || s == ConclusionSourceAIModified
}

// ParentingQuestion is a long-lived tracked concern. Only the
// observing→experimenting transition is automatic; everything else is a
// manual edit through the PATCH surface.
type ParentingQuestion struct {
	ID                uuid.UUID             `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Question          string                `gorm:"column:question;not null" json:"question"`
	Stage             string                `gorm:"column:stage;not null;default:observing;index" json:"stage"`
	CurrentConclusion *string               `gorm:"column:current_conclusion" json:"current_conclusion,omitempty"`
	ConclusionSource  *string               `gorm:"column:conclusion_source" json:"conclusion_source,omitempty"`
	DisplayOrder      int                   `gorm:"column:display_order;not null;default:0;index" json:"display_order"`
	Observations      []QuestionObservation `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"observations,omitempty"`
	Discussions       []QuestionDiscussion  `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"discussions,omitempty"`
	CreatedAt         time.Time             `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time             `gorm:"not null;default:now()" json:"updated_at"`
}

func (ParentingQuestion) TableName() string { return "parenting_question" }

func (q *ParentingQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

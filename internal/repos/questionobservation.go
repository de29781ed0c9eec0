package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/types"
)

type QuestionObservationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, obs *types.QuestionObservation) (*types.QuestionObservation, error)
	CountByQuestion(ctx context.Context, questionID uuid.UUID) (int64, error)
	// ListRecent returns the newest observations first.
	ListRecent(ctx context.Context, questionID uuid.UUID, limit int) ([]*types.QuestionObservation, error)
}

type questionObservationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionObservationRepo(db *gorm.DB, baseLog *logger.Logger) QuestionObservationRepo {
	return &questionObservationRepo{db: db, log: baseLog.With("repo", "QuestionObservationRepo")}
}

func (r *questionObservationRepo) Create(ctx context.Context, tx *gorm.DB, obs *types.QuestionObservation) (*types.QuestionObservation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(obs).Error; err != nil {
		return nil, err
	}
	return obs, nil
}

func (r *questionObservationRepo) CountByQuestion(ctx context.Context, questionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&types.QuestionObservation{}).
		Where("question_id = ?", questionID).
		Count(&count).Error
	return count, err
}

func (r *questionObservationRepo) ListRecent(ctx context.Context, questionID uuid.UUID, limit int) ([]*types.QuestionObservation, error) {
	var observations []*types.QuestionObservation
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&observations).Error
	if err != nil {
		return nil, err
	}
	return observations, nil
}

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/types"
)

type LearningFilter struct {
	Status string
	Topic  string
	Limit  int
	Offset int
}

type LearningRepo interface {
	Create(ctx context.Context, tx *gorm.DB, learning *types.Learning) (*types.Learning, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Learning, error)
	List(ctx context.Context, filter LearningFilter) ([]*types.Learning, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type learningRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningRepo(db *gorm.DB, baseLog *logger.Logger) LearningRepo {
	return &learningRepo{db: db, log: baseLog.With("repo", "LearningRepo")}
}

func (r *learningRepo) Create(ctx context.Context, tx *gorm.DB, learning *types.Learning) (*types.Learning, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(learning).Error; err != nil {
		return nil, err
	}
	return learning, nil
}

func (r *learningRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Learning, error) {
	var learning types.Learning
	if err := r.db.WithContext(ctx).First(&learning, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &learning, nil
}

func (r *learningRepo) List(ctx context.Context, filter LearningFilter) ([]*types.Learning, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Model(&types.Learning{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Topic != "" {
		q = q.Where("topic = ?", filter.Topic)
	}
	var learnings []*types.Learning
	err := q.Order("status ASC").
		Order("confidence DESC").
		Order("updated_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&learnings).Error
	if err != nil {
		return nil, err
	}
	return learnings, nil
}

func (r *learningRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Learning{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *learningRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&types.Learning{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

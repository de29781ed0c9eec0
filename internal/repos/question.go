package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/types"
)

type QuestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, q *types.ParentingQuestion) (*types.ParentingQuestion, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.ParentingQuestion, error)
	// GetDetail loads observations (newest first) and discussions (oldest first).
	GetDetail(ctx context.Context, id uuid.UUID) (*types.ParentingQuestion, error)
	List(ctx context.Context) ([]*types.ParentingQuestion, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	MaxDisplayOrder(ctx context.Context) (int, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) Create(ctx context.Context, tx *gorm.DB, q *types.ParentingQuestion) (*types.ParentingQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

func (r *questionRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.ParentingQuestion, error) {
	var q types.ParentingQuestion
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

func (r *questionRepo) GetDetail(ctx context.Context, id uuid.UUID) (*types.ParentingQuestion, error) {
	var q types.ParentingQuestion
	err := r.db.WithContext(ctx).
		Preload("Observations", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Discussions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&q, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

func (r *questionRepo) List(ctx context.Context) ([]*types.ParentingQuestion, error) {
	var questions []*types.ParentingQuestion
	err := r.db.WithContext(ctx).
		Preload("Observations", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(5)
		}).
		Preload("Discussions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(1)
		}).
		Order("display_order ASC").
		Order("created_at DESC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.ParentingQuestion{}).
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

func (r *questionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&types.ParentingQuestion{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionRepo) MaxDisplayOrder(ctx context.Context) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&types.ParentingQuestion{}).
		Select("MAX(display_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

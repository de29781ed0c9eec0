package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/types"
)

type DailyDigestRepo interface {
	Create(ctx context.Context, tx *gorm.DB, digest *types.DailyDigest) (*types.DailyDigest, error)
	GetByDate(ctx context.Context, date time.Time) (*types.DailyDigest, error)
	UpdateByDate(ctx context.Context, tx *gorm.DB, date time.Time, fields map[string]interface{}) (*types.DailyDigest, error)
	DeleteByDate(ctx context.Context, date time.Time) error
	List(ctx context.Context, limit, offset int) ([]*types.DailyDigest, error)
}

type dailyDigestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyDigestRepo(db *gorm.DB, baseLog *logger.Logger) DailyDigestRepo {
	return &dailyDigestRepo{db: db, log: baseLog.With("repo", "DailyDigestRepo")}
}

func (r *dailyDigestRepo) Create(ctx context.Context, tx *gorm.DB, digest *types.DailyDigest) (*types.DailyDigest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(digest).Error; err != nil {
		return nil, err
	}
	return digest, nil
}

func (r *dailyDigestRepo) GetByDate(ctx context.Context, date time.Time) (*types.DailyDigest, error) {
	var digest types.DailyDigest
	if err := r.db.WithContext(ctx).First(&digest, "date = ?", date).Error; err != nil {
		return nil, translate(err)
	}
	return &digest, nil
}

func (r *dailyDigestRepo) UpdateByDate(ctx context.Context, tx *gorm.DB, date time.Time, fields map[string]interface{}) (*types.DailyDigest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.DailyDigest{}).
		Where("date = ?", date).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByDate(ctx, date)
}

func (r *dailyDigestRepo) DeleteByDate(ctx context.Context, date time.Time) error {
	res := r.db.WithContext(ctx).Delete(&types.DailyDigest{}, "date = ?", date)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *dailyDigestRepo) List(ctx context.Context, limit, offset int) ([]*types.DailyDigest, error) {
	if limit <= 0 {
		limit = 30
	}
	var digests []*types.DailyDigest
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Limit(limit).
		Offset(offset).
		Find(&digests).Error
	if err != nil {
		return nil, err
	}
	return digests, nil
}

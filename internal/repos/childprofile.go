package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/types"
)

type ChildProfileRepo interface {
	// First returns the profile row, or ErrNotFound when none exists yet.
	First(ctx context.Context) (*types.ChildProfile, error)
}

type childProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChildProfileRepo(db *gorm.DB, baseLog *logger.Logger) ChildProfileRepo {
	return &childProfileRepo{db: db, log: baseLog.With("repo", "ChildProfileRepo")}
}

func (r *childProfileRepo) First(ctx context.Context) (*types.ChildProfile, error) {
	var profile types.ChildProfile
	if err := r.db.WithContext(ctx).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

type ValuesPrincipleRepo interface {
	ListActive(ctx context.Context) ([]*types.ValuesPrinciple, error)
}

type valuesPrincipleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewValuesPrincipleRepo(db *gorm.DB, baseLog *logger.Logger) ValuesPrincipleRepo {
	return &valuesPrincipleRepo{db: db, log: baseLog.With("repo", "ValuesPrincipleRepo")}
}

func (r *valuesPrincipleRepo) ListActive(ctx context.Context) ([]*types.ValuesPrinciple, error) {
	var principles []*types.ValuesPrinciple
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&principles).Error
	if err != nil {
		return nil, err
	}
	return principles, nil
}

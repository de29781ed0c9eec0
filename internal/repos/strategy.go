package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/types"
)

type StrategyRepo interface {
	List(ctx context.Context) ([]*types.Strategy, error)
	ListActiveByCategories(ctx context.Context, categories []string, limit int) ([]*types.Strategy, error)
}

type strategyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStrategyRepo(db *gorm.DB, baseLog *logger.Logger) StrategyRepo {
	return &strategyRepo{db: db, log: baseLog.With("repo", "StrategyRepo")}
}

func (r *strategyRepo) List(ctx context.Context) ([]*types.Strategy, error) {
	var strategies []*types.Strategy
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&strategies).Error
	if err != nil {
		return nil, err
	}
	return strategies, nil
}

func (r *strategyRepo) ListActiveByCategories(ctx context.Context, categories []string, limit int) ([]*types.Strategy, error) {
	if len(categories) == 0 {
		return []*types.Strategy{}, nil
	}
	var strategies []*types.Strategy
	err := r.db.WithContext(ctx).
		Where("status = ? AND category IN ?", types.StrategyStatusActive, categories).
		Limit(limit).
		Find(&strategies).Error
	if err != nil {
		return nil, err
	}
	return strategies, nil
}

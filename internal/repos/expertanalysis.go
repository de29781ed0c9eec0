package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/types"
)

type ExpertAnalysisRepo interface {
	Create(ctx context.Context, tx *gorm.DB, analysis *types.ExpertAnalysis) (*types.ExpertAnalysis, error)
}

type expertAnalysisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExpertAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) ExpertAnalysisRepo {
	return &expertAnalysisRepo{db: db, log: baseLog.With("repo", "ExpertAnalysisRepo")}
}

func (r *expertAnalysisRepo) Create(ctx context.Context, tx *gorm.DB, analysis *types.ExpertAnalysis) (*types.ExpertAnalysis, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(analysis).Error; err != nil {
		return nil, err
	}
	return analysis, nil
}

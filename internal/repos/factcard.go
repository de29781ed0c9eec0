package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/types"
)

type FactCardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, card *types.FactCard) (*types.FactCard, error)
	GetByEntryID(ctx context.Context, entryID uuid.UUID) (*types.FactCard, error)
}

type factCardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFactCardRepo(db *gorm.DB, baseLog *logger.Logger) FactCardRepo {
	return &factCardRepo{db: db, log: baseLog.With("repo", "FactCardRepo")}
}

func (r *factCardRepo) Create(ctx context.Context, tx *gorm.DB, card *types.FactCard) (*types.FactCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(card).Error; err != nil {
		return nil, err
	}
	return card, nil
}

func (r *factCardRepo) GetByEntryID(ctx context.Context, entryID uuid.UUID) (*types.FactCard, error) {
	var card types.FactCard
	err := r.db.WithContext(ctx).
		Preload("ExpertAnalysis").
		First(&card, "entry_id = ?", entryID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &card, nil
}

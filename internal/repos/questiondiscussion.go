package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/types"
)

type QuestionDiscussionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, msg *types.QuestionDiscussion) (*types.QuestionDiscussion, error)
	// ListByQuestion returns the oldest turns first, capped at limit (0 = all).
	ListByQuestion(ctx context.Context, questionID uuid.UUID, limit int) ([]*types.QuestionDiscussion, error)
}

type questionDiscussionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionDiscussionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionDiscussionRepo {
	return &questionDiscussionRepo{db: db, log: baseLog.With("repo", "QuestionDiscussionRepo")}
}

func (r *questionDiscussionRepo) Create(ctx context.Context, tx *gorm.DB, msg *types.QuestionDiscussion) (*types.QuestionDiscussion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *questionDiscussionRepo) ListByQuestion(ctx context.Context, questionID uuid.UUID, limit int) ([]*types.QuestionDiscussion, error) {
	q := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var msgs []*types.QuestionDiscussion
	if err := q.Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/types"
)

type EntryFilter struct {
	Limit     int
	Offset    int
	Tags      []string
	StartDate *time.Time
	EndDate   *time.Time
}

type EntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.Entry) (*types.Entry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Entry, error)
	List(ctx context.Context, filter EntryFilter) ([]*types.Entry, error)
	// ListRecent returns entries by entry date descending, skipping excludeIDs.
	ListRecent(ctx context.Context, excludeIDs []uuid.UUID, limit int) ([]*types.Entry, error)
	// ListTagged returns entries whose fact-card tags intersect tags at all,
	// by entry date descending, skipping excludeIDs.
	ListTagged(ctx context.Context, tags []string, excludeIDs []uuid.UUID, limit int) ([]*types.Entry, error)
}

type entryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntryRepo(db *gorm.DB, baseLog *logger.Logger) EntryRepo {
	return &entryRepo{db: db, log: baseLog.With("repo", "EntryRepo")}
}

func (r *entryRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.Entry) (*types.Entry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *entryRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Entry, error) {
	var entry types.Entry
	err := r.db.WithContext(ctx).
		Preload("FactCard.ExpertAnalysis").
		Preload("FactCard").
		First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &entry, nil
}

func (r *entryRepo) List(ctx context.Context, filter EntryFilter) ([]*types.Entry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	q := r.db.WithContext(ctx).Model(&types.Entry{}).
		Preload("FactCard.ExpertAnalysis").
		Preload("FactCard")

	if filter.StartDate != nil {
		q = q.Where("entry_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("entry_date <= ?", *filter.EndDate)
	}
	if len(filter.Tags) > 0 {
		q = q.Joins("JOIN fact_card ON fact_card.entry_id = entry.id")
		for _, tag := range filter.Tags {
			q = q.Where(datatypes.JSONArrayQuery("tags").Contains(tag))
		}
	}

	var entries []*types.Entry
	err := q.Order("entry_date DESC").Limit(limit).Offset(filter.Offset).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *entryRepo) ListRecent(ctx context.Context, excludeIDs []uuid.UUID, limit int) ([]*types.Entry, error) {
	q := r.db.WithContext(ctx).Model(&types.Entry{}).
		Preload("FactCard.ExpertAnalysis").
		Preload("FactCard")
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	var entries []*types.Entry
	if err := q.Order("entry_date DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *entryRepo) ListTagged(ctx context.Context, tags []string, excludeIDs []uuid.UUID, limit int) ([]*types.Entry, error) {
	if len(tags) == 0 {
		return []*types.Entry{}, nil
	}
	q := r.db.WithContext(ctx).Model(&types.Entry{}).
		Preload("FactCard.ExpertAnalysis").
		Preload("FactCard").
		Joins("JOIN fact_card ON fact_card.entry_id = entry.id")
	if len(excludeIDs) > 0 {
		q = q.Where("entry.id NOT IN ?", excludeIDs)
	}

	anyTag := r.db.Where(datatypes.JSONArrayQuery("tags").Contains(tags[0]))
	for _, tag := range tags[1:] {
		anyTag = anyTag.Or(datatypes.JSONArrayQuery("tags").Contains(tag))
	}
	q = q.Where(anyTag)

	var entries []*types.Entry
	if err := q.Order("entry.entry_date DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

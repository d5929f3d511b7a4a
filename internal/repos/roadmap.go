package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/types"
)

type RoadmapRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Roadmap) (*types.Roadmap, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Roadmap, error)
	List(ctx context.Context, tx *gorm.DB, publishedOnly bool) ([]*types.Roadmap, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Roadmap) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type roadmapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	return &roadmapRepo{db: db, log: baseLog.With("repo", "RoadmapRepo")}
}

func (r *roadmapRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Roadmap) (*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *roadmapRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Roadmap
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *roadmapRepo) List(ctx context.Context, tx *gorm.DB, publishedOnly bool) ([]*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Roadmap
	q := transaction.WithContext(ctx).Order("created_at")
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *roadmapRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Roadmap) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *roadmapRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Roadmap{}).Error
}

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/types"
)

type QuizRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Quiz) (*types.Quiz, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Quiz, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Quiz, error)
	ListByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) ([]*types.Quiz, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Quiz) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Quiz) (*types.Quiz, error) {
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

func (r *quizRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Quiz
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

func (r *quizRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Quiz
	if err := transaction.WithContext(ctx).
		Preload("Roadmap").
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizRepo) ListByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) ([]*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Quiz
	if len(roadmapIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("roadmap_id IN ?", roadmapIDs).
		Order("week_number").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Quiz) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *quizRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Quiz{}).Error
}

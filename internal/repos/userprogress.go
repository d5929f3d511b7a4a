package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/types"
)

// UserProgressRepo owns the per-(user, roadmap) progress record and its child
// rows. Duplicate day/week/attempt inserts land on unique composite indexes,
// so a check-then-append race surfaces as gorm.ErrDuplicatedKey rather than a
// duplicated row.
type UserProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.UserProgress) (*types.UserProgress, error)
	GetByUserAndRoadmap(ctx context.Context, tx *gorm.DB, userID, roadmapID uuid.UUID) (*types.UserProgress, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserProgress, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.UserProgress, error)
	UpdateDerivedState(ctx context.Context, tx *gorm.DB, row *types.UserProgress) error
	AddCompletedDay(ctx context.Context, tx *gorm.DB, row *types.CompletedDay) error
	AddCompletedWeek(ctx context.Context, tx *gorm.DB, row *types.CompletedWeek) error
	AddQuizAttempt(ctx context.Context, tx *gorm.DB, row *types.QuizAttempt) error
	UpsertProject(ctx context.Context, tx *gorm.DB, row *types.ProjectSubmission) error
}

type userProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProgressRepo(db *gorm.DB, baseLog *logger.Logger) UserProgressRepo {
	return &userProgressRepo{db: db, log: baseLog.With("repo", "UserProgressRepo")}
}

func (r *userProgressRepo) Create(ctx context.Context, tx *gorm.DB, row *types.UserProgress) (*types.UserProgress, error) {
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

func (r *userProgressRepo) GetByUserAndRoadmap(ctx context.Context, tx *gorm.DB, userID, roadmapID uuid.UUID) (*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.UserProgress
	err := transaction.WithContext(ctx).
		Preload("CompletedDays").
		Preload("CompletedWeeks").
		Preload("QuizAttempts").
		Preload("CompletedProjects").
		Where("user_id = ? AND roadmap_id = ?", userID, roadmapID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userProgressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.UserProgress
	if userID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("Roadmap").
		Preload("CompletedDays").
		Preload("CompletedWeeks").
		Preload("QuizAttempts").
		Preload("CompletedProjects").
		Where("user_id = ?", userID).
		Order("started_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userProgressRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.UserProgress
	if err := transaction.WithContext(ctx).
		Preload("User").
		Preload("Roadmap").
		Order("started_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateDerivedState persists the engine-owned scalar fields without touching
// child associations.
func (r *userProgressRepo) UpdateDerivedState(ctx context.Context, tx *gorm.DB, row *types.UserProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.UserProgress{}).
		Where("id = ?", row.ID).
		Select("last_accessed", "completion_percentage", "is_completed").
		Updates(map[string]interface{}{
			"last_accessed":         row.LastAccessed,
			"completion_percentage": row.CompletionPercentage,
			"is_completed":          row.IsCompleted,
		}).Error
}

func (r *userProgressRepo) AddCompletedDay(ctx context.Context, tx *gorm.DB, row *types.CompletedDay) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *userProgressRepo) AddCompletedWeek(ctx context.Context, tx *gorm.DB, row *types.CompletedWeek) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *userProgressRepo) AddQuizAttempt(ctx context.Context, tx *gorm.DB, row *types.QuizAttempt) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

// UpsertProject replaces the submission for (progress, week) when one exists.
// The lookup runs on a fresh dest: a pre-populated primary key on the row
// would otherwise leak into the WHERE clause and never match the stored row.
// On replace, row takes over the stored row's identity.
func (r *userProgressRepo) UpsertProject(ctx context.Context, tx *gorm.DB, row *types.ProjectSubmission) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	var existing types.ProjectSubmission
	err := transaction.WithContext(ctx).
		Where("progress_id = ? AND week_number = ?", row.ProgressID, row.WeekNumber).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return transaction.WithContext(ctx).Create(row).Error
	}
	if err != nil {
		return err
	}
	existing.SubmissionURL = row.SubmissionURL
	existing.CompletedAt = row.CompletedAt
	if err := transaction.WithContext(ctx).
		Model(&types.ProjectSubmission{}).
		Where("id = ?", existing.ID).
		Select("submission_url", "completed_at").
		Updates(map[string]interface{}{
			"submission_url": existing.SubmissionURL,
			"completed_at":   existing.CompletedAt,
		}).Error; err != nil {
		return err
	}
	*row = existing
	return nil
}

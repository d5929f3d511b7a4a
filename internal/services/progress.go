package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/backend/internal/platform/apierr"
	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/repos"
	"github.com/skillpath/backend/internal/requestdata"
	"github.com/skillpath/backend/internal/types"
)

// ProgressService owns every mutation of a user's progress record. Each
// action is a single read-modify-write transaction against one record; the
// unique indexes on the child tables make lost races surface as conflicts.
type ProgressService interface {
	GetMyProgress(ctx context.Context) ([]*types.UserProgress, error)
	GetProgressForRoadmap(ctx context.Context, roadmapID uuid.UUID) (*types.UserProgress, error)
	GetAllProgress(ctx context.Context) ([]*types.UserProgress, error)
	StartRoadmap(ctx context.Context, roadmapID uuid.UUID) (*types.UserProgress, error)
	CompleteDay(ctx context.Context, roadmapID uuid.UUID, weekNumber, dayNumber int) (*types.UserProgress, error)
	SubmitQuiz(ctx context.Context, roadmapID, quizID uuid.UUID, answers []types.SubmittedAnswer) (*GradeResult, error)
	SubmitProject(ctx context.Context, roadmapID uuid.UUID, weekNumber int, submissionURL string) (*types.ProjectSubmission, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	progressRepo repos.UserProgressRepo
	roadmapRepo  repos.RoadmapRepo
	quizRepo     repos.QuizRepo
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	progressRepo repos.UserProgressRepo,
	roadmapRepo repos.RoadmapRepo,
	quizRepo repos.QuizRepo,
) ProgressService {
	return &progressService{
		db:           db,
		log:          baseLog.With("service", "ProgressService"),
		progressRepo: progressRepo,
		roadmapRepo:  roadmapRepo,
		quizRepo:     quizRepo,
	}
}

func (ps *progressService) requireUser(ctx context.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("unauthorized", fmt.Errorf("no authenticated user in context"))
	}
	return rd.UserID, nil
}

func (ps *progressService) loadRoadmap(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID) (*types.Roadmap, error) {
	found, err := ps.roadmapRepo.GetByIDs(ctx, tx, []uuid.UUID{roadmapID})
	if err != nil {
		return nil, fmt.Errorf("load roadmap: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, apierr.NotFound("roadmap_not_found", fmt.Errorf("roadmap %s not found", roadmapID))
	}
	return found[0], nil
}

func (ps *progressService) loadProgress(ctx context.Context, tx *gorm.DB, userID, roadmapID uuid.UUID) (*types.UserProgress, error) {
	progress, err := ps.progressRepo.GetByUserAndRoadmap(ctx, tx, userID, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if progress == nil {
		return nil, apierr.NotFound("progress_not_found", fmt.Errorf("no progress found for this roadmap"))
	}
	return progress, nil
}

func (ps *progressService) GetMyProgress(ctx context.Context) ([]*types.UserProgress, error) {
	userID, err := ps.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return ps.progressRepo.GetByUserID(ctx, nil, userID)
}

func (ps *progressService) GetProgressForRoadmap(ctx context.Context, roadmapID uuid.UUID) (*types.UserProgress, error) {
	userID, err := ps.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := ps.loadProgress(ctx, nil, userID, roadmapID)
	if err != nil {
		return nil, err
	}
	roadmap, err := ps.loadRoadmap(ctx, nil, roadmapID)
	if err != nil {
		return nil, err
	}
	progress.Roadmap = roadmap
	return progress, nil
}

func (ps *progressService) GetAllProgress(ctx context.Context) ([]*types.UserProgress, error) {
	if _, err := ps.requireUser(ctx); err != nil {
		return nil, err
	}
	return ps.progressRepo.GetAll(ctx, nil)
}

func (ps *progressService) StartRoadmap(ctx context.Context, roadmapID uuid.UUID) (*types.UserProgress, error) {
	userID, err := ps.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var created *types.UserProgress
	err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ps.loadRoadmap(ctx, tx, roadmapID); err != nil {
			return err
		}
		existing, err := ps.progressRepo.GetByUserAndRoadmap(ctx, tx, userID, roadmapID)
		if err != nil {
			return fmt.Errorf("check existing progress: %w", err)
		}
		if existing != nil {
			return apierr.Conflict("already_started", fmt.Errorf("you've already started this roadmap"))
		}

		now := time.Now()
		row := &types.UserProgress{
			ID:           uuid.New(),
			UserID:       userID,
			RoadmapID:    roadmapID,
			StartedAt:    now,
			LastAccessed: now,
		}
		if _, err := ps.progressRepo.Create(ctx, tx, row); err != nil {
			return asConflict(err, "already_started")
		}
		created = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	ps.log.Info("Roadmap started", "user_id", userID.String(), "roadmap_id", roadmapID.String())
	return created, nil
}

func (ps *progressService) CompleteDay(ctx context.Context, roadmapID uuid.UUID, weekNumber, dayNumber int) (*types.UserProgress, error) {
	userID, err := ps.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var updated *types.UserProgress
	err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roadmap, err := ps.loadRoadmap(ctx, tx, roadmapID)
		if err != nil {
			return err
		}
		progress, err := ps.loadProgress(ctx, tx, userID, roadmapID)
		if err != nil {
			return err
		}

		if !DayExists(roadmap.Weeks, weekNumber, dayNumber) {
			return apierr.Validation("invalid_week_or_day", fmt.Errorf("week %d day %d does not exist in this roadmap", weekNumber, dayNumber))
		}
		for _, d := range progress.CompletedDays {
			if d.WeekNumber == weekNumber && d.DayNumber == dayNumber {
				return apierr.Conflict("day_already_completed", fmt.Errorf("this day has already been marked as completed"))
			}
		}

		now := time.Now()
		day := types.CompletedDay{
			ID:          uuid.New(),
			ProgressID:  progress.ID,
			WeekNumber:  weekNumber,
			DayNumber:   dayNumber,
			CompletedAt: now,
		}
		if err := ps.progressRepo.AddCompletedDay(ctx, tx, &day); err != nil {
			return asConflict(err, "day_already_completed")
		}
		progress.CompletedDays = append(progress.CompletedDays, day)

		progress.CompletionPercentage = CompletionPercentage(len(progress.CompletedDays), TotalDays(roadmap.Weeks))

		weekDone := IsWeekComplete(roadmap.Weeks, weekNumber, progress.CompletedDays)
		alreadyRecorded := false
		for _, w := range progress.CompletedWeeks {
			if w.WeekNumber == weekNumber {
				alreadyRecorded = true
				break
			}
		}
		if weekDone && !alreadyRecorded {
			week := types.CompletedWeek{
				ID:          uuid.New(),
				ProgressID:  progress.ID,
				WeekNumber:  weekNumber,
				CompletedAt: now,
			}
			if err := ps.progressRepo.AddCompletedWeek(ctx, tx, &week); err != nil {
				return asConflict(err, "week_already_completed")
			}
			progress.CompletedWeeks = append(progress.CompletedWeeks, week)
		}

		if IsRoadmapComplete(roadmap.Weeks, progress.CompletedWeeks) {
			progress.IsCompleted = true
		}
		progress.LastAccessed = now

		if err := ps.progressRepo.UpdateDerivedState(ctx, tx, progress); err != nil {
			return fmt.Errorf("persist progress: %w", err)
		}
		updated = progress
		return nil
	})
	if err != nil {
		return nil, err
	}

	ps.log.Info("Day completed",
		"user_id", userID.String(),
		"roadmap_id", roadmapID.String(),
		"week", weekNumber,
		"day", dayNumber,
		"completion", updated.CompletionPercentage,
	)
	return updated, nil
}

func (ps *progressService) SubmitQuiz(ctx context.Context, roadmapID, quizID uuid.UUID, answers []types.SubmittedAnswer) (*GradeResult, error) {
	userID, err := ps.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, apierr.Validation("missing_answers", fmt.Errorf("please provide quiz answers"))
	}

	var result *GradeResult
	err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quizzes, err := ps.quizRepo.GetByIDs(ctx, tx, []uuid.UUID{quizID})
		if err != nil {
			return fmt.Errorf("load quiz: %w", err)
		}
		if len(quizzes) == 0 || quizzes[0] == nil {
			return apierr.NotFound("quiz_not_found", fmt.Errorf("quiz %s not found", quizID))
		}
		quiz := quizzes[0]

		progress, err := ps.loadProgress(ctx, tx, userID, roadmapID)
		if err != nil {
			return err
		}
		for _, attempt := range progress.QuizAttempts {
			if attempt.QuizID == quizID {
				return apierr.Conflict("quiz_already_attempted", fmt.Errorf("you've already submitted this quiz"))
			}
		}

		graded := GradeQuiz(quiz, answers)

		now := time.Now()
		attempt := types.QuizAttempt{
			ID:          uuid.New(),
			ProgressID:  progress.ID,
			QuizID:      quizID,
			Score:       graded.Score,
			Passed:      graded.Passed,
			Answers:     graded.Answers,
			CompletedAt: now,
		}
		if err := ps.progressRepo.AddQuizAttempt(ctx, tx, &attempt); err != nil {
			return asConflict(err, "quiz_already_attempted")
		}

		progress.LastAccessed = now
		if err := ps.progressRepo.UpdateDerivedState(ctx, tx, progress); err != nil {
			return fmt.Errorf("persist progress: %w", err)
		}
		result = &graded
		return nil
	})
	if err != nil {
		return nil, err
	}

	ps.log.Info("Quiz submitted",
		"user_id", userID.String(),
		"quiz_id", quizID.String(),
		"score", result.Score,
		"passed", result.Passed,
	)
	return result, nil
}

func (ps *progressService) SubmitProject(ctx context.Context, roadmapID uuid.UUID, weekNumber int, submissionURL string) (*types.ProjectSubmission, error) {
	userID, err := ps.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(submissionURL) == "" {
		return nil, apierr.Validation("missing_submission_url", fmt.Errorf("please provide a submission URL"))
	}

	var submission *types.ProjectSubmission
	err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		progress, err := ps.loadProgress(ctx, tx, userID, roadmapID)
		if err != nil {
			return err
		}

		now := time.Now()
		row := &types.ProjectSubmission{
			ID:            uuid.New(),
			ProgressID:    progress.ID,
			WeekNumber:    weekNumber,
			SubmissionURL: submissionURL,
			CompletedAt:   now,
		}
		if err := ps.progressRepo.UpsertProject(ctx, tx, row); err != nil {
			return asConflict(fmt.Errorf("upsert project submission: %w", err), "project_already_submitted")
		}

		progress.LastAccessed = now
		if err := ps.progressRepo.UpdateDerivedState(ctx, tx, progress); err != nil {
			return fmt.Errorf("persist progress: %w", err)
		}
		submission = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	ps.log.Info("Project submitted", "user_id", userID.String(), "roadmap_id", roadmapID.String(), "week", weekNumber)
	return submission, nil
}

// asConflict turns a unique-index violation into the conflict kind so that a
// lost check-then-append race reports the same way as a failed precondition.
func asConflict(err error, code string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apierr.Conflict(code, err)
	}
	return err
}

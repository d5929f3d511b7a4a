package services

import (
	"context"
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

// QuizService is the quiz catalog. Grading lives with the progress engine;
// this service only manages quiz definitions.
type QuizService interface {
	List(ctx context.Context) ([]*types.Quiz, error)
	ListForRoadmap(ctx context.Context, roadmapID uuid.UUID) ([]*types.Quiz, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Quiz, error)
	Create(ctx context.Context, roadmapID uuid.UUID, input *types.Quiz) (*types.Quiz, error)
	Update(ctx context.Context, id uuid.UUID, input *types.Quiz) (*types.Quiz, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type quizService struct {
	db          *gorm.DB
	log         *logger.Logger
	quizRepo    repos.QuizRepo
	roadmapRepo repos.RoadmapRepo
}

func NewQuizService(db *gorm.DB, baseLog *logger.Logger, quizRepo repos.QuizRepo, roadmapRepo repos.RoadmapRepo) QuizService {
	return &quizService{
		db:          db,
		log:         baseLog.With("service", "QuizService"),
		quizRepo:    quizRepo,
		roadmapRepo: roadmapRepo,
	}
}

func (qs *quizService) List(ctx context.Context) ([]*types.Quiz, error) {
	return qs.quizRepo.List(ctx, nil)
}

func (qs *quizService) ListForRoadmap(ctx context.Context, roadmapID uuid.UUID) ([]*types.Quiz, error) {
	return qs.quizRepo.ListByRoadmapIDs(ctx, nil, []uuid.UUID{roadmapID})
}

func (qs *quizService) Get(ctx context.Context, id uuid.UUID) (*types.Quiz, error) {
	found, err := qs.quizRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, apierr.NotFound("quiz_not_found", fmt.Errorf("quiz %s not found", id))
	}
	return found[0], nil
}

func (qs *quizService) Create(ctx context.Context, roadmapID uuid.UUID, input *types.Quiz) (*types.Quiz, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized", fmt.Errorf("no authenticated user in context"))
	}
	if err := validateQuizInput(input); err != nil {
		return nil, err
	}

	roadmaps, err := qs.roadmapRepo.GetByIDs(ctx, nil, []uuid.UUID{roadmapID})
	if err != nil {
		return nil, fmt.Errorf("load roadmap: %w", err)
	}
	if len(roadmaps) == 0 || roadmaps[0] == nil {
		return nil, apierr.NotFound("roadmap_not_found", fmt.Errorf("no roadmap with the id of %s", roadmapID))
	}
	if roadmaps[0].CreatedBy != rd.UserID && rd.Role != types.RoleAdmin {
		return nil, apierr.Forbidden("not_owner", fmt.Errorf("user %s is not authorized to add a quiz to this roadmap", rd.UserID))
	}

	now := time.Now()
	input.ID = uuid.New()
	input.RoadmapID = roadmapID
	input.CreatedBy = rd.UserID
	input.CreatedAt = now
	input.UpdatedAt = now
	if input.TimeLimit == 0 {
		input.TimeLimit = 15
	}
	if input.PassingScore == 0 {
		input.PassingScore = 70
	}
	input.IsActive = true
	normalizeQuestions(input)

	if _, err := qs.quizRepo.Create(ctx, nil, input); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	qs.log.Info("Quiz created", "quiz_id", input.ID.String(), "roadmap_id", roadmapID.String())
	return input, nil
}

func (qs *quizService) Update(ctx context.Context, id uuid.UUID, input *types.Quiz) (*types.Quiz, error) {
	existing, err := qs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := qs.requireOwnerOrAdmin(ctx, existing.CreatedBy); err != nil {
		return nil, err
	}

	if input.Title != "" {
		existing.Title = input.Title
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.WeekNumber != 0 {
		existing.WeekNumber = input.WeekNumber
	}
	if input.DayNumber != 0 {
		existing.DayNumber = input.DayNumber
	}
	if input.Questions != nil {
		existing.Questions = input.Questions
		normalizeQuestions(existing)
	}
	if input.TimeLimit != 0 {
		existing.TimeLimit = input.TimeLimit
	}
	if input.PassingScore != 0 {
		existing.PassingScore = input.PassingScore
	}
	existing.IsActive = input.IsActive
	existing.UpdatedAt = time.Now()

	if err := qs.quizRepo.Save(ctx, nil, existing); err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}
	return existing, nil
}

func (qs *quizService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := qs.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := qs.requireOwnerOrAdmin(ctx, existing.CreatedBy); err != nil {
		return err
	}
	return qs.quizRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{id})
}

func (qs *quizService) requireOwnerOrAdmin(ctx context.Context, owner uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized("unauthorized", fmt.Errorf("no authenticated user in context"))
	}
	if rd.UserID != owner && rd.Role != types.RoleAdmin {
		return apierr.Forbidden("not_owner", fmt.Errorf("user %s is not authorized to modify this quiz", rd.UserID))
	}
	return nil
}

// normalizeQuestions assigns ids to embedded questions/answers and applies
// the per-question defaults.
func normalizeQuestions(quiz *types.Quiz) {
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		if q.Type == "" {
			q.Type = types.QuestionTypeMultipleChoice
		}
		if q.Points == 0 {
			q.Points = 1
		}
		for j := range q.Answers {
			if q.Answers[j].ID == uuid.Nil {
				q.Answers[j].ID = uuid.New()
			}
		}
	}
}

func validateQuizInput(input *types.Quiz) error {
	switch {
	case input == nil:
		return apierr.Validation("missing_body", fmt.Errorf("please provide a quiz"))
	case strings.TrimSpace(input.Title) == "":
		return apierr.Validation("missing_title", fmt.Errorf("please add a title"))
	case strings.TrimSpace(input.Description) == "":
		return apierr.Validation("missing_description", fmt.Errorf("please add a description"))
	case input.WeekNumber == 0:
		return apierr.Validation("missing_week_number", fmt.Errorf("please specify week number"))
	}
	for _, q := range input.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return apierr.Validation("missing_question_text", fmt.Errorf("please add question text"))
		}
		switch q.Type {
		case "", types.QuestionTypeMultipleChoice, types.QuestionTypeTrueFalse, types.QuestionTypeCoding:
		default:
			return apierr.Validation("invalid_question_type", fmt.Errorf("unknown question type %q", q.Type))
		}
	}
	return nil
}

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

// RoadmapService is the curriculum catalog. The progress engine only reads
// roadmap structures; writes are an admin/instructor concern.
type RoadmapService interface {
	List(ctx context.Context) ([]*types.Roadmap, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Roadmap, error)
	Create(ctx context.Context, input *types.Roadmap) (*types.Roadmap, error)
	Update(ctx context.Context, id uuid.UUID, input *types.Roadmap) (*types.Roadmap, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type roadmapService struct {
	db          *gorm.DB
	log         *logger.Logger
	roadmapRepo repos.RoadmapRepo
}

func NewRoadmapService(db *gorm.DB, baseLog *logger.Logger, roadmapRepo repos.RoadmapRepo) RoadmapService {
	return &roadmapService{
		db:          db,
		log:         baseLog.With("service", "RoadmapService"),
		roadmapRepo: roadmapRepo,
	}
}

func (rs *roadmapService) List(ctx context.Context) ([]*types.Roadmap, error) {
	rd := requestdata.GetRequestData(ctx)
	publishedOnly := rd == nil || rd.Role != types.RoleAdmin
	return rs.roadmapRepo.List(ctx, nil, publishedOnly)
}

func (rs *roadmapService) Get(ctx context.Context, id uuid.UUID) (*types.Roadmap, error) {
	found, err := rs.roadmapRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load roadmap: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, apierr.NotFound("roadmap_not_found", fmt.Errorf("roadmap %s not found", id))
	}
	return found[0], nil
}

func (rs *roadmapService) Create(ctx context.Context, input *types.Roadmap) (*types.Roadmap, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized", fmt.Errorf("no authenticated user in context"))
	}
	if err := validateRoadmapInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	input.ID = uuid.New()
	input.CreatedBy = rd.UserID
	input.CreatedAt = now
	input.UpdatedAt = now

	if _, err := rs.roadmapRepo.Create(ctx, nil, input); err != nil {
		return nil, asConflict(err, "roadmap_title_taken")
	}
	rs.log.Info("Roadmap created", "roadmap_id", input.ID.String(), "title", input.Title)
	return input, nil
}

func (rs *roadmapService) Update(ctx context.Context, id uuid.UUID, input *types.Roadmap) (*types.Roadmap, error) {
	existing, err := rs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rs.requireOwnerOrAdmin(ctx, existing.CreatedBy); err != nil {
		return nil, err
	}

	if input.Title != "" {
		existing.Title = input.Title
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.Category != "" {
		existing.Category = input.Category
	}
	if input.Level != "" {
		existing.Level = input.Level
	}
	if input.Duration != "" {
		existing.Duration = input.Duration
	}
	if input.Weeks != nil {
		existing.Weeks = input.Weeks
	}
	if input.Prerequisites != nil {
		existing.Prerequisites = input.Prerequisites
	}
	if input.Tags != nil {
		existing.Tags = input.Tags
	}
	existing.IsPublished = input.IsPublished
	existing.UpdatedAt = time.Now()

	if err := rs.roadmapRepo.Save(ctx, nil, existing); err != nil {
		return nil, asConflict(err, "roadmap_title_taken")
	}
	return existing, nil
}

func (rs *roadmapService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := rs.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := rs.requireOwnerOrAdmin(ctx, existing.CreatedBy); err != nil {
		return err
	}
	return rs.roadmapRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{id})
}

func (rs *roadmapService) requireOwnerOrAdmin(ctx context.Context, owner uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized("unauthorized", fmt.Errorf("no authenticated user in context"))
	}
	if rd.UserID != owner && rd.Role != types.RoleAdmin {
		return apierr.Forbidden("not_owner", fmt.Errorf("user %s is not authorized to modify this roadmap", rd.UserID))
	}
	return nil
}

func validateRoadmapInput(input *types.Roadmap) error {
	switch {
	case input == nil:
		return apierr.Validation("missing_body", fmt.Errorf("please provide a roadmap"))
	case strings.TrimSpace(input.Title) == "":
		return apierr.Validation("missing_title", fmt.Errorf("please add a title"))
	case len(input.Title) > 100:
		return apierr.Validation("title_too_long", fmt.Errorf("title cannot be more than 100 characters"))
	case strings.TrimSpace(input.Description) == "":
		return apierr.Validation("missing_description", fmt.Errorf("please add a description"))
	case strings.TrimSpace(input.Category) == "":
		return apierr.Validation("missing_category", fmt.Errorf("please add a category"))
	case strings.TrimSpace(input.Level) == "":
		return apierr.Validation("missing_level", fmt.Errorf("please add a level"))
	case strings.TrimSpace(input.Duration) == "":
		return apierr.Validation("missing_duration", fmt.Errorf("please add duration"))
	}
	return nil
}

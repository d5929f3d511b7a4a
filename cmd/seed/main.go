package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/skillpath/backend/internal/db"
	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/types"
)

type seedFile struct {
	Admin    seedAdmin     `yaml:"admin"`
	Roadmaps []seedRoadmap `yaml:"roadmaps"`
}

type seedAdmin struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

type seedRoadmap struct {
	Title         string     `yaml:"title"`
	Description   string     `yaml:"description"`
	Category      string     `yaml:"category"`
	Level         string     `yaml:"level"`
	Duration      string     `yaml:"duration"`
	Prerequisites []string   `yaml:"prerequisites"`
	Tags          []string   `yaml:"tags"`
	Published     bool       `yaml:"published"`
	Weeks         []seedWeek `yaml:"weeks"`
	Quizzes       []seedQuiz `yaml:"quizzes"`
}

type seedWeek struct {
	Title    string    `yaml:"title"`
	Overview string    `yaml:"overview"`
	Days     []seedDay `yaml:"days"`
	Project  *seedProj `yaml:"project"`
}

type seedDay struct {
	Title           string `yaml:"title"`
	Description     string `yaml:"description"`
	VideoURL        string `yaml:"video_url"`
	ArticleSummary  string `yaml:"article_summary"`
	CodingChallenge string `yaml:"coding_challenge"`
}

type seedProj struct {
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description"`
	Requirements []string `yaml:"requirements"`
	StretchGoals []string `yaml:"stretch_goals"`
}

type seedQuiz struct {
	Title        string         `yaml:"title"`
	Description  string         `yaml:"description"`
	Week         int            `yaml:"week"`
	Day          int            `yaml:"day"`
	TimeLimit    int            `yaml:"time_limit"`
	PassingScore float64        `yaml:"passing_score"`
	Questions    []seedQuestion `yaml:"questions"`
}

type seedQuestion struct {
	Text        string       `yaml:"text"`
	Type        string       `yaml:"type"`
	Points      int          `yaml:"points"`
	CodeSnippet string       `yaml:"code_snippet"`
	Explanation string       `yaml:"explanation"`
	Answers     []seedAnswer `yaml:"answers"`
}

type seedAnswer struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

func main() {
	godotenv.Load()

	path := flag.String("file", "scripts/seed.yaml", "path to the seed fixture")
	flag.Parse()

	log, err := logger.New("development")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Error("Failed to read seed file", "path", *path, "error", err)
		os.Exit(1)
	}
	var fixture seedFile
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		log.Error("Failed to parse seed file", "path", *path, "error", err)
		os.Exit(1)
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		os.Exit(1)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Error("Auto migration failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := seed(ctx, pg.DB(), log, fixture); err != nil {
		log.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
	log.Info("Seeding complete")
}

func seed(ctx context.Context, conn *gorm.DB, log *logger.Logger, fixture seedFile) error {
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := ensureAdmin(tx, fixture.Admin)
		if err != nil {
			return err
		}
		log.Info("Admin ready", "email", admin.Email)

		for _, sr := range fixture.Roadmaps {
			roadmap, created, err := ensureRoadmap(tx, admin.ID, sr)
			if err != nil {
				return err
			}
			if !created {
				log.Info("Roadmap already present, skipping", "title", sr.Title)
				continue
			}
			log.Info("Roadmap seeded", "title", roadmap.Title, "weeks", len(roadmap.Weeks))

			for _, sq := range sr.Quizzes {
				quiz := buildQuiz(admin.ID, roadmap.ID, sq)
				if err := tx.Create(quiz).Error; err != nil {
					return fmt.Errorf("create quiz %q: %w", sq.Title, err)
				}
				log.Info("Quiz seeded", "title", quiz.Title, "week", quiz.WeekNumber)
			}
		}
		return nil
	})
}

func ensureAdmin(tx *gorm.DB, sa seedAdmin) (*types.User, error) {
	var existing types.User
	err := tx.Where("email = ?", sa.Email).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(sa.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	now := time.Now().UTC()
	admin := &types.User{
		ID:        uuid.New(),
		Email:     sa.Email,
		Password:  string(hash),
		FirstName: sa.FirstName,
		LastName:  sa.LastName,
		Role:      types.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return admin, nil
}

func ensureRoadmap(tx *gorm.DB, createdBy uuid.UUID, sr seedRoadmap) (*types.Roadmap, bool, error) {
	var count int64
	if err := tx.Model(&types.Roadmap{}).Where("title = ?", sr.Title).Count(&count).Error; err != nil {
		return nil, false, fmt.Errorf("look up roadmap %q: %w", sr.Title, err)
	}
	if count > 0 {
		var existing types.Roadmap
		if err := tx.Where("title = ?", sr.Title).First(&existing).Error; err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}

	weeks := make([]types.Week, 0, len(sr.Weeks))
	for i, sw := range sr.Weeks {
		week := types.Week{
			WeekNumber: i + 1,
			Title:      sw.Title,
			Overview:   sw.Overview,
		}
		for _, sd := range sw.Days {
			week.Days = append(week.Days, types.DayContent{
				Title:           sd.Title,
				Description:     sd.Description,
				VideoURL:        sd.VideoURL,
				ArticleSummary:  sd.ArticleSummary,
				CodingChallenge: sd.CodingChallenge,
			})
		}
		if sw.Project != nil {
			week.WeekendProject = &types.WeekendProject{
				Title:        sw.Project.Title,
				Description:  sw.Project.Description,
				Requirements: sw.Project.Requirements,
				StretchGoals: sw.Project.StretchGoals,
			}
		}
		weeks = append(weeks, week)
	}

	now := time.Now().UTC()
	roadmap := &types.Roadmap{
		ID:            uuid.New(),
		Title:         sr.Title,
		Description:   sr.Description,
		Category:      sr.Category,
		Level:         sr.Level,
		Duration:      sr.Duration,
		Weeks:         weeks,
		Prerequisites: sr.Prerequisites,
		Tags:          sr.Tags,
		CreatedBy:     createdBy,
		IsPublished:   sr.Published,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.Create(roadmap).Error; err != nil {
		return nil, false, fmt.Errorf("create roadmap %q: %w", sr.Title, err)
	}
	return roadmap, true, nil
}

func buildQuiz(createdBy, roadmapID uuid.UUID, sq seedQuiz) *types.Quiz {
	questions := make([]types.Question, 0, len(sq.Questions))
	for _, q := range sq.Questions {
		question := types.Question{
			ID:          uuid.New(),
			Text:        q.Text,
			Type:        q.Type,
			Points:      q.Points,
			CodeSnippet: q.CodeSnippet,
			Explanation: q.Explanation,
		}
		if question.Type == "" {
			question.Type = types.QuestionTypeMultipleChoice
		}
		if question.Points <= 0 {
			question.Points = 1
		}
		for _, a := range q.Answers {
			question.Answers = append(question.Answers, types.Answer{
				ID:        uuid.New(),
				Text:      a.Text,
				IsCorrect: a.Correct,
			})
		}
		questions = append(questions, question)
	}

	timeLimit := sq.TimeLimit
	if timeLimit <= 0 {
		timeLimit = 15
	}
	passing := sq.PassingScore
	if passing <= 0 {
		passing = 70
	}
	now := time.Now().UTC()
	return &types.Quiz{
		ID:           uuid.New(),
		Title:        sq.Title,
		Description:  sq.Description,
		RoadmapID:    roadmapID,
		WeekNumber:   sq.Week,
		DayNumber:    sq.Day,
		Questions:    questions,
		TimeLimit:    timeLimit,
		PassingScore: passing,
		CreatedBy:    createdBy,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

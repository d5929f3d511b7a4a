package services

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillpath/backend/internal/db"
	"github.com/skillpath/backend/internal/platform/apierr"
	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/repos"
	"github.com/skillpath/backend/internal/requestdata"
	"github.com/skillpath/backend/internal/types"
)

var testDBSeq atomic.Int64

type progressEnv struct {
	db      *gorm.DB
	log     *logger.Logger
	service ProgressService
	userID  uuid.UUID
	roadmap *types.Roadmap
	quiz    *types.Quiz
}

func newProgressEnv(t *testing.T) *progressEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:progress_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	t.Cleanup(log.Sync)

	now := time.Now()
	user := &types.User{
		ID:        uuid.New(),
		Email:     fmt.Sprintf("learner-%d@example.com", testDBSeq.Load()),
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "Learner",
		Role:      types.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	roadmap := &types.Roadmap{
		ID:          uuid.New(),
		Title:       fmt.Sprintf("Test Roadmap %d", testDBSeq.Load()),
		Description: "two weeks, two days each",
		Category:    "backend",
		Level:       "beginner",
		Duration:    "2 weeks",
		Weeks: []types.Week{
			{WeekNumber: 1, Title: "One", Days: []types.DayContent{{Title: "d1"}, {Title: "d2"}}},
			{WeekNumber: 2, Title: "Two", Days: []types.DayContent{{Title: "d1"}, {Title: "d2"}}},
		},
		CreatedBy:   user.ID,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := conn.Create(roadmap).Error; err != nil {
		t.Fatalf("create roadmap: %v", err)
	}

	q1 := types.Question{ID: uuid.New(), Text: "q1", Type: types.QuestionTypeMultipleChoice, Points: 1}
	q1.Answers = []types.Answer{
		{ID: uuid.New(), Text: "right", IsCorrect: true},
		{ID: uuid.New(), Text: "wrong"},
	}
	quiz := &types.Quiz{
		ID:           uuid.New(),
		Title:        "Week 1 Checkpoint",
		Description:  "one question",
		RoadmapID:    roadmap.ID,
		WeekNumber:   1,
		Questions:    []types.Question{q1},
		TimeLimit:    15,
		PassingScore: 70,
		CreatedBy:    user.ID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := conn.Create(quiz).Error; err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	service := NewProgressService(
		conn,
		log,
		repos.NewUserProgressRepo(conn, log),
		repos.NewRoadmapRepo(conn, log),
		repos.NewQuizRepo(conn, log),
	)

	return &progressEnv{
		db:      conn,
		log:     log,
		service: service,
		userID:  user.ID,
		roadmap: roadmap,
		quiz:    quiz,
	}
}

func (e *progressEnv) ctx() context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: e.userID,
		Role:   types.RoleUser,
	})
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error with status %d, got nil", status)
	}
	if got := apierr.StatusOf(err); got != status {
		t.Fatalf("status = %d (%v), want %d", got, err, status)
	}
}

func TestStartRoadmap(t *testing.T) {
	env := newProgressEnv(t)
	ctx := env.ctx()

	progress, err := env.service.StartRoadmap(ctx, env.roadmap.ID)
	if err != nil {
		t.Fatalf("StartRoadmap: %v", err)
	}
	if progress.CompletionPercentage != 0 || progress.IsCompleted {
		t.Fatalf("fresh progress = %v%% completed=%v, want 0/false", progress.CompletionPercentage, progress.IsCompleted)
	}

	_, err = env.service.StartRoadmap(ctx, env.roadmap.ID)
	wantStatus(t, err, http.StatusConflict)

	var count int64
	if err := env.db.Model(&types.UserProgress{}).Where("user_id = ?", env.userID).Count(&count).Error; err != nil {
		t.Fatalf("count progress: %v", err)
	}
	if count != 1 {
		t.Fatalf("progress rows = %d, want 1", count)
	}
}

func TestStartRoadmapUnknownRoadmap(t *testing.T) {
	env := newProgressEnv(t)
	_, err := env.service.StartRoadmap(env.ctx(), uuid.New())
	wantStatus(t, err, http.StatusNotFound)
}

func TestStartRoadmapUnauthenticated(t *testing.T) {
	env := newProgressEnv(t)
	_, err := env.service.StartRoadmap(context.Background(), env.roadmap.ID)
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestCompleteDayFullRun(t *testing.T) {
	env := newProgressEnv(t)
	ctx := env.ctx()

	started, err := env.service.StartRoadmap(ctx, env.roadmap.ID)
	if err != nil {
		t.Fatalf("StartRoadmap: %v", err)
	}
	lastAccessed := started.LastAccessed

	// Days completed out of order across weeks.
	steps := []struct {
		week, day int
		wantPct   float64
		wantWeeks int
		wantDone  bool
	}{
		{2, 1, 25, 0, false},
		{1, 2, 50, 0, false},
		{1, 1, 75, 1, false},
		{2, 2, 100, 2, true},
	}
	for _, step := range steps {
		progress, err := env.service.CompleteDay(ctx, env.roadmap.ID, step.week, step.day)
		if err != nil {
			t.Fatalf("CompleteDay(%d, %d): %v", step.week, step.day, err)
		}
		if progress.CompletionPercentage != step.wantPct {
			t.Fatalf("after (%d,%d): percentage = %v, want %v", step.week, step.day, progress.CompletionPercentage, step.wantPct)
		}
		if len(progress.CompletedWeeks) != step.wantWeeks {
			t.Fatalf("after (%d,%d): completed weeks = %d, want %d", step.week, step.day, len(progress.CompletedWeeks), step.wantWeeks)
		}
		if progress.IsCompleted != step.wantDone {
			t.Fatalf("after (%d,%d): is_completed = %v, want %v", step.week, step.day, progress.IsCompleted, step.wantDone)
		}
		if progress.LastAccessed.Before(lastAccessed) {
			t.Fatalf("after (%d,%d): last_accessed went backwards", step.week, step.day)
		}
		lastAccessed = progress.LastAccessed
	}

	// Reload from scratch and confirm the derived state was persisted.
	stored, err := env.service.GetProgressForRoadmap(ctx, env.roadmap.ID)
	if err != nil {
		t.Fatalf("GetProgressForRoadmap: %v", err)
	}
	if stored.CompletionPercentage != 100 || !stored.IsCompleted {
		t.Fatalf("stored progress = %v%%/%v, want 100/true", stored.CompletionPercentage, stored.IsCompleted)
	}
	if len(stored.CompletedDays) != 4 || len(stored.CompletedWeeks) != 2 {
		t.Fatalf("stored children = %d days / %d weeks, want 4/2", len(stored.CompletedDays), len(stored.CompletedWeeks))
	}
}

func TestCompleteDayErrors(t *testing.T) {
	env := newProgressEnv(t)
	ctx := env.ctx()

	// No progress record yet.
	_, err := env.service.CompleteDay(ctx, env.roadmap.ID, 1, 1)
	wantStatus(t, err, http.StatusNotFound)

	if _, err := env.service.StartRoadmap(ctx, env.roadmap.ID); err != nil {
		t.Fatalf("StartRoadmap: %v", err)
	}

	// Days and weeks outside the roadmap structure.
	_, err = env.service.CompleteDay(ctx, env.roadmap.ID, 3, 1)
	wantStatus(t, err, http.StatusBadRequest)
	_, err = env.service.CompleteDay(ctx, env.roadmap.ID, 1, 3)
	wantStatus(t, err, http.StatusBadRequest)
	_, err = env.service.CompleteDay(ctx, env.roadmap.ID, 1, 0)
	wantStatus(t, err, http.StatusBadRequest)

	// A rejected day must leave nothing behind.
	var count int64
	if err := env.db.Model(&types.CompletedDay{}).Count(&count).Error; err != nil {
		t.Fatalf("count days: %v", err)
	}
	if count != 0 {
		t.Fatalf("completed day rows = %d, want 0 after rejected attempts", count)
	}

	if _, err := env.service.CompleteDay(ctx, env.roadmap.ID, 1, 1); err != nil {
		t.Fatalf("CompleteDay: %v", err)
	}
	_, err = env.service.CompleteDay(ctx, env.roadmap.ID, 1, 1)
	wantStatus(t, err, http.StatusConflict)

	// The duplicate must not move the percentage.
	stored, err := env.service.GetProgressForRoadmap(ctx, env.roadmap.ID)
	if err != nil {
		t.Fatalf("GetProgressForRoadmap: %v", err)
	}
	if stored.CompletionPercentage != 25 {
		t.Fatalf("percentage = %v, want 25 after one of four days", stored.CompletionPercentage)
	}
	if len(stored.CompletedDays) != 1 {
		t.Fatalf("completed days = %d, want 1", len(stored.CompletedDays))
	}
}

func TestSubmitQuiz(t *testing.T) {
	env := newProgressEnv(t)
	ctx := env.ctx()

	if _, err := env.service.StartRoadmap(ctx, env.roadmap.ID); err != nil {
		t.Fatalf("StartRoadmap: %v", err)
	}

	question := env.quiz.Questions[0]
	var correctID uuid.UUID
	for _, a := range question.Answers {
		if a.IsCorrect {
			correctID = a.ID
		}
	}
	answers := []types.SubmittedAnswer{{QuestionID: question.ID, SelectedAnswers: []uuid.UUID{correctID}}}

	result, err := env.service.SubmitQuiz(ctx, env.roadmap.ID, env.quiz.ID, answers)
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}
	if result.Score != 100 || !result.Passed {
		t.Fatalf("result = %v/%v, want 100/true", result.Score, result.Passed)
	}

	// No retakes, even with a different submission.
	_, err = env.service.SubmitQuiz(ctx, env.roadmap.ID, env.quiz.ID, answers)
	wantStatus(t, err, http.StatusConflict)

	stored, err := env.service.GetProgressForRoadmap(ctx, env.roadmap.ID)
	if err != nil {
		t.Fatalf("GetProgressForRoadmap: %v", err)
	}
	if len(stored.QuizAttempts) != 1 {
		t.Fatalf("quiz attempts = %d, want 1", len(stored.QuizAttempts))
	}
	attempt := stored.QuizAttempts[0]
	if attempt.Score != 100 || !attempt.Passed || len(attempt.Answers) != 1 {
		t.Fatalf("stored attempt = %v/%v with %d answers, want 100/true/1", attempt.Score, attempt.Passed, len(attempt.Answers))
	}
}

func TestSubmitQuizValidation(t *testing.T) {
	env := newProgressEnv(t)
	ctx := env.ctx()

	if _, err := env.service.StartRoadmap(ctx, env.roadmap.ID); err != nil {
		t.Fatalf("StartRoadmap: %v", err)
	}

	_, err := env.service.SubmitQuiz(ctx, env.roadmap.ID, env.quiz.ID, nil)
	wantStatus(t, err, http.StatusBadRequest)

	answers := []types.SubmittedAnswer{{QuestionID: uuid.New()}}
	_, err = env.service.SubmitQuiz(ctx, env.roadmap.ID, uuid.New(), answers)
	wantStatus(t, err, http.StatusNotFound)
}

func TestSubmitProjectUpsert(t *testing.T) {
	env := newProgressEnv(t)
	ctx := env.ctx()

	if _, err := env.service.StartRoadmap(ctx, env.roadmap.ID); err != nil {
		t.Fatalf("StartRoadmap: %v", err)
	}

	_, err := env.service.SubmitProject(ctx, env.roadmap.ID, 1, "  ")
	wantStatus(t, err, http.StatusBadRequest)

	first, err := env.service.SubmitProject(ctx, env.roadmap.ID, 1, "https://github.com/u/first")
	if err != nil {
		t.Fatalf("SubmitProject: %v", err)
	}
	second, err := env.service.SubmitProject(ctx, env.roadmap.ID, 1, "https://github.com/u/second")
	if err != nil {
		t.Fatalf("SubmitProject resubmit: %v", err)
	}
	if first.ProgressID != second.ProgressID {
		t.Fatal("both submissions belong to the same progress record")
	}
	if second.ID != first.ID {
		t.Fatalf("resubmission id = %s, want the original row %s replaced in place", second.ID, first.ID)
	}

	stored, err := env.service.GetProgressForRoadmap(ctx, env.roadmap.ID)
	if err != nil {
		t.Fatalf("GetProgressForRoadmap: %v", err)
	}
	if len(stored.CompletedProjects) != 1 {
		t.Fatalf("project rows = %d, want 1 after resubmission", len(stored.CompletedProjects))
	}
	if stored.CompletedProjects[0].SubmissionURL != "https://github.com/u/second" {
		t.Fatalf("submission url = %q, want the newest one", stored.CompletedProjects[0].SubmissionURL)
	}

	// The stored row itself keeps its identity across the replace.
	var rows []types.ProjectSubmission
	if err := env.db.Where("progress_id = ? AND week_number = ?", first.ProgressID, 1).Find(&rows).Error; err != nil {
		t.Fatalf("load project rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("project rows in store = %d, want 1", len(rows))
	}
	if rows[0].ID != first.ID || rows[0].SubmissionURL != "https://github.com/u/second" {
		t.Fatalf("stored row = %s/%q, want %s with the newer URL", rows[0].ID, rows[0].SubmissionURL, first.ID)
	}

	// A different week gets its own row.
	if _, err := env.service.SubmitProject(ctx, env.roadmap.ID, 2, "https://github.com/u/week2"); err != nil {
		t.Fatalf("SubmitProject week 2: %v", err)
	}
	stored, err = env.service.GetProgressForRoadmap(ctx, env.roadmap.ID)
	if err != nil {
		t.Fatalf("GetProgressForRoadmap: %v", err)
	}
	if len(stored.CompletedProjects) != 2 {
		t.Fatalf("project rows = %d, want 2 across two weeks", len(stored.CompletedProjects))
	}
}

func TestGetMyProgress(t *testing.T) {
	env := newProgressEnv(t)
	ctx := env.ctx()

	list, err := env.service.GetMyProgress(ctx)
	if err != nil {
		t.Fatalf("GetMyProgress: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no progress before starting, got %d", len(list))
	}

	if _, err := env.service.StartRoadmap(ctx, env.roadmap.ID); err != nil {
		t.Fatalf("StartRoadmap: %v", err)
	}
	list, err = env.service.GetMyProgress(ctx)
	if err != nil {
		t.Fatalf("GetMyProgress: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("progress records = %d, want 1", len(list))
	}
	if list[0].Roadmap == nil || list[0].Roadmap.ID != env.roadmap.ID {
		t.Fatal("listed progress should carry its roadmap")
	}
}

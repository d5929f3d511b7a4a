package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillpath/backend/internal/db"
	httpH "github.com/skillpath/backend/internal/http/handlers"
	httpMW "github.com/skillpath/backend/internal/http/middleware"
	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/repos"
	"github.com/skillpath/backend/internal/services"
	"github.com/skillpath/backend/internal/types"
)

var routerTestSeq atomic.Int64

type routerEnv struct {
	db     *gorm.DB
	engine *gin.Engine
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", routerTestSeq.Add(1))
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

	userRepo := repos.NewUserRepo(conn, log)
	tokenRepo := repos.NewUserTokenRepo(conn, log)
	roadmapRepo := repos.NewRoadmapRepo(conn, log)
	quizRepo := repos.NewQuizRepo(conn, log)
	progressRepo := repos.NewUserProgressRepo(conn, log)

	authService := services.NewAuthService(conn, log, userRepo, tokenRepo, "test-secret", time.Hour, 24*time.Hour)
	roadmapService := services.NewRoadmapService(conn, log, roadmapRepo)
	quizService := services.NewQuizService(conn, log, quizRepo, roadmapRepo)
	progressService := services.NewProgressService(conn, log, progressRepo, roadmapRepo, quizRepo)

	engine := NewRouter(RouterConfig{
		Log:             log,
		CORSOrigins:     []string{"http://localhost:3000"},
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, authService),
		AuthHandler:     httpH.NewAuthHandler(log, authService),
		RoadmapHandler:  httpH.NewRoadmapHandler(log, roadmapService),
		QuizHandler:     httpH.NewQuizHandler(log, quizService),
		ProgressHandler: httpH.NewProgressHandler(log, progressService),
		HealthHandler:   httpH.NewHealthHandler(),
	})

	return &routerEnv{db: conn, engine: engine}
}

func (e *routerEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %q: %v", w.Body.String(), err)
	}
	return env
}

// register creates an account through the API and returns an access token.
// Elevated roles are applied directly since the API never grants them.
func (e *routerEnv) register(t *testing.T, email, role string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":      email,
		"password":   "s3cret-pw",
		"first_name": "Test",
		"last_name":  "User",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}
	if role != types.RoleUser {
		if err := e.db.Model(&types.User{}).Where("email = ?", email).Update("role", role).Error; err != nil {
			t.Fatalf("elevate %s: %v", email, err)
		}
	}

	w = e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "s3cret-pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &tokens); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}
	if tokens.AccessToken == "" {
		t.Fatal("login returned no access token")
	}
	return tokens.AccessToken
}

func (e *routerEnv) seedRoadmap(t *testing.T, ownerEmail string) uuid.UUID {
	t.Helper()
	var owner types.User
	if err := e.db.Where("email = ?", ownerEmail).First(&owner).Error; err != nil {
		t.Fatalf("load owner: %v", err)
	}
	now := time.Now()
	roadmap := &types.Roadmap{
		ID:          uuid.New(),
		Title:       fmt.Sprintf("Seeded Roadmap %d", routerTestSeq.Load()),
		Description: "d",
		Category:    "backend",
		Level:       "beginner",
		Duration:    "1 week",
		Weeks: []types.Week{
			{WeekNumber: 1, Title: "One", Days: []types.DayContent{{Title: "d1"}, {Title: "d2"}}},
		},
		CreatedBy:   owner.ID,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.db.Create(roadmap).Error; err != nil {
		t.Fatalf("seed roadmap: %v", err)
	}
	return roadmap.ID
}

func TestHealthcheck(t *testing.T) {
	env := newRouterEnv(t)
	w := env.do(t, http.MethodGet, "/healthcheck", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthcheck status = %d", w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newRouterEnv(t)
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/progress"},
		{http.MethodPost, "/api/progress/" + uuid.NewString() + "/start"},
		{http.MethodPost, "/api/roadmaps"},
		{http.MethodPost, "/api/auth/logout"},
	} {
		w := env.do(t, route.method, route.path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: status %d, want 401", route.method, route.path, w.Code)
		}
		if resp := decodeEnvelope(t, w); resp.Success {
			t.Fatalf("%s %s: error envelope claims success", route.method, route.path)
		}
	}
}

func TestBadBearerTokenRejected(t *testing.T) {
	env := newRouterEnv(t)
	w := env.do(t, http.MethodGet, "/api/progress", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestCatalogWriteRoleGating(t *testing.T) {
	env := newRouterEnv(t)
	userToken := env.register(t, "plain@example.com", types.RoleUser)
	instructorToken := env.register(t, "teach@example.com", types.RoleInstructor)

	body := gin.H{
		"title":       "Rust Basics",
		"description": "d",
		"category":    "systems",
		"level":       "beginner",
		"duration":    "4 weeks",
		"weeks": []gin.H{
			{"week_number": 1, "title": "One", "days": []gin.H{{"title": "d1"}}},
		},
	}

	w := env.do(t, http.MethodPost, "/api/roadmaps", userToken, body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("plain user create roadmap: status %d, want 403", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/roadmaps", instructorToken, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("instructor create roadmap: status %d body %s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	if !resp.Success {
		t.Fatalf("create response not successful: %s", w.Body.String())
	}
	var created types.Roadmap
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("decode created roadmap: %v", err)
	}
	if created.Slug != "rust-basics" {
		t.Fatalf("slug = %q, want rust-basics", created.Slug)
	}
}

func TestAdminProgressListGating(t *testing.T) {
	env := newRouterEnv(t)
	userToken := env.register(t, "user@example.com", types.RoleUser)
	adminToken := env.register(t, "admin@example.com", types.RoleAdmin)

	w := env.do(t, http.MethodGet, "/api/progress/admin/all", userToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("user admin list: status %d, want 403", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/progress/admin/all", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin list: status %d body %s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	if !resp.Success || resp.Count == nil {
		t.Fatalf("admin list envelope missing count: %s", w.Body.String())
	}
}

func TestProgressFlowOverHTTP(t *testing.T) {
	env := newRouterEnv(t)
	token := env.register(t, "learner@example.com", types.RoleUser)
	roadmapID := env.seedRoadmap(t, "learner@example.com")

	w := env.do(t, http.MethodPost, "/api/progress/"+roadmapID.String()+"/start", token, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("start: status %d body %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodPost, "/api/progress/"+roadmapID.String()+"/start", token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("restart: status %d, want 409", w.Code)
	}

	w = env.do(t, http.MethodPut, "/api/progress/"+roadmapID.String()+"/complete-day/1/1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete day: status %d body %s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	var progress types.UserProgress
	if err := json.Unmarshal(resp.Data, &progress); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if progress.CompletionPercentage != 50 {
		t.Fatalf("percentage = %v, want 50", progress.CompletionPercentage)
	}

	w = env.do(t, http.MethodPut, "/api/progress/"+roadmapID.String()+"/complete-day/1/9", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid day: status %d, want 400", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/progress", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list progress: status %d", w.Code)
	}
	resp = decodeEnvelope(t, w)
	if resp.Count == nil || *resp.Count != 1 {
		t.Fatalf("list count = %v, want 1", resp.Count)
	}
}

func TestMalformedRoadmapIDParam(t *testing.T) {
	env := newRouterEnv(t)
	token := env.register(t, "param@example.com", types.RoleUser)

	w := env.do(t, http.MethodPost, "/api/progress/not-a-uuid/start", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := decodeEnvelope(t, w)
	if resp.Success || resp.Error == "" {
		t.Fatalf("expected an error envelope, got %s", w.Body.String())
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newRouterEnv(t)
	env.register(t, "dup@example.com", types.RoleUser)

	w := env.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":      "dup@example.com",
		"password":   "another-pw",
		"first_name": "Other",
		"last_name":  "User",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status %d, want 409", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newRouterEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("right-pw"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	now := time.Now()
	user := &types.User{
		ID:        uuid.New(),
		Email:     "direct@example.com",
		Password:  string(hash),
		FirstName: "Direct",
		LastName:  "User",
		Role:      types.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	w := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "direct@example.com", "password": "wrong-pw"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d, want 401", w.Code)
	}
	w = env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "direct@example.com", "password": "right-pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("right password: status %d body %s", w.Code, w.Body.String())
	}
}

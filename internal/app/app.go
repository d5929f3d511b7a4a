package app

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/skillpath/backend/internal/db"
	httpX "github.com/skillpath/backend/internal/http"
	httpMW "github.com/skillpath/backend/internal/http/middleware"
	"github.com/skillpath/backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *httpX.Server
	Cfg      Config
	Repos    Repos
	Services Services
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig()

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet)
	handlerset := wireHandlers(log, serviceset)
	authMW := httpMW.NewAuthMiddleware(log, serviceset.Auth)

	server := httpX.NewServer(httpX.RouterConfig{
		Log:             log,
		CORSOrigins:     cfg.CORSOrigins,
		AuthMiddleware:  authMW,
		AuthHandler:     handlerset.Auth,
		RoadmapHandler:  handlerset.Roadmap,
		QuizHandler:     handlerset.Quiz,
		ProgressHandler: handlerset.Progress,
		HealthHandler:   handlerset.Health,
	}, ":"+cfg.Port)

	return &App{
		Log:      log,
		DB:       theDB,
		Server:   server,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

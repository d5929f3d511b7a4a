package app

import (
	"gorm.io/gorm"

	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/services"
)

type Services struct {
	Auth     services.AuthService
	Roadmap  services.RoadmapService
	Quiz     services.QuizService
	Progress services.ProgressService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) Services {
	log.Info("Wiring services...")
	return Services{
		Auth:     services.NewAuthService(db, log, reposet.User, reposet.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Roadmap:  services.NewRoadmapService(db, log, reposet.Roadmap),
		Quiz:     services.NewQuizService(db, log, reposet.Quiz, reposet.Roadmap),
		Progress: services.NewProgressService(db, log, reposet.UserProgress, reposet.Roadmap, reposet.Quiz),
	}
}

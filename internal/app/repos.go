package app

import (
	"gorm.io/gorm"

	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/repos"
)

type Repos struct {
	User         repos.UserRepo
	UserToken    repos.UserTokenRepo
	Roadmap      repos.RoadmapRepo
	Quiz         repos.QuizRepo
	UserProgress repos.UserProgressRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		UserToken:    repos.NewUserTokenRepo(db, log),
		Roadmap:      repos.NewRoadmapRepo(db, log),
		Quiz:         repos.NewQuizRepo(db, log),
		UserProgress: repos.NewUserProgressRepo(db, log),
	}
}

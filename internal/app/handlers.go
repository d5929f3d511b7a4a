package app

import (
	httpH "github.com/skillpath/backend/internal/http/handlers"
	"github.com/skillpath/backend/internal/platform/logger"
)

type Handlers struct {
	Auth     *httpH.AuthHandler
	Roadmap  *httpH.RoadmapHandler
	Quiz     *httpH.QuizHandler
	Progress *httpH.ProgressHandler
	Health   *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:     httpH.NewAuthHandler(log, serviceset.Auth),
		Roadmap:  httpH.NewRoadmapHandler(log, serviceset.Roadmap),
		Quiz:     httpH.NewQuizHandler(log, serviceset.Quiz),
		Progress: httpH.NewProgressHandler(log, serviceset.Progress),
		Health:   httpH.NewHealthHandler(),
	}
}

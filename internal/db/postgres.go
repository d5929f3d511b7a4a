package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/skillpath/backend/internal/platform/envutil"
	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := envutil.String("POSTGRES_HOST", "localhost")
	port := envutil.String("POSTGRES_PORT", "5432")
	user := envutil.String("POSTGRES_USER", "postgres")
	password := envutil.String("POSTGRES_PASSWORD", "")
	name := envutil.String("POSTGRES_NAME", "skillpath")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	serviceLog.Info("Connecting to Postgres...", "host", host, "database", name)
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &PostgresService{db: conn, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := s.db.AutoMigrate(Models()...); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

// Models lists every persisted entity, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&types.User{},
		&types.UserToken{},
		&types.Roadmap{},
		&types.Quiz{},
		&types.UserProgress{},
		&types.CompletedDay{},
		&types.CompletedWeek{},
		&types.QuizAttempt{},
		&types.ProjectSubmission{},
	}
}

package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/types"
	"github.com/minachen/sproutlog-backend/internal/utils"
)

type DatabaseService struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewDatabaseService connects to Postgres by default; DB_DRIVER=sqlite opens
// a local file instead for single-user/dev setups.
func NewDatabaseService(log *logger.Logger) (*DatabaseService, error) {
	serviceLog := log.With("service", "DatabaseService")

	driver := strings.ToLower(utils.GetEnv("DB_DRIVER", "postgres", log))

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		path := utils.GetEnv("SQLITE_PATH", "sproutlog.db", log)
		log.Info("Connecting to SQLite...", "path", path)
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	default:
		host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		port := utils.GetEnv("POSTGRES_PORT", "5432", log)
		user := utils.GetEnv("POSTGRES_USER", "postgres", log)
		password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		name := utils.GetEnv("POSTGRES_NAME", "sproutlog", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

		log.Info("Connecting to Postgres...")
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
		if err == nil {
			if extErr := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; extErr != nil {
				log.Error("Failed to enable uuid-ossp extension", "error", extErr)
				return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", extErr)
			}
		}
	}
	if err != nil {
		log.Error("Failed to connect to database", "driver", driver, "error", err)
		return nil, fmt.Errorf("failed to connect to database (%s): %w", driver, err)
	}

	return &DatabaseService{db: db, log: serviceLog}, nil
}

func (s *DatabaseService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.Entry{},
		&types.FactCard{},
		&types.ExpertAnalysis{},
		&types.ParentingQuestion{},
		&types.QuestionObservation{},
		&types.QuestionDiscussion{},
		&types.AgentPrompt{},
		&types.Strategy{},
		&types.DailyDigest{},
		&types.Learning{},
		&types.ChildProfile{},
		&types.ValuesPrinciple{},
		&types.Conversation{},
		&types.ChatMessage{},
		&types.AICallLog{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *DatabaseService) DB() *gorm.DB {
	return s.db
}

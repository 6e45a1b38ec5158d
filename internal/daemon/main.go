// Package daemon opens the database, seeds it and starts the web service.
package daemon

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/dsn"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/logger/adapter/stdlogger"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

const (
	sessionTable  = "sessions"
	slowThreshold = time.Second
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until it was shut down.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// Dialector returns the GORM dialector of the configured engine.
func Dialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return gormpostgres.Open(dsn.Create(cfg))
	case config.EngineSQLite:
		return sqlite.Open(dsn.Create(cfg))
	default:
		return gormmysql.Open(dsn.Create(cfg))
	}
}

// SessionStorage returns the session storage of the configured engine.
// SQLite keeps sessions in memory.
func SessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	case config.EngineSQLite:
		return nil
	default:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	}
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(Dialector(cfg), &gorm.Config{
		Logger: gormlogger.New(stdlogger.New(), gormlogger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		log.Fatal().Err(err).Str("engine", cfg.DB.GormEngine).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(models.All()...); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	registry := web.Modules()

	if err = seed(db, registry); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
		return nil
	}

	session.Init(SessionStorage(cfg))

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, registry),
	}
}

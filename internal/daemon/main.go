// Package daemon wires the database, the authentication service and the
// web service of the intranet portal.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Luizsilva-repros/intranet/internal/accounts"
	"github.com/Luizsilva-repros/intranet/internal/auth"
	"github.com/Luizsilva-repros/intranet/internal/auth/cachesync"
	"github.com/Luizsilva-repros/intranet/internal/config"
	"github.com/Luizsilva-repros/intranet/internal/db/controller/sessionstore"
	"github.com/Luizsilva-repros/intranet/internal/db/dsn"
	"github.com/Luizsilva-repros/intranet/internal/db/models"
	"github.com/Luizsilva-repros/intranet/internal/directory"
	"github.com/Luizsilva-repros/intranet/internal/portal"
	"github.com/Luizsilva-repros/intranet/internal/web"
	"github.com/Luizsilva-repros/intranet/internal/web/handler"
	"github.com/Luizsilva-repros/intranet/internal/web/session"
)

const sessionTable = "sessions"

// ErrNilConfig is returned by New when the config is nil.
var ErrNilConfig = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	queue      *cachesync.Queue
	auth       *auth.Service
	webService *web.Service
}

// Start serves http until SIGINT or SIGTERM, then drains the sync queue.
func (d *Daemon) Start() error {
	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", d.webService.Addr()).Msg("starting web service")

		errCh <- d.webService.Start(d.webService.Addr())
	}()

	go d.webService.WaitShutdown()

	err := <-errCh

	d.queue.Close()

	return err
}

// Auth returns the authentication service.
func (d *Daemon) Auth() *auth.Service {
	return d.auth
}

// Close drains the sync queue. Used by one-shot commands that never call Start.
func (d *Daemon) Close() {
	d.queue.Close()
}

// OpenDB connects to the configured database and migrates the schema.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dsn.Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
	if cfg.DevMode {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	tables := []any{&models.Setting{}, &models.Category{}, &models.Link{}}

	// gofiber storage drivers create their own session table
	if cfg.DB.GormEngine == config.GormEngineSQLite {
		tables = append(tables, &models.Session{})
	}

	if err = db.AutoMigrate(tables...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SessionStorage returns the session backend of the configured engine.
func SessionStorage(cfg *config.Config, db *gorm.DB) (fiber.Storage, error) {
	switch cfg.DB.GormEngine {
	case config.GormEngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		}), nil
	case config.GormEnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Postgres(cfg),
			Table:         sessionTable,
		}), nil
	default:
		return sessionstore.New(db)
	}
}

// DirectoryConfig converts the startup directory settings.
func DirectoryConfig(cfg *config.Config) directory.Config {
	d := cfg.Directory

	return directory.Config{
		Enabled:       d.Enabled,
		Backend:       d.Backend,
		Domain:        d.Domain,
		Server:        d.Server,
		BaseDN:        d.BaseDN,
		AdminUser:     d.AdminUser,
		AdminPassword: d.AdminPassword,
		UserFilter:    d.UserFilter,
		GroupAttr:     d.GroupAttr,
		Timeout:       d.Timeout,
		SkipVerify:    d.SkipVerify,
	}
}

// New creates a Daemon: it opens the database, seeds it and builds the
// services.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	return NewWithDB(ctx, cfg, db)
}

// NewWithDB is New over an open database.
func NewWithDB(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Daemon, error) {
	storage, err := SessionStorage(cfg, db)
	if err != nil {
		return nil, err
	}

	session.Init(storage)

	store := accounts.NewStore(db)

	links, err := portal.New(db)
	if err != nil {
		return nil, err
	}

	if err = seed(ctx, cfg, store, links); err != nil {
		return nil, err
	}

	syncer := cachesync.NewSyncer(store)
	queue := cachesync.NewQueue(syncer, cfg.Sync.QueueSize, cfg.Sync.Timeout)

	authService, err := auth.NewService(ctx, auth.Options{
		DB:        db,
		Store:     store,
		Directory: DirectoryConfig(cfg),
		Syncer:    syncer,
		Queue:     queue,
	})
	if err != nil {
		queue.Close()

		return nil, err
	}

	webService, err := web.New(&handler.Deps{
		Config:   cfg,
		Auth:     authService,
		Accounts: store,
		Portal:   links,
	})
	if err != nil {
		queue.Close()

		return nil, err
	}

	return &Daemon{
		cfg:        cfg,
		db:         db,
		queue:      queue,
		auth:       authService,
		webService: webService,
	}, nil
}

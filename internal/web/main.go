package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/gofiber/template/html/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/Luizsilva-repros/intranet/internal/auth"
	fiberlog "github.com/Luizsilva-repros/intranet/internal/logger/adapter/fiber"
	"github.com/Luizsilva-repros/intranet/internal/web/handler"
	"github.com/Luizsilva-repros/intranet/internal/web/handler/admin/account"
	"github.com/Luizsilva-repros/intranet/internal/web/handler/admin/directory"
	"github.com/Luizsilva-repros/intranet/internal/web/handler/admin/group"
	"github.com/Luizsilva-repros/intranet/internal/web/handler/login"
	"github.com/Luizsilva-repros/intranet/internal/web/handler/logout"
	"github.com/Luizsilva-repros/intranet/internal/web/handler/portal"
	authmw "github.com/Luizsilva-repros/intranet/internal/web/middleware/auth"
)

const (
	// CheckAlivePath answers 200 while the service accepts traffic.
	CheckAlivePath = "/checkalive"

	// MetricsPath exposes the prometheus metrics.
	MetricsPath = "/metrics"
)

// ErrNilConfig is returned by New when deps carry no config.
var ErrNilConfig = errors.New("config cannot be nil")

// Service represents the web service.
type Service struct {
	App          *fiber.App
	deps         *handler.Deps
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address. It blocks until the
// server stops.
func (s *Service) Start(addr string) error {
	s.alive.Store(true)

	err := s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: !s.deps.Config.DevMode})
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Addr returns the listen address of the configured port.
func (s *Service) Addr() string {
	return ":" + strconv.Itoa(s.deps.Config.Webserver.Port)
}

// WaitShutdown waits for SIGINT or SIGTERM and stops the server gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown stops the server. Unless fast shutdown is set, checkalive fails
// for ShutDownTime seconds first so load balancers drain the instance.
func (s *Service) Shutdown() {
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.deps.Config.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.deps.Config.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// SetFastShutdown skips the drain period on shutdown.
func (s *Service) SetFastShutdown(fast bool) {
	s.fastShutDown = fast
}

// New creates the web service and registers every handler.
func New(deps *handler.Deps) (*Service, error) {
	if deps == nil || deps.Config == nil {
		return nil, ErrNilConfig
	}

	cfg := deps.Config

	templates, err := templateFS()
	if err != nil {
		return nil, err
	}

	templateEngine := html.NewFileSystem(templates, ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.Reload(true)

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	service := &Service{App: app, deps: deps}

	app.Use(fiberlog.New(fiberlog.Config{Config: cfg.Log, CheckAliveURI: CheckAlivePath}))

	app.Get(CheckAlivePath, func(c fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	files, err := staticFS()
	if err != nil {
		return nil, err
	}

	app.Use("/static", static.New("", static.Config{FS: files}))

	app.Use(authmw.Middleware)
	app.Use(auth.AddPermissionsToLocals())

	services := []handler.Service{
		&login.Handler,
		&logout.Handler,
		&portal.Handler,
		&account.Handler,
		&directory.Handler,
		&group.Handler,
	}

	for _, h := range services {
		if err = h.Init(app, deps); err != nil {
			return nil, err
		}
	}

	return service, nil
}

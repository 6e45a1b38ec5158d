package web

import (
	"errors"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/gedcom"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/locale"
	fiberlogger "github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/logger/adapter/fiber"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/module"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/sanitize"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/flash"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/admin/changes"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/admin/cleandata"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/admin/controlpanel"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/admin/fixmedia"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/admin/modules"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/admin/server/information"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/login"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/logout"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/media/addmedia"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/module/faq"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/module/journal"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/module/stories"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/record"
	authmiddleware "github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/middleware/auth"
)

const (
	// CheckAlivePath answers 503 while the service shuts down.
	CheckAlivePath = "/checkalive"

	// MetricsPath serves the prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
	registry     *module.Registry
}

// Modules returns the registry of installed modules.
func Modules() *module.Registry {
	return module.NewRegistry(&faq.Handler, &stories.Handler, &journal.Handler)
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for a signal and shuts the web service down.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// CheckAlive answers 200, or 503 once a shutdown started.
func (s *Service) CheckAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

// Funcs are the template helpers.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"iterate": func(count int) []int {
			result := make([]int, count)
			for i := range result {
				result[i] = i
			}

			return result
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"nl2br":     sanitize.NL2BR,
		"safeHTML":  sanitize.HTML,
		"lineValue": gedcom.LineValue,
	}
}

func newEngine(cfg *config.Config) *html.Engine {
	templateEngine := html.NewFileSystem(http.FS(Templates()), ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New(TemplateDir, ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFuncMap(Funcs())

	return templateEngine
}

// New creates a new web service with the given configuration and installed modules.
func New(cfg *config.Config, db *gorm.DB, registry *module.Registry) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if registry == nil {
		registry = Modules()
	}

	languages, err := locale.New(cfg.Site.Languages, cfg.Site.DefaultLanguage)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid site languages")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize:    8192,
			AppName:           cfg.Title,
			CaseSensitive:     true,
			Prefork:           false,
			Immutable:         true,
			Views:             newEngine(cfg),
			PassLocalsToViews: true,
			BodyLimit:         cfg.Media.MaxUploadSize + 1<<20,
		},
	)

	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: auth.NewService(db),
		registry:    registry,
	}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:            cfg.Log,
		CacheControlError: fiberlogger.ConfigDefault.CacheControlError,
		CheckAliveURI:     CheckAlivePath,
	}))

	if cfg.Webserver.CookieEncryptionKey != "" {
		app.Use(encryptcookie.New(encryptcookie.Config{Key: cfg.Webserver.CookieEncryptionKey}))
	}

	app.Get(CheckAlivePath, service.CheckAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:   http.FS(Static()),
				Browse: cfg.Webserver.BrowseStatic,
			},
		),
	)

	app.Use(authmiddleware.Middleware)
	app.Use(auth.AddPermissionsToLocals(service.authService))
	app.Use(languages.Middleware())
	app.Use(flash.Middleware())

	service.initHandlers()

	// redirect root to the control panel
	app.Get(handler.RootPath, func(c *fiber.Ctx) error {
		return c.Redirect(handler.HomePath)
	})

	return service
}

// initHandlers lets every handler register its own routes with permission checks.
func (s *Service) initHandlers() {
	var (
		app         = s.App
		cfg         = s.cfg
		db          = s.db
		authService = s.authService
		registry    = s.registry
	)

	if err := login.Handler.Init(app, cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	logout.Handler.Init(app, cfg)

	controlpanel.Handler.Init(app, cfg, db, authService, registry)
	modules.Handler.Init(app, cfg, db, authService, registry)
	changes.Handler.Init(app, cfg, db, authService)
	cleandata.Handler.Init(app, cfg, db, authService)
	fixmedia.Handler.Init(app, cfg, db, authService)
	information.Handler.Init(app, cfg, db, authService)

	addmedia.Handler.Init(app, cfg, db, authService)
	record.Handler.Init(app, cfg, db, authService, registry)

	faq.Handler.Init(app, cfg, db, authService, registry)
	stories.Handler.Init(app, cfg, db, authService, registry)
	journal.Handler.Init(app, cfg, db, authService, registry)
}

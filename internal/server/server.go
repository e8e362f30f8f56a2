package server

import (
	"context"

	"quran-irc-bot/internal/bootstrap"
	"quran-irc-bot/internal/config"
	"quran-irc-bot/internal/controller"
	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
)

type Server struct {
	app    *fiber.App
	cfg    *config.Config
	logger logger.ILogger
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	return &Server{
		app:    newApp(container.StatusController),
		cfg:    cfg,
		logger: container.Logger,
	}
}

func newApp(status controller.IStatusController) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	status.RegisterRoutes(app)

	return app
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Run listens until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info(logger.ModuleServer, "Status server is running", map[string]interface{}{
		"addr": s.cfg.App.StatusAddr,
	})
	return s.app.Listen(s.cfg.App.StatusAddr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

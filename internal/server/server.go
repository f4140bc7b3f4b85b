package server

import (
	"context"
	"log"
	"time"

	"ai-synthesis-be/internal/bootstrap"
	"ai-synthesis-be/internal/config"
	"ai-synthesis-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:   "ai-synthesis-be",
		BodyLimit: 64 * 1024, // text requests only
		// no write timeout: a synthesis may legitimately take the whole dispatch timeout
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
	}))
	app.Use(otelfiber.Middleware(
		otelfiber.WithSpanNameFormatter(func(ctx *fiber.Ctx) string {
			return ctx.Method() + " " + ctx.Route().Path
		}),
	))
	app.Use(serverutils.ErrorHandlerMiddleware())

	s := &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
	s.registerRoutes()
	return s
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx ends
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api")

	api.Get("/health", s.health)

	auth := serverutils.NewJwtMiddleware(s.cfg.App.JwtSecret, s.cfg.App.AuthEnabled)

	// events is registered ahead of the group so ":id" never captures it
	s.container.SynthesisEventHandler.RegisterRoutes(api, auth)
	s.container.SynthesisController.RegisterRoutes(api, auth)
}

// health answers 200 even when degraded; the engine still serves fallbacks without dependencies
func (s *Server) health(ctx *fiber.Ctx) error {
	report := s.container.Health(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("OK", report))
}

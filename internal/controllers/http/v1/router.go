package http

import (
	"context"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"

	"weather-dashboard/internal/services/dashboard"
	"weather-dashboard/pkg/logger"
	"weather-dashboard/pkg/metrics"
)

const defaultSwaggerFile = "docs/swagger.json"

// DashboardService builds one dashboard render.
type DashboardService interface {
	Build(ctx context.Context, city, metric string) (*dashboard.Dashboard, error)
}

type Config struct {
	// DefaultCity is shown on the page when no city is requested.
	DefaultCity string
	SwaggerFile string
}

type routes struct {
	service     DashboardService
	defaultCity string
	l           *logger.Logger
}

func NewRouter(
	app *fiber.App,
	service DashboardService,
	cfg Config,
	m *metrics.Metrics,
	l *logger.Logger,
) {
	r := &routes{
		service:     service,
		defaultCity: cfg.DefaultCity,
		l:           l,
	}

	swaggerFile := cfg.SwaggerFile
	if swaggerFile == "" {
		swaggerFile = defaultSwaggerFile
	}

	// Swagger documentation
	app.Get("/swagger/doc.json", func(c *fiber.Ctx) error {
		swaggerData, err := os.ReadFile(swaggerFile)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to read Swagger documentation"})
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(swaggerData)
	})

	app.Get("/swagger/*", swagger.New(swagger.Config{
		URL:         "/swagger/doc.json",
		DeepLinking: true,
	}))

	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	api := app.Group("/api/v1")
	api.Get("/dashboard", r.handleDashboard)
	api.Get("/metrics", r.handleMetrics)

	app.Get("/", r.handlePage)
}

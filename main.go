package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/voluntra/signup-service/config"
	"github.com/voluntra/signup-service/internal/consumer"
	"github.com/voluntra/signup-service/internal/handler"
	"github.com/voluntra/signup-service/internal/middleware"
	"github.com/voluntra/signup-service/internal/repository"
	"github.com/voluntra/signup-service/internal/service"
	"github.com/voluntra/signup-service/pkg/database"
	"github.com/voluntra/signup-service/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Catalog consumer: keeps event metadata in sync with the Event Catalog.
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}
	consumer.NewCatalogConsumer(db).Start(msgs)

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	regRepo := repository.NewRegistrationRepository(db)
	credRepo := repository.NewCredentialRepository(db)

	// Services
	allocator := service.NewCapacityAllocator(eventRepo)
	eventSvc := service.NewEventService(eventRepo, publisher)
	regSvc := service.NewRegistrationService(eventRepo, regRepo, credRepo, allocator, publisher)
	attendanceSvc := service.NewAttendanceService(eventRepo, regRepo, credRepo, publisher)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	e.Use(middleware.Identity())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "signup-service"})
	})

	handler.NewEventHandler(eventSvc).RegisterRoutes(e)
	handler.NewRegistrationHandler(regSvc).RegisterRoutes(e)
	handler.NewAttendanceHandler(attendanceSvc).RegisterRoutes(e)

	log.Printf("Signup Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}

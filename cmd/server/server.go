package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/meterwatch/meter-reading-api/internal/config"
	"github.com/meterwatch/meter-reading-api/internal/db"
	"github.com/meterwatch/meter-reading-api/internal/httpapi"
	"github.com/meterwatch/meter-reading-api/internal/imagestore"
	"github.com/meterwatch/meter-reading-api/internal/mq"
	"github.com/meterwatch/meter-reading-api/internal/recognition"
	"github.com/meterwatch/meter-reading-api/internal/repository"
	"github.com/meterwatch/meter-reading-api/internal/service"
	"github.com/meterwatch/meter-reading-api/internal/validator"
)

func startServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	logger *zap.Logger,
	handler *httpapi.Handler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request handled",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))

	handler.Register(e)

	// Saved meter images are served straight from the public directory.
	e.Static("/", cfg.Images.PublicDir)

	addr := fmt.Sprintf(":%d", cfg.ServicePort)

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			logger.Info("starting http server", zap.String("addr", addr))
			go func() {
				if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
					logger.Error("http server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			if err := e.Shutdown(stopCtx); err != nil {
				logger.Error("failed to shut down http server", zap.Error(err))
				return err
			}
			logger.Info("http server stopped gracefully")
			return nil
		},
	})

	return e
}

// ProvideDBPool creates a new database pool instance
func ProvideDBPool(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*db.Pool, error) {
	return db.NewPool(lc, logger, cfg.Database)
}

// ProvideRepository creates a new repository instance
func ProvideRepository(pool *db.Pool) *repository.Repository {
	return repository.NewRepository(pool)
}

// ProvideValidator creates a new request validator instance
func ProvideValidator() *validator.Validator {
	return validator.NewValidator()
}

// ProvideRecognizer creates a new recognition client instance
func ProvideRecognizer(cfg *config.Config, logger *zap.Logger) *recognition.Client {
	return recognition.NewClient(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.BaseURL,
		time.Duration(cfg.Gemini.TimeoutSeconds)*time.Second,
		logger,
	)
}

// ProvideImageStore creates a new image store instance
func ProvideImageStore(cfg *config.Config) *imagestore.Store {
	return imagestore.NewStore(cfg.Images.PublicDir)
}

// ProvidePublisher creates the event publisher. Publishing is disabled when
// no RabbitMQ URL is configured.
func ProvidePublisher(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (service.EventPublisher, error) {
	if cfg.RabbitMQ.URL == "" {
		logger.Info("RABBITMQ_URL not set, event publishing disabled")
		return mq.NewDisabledPublisher(logger), nil
	}

	conn, err := mq.NewConnection(lc, logger, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	return mq.NewPublisher(conn, cfg.RabbitMQ.EventsExchange, logger)
}

// ProvideMeasureService creates a new measure service instance
func ProvideMeasureService(
	repo *repository.Repository,
	recognizer *recognition.Client,
	images *imagestore.Store,
	publisher service.EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *service.MeasureService {
	return service.NewMeasureService(repo, recognizer, images, publisher, cfg, logger)
}

// ProvideHandler creates a new HTTP handler instance
func ProvideHandler(svc *service.MeasureService, v *validator.Validator, logger *zap.Logger) *httpapi.Handler {
	return httpapi.NewHandler(svc, v, logger)
}

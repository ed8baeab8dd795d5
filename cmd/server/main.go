package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/meterwatch/meter-reading-api/internal/config"
)

// loadDotenv looks for a .env file in the working directory and up to two
// levels above it (repo root when running from cmd/server), returning the
// path that was loaded.
func loadDotenv() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			if godotenv.Load(path) == nil {
				return path
			}
		}
		dir = filepath.Dir(dir)
	}

	return ""
}

func main() {
	if path := loadDotenv(); path != "" {
		fmt.Printf("environment loaded from %s\n", path)
	} else {
		fmt.Println("no .env file found, relying on process environment")
	}

	app := fx.New(
		fx.Provide(
			config.Load,
			newLogger,
			ProvideDBPool,
			ProvideRepository,
			ProvideValidator,
			ProvideRecognizer,
			ProvideImageStore,
			ProvidePublisher,
			ProvideMeasureService,
			ProvideHandler,
		),
		fx.Invoke(startServer),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Startup logger; the fx-provided one is not available if boot fails.
	bootLogger, _ := newLogger(&config.Config{ServiceName: "meter-reading-api"})
	bootLogger.Info("starting meter-reading-api")

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	if err := app.Start(startCtx); err != nil {
		if startCtx.Err() == context.DeadlineExceeded {
			bootLogger.Error("startup timed out after 30s, a dependency (postgres or rabbitmq) is likely unreachable")
		}
		panic(err)
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		bootLogger.Error("shutdown failed", zap.Error(err))
	}
}

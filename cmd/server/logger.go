package main

import (
	"go.uber.org/zap"

	"github.com/meterwatch/meter-reading-api/internal/config"
	"github.com/meterwatch/meter-reading-api/internal/logging"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.NewLogger(cfg.ServiceName)
}

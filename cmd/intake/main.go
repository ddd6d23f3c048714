package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Bessima/botform-intake/internal/config"
	"github.com/Bessima/botform-intake/internal/config/db"
	"github.com/Bessima/botform-intake/internal/middlewares/logger"
	"github.com/Bessima/botform-intake/internal/retry"
	"github.com/Bessima/botform-intake/internal/service"
	"go.uber.org/zap"
)

func main() {
	err := initLogger("info")
	if err != nil {
		logger.Log.Warn(err.Error())
	}

	if err := run(); err != nil {
		logger.Log.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run() error {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conf, err := config.InitConfig()
	if err != nil {
		return err
	}
	if err := initLogger(conf.LogLevel); err != nil {
		logger.Log.Warn("invalid log level, keeping info", zap.String("level", conf.LogLevel), zap.Error(err))
	}
	defer logger.Log.Sync()

	storage, err := db.NewDB(rootCtx, conf.DatabaseDNS)
	if err != nil {
		return err
	}
	defer storage.Close()
	if conf.StorageRetry {
		storage.Retry = retry.DBRetryConfig
	}

	serverService := service.NewServerService(rootCtx, conf.Address, storage)
	serverService.SetRouter(conf)

	serverErr := make(chan error, 1)
	logger.Log.Info("Running Server on",
		zap.String("address", conf.Address),
		zap.Int("reference_code_attempts", conf.ReferenceCodeAttempts),
		zap.Bool("strict_status", conf.StrictStatus),
		zap.Bool("storage_retry", conf.StorageRetry),
	)
	go serverService.RunServer(&serverErr)

	// Ждем сигнал завершения или ошибку сервера
	select {
	case <-rootCtx.Done():
		logger.Log.Info("Received shutdown signal, shutting down.")
	case err = <-serverErr:
		if err != nil {
			logger.Log.Error("Server error", zap.Error(err))
		}
	}

	if shutdownErr := serverService.Shutdown(); shutdownErr != nil {
		logger.Log.Error("Server shutdown error", zap.Error(shutdownErr))
	}

	logger.Log.Info("Server stopped")

	return err
}

func initLogger(level string) error {
	if err := logger.Initialize(level); err != nil {
		return err
	}
	return nil
}

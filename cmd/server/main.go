package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/config"
)

const (
	startTimeout = 30 * time.Second
	stopTimeout  = 30 * time.Second
)

func loadDotEnv(logger *zap.Logger) {
	for _, envPath := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			absPath, _ := filepath.Abs(envPath)
			logger.Info("Loaded environment", zap.String("path", absPath))
			return
		}
	}
	logger.Info("No .env file found, using system environment variables")
}

func main() {
	logger := common.GetLogger()
	loadDotEnv(logger)

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: common.GetLoggerWith("fx")}
		}),
		fx.Provide(
			config.Load,
			ProvideDB,
			ProvideBlob,
			ProvidePublisher,
			ProvideMetrics,
			ProvideRateLimiterStore,
			ProvideIOT,
		),
		fx.Invoke(StartHTTPServer, StartGRPCServer),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startCtx, startCancel := context.WithTimeout(context.Background(), startTimeout)
	defer startCancel()

	if err := app.Start(startCtx); err != nil {
		if errors.Is(startCtx.Err(), context.DeadlineExceeded) {
			logger.Error("Service did not start in time, check that the database and event brokers are reachable",
				zap.Duration("timeout", startTimeout))
		}
		logger.Fatal("Failed to start service", zap.Error(err))
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		logger.Error("Failed to stop service cleanly", zap.Error(err))
	}
	_ = logger.Sync()
}
